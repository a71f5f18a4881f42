package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/medimate/internal/db"
	"github.com/spf13/cobra"
)

var (
	initUsername string
	initPassword string
)

var initUserCmd = &cobra.Command{
	Use:   "init-user",
	Short: "Create the owner account",
	Long: `Create the single owner account used to log in to the API.

Username and password default to OWNER_USER_NAME and OWNER_PASSWORD.
Only one account can exist.`,
	RunE: runInitUser,
}

func init() {
	initUserCmd.Flags().StringVarP(&initUsername, "username", "u", "", "Owner username")
	initUserCmd.Flags().StringVarP(&initPassword, "password", "p", "", "Owner password")
}

func runInitUser(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	username := firstNonEmpty(initUsername, cfg.OwnerUserName)
	password := firstNonEmpty(initPassword, cfg.OwnerPassword)
	if username == "" || password == "" {
		return errors.New("username and password are required (flags or OWNER_USER_NAME / OWNER_PASSWORD)")
	}

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	if err := db.EnsureUser(db.DB, username, password); err != nil {
		if errors.Is(err, db.ErrUserExists) {
			fmt.Fprintln(cmd.OutOrStdout(), "owner account already exists, nothing to do")
			return nil
		}
		return fmt.Errorf("create owner account: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "owner account ready: %s\n", username)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
