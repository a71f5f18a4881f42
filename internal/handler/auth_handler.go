package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/medimate/internal/db"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 校验唯一账号并写入会话
func (a *API) Login(c *gin.Context) {
	language := a.language(c)

	var payload loginRequest
	if !bindJSON(c, &payload, localizeMessage(language, "request.invalid")) {
		return
	}

	user, ok := db.Authenticate(a.db, payload.Username, payload.Password)
	if !ok {
		respondError(c, http.StatusUnauthorized, localizeMessage(language, "login.invalid"))
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("username", user.Username)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, localizeMessage(language, "login.session"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": user.Username})
}

// Logout 清空会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"message": localizeMessage(a.language(c), "logout.ok")})
}

// AuthRequired 是一个简单的认证中间件
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user_id") == nil {
			respondError(c, http.StatusUnauthorized, localizeMessage(a.language(c), "login.required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
