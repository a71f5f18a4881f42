package handler

import (
	"github.com/medimate/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	medications *service.MedicationService
	parser      service.MedicationParser
	tips        service.TipProvider
	system      *service.SystemSettingService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, medications *service.MedicationService, system *service.SystemSettingService) *API {
	return &API{
		db:          db,
		medications: medications,
		parser:      service.NewMedicationParseService(system),
		tips:        service.NewHealthTipService(system),
		system:      system,
	}
}

// SetParser replaces the free-text parser, mainly for tests.
func (a *API) SetParser(parser service.MedicationParser) {
	if parser != nil {
		a.parser = parser
	}
}

// SetTipProvider replaces the daily tip source, mainly for tests.
func (a *API) SetTipProvider(tips service.TipProvider) {
	if tips != nil {
		a.tips = tips
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
