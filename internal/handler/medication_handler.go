package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medimate/internal/medication"
	"github.com/medimate/internal/service"
	"github.com/medimate/internal/view"
	"go.uber.org/zap"
)

type medicationPayload struct {
	Name         string   `json:"name"`
	Dosage       string   `json:"dosage"`
	Instructions string   `json:"instructions"`
	Frequency    string   `json:"frequency"`
	Times        []string `json:"times"`
	Color        string   `json:"color"`
}

func (p medicationPayload) toInput() service.MedicationInput {
	return service.MedicationInput{
		Name:         p.Name,
		Dosage:       p.Dosage,
		Instructions: p.Instructions,
		Frequency:    p.Frequency,
		Times:        p.Times,
		Color:        p.Color,
	}
}

type intakePayload struct {
	MedicationID  string `json:"medication_id"`
	ScheduledTime string `json:"scheduled_time"`
}

// ListMedications 返回全部药品
func (a *API) ListMedications(c *gin.Context) {
	meds := a.medications.List()
	items := make([]gin.H, 0, len(meds))
	for _, med := range meds {
		items = append(items, medicationToPayload(med))
	}
	c.JSON(http.StatusOK, gin.H{"medications": items})
}

// GetMedication 返回单个药品
func (a *API) GetMedication(c *gin.Context) {
	med, err := a.medications.Get(c.Param("id"))
	if err != nil {
		a.respondMedicationError(c, err, "medication.notFound")
		return
	}
	c.JSON(http.StatusOK, gin.H{"medication": medicationToPayload(med)})
}

// CreateMedication 新增药品
func (a *API) CreateMedication(c *gin.Context) {
	var payload medicationPayload
	if !bindJSON(c, &payload, localizeMessage(a.language(c), "request.invalid")) {
		return
	}

	med, err := a.medications.Create(c.Request.Context(), payload.toInput())
	if err != nil {
		a.respondMedicationError(c, err, "medication.saveFailed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"medication": medicationToPayload(med)})
}

// MedicationBadge 输出药品的 PNG 徽章
func (a *API) MedicationBadge(c *gin.Context) {
	med, err := a.medications.Get(c.Param("id"))
	if err != nil {
		a.respondMedicationError(c, err, "medication.notFound")
		return
	}

	var buf bytes.Buffer
	size := parseIntQuery(c, "size", view.DefaultBadgeSize)
	if err := view.RenderBadge(&buf, med.Name, med.Color, size); err != nil {
		zap.L().Error("render badge", zap.String("medication_id", med.ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, localizeMessage(a.language(c), "badge.failed"))
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// TodaySchedule 返回指定日期的服药计划
func (a *API) TodaySchedule(c *gin.Context) {
	schedule := a.medications.Today(c.Query("date"))

	items := make([]gin.H, 0, len(schedule.Items))
	for _, item := range schedule.Items {
		items = append(items, gin.H{
			"medication": medicationToPayload(item.Medication),
			"time":       item.Time,
			"taken":      item.Taken,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"date":             schedule.Date,
		"medication_count": schedule.MedicationCount,
		"items":            items,
	})
}

// ConfirmIntake 记录一次服药
func (a *API) ConfirmIntake(c *gin.Context) {
	var payload intakePayload
	if !bindJSON(c, &payload, localizeMessage(a.language(c), "request.invalid")) {
		return
	}

	record, err := a.medications.ConfirmDose(c.Request.Context(), payload.MedicationID, payload.ScheduledTime)
	if err != nil {
		a.respondMedicationError(c, err, "intake.saveFailed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// IntakeHistory 返回最近的服药记录，默认 10 条
func (a *API) IntakeHistory(c *gin.Context) {
	entries := a.medications.History(parseIntQuery(c, "limit", 0))

	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		items = append(items, gin.H{
			"record":     entry.Record,
			"medication": medicationToPayload(entry.Medication),
		})
	}

	c.JSON(http.StatusOK, gin.H{"history": items})
}

// AdherenceStats 返回服药统计
func (a *API) AdherenceStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stats": a.medications.Stats()})
}

func (a *API) respondMedicationError(c *gin.Context, err error, fallbackKey string) {
	language := a.language(c)
	switch {
	case errors.Is(err, service.ErrMedicationNotFound):
		respondError(c, http.StatusNotFound, localizeMessage(language, "medication.notFound"))
	case errors.Is(err, service.ErrMedicationNameRequired):
		respondError(c, http.StatusBadRequest, localizeMessage(language, "medication.name"))
	case errors.Is(err, service.ErrInvalidTimeOfDay):
		respondError(c, http.StatusBadRequest, localizeMessage(language, "medication.time"))
	case errors.Is(err, service.ErrInvalidFrequency):
		respondError(c, http.StatusBadRequest, localizeMessage(language, "medication.frequency"))
	default:
		c.Error(err)
		zap.L().Error("medication request failed", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, localizeMessage(language, fallbackKey))
	}
}

func medicationToPayload(med medication.Medication) gin.H {
	times := med.Times
	if times == nil {
		times = []string{}
	}
	return gin.H{
		"id":           med.ID,
		"name":         med.Name,
		"dosage":       med.Dosage,
		"instructions": med.Instructions,
		"frequency":    med.Frequency,
		"times":        times,
		"color":        med.Color,
		"icon":         med.Icon,
		"badge_url":    "/api/medications/" + med.ID + "/badge.png",
	}
}
