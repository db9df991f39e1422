package hearings

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/validation"
)

// ===== DTOs =====

type CreateHearingRequest struct {
	CaseID   string `json:"case_id" validate:"required,uuid4"`
	Subject  string `json:"subject" validate:"required,max=120"`
	StartAt  string `json:"start_at" validate:"required"`
	EndAt    string `json:"end_at" validate:"omitempty"`
	Location string `json:"location" validate:"max=120"`
	Notes    string `json:"notes" validate:"max=2000"`
	Status   string `json:"status" validate:"omitempty,oneof=planned held adjourned cancelled"`
}

// UpdateHearingRequest enumerates the only fields an update may change.
// Status has no transition rules; any value may be set at any time.
type UpdateHearingRequest struct {
	Subject  *string `json:"subject" validate:"omitempty,max=120"`
	StartAt  *string `json:"start_at" validate:"omitempty"`
	EndAt    *string `json:"end_at" validate:"omitempty"`
	Location *string `json:"location" validate:"omitempty,max=120"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
	Status   *string `json:"status" validate:"omitempty,oneof=planned held adjourned cancelled"`
}

type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

func parseWhen(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// Create Hearing godoc
// @Summary      Schedule hearing
// @Tags         hearings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateHearingRequest  true  "Hearing payload"
// @Success      201  {object}  models.Hearing
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      404  {object}  models.ErrorResponse  "case not found"
// @Router       /hearings [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateHearingRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	caseID, _ := uuid.Parse(in.CaseID)
	var cnt int64
	if err := h.db.Model(&models.Case{}).Where("id = ?", caseID).Count(&cnt).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if cnt == 0 {
		return fiber.ErrNotFound
	}

	startAt, err := parseWhen(in.StartAt)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "start_at must be RFC3339")
	}
	var endAt *time.Time
	if in.EndAt != "" {
		t, err := parseWhen(in.EndAt)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end_at must be RFC3339")
		}
		endAt = &t
	}

	status := models.HearingPlanned
	if in.Status != "" {
		status = models.HearingStatus(in.Status)
	}

	hr := models.Hearing{
		CaseID:   caseID,
		Subject:  strings.TrimSpace(in.Subject),
		StartAt:  startAt,
		EndAt:    endAt,
		Location: strings.TrimSpace(in.Location),
		Notes:    strings.TrimSpace(in.Notes),
		Status:   status,
	}
	if err := h.db.Create(&hr).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(hr)
}

// Update Hearing godoc
// @Summary      Update hearing
// @Tags         hearings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "hearing id (uuid)"
// @Param        payload  body  UpdateHearingRequest  true  "Fields to change"
// @Success      200  {object}  models.Hearing
// @Failure      404  {object}  models.ErrorResponse
// @Router       /hearings/{id} [patch]
func (h *Handler) Update(c *fiber.Ctx) error {
	var in UpdateHearingRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var hr models.Hearing
	if err := h.db.First(&hr, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	updates := map[string]any{}
	if in.Subject != nil {
		updates["subject"] = strings.TrimSpace(*in.Subject)
	}
	if in.StartAt != nil {
		t, err := parseWhen(*in.StartAt)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "start_at must be RFC3339")
		}
		updates["start_at"] = t
	}
	if in.EndAt != nil {
		if *in.EndAt == "" {
			updates["end_at"] = nil
		} else {
			t, err := parseWhen(*in.EndAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_at must be RFC3339")
			}
			updates["end_at"] = t
		}
	}
	if in.Location != nil {
		updates["location"] = strings.TrimSpace(*in.Location)
	}
	if in.Notes != nil {
		updates["notes"] = strings.TrimSpace(*in.Notes)
	}
	if in.Status != nil {
		updates["status"] = models.HearingStatus(*in.Status)
	}

	if len(updates) > 0 {
		if err := h.db.Model(&hr).Updates(updates).Error; err != nil {
			return fiber.ErrInternalServerError
		}
	}
	return c.JSON(hr)
}

// Get Hearing godoc
// @Summary      Hearing detail
// @Tags         hearings
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "hearing id (uuid)"
// @Success      200  {object}  models.Hearing
// @Failure      404  {object}  models.ErrorResponse
// @Router       /hearings/{id} [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	var hr models.Hearing
	if err := h.db.First(&hr, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(hr)
}

// List Case Hearings godoc
// @Summary      List hearings for a case
// @Tags         hearings
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "case id (uuid)"
// @Success      200  {array}   models.Hearing
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id}/hearings [get]
func (h *Handler) ListByCase(c *fiber.Ctx) error {
	caseID := c.Params("id")
	if _, err := uuid.Parse(caseID); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var cnt int64
	if err := h.db.Model(&models.Case{}).Where("id = ?", caseID).Count(&cnt).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	if cnt == 0 {
		return fiber.ErrNotFound
	}

	rows := []models.Hearing{}
	if err := h.db.Where("case_id = ?", caseID).
		Order("start_at ASC").
		Find(&rows).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(rows)
}

// Delete Hearing godoc
// @Summary      Delete hearing
// @Tags         hearings
// @Security     BearerAuth
// @Param        id  path  string  true  "hearing id (uuid)"
// @Success      204
// @Failure      404  {object}  models.ErrorResponse
// @Router       /hearings/{id} [delete]
func (h *Handler) Delete(c *fiber.Ctx) error {
	res := h.db.Delete(&models.Hearing{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return fiber.ErrInternalServerError
	}
	if res.RowsAffected == 0 {
		return fiber.ErrNotFound
	}
	return c.SendStatus(fiber.StatusNoContent)
}
