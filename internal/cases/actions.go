package cases

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"
)

// Window actions mirror the smart buttons on the case form: each returns a
// declarative description of the related-record window the UI should open,
// scoped to this case.

func (h *Handler) loadCase(c *fiber.Ctx) (*models.Case, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}
	var cs models.Case
	if err := h.db.First(&cs, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.ErrNotFound
		}
		return nil, fiber.ErrInternalServerError
	}
	return &cs, nil
}

// View Hearings godoc
// @Summary      Hearings window action
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "case id (uuid)"
// @Success      200  {object}  models.WindowAction
// @Router       /cases/{id}/actions/hearings [get]
func (h *Handler) ViewHearings(c *fiber.Ctx) error {
	cs, err := h.loadCase(c)
	if err != nil {
		return err
	}
	return c.JSON(models.WindowAction{
		Type:     "window",
		Name:     "Hearings",
		ResModel: "legal.hearing",
		ViewMode: "list,form",
		Domain:   map[string]any{"case_id": cs.ID},
		Context:  map[string]any{"default_case_id": cs.ID},
	})
}

// View Invoices godoc
// @Summary      Invoices window action
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "case id (uuid)"
// @Success      200  {object}  models.WindowAction
// @Router       /cases/{id}/actions/invoices [get]
func (h *Handler) ViewInvoices(c *fiber.Ctx) error {
	cs, err := h.loadCase(c)
	if err != nil {
		return err
	}
	return c.JSON(models.WindowAction{
		Type:     "window",
		Name:     "Invoices",
		ResModel: "legal.invoice",
		ViewMode: "list,form",
		Domain:   map[string]any{"case_id": cs.ID},
		Context: map[string]any{
			"default_case_id":   cs.ID,
			"default_move_type": models.MoveOutInvoice,
		},
	})
}

// View Attachments godoc
// @Summary      Documents window action
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "case id (uuid)"
// @Success      200  {object}  models.WindowAction
// @Router       /cases/{id}/actions/attachments [get]
func (h *Handler) ViewAttachments(c *fiber.Ctx) error {
	cs, err := h.loadCase(c)
	if err != nil {
		return err
	}
	return c.JSON(models.WindowAction{
		Type:     "window",
		Name:     "Documents",
		ResModel: "attachment",
		ViewMode: "list,form",
		Domain:   map[string]any{"res_model": "legal.case", "res_id": cs.ID},
		Context:  map[string]any{"default_res_model": "legal.case", "default_res_id": cs.ID},
	})
}
