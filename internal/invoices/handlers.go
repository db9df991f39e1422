package invoices

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ImMortaLGuruji/legal-case-api/internal/auth"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"
)

type Handler struct {
	db  *gorm.DB
	svc *Service
}

func NewHandler(db *gorm.DB, svc *Service) *Handler {
	return &Handler{db: db, svc: svc}
}

// Create Invoice godoc
// @Summary      Create the fixed-fee invoice for a case
// @Description  Builds exactly one outgoing invoice from the case's fixed fee
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "case id (uuid)"
// @Success      201  {object}  models.Invoice
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse  "invoice already exists"
// @Failure      422  {object}  models.ErrorResponse  "missing fixed fee"
// @Router       /cases/{id}/invoice [post]
func (h *Handler) CreateForCase(c *fiber.Ctx) error {
	caseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var actorID *uuid.UUID
	if uid, err := uuid.Parse(auth.MustUserID(c)); err == nil {
		actorID = &uid
	}

	inv, err := h.svc.CreateForCase(c.Context(), caseID, actorID)
	switch {
	case err == nil:
		return c.Status(fiber.StatusCreated).JSON(inv)
	case errors.Is(err, ErrMissingFixedFee):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvoiceExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.ErrNotFound
	default:
		return fiber.ErrInternalServerError
	}
}

// List Case Invoices godoc
// @Summary      List invoices linked to a case
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "case id (uuid)"
// @Success      200  {array}   models.Invoice
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id}/invoices [get]
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

	rows := []models.Invoice{}
	if err := h.db.Preload("Lines").
		Where("case_id = ?", caseID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(rows)
}

// Get Invoice godoc
// @Summary      Invoice detail
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "invoice id (uuid)"
// @Success      200  {object}  models.Invoice
// @Failure      404  {object}  models.ErrorResponse
// @Router       /invoices/{id} [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	var inv models.Invoice
	err := h.db.Preload("Lines").Preload("Partner").
		First(&inv, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(inv)
}

// Cancel Invoice godoc
// @Summary      Cancel an invoice
// @Description  Cancelled invoices no longer block the one-per-case guard
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "invoice id (uuid)"
// @Success      200  {object}  models.Invoice
// @Failure      404  {object}  models.ErrorResponse
// @Router       /invoices/{id}/cancel [post]
func (h *Handler) Cancel(c *fiber.Ctx) error {
	var inv models.Invoice
	if err := h.db.First(&inv, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}
	if inv.State != models.InvoiceCancelled {
		if err := h.db.Model(&inv).Update("state", models.InvoiceCancelled).Error; err != nil {
			return fiber.ErrInternalServerError
		}
		inv.State = models.InvoiceCancelled
	}
	return c.JSON(inv)
}
