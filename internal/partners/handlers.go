package partners

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/validation"
)

// ===== DTOs =====

type CreatePartnerRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=120"`
	Email     string `json:"email" validate:"omitempty,email,max=120"`
	Phone     string `json:"phone" validate:"omitempty,max=40"`
	IsClient  bool   `json:"is_client"`
	IsLawyer  bool   `json:"is_lawyer"`
	BarNumber string `json:"bar_number" validate:"omitempty,barnum"`
}

type UpdatePartnerRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=2,max=120"`
	Email     *string `json:"email" validate:"omitempty,email,max=120"`
	Phone     *string `json:"phone" validate:"omitempty,max=40"`
	IsClient  *bool   `json:"is_client"`
	IsLawyer  *bool   `json:"is_lawyer"`
	BarNumber *string `json:"bar_number" validate:"omitempty,barnum"`
}

type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

func parsePage(c *fiber.Ctx) (page, size int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	size, _ = strconv.Atoi(c.Query("pageSize", "10"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 50 {
		size = 10
	}
	return
}

// Create Partner godoc
// @Summary      Create contact
// @Description  A contact may be flagged as a client, a lawyer, both, or neither
// @Tags         partners
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreatePartnerRequest  true  "Contact payload"
// @Success      201  {object}  models.Partner
// @Failure      400  {object}  models.ValidationErrorResponse
// @Router       /partners [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreatePartnerRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	p := models.Partner{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		IsClient:  in.IsClient,
		IsLawyer:  in.IsLawyer,
		BarNumber: strings.TrimSpace(in.BarNumber),
	}
	if err := h.db.Create(&p).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

// Update Partner godoc
// @Summary      Update contact
// @Tags         partners
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "partner id (uuid)"
// @Param        payload  body  UpdatePartnerRequest  true  "Fields to change"
// @Success      200  {object}  models.Partner
// @Failure      404  {object}  models.ErrorResponse
// @Router       /partners/{id} [patch]
func (h *Handler) Update(c *fiber.Ctx) error {
	var in UpdatePartnerRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var p models.Partner
	if err := h.db.First(&p, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.IsClient != nil {
		updates["is_client"] = *in.IsClient
	}
	if in.IsLawyer != nil {
		updates["is_lawyer"] = *in.IsLawyer
	}
	if in.BarNumber != nil {
		updates["bar_number"] = strings.TrimSpace(*in.BarNumber)
	}

	if len(updates) > 0 {
		if err := h.db.Model(&p).Updates(updates).Error; err != nil {
			return fiber.ErrInternalServerError
		}
	}
	return c.JSON(p)
}

// Get Partner godoc
// @Summary      Contact detail
// @Tags         partners
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "partner id (uuid)"
// @Success      200  {object}  models.Partner
// @Failure      404  {object}  models.ErrorResponse
// @Router       /partners/{id} [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	var p models.Partner
	if err := h.db.First(&p, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}
	return c.JSON(p)
}

// List Partners godoc
// @Summary      List contacts
// @Description  Paginated; filter by role flags
// @Tags         partners
// @Security     BearerAuth
// @Produce      json
// @Param        page       query int  false "page"
// @Param        pageSize   query int  false "pageSize"
// @Param        is_client  query bool false "only clients"
// @Param        is_lawyer  query bool false "only lawyers"
// @Success      200  {object}  map[string]any
// @Router       /partners [get]
func (h *Handler) List(c *fiber.Ctx) error {
	page, size := parsePage(c)

	dbq := h.db.Model(&models.Partner{})
	if c.QueryBool("is_client") {
		dbq = dbq.Where("is_client = TRUE")
	}
	if c.QueryBool("is_lawyer") {
		dbq = dbq.Where("is_lawyer = TRUE")
	}

	var total int64
	if err := dbq.Count(&total).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	rows := []models.Partner{}
	if err := dbq.Order("name ASC").
		Offset((page - 1) * size).Limit(size).
		Find(&rows).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	return c.JSON(fiber.Map{
		"page": page, "pageSize": size, "total": total,
		"pages": int(math.Ceil(float64(total) / float64(size))),
		"items": rows,
	})
}
