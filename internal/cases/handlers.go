package cases

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ImMortaLGuruji/legal-case-api/internal/auth"
	"github.com/ImMortaLGuruji/legal-case-api/internal/sequence"
	"github.com/ImMortaLGuruji/legal-case-api/internal/storage"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/sanitize"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/utils"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/validation"
)

// referencePlaceholder marks a case that still needs a sequence-assigned
// reference. Auto-assignment treats it the same as an empty reference.
const referencePlaceholder = "New"

// ===== DTOs =====

type CreateCaseRequest struct {
	Reference           string   `json:"reference" validate:"omitempty,max=40"`
	Description         string   `json:"description" validate:"max=2000"`
	ClientID            string   `json:"client_id" validate:"required,uuid4"`
	ResponsibleLawyerID string   `json:"responsible_lawyer_id" validate:"required,uuid4"`
	CaseType            string   `json:"case_type" validate:"omitempty,oneof=civil criminal corporate other"`
	OpenDate            string   `json:"open_date" validate:"omitempty,datetime=2006-01-02"`
	FixedFeeCents       int64    `json:"fixed_fee_cents" validate:"gte=0"`
	MemberIDs           []string `json:"member_ids" validate:"omitempty,dive,uuid4"`
}

// UpdateCaseRequest enumerates the only fields an update may change.
// Nil pointers are left untouched.
type UpdateCaseRequest struct {
	Description         *string   `json:"description" validate:"omitempty,max=2000"`
	ClientID            *string   `json:"client_id" validate:"omitempty,uuid4"`
	ResponsibleLawyerID *string   `json:"responsible_lawyer_id" validate:"omitempty,uuid4"`
	CaseType            *string   `json:"case_type" validate:"omitempty,oneof=civil criminal corporate other"`
	Stage               *string   `json:"stage" validate:"omitempty,oneof=intake active closed"`
	FixedFeeCents       *int64    `json:"fixed_fee_cents" validate:"omitempty,gte=0"`
	Currency            *string   `json:"currency" validate:"omitempty,len=3"`
	MemberIDs           *[]string `json:"member_ids" validate:"omitempty,dive,uuid4"`
}

type CaseListItem struct {
	ID           uuid.UUID        `json:"id"`
	Reference    string           `json:"reference"`
	CaseType     models.CaseType  `json:"case_type"`
	Stage        models.CaseStage `json:"stage"`
	OpenDate     time.Time        `json:"open_date"`
	Preview      string           `json:"preview"`
	HearingCount int64            `json:"hearing_count"`
	InvoiceCount int64            `json:"invoice_count"`
}

type PageCases struct {
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	Total    int64          `json:"total"`
	Pages    int            `json:"pages"`
	Items    []CaseListItem `json:"items"`
}

// CaseDetail is a case plus its relation counts.
type CaseDetail struct {
	models.Case
	HearingCount int `json:"hearing_count"`
	InvoiceCount int `json:"invoice_count"`
}

type Handler struct {
	db       *gorm.DB
	seq      sequence.Counter
	sb       *storage.Supabase
	currency string
}

func NewHandler(db *gorm.DB, seq sequence.Counter, sb *storage.Supabase, currency string) *Handler {
	return &Handler{db: db, seq: seq, sb: sb, currency: currency}
}

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

// today returns the caller's local calendar date, normalized to midnight.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// requireParty loads a partner and checks the role flag a party field needs.
func requireParty(tx *gorm.DB, id uuid.UUID, flag string) (*models.Partner, error) {
	var p models.Partner
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "partner not found")
		}
		return nil, fiber.ErrInternalServerError
	}
	switch flag {
	case "client":
		if !p.IsClient {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "partner is not flagged as a client")
		}
	case "lawyer":
		if !p.IsLawyer {
			return nil, fiber.NewError(fiber.StatusUnprocessableEntity, "partner is not flagged as a lawyer")
		}
	}
	return &p, nil
}

// Create Case godoc
// @Summary      Create case
// @Description  Opens a new case; the reference comes from the legal.case sequence unless supplied
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateCaseRequest  true  "Case payload"
// @Success      201  {object}  models.Case
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      422  {object}  models.ErrorResponse
// @Router       /cases [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	clientID, _ := uuid.Parse(in.ClientID)
	lawyerID, _ := uuid.Parse(in.ResponsibleLawyerID)

	tx := h.db.Begin()
	if tx.Error != nil {
		return fiber.ErrInternalServerError
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if _, err := requireParty(tx, clientID, "client"); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := requireParty(tx, lawyerID, "lawyer"); err != nil {
		tx.Rollback()
		return err
	}

	reference := strings.TrimSpace(in.Reference)
	if reference == "" || reference == referencePlaceholder {
		var err error
		if reference, err = h.seq.Next(tx, sequence.CodeCase); err != nil {
			tx.Rollback()
			return fiber.ErrInternalServerError
		}
	}

	openDate := today()
	if in.OpenDate != "" {
		openDate, _ = time.Parse("2006-01-02", in.OpenDate)
	}

	caseType := models.CaseTypeCivil
	if in.CaseType != "" {
		caseType = models.CaseType(in.CaseType)
	}

	users, err := lookupResponsibleUsers(tx, []uuid.UUID{lawyerID})
	if err != nil {
		tx.Rollback()
		return fiber.ErrInternalServerError
	}

	cs := models.Case{
		Reference:           reference,
		Description:         strings.TrimSpace(in.Description),
		ClientID:            clientID,
		ResponsibleLawyerID: lawyerID,
		ResponsibleUserID:   users[lawyerID],
		CaseType:            caseType,
		Stage:               models.StageIntake,
		OpenDate:            openDate,
		Currency:            h.currency,
		FixedFeeCents:       in.FixedFeeCents,
	}
	if err := tx.Create(&cs).Error; err != nil {
		tx.Rollback()
		return fiber.NewError(fiber.StatusConflict, "case reference already exists")
	}

	if len(in.MemberIDs) > 0 {
		members, err := loadUsers(tx, in.MemberIDs)
		if err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Model(&cs).Association("Members").Replace(members); err != nil {
			tx.Rollback()
			return fiber.ErrInternalServerError
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fiber.ErrInternalServerError
	}

	actorID := actor(c)
	utils.LogCaseEvent(c.Context(), h.db, cs.ID, actorID, "created", "", cs.Stage, "")
	return c.Status(fiber.StatusCreated).JSON(cs)
}

// Update Case godoc
// @Summary      Update case
// @Description  Applies a typed partial update; the first transition to closed stamps the close date
// @Tags         cases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "case id (uuid)"
// @Param        payload  body  UpdateCaseRequest  true  "Fields to change"
// @Success      200  {object}  models.Case
// @Failure      400  {object}  models.ValidationErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id} [patch]
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var in UpdateCaseRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	tx := h.db.Begin()
	if tx.Error != nil {
		return fiber.ErrInternalServerError
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var cs models.Case
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cs, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	updates := map[string]any{}
	oldStage := cs.Stage

	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.ClientID != nil {
		clientID, _ := uuid.Parse(*in.ClientID)
		if _, err := requireParty(tx, clientID, "client"); err != nil {
			tx.Rollback()
			return err
		}
		updates["client_id"] = clientID
	}
	if in.ResponsibleLawyerID != nil {
		lawyerID, _ := uuid.Parse(*in.ResponsibleLawyerID)
		if _, err := requireParty(tx, lawyerID, "lawyer"); err != nil {
			tx.Rollback()
			return err
		}
		if lawyerID != cs.ResponsibleLawyerID {
			users, err := lookupResponsibleUsers(tx, []uuid.UUID{lawyerID})
			if err != nil {
				tx.Rollback()
				return fiber.ErrInternalServerError
			}
			updates["responsible_lawyer_id"] = lawyerID
			updates["responsible_user_id"] = users[lawyerID]
		}
	}
	if in.CaseType != nil {
		updates["case_type"] = models.CaseType(*in.CaseType)
	}
	if in.FixedFeeCents != nil {
		updates["fixed_fee_cents"] = *in.FixedFeeCents
	}
	if in.Currency != nil {
		updates["currency"] = strings.ToUpper(*in.Currency)
	}

	stageChanged := false
	if in.Stage != nil && models.CaseStage(*in.Stage) != cs.Stage {
		newStage := models.CaseStage(*in.Stage)
		updates["stage"] = newStage
		// Stamp the close date once; re-closing never overwrites it.
		if newStage == models.StageClosed && cs.CloseDate == nil {
			updates["close_date"] = today()
		}
		stageChanged = true
		cs.Stage = newStage
	}

	if len(updates) > 0 {
		if err := tx.Model(&cs).Updates(updates).Error; err != nil {
			tx.Rollback()
			return fiber.ErrInternalServerError
		}
	}

	if in.MemberIDs != nil {
		members, err := loadUsers(tx, *in.MemberIDs)
		if err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Model(&cs).Association("Members").Replace(members); err != nil {
			tx.Rollback()
			return fiber.ErrInternalServerError
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fiber.ErrInternalServerError
	}

	if stageChanged {
		utils.LogCaseEvent(c.Context(), h.db, cs.ID, actor(c), "stage_changed", oldStage, cs.Stage, "")
	}

	var out models.Case
	if err := h.db.First(&out, "id = ?", cs.ID).Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(out)
}

// Get Case godoc
// @Summary      Case detail
// @Description  Case with parties, hearings, invoices, members, and counts
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "case id (uuid)"
// @Success      200  {object}  CaseDetail
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id} [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	var cs models.Case
	err := h.db.
		Preload("Client").
		Preload("ResponsibleLawyer").
		Preload("Members").
		Preload("Hearings", func(db *gorm.DB) *gorm.DB { return db.Order("start_at ASC") }).
		Preload("Invoices", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		First(&cs, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	if cs.Hearings == nil {
		cs.Hearings = []models.Hearing{}
	}
	if cs.Invoices == nil {
		cs.Invoices = []models.Invoice{}
	}

	return c.JSON(CaseDetail{
		Case:         cs,
		HearingCount: len(cs.Hearings),
		InvoiceCount: len(cs.Invoices),
	})
}

// List Cases godoc
// @Summary      List cases
// @Description  Paginated, with per-case hearing/invoice counts; filter by stage, case_type, mine
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        page       query int    false "page"
// @Param        pageSize   query int    false "pageSize"
// @Param        stage      query string false "intake|active|closed"
// @Param        case_type  query string false "civil|criminal|corporate|other"
// @Param        mine       query bool   false "only cases I'm responsible for or a member of"
// @Success      200  {object}  PageCases
// @Failure      401  {object}  models.ErrorResponse
// @Router       /cases [get]
func (h *Handler) List(c *fiber.Ctx) error {
	page, size := parsePage(c)

	dbq := h.db.Table("cases")
	if stage := strings.TrimSpace(c.Query("stage")); stage != "" {
		switch models.CaseStage(stage) {
		case models.StageIntake, models.StageActive, models.StageClosed:
			dbq = dbq.Where("cases.stage = ?", stage)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "invalid stage filter")
		}
	}
	if ct := strings.TrimSpace(c.Query("case_type")); ct != "" {
		dbq = dbq.Where("cases.case_type = ?", ct)
	}
	if c.QueryBool("mine") {
		me := auth.MustUserID(c)
		dbq = dbq.Where(
			"(cases.responsible_user_id = ? OR EXISTS (SELECT 1 FROM case_members cm WHERE cm.case_id = cases.id AND cm.user_id = ?))",
			me, me,
		)
	}

	var total int64
	if err := dbq.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return fiber.ErrInternalServerError
	}

	type row struct {
		ID           uuid.UUID
		Reference    string
		Description  string
		CaseType     models.CaseType
		Stage        models.CaseStage
		OpenDate     time.Time
		HearingCount int64
		InvoiceCount int64
	}
	rows := make([]row, 0, size)
	err := dbq.
		Select(`cases.id, cases.reference, cases.description, cases.case_type, cases.stage, cases.open_date,
          COUNT(DISTINCT hearings.id) AS hearing_count,
          COUNT(DISTINCT invoices.id) AS invoice_count`).
		Joins("LEFT JOIN hearings ON hearings.case_id = cases.id").
		Joins("LEFT JOIN invoices ON invoices.case_id = cases.id").
		Group("cases.id").
		Order("cases.created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Scan(&rows).Error
	if err != nil {
		return fiber.ErrInternalServerError
	}

	items := make([]CaseListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, CaseListItem{
			ID:           r.ID,
			Reference:    r.Reference,
			CaseType:     r.CaseType,
			Stage:        r.Stage,
			OpenDate:     r.OpenDate,
			Preview:      sanitize.Summary(r.Description, 240),
			HearingCount: r.HearingCount,
			InvoiceCount: r.InvoiceCount,
		})
	}

	return c.JSON(PageCases{
		Page:     page,
		PageSize: size,
		Total:    total,
		Pages:    int(math.Ceil(float64(total) / float64(size))),
		Items:    items,
	})
}

// Delete Case godoc
// @Summary      Delete case
// @Description  Hearings are cascade-deleted; invoices keep existing with their back-reference cleared
// @Tags         cases
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "case id (uuid)"
// @Success      204
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id} [delete]
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var cs models.Case
	if err := h.db.First(&cs, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	// Best-effort cleanup of attachment blobs before dropping metadata.
	var atts []models.Attachment
	_ = h.db.Where("res_model = ? AND res_id = ?", "legal.case", id).Find(&atts).Error
	if h.sb != nil && len(atts) > 0 {
		keys := make([]string, 0, len(atts))
		for _, a := range atts {
			keys = append(keys, a.Key)
		}
		_ = h.sb.BulkDelete(keys)
	}

	tx := h.db.Begin()
	if tx.Error != nil {
		return fiber.ErrInternalServerError
	}
	if err := tx.Where("res_model = ? AND res_id = ?", "legal.case", id).
		Delete(&models.Attachment{}).Error; err != nil {
		tx.Rollback()
		return fiber.ErrInternalServerError
	}
	if err := tx.Model(&cs).Association("Members").Clear(); err != nil {
		tx.Rollback()
		return fiber.ErrInternalServerError
	}
	if err := tx.Delete(&cs).Error; err != nil {
		tx.Rollback()
		return fiber.ErrInternalServerError
	}
	if err := tx.Commit().Error; err != nil {
		return fiber.ErrInternalServerError
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// actor extracts the authenticated user's id for audit entries, when present.
func actor(c *fiber.Ctx) *uuid.UUID {
	v := c.Locals("userID")
	if v == nil {
		return nil
	}
	if id, err := uuid.Parse(v.(string)); err == nil {
		return &id
	}
	return nil
}

// loadUsers resolves member ids to user rows, rejecting unknown ids.
func loadUsers(tx *gorm.DB, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	parsed := make([]uuid.UUID, 0, len(ids))
	for _, s := range ids {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid member id")
		}
		parsed = append(parsed, id)
	}
	var users []models.User
	if err := tx.Where("id IN ?", parsed).Find(&users).Error; err != nil {
		return nil, fiber.ErrInternalServerError
	}
	if len(users) != len(parsed) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "unknown member id")
	}
	return users, nil
}
