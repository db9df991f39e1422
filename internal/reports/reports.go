package reports

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"
)

// Well-known binding for the case summary report. Bundled installs register
// the definition row up front; Resolve self-heals when it is missing.
const (
	CaseSummaryCode     = "legal_case_summary"
	CaseSummaryName     = "Case Summary"
	caseSummaryTemplate = "reports/case_summary.html"
)

type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

// Resolve finds a report definition by its well-known code, falling back to
// the internal template name, and as a last resort creating the row with the
// fixed binding. The fallbacks tolerate partial or out-of-order installation
// of bundled definitions.
func (h *Handler) Resolve(code, name, templateName, model string) (*models.ReportDefinition, error) {
	var def models.ReportDefinition

	err := h.db.First(&def, "code = ?", code).Error
	if err == nil {
		return &def, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = h.db.First(&def, "template_name = ?", templateName).Error
	if err == nil {
		return &def, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	def = models.ReportDefinition{
		Code:         code,
		Name:         name,
		Model:        model,
		TemplateName: templateName,
		ReportType:   "html",
	}
	if err := h.db.Create(&def).Error; err != nil {
		// Another request registered it first; re-read the winner.
		var existing models.ReportDefinition
		if e := h.db.First(&existing, "code = ?", code).Error; e == nil {
			return &existing, nil
		}
		return nil, err
	}
	logrus.WithField("report", code).Warn("report definition was missing, created on the fly")
	return &def, nil
}

// Print Case Summary godoc
// @Summary      Render the case summary report
// @Description  Resolves the report definition (three-tier fallback) and renders the case as HTML
// @Tags         reports
// @Security     BearerAuth
// @Produce      html
// @Param        id  path  string  true  "case id (uuid)"
// @Success      200  {string}  string  "rendered document"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /cases/{id}/summary [get]
func (h *Handler) PrintCaseSummary(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid case id")
	}

	var cs models.Case
	err = h.db.
		Preload("Client").
		Preload("ResponsibleLawyer").
		Preload("Hearings", func(db *gorm.DB) *gorm.DB { return db.Order("start_at ASC") }).
		First(&cs, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.ErrNotFound
		}
		return fiber.ErrInternalServerError
	}

	def, err := h.Resolve(CaseSummaryCode, CaseSummaryName, caseSummaryTemplate, "legal.case")
	if err != nil {
		return fiber.ErrInternalServerError
	}

	tmpl, ok := templates[def.TemplateName]
	if !ok {
		logrus.WithField("template", def.TemplateName).Error("report template not registered")
		return fiber.ErrInternalServerError
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, &cs); err != nil {
		logrus.WithError(err).Error("case summary render failed")
		return fiber.ErrInternalServerError
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
