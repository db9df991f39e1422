package reports

import (
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ImMortaLGuruji/legal-case-api/internal/auth"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Fatal("TEST_DATABASE_URL is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		sql := `
TRUNCATE TABLE
	attachments,
	case_events,
	invoice_lines,
	invoices,
	products,
	product_templates,
	hearings,
	case_members,
	report_definitions,
	sequences,
	cases,
	users,
	partners
RESTART IDENTITY CASCADE`
		if err := db.Exec(sql).Error; err != nil {
			t.Logf("truncate failed (ignored): %v", err)
		}
	})

	return db
}

func seedCase(t *testing.T, db *gorm.DB) models.Case {
	t.Helper()
	client := models.Partner{Name: "Acme Holdings", IsClient: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatal(err)
	}
	lawyer := models.Partner{Name: "Jordan Avery", IsLawyer: true, BarNumber: "BAR/1234"}
	if err := db.Create(&lawyer).Error; err != nil {
		t.Fatal(err)
	}
	cs := models.Case{
		Reference:           "CASE/TEST/" + uuid.NewString()[:8],
		Description:         "Contract dispute",
		ClientID:            client.ID,
		ResponsibleLawyerID: lawyer.ID,
		CaseType:            models.CaseTypeCorporate,
		Stage:               models.StageActive,
		OpenDate:            time.Now().UTC(),
		Currency:            "USD",
		FixedFeeCents:       250000,
	}
	if err := db.Create(&cs).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&models.Hearing{
		CaseID: cs.ID, Subject: "Preliminary hearing", StartAt: time.Now().Add(24 * time.Hour),
	}).Error; err != nil {
		t.Fatal(err)
	}
	return cs
}

func defCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.ReportDefinition{}).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

// Resolve walks its fallbacks: code match, then template-name match, then
// create-on-the-fly.
func Test_Resolve_ThreeTierFallback(t *testing.T) {
	db := openTestDB(t)
	h := NewHandler(db)

	// Nothing registered: the definition is created on the fly.
	def, err := h.Resolve(CaseSummaryCode, CaseSummaryName, caseSummaryTemplate, "legal.case")
	if err != nil {
		t.Fatalf("resolve on empty table: %v", err)
	}
	if def.Code != CaseSummaryCode || def.TemplateName != caseSummaryTemplate {
		t.Fatalf("created definition has wrong binding: %+v", def)
	}
	if n := defCount(t, db); n != 1 {
		t.Fatalf("want 1 definition after self-heal, got %d", n)
	}

	// Second resolve reuses the row.
	again, err := h.Resolve(CaseSummaryCode, CaseSummaryName, caseSummaryTemplate, "legal.case")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != def.ID {
		t.Fatalf("resolve should reuse the row, got %s vs %s", again.ID, def.ID)
	}
	if n := defCount(t, db); n != 1 {
		t.Fatalf("resolve must not duplicate definitions, got %d", n)
	}

	// A row registered under a stale code is still found via template name.
	if err := db.Model(&models.ReportDefinition{}).Where("id = ?", def.ID).
		Update("code", "legacy_case_summary").Error; err != nil {
		t.Fatal(err)
	}
	byTemplate, err := h.Resolve(CaseSummaryCode, CaseSummaryName, caseSummaryTemplate, "legal.case")
	if err != nil {
		t.Fatal(err)
	}
	if byTemplate.ID != def.ID {
		t.Fatalf("template-name fallback should find the row, got %s", byTemplate.ID)
	}
	if n := defCount(t, db); n != 1 {
		t.Fatalf("fallback must not create a duplicate, got %d", n)
	}
}

// The rendered summary carries the case's facts.
func Test_PrintCaseSummary_RendersCase(t *testing.T) {
	db := openTestDB(t)
	cs := seedCase(t, db)
	h := NewHandler(db)

	app := fiber.New(fiber.Config{ErrorHandler: auth.ErrorHandler})
	app.Get("/api/cases/:id/summary", h.PrintCaseSummary)

	req := httptest.NewRequest("GET", "/api/cases/"+cs.ID.String()+"/summary", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("want HTML content type, got %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	html := string(body)
	for _, want := range []string{
		cs.Reference,
		"Acme Holdings",
		"Jordan Avery",
		"Preliminary hearing",
		"2500.00", // fixed fee rendered in major units
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("summary missing %q\n%s", want, html)
		}
	}

	// Rendering self-registered the definition.
	var def models.ReportDefinition
	if err := db.First(&def, "code = ?", CaseSummaryCode).Error; err != nil {
		t.Fatalf("definition should exist after render: %v", err)
	}

	// Unknown case id is a 404, not a rendering error.
	req = httptest.NewRequest("GET", "/api/cases/"+uuid.NewString()+"/summary", nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("unknown case should 404, got %d", resp.StatusCode)
	}
}
