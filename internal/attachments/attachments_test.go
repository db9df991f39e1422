package attachments

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
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
		if err := db.Exec("TRUNCATE TABLE attachments, cases, users, partners RESTART IDENTITY CASCADE").Error; err != nil {
			t.Logf("truncate failed (ignored): %v", err)
		}
	})
	return db
}

// newTestApp wires the routes with no object store: metadata-only dev mode.
func newTestApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: auth.ErrorHandler})
	app.Post("/api/cases/:id/attachments", h.UploadToCase)
	app.Get("/api/cases/:id/attachments", h.ListByCase)
	app.Get("/api/attachments/:id/signed-url", h.SignedDownloadURL)
	app.Delete("/api/attachments/:id", h.Delete)
	return app
}

func seedCase(t *testing.T, db *gorm.DB) models.Case {
	t.Helper()
	client := models.Partner{Name: "Client", IsClient: true}
	if err := db.Create(&client).Error; err != nil {
		t.Fatal(err)
	}
	lawyer := models.Partner{Name: "Lawyer", IsLawyer: true}
	if err := db.Create(&lawyer).Error; err != nil {
		t.Fatal(err)
	}
	cs := models.Case{
		Reference:           "CASE/TEST/" + uuid.NewString()[:8],
		ClientID:            client.ID,
		ResponsibleLawyerID: lawyer.ID,
		CaseType:            models.CaseTypeCivil,
		Stage:               models.StageActive,
		OpenDate:            time.Now().UTC(),
		Currency:            "USD",
	}
	if err := db.Create(&cs).Error; err != nil {
		t.Fatal(err)
	}
	return cs
}

func multipartUpload(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for name, payload := range files {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="files[]"; filename="`+name+`"`)
		switch {
		case strings.HasSuffix(name, ".pdf"):
			hdr.Set("Content-Type", "application/pdf")
		case strings.HasSuffix(name, ".png"):
			hdr.Set("Content-Type", "image/png")
		default:
			hdr.Set("Content-Type", "application/octet-stream")
		}
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(payload)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf, w.FormDataContentType()
}

// Uploads record metadata keyed by the owning case; disallowed types are
// reported per item without failing the batch.
func Test_UploadToCase_MimeFilterAndMetadata(t *testing.T) {
	db := openTestDB(t)
	cs := seedCase(t, db)
	app := newTestApp(NewHandler(db, nil))

	body, ct := multipartUpload(t, map[string]string{
		"contract.pdf": "%PDF-1.4 fake",
		"evidence.png": "\x89PNG fake",
		"notes.exe":    "MZ fake",
	})
	req := httptest.NewRequest("POST", "/api/cases/"+cs.ID.String()+"/attachments", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("want 201, got %d", resp.StatusCode)
	}

	var out struct {
		Results []map[string]any `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Results) != 3 {
		t.Fatalf("want 3 per-item results, got %d", len(out.Results))
	}
	var rejected int
	for _, res := range out.Results {
		if res["name"] == "notes.exe" {
			if res["error"] == nil {
				t.Fatal("exe upload should be rejected")
			}
			rejected++
		} else if res["error"] != nil {
			t.Fatalf("unexpected error for %v: %v", res["name"], res["error"])
		}
	}
	if rejected != 1 {
		t.Fatalf("want 1 rejected item, got %d", rejected)
	}

	var rows []models.Attachment
	if err := db.Where("res_model = ? AND res_id = ?", CaseModel, cs.ID).Find(&rows).Error; err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 stored attachments, got %d", len(rows))
	}
	for _, att := range rows {
		if !strings.Contains(att.Key, cs.ID.String()) {
			t.Fatalf("object key should embed the owner id, got %q", att.Key)
		}
	}
}

func Test_UploadToCase_UnknownCase(t *testing.T) {
	db := openTestDB(t)
	app := newTestApp(NewHandler(db, nil))

	body, ct := multipartUpload(t, map[string]string{"contract.pdf": "x"})
	req := httptest.NewRequest("POST", "/api/cases/"+uuid.NewString()+"/attachments", body)
	req.Header.Set("Content-Type", ct)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}

// Signed URLs fall back to a placeholder without a configured store, and
// deletion removes the metadata row.
func Test_SignedURLAndDelete_DevMode(t *testing.T) {
	db := openTestDB(t)
	cs := seedCase(t, db)
	app := newTestApp(NewHandler(db, nil))

	att := models.Attachment{
		ResModel: CaseModel, ResID: cs.ID,
		Key: "legal.case/" + cs.ID.String() + "/contract.pdf",
		Mime: "application/pdf", Size: 12, OriginalName: "contract.pdf",
	}
	if err := db.Create(&att).Error; err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/api/attachments/"+att.ID.String()+"/signed-url", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	url, _ := out["url"].(string)
	if !strings.HasPrefix(url, "signed://") {
		t.Fatalf("dev mode should return a placeholder URL, got %q", url)
	}

	req = httptest.NewRequest("DELETE", "/api/attachments/"+att.ID.String(), nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 204 {
		t.Fatalf("want 204, got %d", resp.StatusCode)
	}

	var n int64
	if err := db.Model(&models.Attachment{}).Where("id = ?", att.ID).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("metadata should be gone, found %d", n)
	}
}
