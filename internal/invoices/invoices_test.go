package invoices

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ImMortaLGuruji/legal-case-api/internal/sequence"
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
	if err := sequence.Seed(db); err != nil {
		t.Fatalf("seed sequences: %v", err)
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

// seedCase inserts a client, a lawyer, and a case billed at feeCents.
func seedCase(t *testing.T, db *gorm.DB, feeCents int64) models.Case {
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
		FixedFeeCents:       feeCents,
	}
	if err := db.Create(&cs).Error; err != nil {
		t.Fatal(err)
	}
	return cs
}

// Invoicing a case with a fee produces one posted-ready draft whose single
// line carries the fee and whose partner is the case client.
func Test_CreateForCase_BuildsDraftFromFee(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, sequence.NewStore())
	cs := seedCase(t, db, 10000)

	inv, err := svc.CreateForCase(context.Background(), cs.ID, nil)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if inv.PartnerID != cs.ClientID {
		t.Fatalf("invoice partner should be the case client, got %s", inv.PartnerID)
	}
	if inv.CaseID == nil || *inv.CaseID != cs.ID {
		t.Fatalf("invoice not linked to the case: %v", inv.CaseID)
	}
	if inv.State != models.InvoiceDraft || inv.MoveType != models.MoveOutInvoice {
		t.Fatalf("want draft out_invoice, got %s/%s", inv.State, inv.MoveType)
	}
	if inv.Origin != cs.Reference {
		t.Fatalf("origin should reference the case, got %q", inv.Origin)
	}
	if !strings.HasPrefix(inv.Number, "INV/") {
		t.Fatalf("invoice number should come from the INV sequence, got %q", inv.Number)
	}
	if inv.TotalCents != 10000 {
		t.Fatalf("want total 10000, got %d", inv.TotalCents)
	}

	if len(inv.Lines) != 1 {
		t.Fatalf("want exactly one line, got %d", len(inv.Lines))
	}
	line := inv.Lines[0]
	if line.Quantity != 1 || line.UnitPriceCents != 10000 {
		t.Fatalf("want qty 1 at 10000, got %d at %d", line.Quantity, line.UnitPriceCents)
	}
	if !strings.Contains(line.Description, cs.Reference) {
		t.Fatalf("line description should mention the case, got %q", line.Description)
	}
}

// A second invoice for the same case is rejected while the first is live.
func Test_CreateForCase_RejectsDuplicate(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, sequence.NewStore())
	cs := seedCase(t, db, 5000)

	if _, err := svc.CreateForCase(context.Background(), cs.ID, nil); err != nil {
		t.Fatalf("first invoice: %v", err)
	}
	_, err := svc.CreateForCase(context.Background(), cs.ID, nil)
	if !errors.Is(err, ErrInvoiceExists) {
		t.Fatalf("want ErrInvoiceExists, got %v", err)
	}

	var n int64
	if err := db.Model(&models.Invoice{}).Where("case_id = ?", cs.ID).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("duplicate attempt must not create a row, found %d", n)
	}
}

// Cancelling the live invoice frees the case for re-invoicing.
func Test_CreateForCase_AllowsReinvoiceAfterCancel(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, sequence.NewStore())
	cs := seedCase(t, db, 5000)

	first, err := svc.CreateForCase(context.Background(), cs.ID, nil)
	if err != nil {
		t.Fatalf("first invoice: %v", err)
	}
	if err := db.Model(&models.Invoice{}).Where("id = ?", first.ID).
		Update("state", models.InvoiceCancelled).Error; err != nil {
		t.Fatal(err)
	}

	second, err := svc.CreateForCase(context.Background(), cs.ID, nil)
	if err != nil {
		t.Fatalf("re-invoice after cancel: %v", err)
	}
	if second.Number == first.Number {
		t.Fatalf("numbers must not repeat, both %q", first.Number)
	}
}

// A case without a fee cannot be invoiced.
func Test_CreateForCase_RequiresFixedFee(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, sequence.NewStore())
	cs := seedCase(t, db, 0)

	_, err := svc.CreateForCase(context.Background(), cs.ID, nil)
	if !errors.Is(err, ErrMissingFixedFee) {
		t.Fatalf("want ErrMissingFixedFee, got %v", err)
	}

	var n int64
	if err := db.Model(&models.Invoice{}).Where("case_id = ?", cs.ID).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("no invoice should exist, found %d", n)
	}
}

// The billable service item is provisioned once and shared across cases.
func Test_EnsureBillableItem_SingleSharedProduct(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, sequence.NewStore())

	a := seedCase(t, db, 1000)
	b := seedCase(t, db, 2000)

	if _, err := svc.CreateForCase(context.Background(), a.ID, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateForCase(context.Background(), b.ID, nil); err != nil {
		t.Fatal(err)
	}

	var products []models.Product
	if err := db.Where("default_code = ?", BillableItemCode).Find(&products).Error; err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 {
		t.Fatalf("want one %s product, got %d", BillableItemCode, len(products))
	}

	// Calling the provisioner again must stay idempotent.
	p1, err := svc.EnsureBillableItem(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	p2, err := svc.EnsureBillableItem(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p1.ID != p2.ID {
		t.Fatalf("provisioner returned different products: %s vs %s", p1.ID, p2.ID)
	}

	var templates int64
	if err := db.Model(&models.ProductTemplate{}).
		Where("name = ?", BillableItemName).Count(&templates).Error; err != nil {
		t.Fatal(err)
	}
	if templates != 1 {
		t.Fatalf("want one template, got %d", templates)
	}
}
