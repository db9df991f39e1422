package invoices

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ImMortaLGuruji/legal-case-api/internal/sequence"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/utils"
)

// Well-known billable item for fixed-fee legal work. Shared by every case.
const (
	BillableItemCode = "LEGAL_SERV"
	BillableItemName = "Legal Services"
)

var (
	// ErrMissingFixedFee is returned when a case has no positive fixed fee.
	ErrMissingFixedFee = errors.New("set a fixed fee amount before creating an invoice")
	// ErrInvoiceExists is returned when a non-cancelled outgoing invoice
	// already exists for the case.
	ErrInvoiceExists = errors.New("an invoice already exists for this case")
)

type Service struct {
	db  *gorm.DB
	seq sequence.Counter
}

func NewService(db *gorm.DB, seq sequence.Counter) *Service {
	return &Service{db: db, seq: seq}
}

// EnsureBillableItem resolves the shared Legal Services product, provisioning
// it on first use: find the product by its well-known code; otherwise reuse
// or create the parent template, take its variant, and stamp the code on it.
// Runs outside the invoice transaction so a lost race resolves by re-lookup
// instead of aborting the caller.
func (s *Service) EnsureBillableItem(ctx context.Context) (models.Product, error) {
	db := s.db.WithContext(ctx)

	var product models.Product
	err := db.First(&product, "default_code = ?", BillableItemCode).Error
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, err
	}

	var tmpl models.ProductTemplate
	if err := db.Where(models.ProductTemplate{Name: BillableItemName}).
		Attrs(models.ProductTemplate{Type: "service"}).
		FirstOrCreate(&tmpl).Error; err != nil {
		return models.Product{}, err
	}

	// The template's single auto-derived variant.
	err = db.First(&product, "template_id = ?", tmpl.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		product = models.Product{TemplateID: tmpl.ID}
		err = db.Create(&product).Error
	}
	if err != nil {
		return models.Product{}, err
	}

	if product.DefaultCode == nil {
		code := BillableItemCode
		if err := db.Model(&product).Update("default_code", code).Error; err != nil {
			// A concurrent first-use already stamped the code on another
			// product; the unique index rejected ours. Use the winner.
			var existing models.Product
			if e := db.First(&existing, "default_code = ?", BillableItemCode).Error; e == nil {
				return existing, nil
			}
			return models.Product{}, err
		}
		product.DefaultCode = &code
		logrus.WithField("product_id", product.ID).Info("provisioned legal services billable item")
	}
	return product, nil
}

// CreateForCase builds exactly one outgoing invoice for the case's fixed fee.
// The fee guard and the one-per-case guard run under a row lock on the case,
// so two concurrent invocations serialize and the loser hits ErrInvoiceExists.
func (s *Service) CreateForCase(ctx context.Context, caseID uuid.UUID, actorID *uuid.UUID) (*models.Invoice, error) {
	product, err := s.EnsureBillableItem(ctx)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var cs models.Case
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cs, "id = ?", caseID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if cs.FixedFeeCents <= 0 {
		tx.Rollback()
		return nil, ErrMissingFixedFee
	}

	// One invoice per case (ignore cancelled).
	var existing int64
	if err := tx.Model(&models.Invoice{}).
		Where("case_id = ? AND move_type = ? AND state <> ?",
			cs.ID, models.MoveOutInvoice, models.InvoiceCancelled).
		Count(&existing).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if existing > 0 {
		tx.Rollback()
		return nil, ErrInvoiceExists
	}

	number, err := s.seq.Next(tx, sequence.CodeInvoice)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	inv := models.Invoice{
		Number:     number,
		MoveType:   models.MoveOutInvoice,
		State:      models.InvoiceDraft,
		PartnerID:  cs.ClientID,
		CaseID:     &cs.ID,
		Origin:     cs.Reference,
		Currency:   cs.Currency,
		TotalCents: cs.FixedFeeCents,
		Lines: []models.InvoiceLine{
			{
				ProductID:      product.ID,
				Description:    BillableItemName + " - " + cs.Reference,
				Quantity:       1,
				UnitPriceCents: cs.FixedFeeCents,
			},
		},
	}
	if err := tx.Create(&inv).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	utils.LogCaseEvent(ctx, s.db, cs.ID, actorID, "invoiced", cs.Stage, cs.Stage, inv.Number)
	logrus.WithFields(logrus.Fields{
		"case":    cs.Reference,
		"invoice": inv.Number,
		"cents":   inv.TotalCents,
	}).Info("invoice created")
	return &inv, nil
}
