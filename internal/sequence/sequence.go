package sequence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"
)

// Well-known sequence codes.
const (
	CodeCase    = "legal.case"
	CodeInvoice = "legal.invoice"
)

// Counter hands out the next value of a named sequence. Implementations must
// be safe to call from concurrent transactions.
type Counter interface {
	Next(tx *gorm.DB, code string) (string, error)
}

// Store is the database-backed Counter. Each named sequence is one row in
// the sequences table, incremented under a row lock inside the caller's
// transaction so the number commits or rolls back with the record it names.
type Store struct{}

func NewStore() *Store { return &Store{} }

var defaults = map[string]models.Sequence{
	CodeCase:    {Code: CodeCase, Prefix: "CASE/%Y/", Padding: 5},
	CodeInvoice: {Code: CodeInvoice, Prefix: "INV/%Y/", Padding: 5},
}

// Seed ensures the well-known sequence rows exist. Safe to run on every boot.
func Seed(db *gorm.DB) error {
	for _, seq := range defaults {
		row := seq
		row.NextNumber = 1
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// Next reserves and formats the next value of the sequence within tx.
// Unknown codes are provisioned lazily with an empty-prefix default; the
// insert uses ON CONFLICT DO NOTHING so two first-users cannot both create
// the row.
func (s *Store) Next(tx *gorm.DB, code string) (string, error) {
	row := models.Sequence{Code: code, Padding: 5, NextNumber: 1}
	if d, ok := defaults[code]; ok {
		row.Prefix = d.Prefix
		row.Padding = d.Padding
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return "", err
	}

	var seq models.Sequence
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "code = ?", code).Error; err != nil {
		return "", err
	}
	n := seq.NextNumber
	if err := tx.Model(&models.Sequence{}).Where("code = ?", code).
		Update("next_number", n+1).Error; err != nil {
		return "", err
	}
	return Format(seq.Prefix, seq.Padding, n), nil
}

// Format renders one sequence value. %Y in the prefix expands to the
// current year.
func Format(prefix string, padding int, n int64) string {
	p := strings.ReplaceAll(prefix, "%Y", strconv.Itoa(time.Now().Year()))
	return fmt.Sprintf("%s%0*d", p, padding, n)
}

// Fixed is a test double that returns pre-baked values in order, then keeps
// counting from the last one.
type Fixed struct {
	Values []string
	calls  int
}

func (f *Fixed) Next(_ *gorm.DB, code string) (string, error) {
	f.calls++
	if f.calls <= len(f.Values) {
		return f.Values[f.calls-1], nil
	}
	return fmt.Sprintf("%s/%05d", code, f.calls), nil
}
