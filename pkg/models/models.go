package models

import (
	"time"

	"github.com/google/uuid"
)

/* =============================== Enums ================================== */

// Role defines the type of office user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// CaseType classifies a legal case.
type CaseType string

const (
	CaseTypeCivil     CaseType = "civil"
	CaseTypeCriminal  CaseType = "criminal"
	CaseTypeCorporate CaseType = "corporate"
	CaseTypeOther     CaseType = "other"
)

// CaseStage defines lifecycle stages for a case.
type CaseStage string

const (
	StageIntake CaseStage = "intake"
	StageActive CaseStage = "active"
	StageClosed CaseStage = "closed"
)

// HearingStatus defines lifecycle states for a hearing.
// Any value may be set at any time; there is no enforced transition order.
type HearingStatus string

const (
	HearingPlanned   HearingStatus = "planned"
	HearingHeld      HearingStatus = "held"
	HearingAdjourned HearingStatus = "adjourned"
	HearingCancelled HearingStatus = "cancelled"
)

// MoveType distinguishes outgoing invoices from other document kinds.
type MoveType string

const (
	MoveOutInvoice MoveType = "out_invoice"
	MoveOutRefund  MoveType = "out_refund"
)

// InvoiceState defines lifecycle states for an invoice document.
type InvoiceState string

const (
	InvoiceDraft     InvoiceState = "draft"
	InvoicePosted    InvoiceState = "posted"
	InvoiceCancelled InvoiceState = "cancelled"
)

/* =============================== Entities =============================== */

// Partner is a contact record: a person or organization the office deals
// with. The two role flags are independent; a partner may be a client, a
// lawyer, both, or neither.
type Partner struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	IsClient  bool      `gorm:"not null;default:false;index" json:"is_client"`
	IsLawyer  bool      `gorm:"not null;default:false;index" json:"is_lawyer"`
	BarNumber string    `json:"bar_number"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is a login account. A user may be linked to at most one partner
// record; that link is what maps a responsible lawyer onto a login account.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	Name         string     `json:"name"`
	PartnerID    *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"partner_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Case is the aggregate root for one legal matter.
type Case struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Reference   string    `gorm:"uniqueIndex;not null" json:"reference"`
	Description string    `json:"description"`

	// Parties
	ClientID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client              *Partner   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ResponsibleLawyerID uuid.UUID  `gorm:"type:uuid;not null;index" json:"responsible_lawyer_id"`
	ResponsibleLawyer   *Partner   `gorm:"foreignKey:ResponsibleLawyerID" json:"responsible_lawyer,omitempty"`
	ResponsibleUserID   *uuid.UUID `gorm:"type:uuid;index" json:"responsible_user_id"`
	Members             []User     `gorm:"many2many:case_members" json:"members,omitempty"`

	// Classification & lifecycle
	CaseType  CaseType   `gorm:"type:varchar(20);not null;default:'civil'" json:"case_type"`
	Stage     CaseStage  `gorm:"type:varchar(20);not null;default:'intake'" json:"stage"`
	OpenDate  time.Time  `gorm:"type:date;not null" json:"open_date"`
	CloseDate *time.Time `gorm:"type:date" json:"close_date"`

	// Billing
	Currency      string `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	FixedFeeCents int64  `gorm:"not null;default:0" json:"fixed_fee_cents"` // cents to avoid float issues

	// Relations
	Hearings []Hearing `gorm:"constraint:OnDelete:CASCADE" json:"hearings,omitempty"`
	Invoices []Invoice `gorm:"foreignKey:CaseID;constraint:OnDelete:SET NULL" json:"invoices,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Hearing is a dated event belonging to exactly one case. Hearings are
// deleted with their case.
type Hearing struct {
	ID        uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"case_id"`
	Subject   string        `gorm:"not null" json:"subject"`
	StartAt   time.Time     `gorm:"not null" json:"start_at"`
	EndAt     *time.Time    `json:"end_at"`
	Location  string        `json:"location"`
	Notes     string        `json:"notes"`
	Status    HearingStatus `gorm:"type:varchar(20);not null;default:'planned'" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ProductTemplate is the parent catalog record a billable item derives from.
type ProductTemplate struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"not null;index" json:"name"`
	Type      string    `gorm:"type:varchar(20);not null;default:'service'" json:"type"`
	Variants  []Product `gorm:"foreignKey:TemplateID" json:"variants,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a sellable variant of a template. DefaultCode is the well-known
// lookup code; unique across products when set.
type Product struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TemplateID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"template_id"`
	Template    *ProductTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
	DefaultCode *string          `gorm:"uniqueIndex:ux_product_default_code" json:"default_code"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Invoice is an accounting document. Out-invoices created for a case keep a
// back-reference to it; the link is nullable and never cascaded.
type Invoice struct {
	ID        uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Number    string        `gorm:"uniqueIndex;not null" json:"number"`
	MoveType  MoveType      `gorm:"type:varchar(20);not null;default:'out_invoice'" json:"move_type"`
	State     InvoiceState  `gorm:"type:varchar(20);not null;default:'draft'" json:"state"`
	PartnerID uuid.UUID     `gorm:"type:uuid;not null;index" json:"partner_id"`
	Partner   *Partner      `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	CaseID    *uuid.UUID    `gorm:"type:uuid;index" json:"case_id"`
	Origin    string        `json:"origin"`
	Currency  string        `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Lines     []InvoiceLine `gorm:"constraint:OnDelete:CASCADE" json:"lines,omitempty"`

	TotalCents int64     `gorm:"not null;default:0" json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InvoiceLine is one billed position on an invoice.
type InvoiceLine struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID      uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Description    string    `gorm:"not null" json:"description"`
	Quantity       int       `gorm:"not null;default:1" json:"quantity"`
	UnitPriceCents int64     `gorm:"not null" json:"unit_price_cents"`
}

// Sequence is a named, monotonically increasing counter. Prefix may contain
// the %Y placeholder, replaced with the current year on formatting.
type Sequence struct {
	Code       string `gorm:"type:varchar(40);primaryKey" json:"code"`
	Prefix     string `json:"prefix"`
	Padding    int    `gorm:"not null;default:5" json:"padding"`
	NextNumber int64  `gorm:"not null;default:1" json:"next_number"`
}

// CaseEvent is an audit log entry for important case changes.
type CaseEvent struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CaseID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"case_id"`
	ActorID   *uuid.UUID `gorm:"type:uuid;index" json:"actor_id"`
	Action    string     `gorm:"type:varchar(50);not null" json:"action"` // e.g. created, stage_changed, invoiced
	OldStage  CaseStage  `gorm:"type:varchar(20)" json:"old_stage"`
	NewStage  CaseStage  `gorm:"type:varchar(20)" json:"new_stage"`
	Note      string     `gorm:"type:text" json:"note"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Attachment is generic document metadata keyed by the owning record
// (model name + id). The blob itself lives in object storage under Key.
type Attachment struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ResModel     string    `gorm:"type:varchar(40);not null;index:idx_attachment_owner" json:"res_model"`
	ResID        uuid.UUID `gorm:"type:uuid;not null;index:idx_attachment_owner" json:"res_id"`
	Key          string    `gorm:"not null" json:"key"`
	Mime         string    `gorm:"not null" json:"mime"`
	Size         int       `gorm:"not null" json:"size"`
	OriginalName string    `json:"original_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReportDefinition binds a well-known report code to a template.
type ReportDefinition struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code         string    `gorm:"uniqueIndex;not null" json:"code"`
	Name         string    `gorm:"not null" json:"name"`
	Model        string    `gorm:"not null" json:"model"`
	TemplateName string    `gorm:"uniqueIndex;not null" json:"template_name"`
	ReportType   string    `gorm:"type:varchar(20);not null;default:'html'" json:"report_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Partner{}, &User{}, &Case{}, &Hearing{},
		&ProductTemplate{}, &Product{}, &Invoice{}, &InvoiceLine{},
		&Sequence{}, &CaseEvent{}, &Attachment{}, &ReportDefinition{},
	}
}
