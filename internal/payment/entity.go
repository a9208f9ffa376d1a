// AngelaMos | 2026
// entity.go

package payment

import (
	"slices"
	"time"
)

const (
	TypeOneTime   = "one_time"
	TypeRecurring = "recurring"
)

var Types = []string{TypeOneTime, TypeRecurring}

func ValidType(t string) bool {
	return slices.Contains(Types, t)
}

type Payment struct {
	ID          string    `db:"id"           json:"id"`
	UserID      string    `db:"user_id"      json:"user_id"`
	ClientID    string    `db:"client_id"    json:"client_id"`
	ClientName  *string   `db:"client_name"  json:"client_name"`
	Description string    `db:"description"  json:"description"`
	Amount      float64   `db:"amount"       json:"amount"`
	PaymentType string    `db:"payment_type" json:"payment_type"`
	DueDate     time.Time `db:"due_date"     json:"due_date"`
	Paid        bool      `db:"paid"         json:"paid"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}

type Patch struct {
	Description *string
	Amount      *float64
	PaymentType *string
	DueDate     *time.Time
	Paid        *bool
}

func (p Patch) IsEmpty() bool {
	return p.Description == nil && p.Amount == nil && p.PaymentType == nil &&
		p.DueDate == nil && p.Paid == nil
}

func (p Patch) Apply(pm *Payment) {
	if p.Description != nil {
		pm.Description = *p.Description
	}
	if p.Amount != nil {
		pm.Amount = *p.Amount
	}
	if p.PaymentType != nil {
		pm.PaymentType = *p.PaymentType
	}
	if p.DueDate != nil {
		pm.DueDate = *p.DueDate
	}
	if p.Paid != nil {
		pm.Paid = *p.Paid
	}
}

// MonthTotals splits the amounts due in one calendar month by paid state.
type MonthTotals struct {
	Paid    float64 `db:"paid"`
	Pending float64 `db:"pending"`
}

type CreatePaymentRequest struct {
	ClientID    string    `json:"client_id"    validate:"required"`
	Description string    `json:"description"  validate:"required,min=1,max=500"`
	Amount      float64   `json:"amount"       validate:"gte=0"`
	PaymentType string    `json:"payment_type" validate:"omitempty,oneof=one_time recurring"`
	DueDate     time.Time `json:"due_date"     validate:"required"`
	Paid        bool      `json:"paid"`
}

type UpdatePaymentRequest struct {
	Description *string    `json:"description"  validate:"omitempty,min=1,max=500"`
	Amount      *float64   `json:"amount"       validate:"omitempty,gte=0"`
	PaymentType *string    `json:"payment_type" validate:"omitempty,oneof=one_time recurring"`
	DueDate     *time.Time `json:"due_date"`
	Paid        *bool      `json:"paid"`
}

func (r UpdatePaymentRequest) Patch() Patch {
	return Patch{
		Description: r.Description,
		Amount:      r.Amount,
		PaymentType: r.PaymentType,
		DueDate:     r.DueDate,
		Paid:        r.Paid,
	}
}
