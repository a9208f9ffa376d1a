// AngelaMos | 2026
// entity.go

package lead

import (
	"slices"
	"time"
)

const (
	StageNew       = "new_lead"
	StageContacted = "contacted"
	StageMeeting   = "meeting"
	StageProposal  = "proposal"
	StageWon       = "won"
	StageLost      = "lost"
)

var Stages = []string{
	StageNew, StageContacted, StageMeeting, StageProposal, StageWon, StageLost,
}

func ValidStage(s string) bool {
	return slices.Contains(Stages, s)
}

type Lead struct {
	ID            string     `db:"id"             json:"id"`
	UserID        string     `db:"user_id"        json:"user_id"`
	Name          string     `db:"name"           json:"name"`
	Email         *string    `db:"email"          json:"email"`
	Phone         *string    `db:"phone"          json:"phone"`
	Company       *string    `db:"company"        json:"company"`
	Stage         string     `db:"stage"          json:"stage"`
	ContractValue float64    `db:"contract_value" json:"contract_value"`
	NextContact   *time.Time `db:"next_contact"   json:"next_contact"`
	Reminder      *string    `db:"reminder"       json:"reminder"`
	Notes         *string    `db:"notes"          json:"notes"`
	CreatedAt     time.Time  `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"     json:"updated_at"`
}

// InPipeline reports whether the lead still counts toward pipeline value.
func (l Lead) InPipeline() bool {
	return l.Stage != StageLost
}

type Patch struct {
	Name          *string
	Email         *string
	Phone         *string
	Company       *string
	Stage         *string
	ContractValue *float64
	NextContact   *time.Time
	Reminder      *string
	Notes         *string
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil &&
		p.Company == nil && p.Stage == nil && p.ContractValue == nil &&
		p.NextContact == nil && p.Reminder == nil && p.Notes == nil
}

func (p Patch) Apply(l *Lead) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Email != nil {
		l.Email = p.Email
	}
	if p.Phone != nil {
		l.Phone = p.Phone
	}
	if p.Company != nil {
		l.Company = p.Company
	}
	if p.Stage != nil {
		l.Stage = *p.Stage
	}
	if p.ContractValue != nil {
		l.ContractValue = *p.ContractValue
	}
	if p.NextContact != nil {
		l.NextContact = p.NextContact
	}
	if p.Reminder != nil {
		l.Reminder = p.Reminder
	}
	if p.Notes != nil {
		l.Notes = p.Notes
	}
}

type CreateLeadRequest struct {
	Name          string     `json:"name"           validate:"required,min=1,max=200"`
	Email         *string    `json:"email"          validate:"omitempty,max=255"`
	Phone         *string    `json:"phone"          validate:"omitempty,max=50"`
	Company       *string    `json:"company"        validate:"omitempty,max=200"`
	Stage         string     `json:"stage"          validate:"omitempty,oneof=new_lead contacted meeting proposal won lost"`
	ContractValue float64    `json:"contract_value" validate:"gte=0"`
	NextContact   *time.Time `json:"next_contact"`
	Reminder      *string    `json:"reminder"`
	Notes         *string    `json:"notes"`
}

type UpdateLeadRequest struct {
	Name          *string    `json:"name"           validate:"omitempty,min=1,max=200"`
	Email         *string    `json:"email"          validate:"omitempty,max=255"`
	Phone         *string    `json:"phone"          validate:"omitempty,max=50"`
	Company       *string    `json:"company"        validate:"omitempty,max=200"`
	Stage         *string    `json:"stage"          validate:"omitempty,oneof=new_lead contacted meeting proposal won lost"`
	ContractValue *float64   `json:"contract_value" validate:"omitempty,gte=0"`
	NextContact   *time.Time `json:"next_contact"`
	Reminder      *string    `json:"reminder"`
	Notes         *string    `json:"notes"`
}

func (r UpdateLeadRequest) Patch() Patch {
	return Patch{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Company:       r.Company,
		Stage:         r.Stage,
		ContractValue: r.ContractValue,
		NextContact:   r.NextContact,
		Reminder:      r.Reminder,
		Notes:         r.Notes,
	}
}
