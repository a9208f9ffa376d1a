// AngelaMos | 2026
// entity.go

package client

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

type Client struct {
	ID            string    `db:"id"             json:"id"`
	UserID        string    `db:"user_id"        json:"user_id"`
	Name          string    `db:"name"           json:"name"`
	Email         *string   `db:"email"          json:"email"`
	Phone         *string   `db:"phone"          json:"phone"`
	Company       *string   `db:"company"        json:"company"`
	ContractValue float64   `db:"contract_value" json:"contract_value"`
	Notes         *string   `db:"notes"          json:"notes"`
	Checklist     Checklist `db:"checklist"      json:"checklist"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"     json:"updated_at"`
}

type ChecklistItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type Checklist []ChecklistItem

func (c Checklist) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return core.JSONValue([]ChecklistItem(c))
}

func (c *Checklist) Scan(src any) error {
	items := []ChecklistItem{}
	if err := core.ScanJSON(src, &items); err != nil {
		return err
	}
	*c = items
	return nil
}

// Toggle flips the item with the given id and reports whether it exists.
func (c Checklist) Toggle(itemID string) bool {
	for i := range c {
		if c[i].ID == itemID {
			c[i].Completed = !c[i].Completed
			return true
		}
	}
	return false
}

var onboardingSteps = []string{
	"Profile review",
	"SEO description",
	"Services listing",
	"Photos",
	"First post",
	"Review request",
}

// DefaultChecklist is the onboarding checklist every new client starts with.
func DefaultChecklist() Checklist {
	items := make(Checklist, 0, len(onboardingSteps))
	for _, title := range onboardingSteps {
		items = append(items, ChecklistItem{ID: uuid.New().String(), Title: title})
	}
	return items
}

type CreateClientRequest struct {
	Name          string  `json:"name"           validate:"required,min=1,max=200"`
	Email         *string `json:"email"          validate:"omitempty,max=255"`
	Phone         *string `json:"phone"          validate:"omitempty,max=50"`
	Company       *string `json:"company"        validate:"omitempty,max=200"`
	ContractValue float64 `json:"contract_value" validate:"gte=0"`
	Notes         *string `json:"notes"`
}
