// AngelaMos | 2026
// entity.go

package audit

import (
	"database/sql/driver"
	"time"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

const (
	ActionBlockUser     = "block_user"
	ActionPauseUser     = "pause_user"
	ActionUnblockUser   = "unblock_user"
	ActionChangeRole    = "change_role"
	ActionChangePlan    = "change_plan"
	ActionImpersonate   = "impersonate"
	ActionCreateUser    = "create_user"
	ActionUpdateProfile = "update_profile"
	ActionResetPassword = "reset_password"
	ActionDeleteUser    = "delete_user"
)

// Entry is an append-only record of a privileged action. Actor and target
// are id/email snapshots, not foreign keys.
type Entry struct {
	ID          string    `db:"id"           json:"id"`
	ActorID     string    `db:"actor_id"     json:"actor_id"`
	ActorEmail  string    `db:"actor_email"  json:"actor_email"`
	Action      string    `db:"action"       json:"action"`
	TargetID    string    `db:"target_id"    json:"target_id"`
	TargetEmail string    `db:"target_email" json:"target_email"`
	Details     Details   `db:"details"      json:"details"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}

type Details map[string]any

func (d Details) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return core.JSONValue(map[string]any(d))
}

func (d *Details) Scan(src any) error {
	m := map[string]any{}
	if err := core.ScanJSON(src, &m); err != nil {
		return err
	}
	*d = m
	return nil
}

// Actor identifies who performed an action.
type Actor struct {
	ID    string
	Email string
}

type ListParams struct {
	Page     int
	PageSize int
	Action   string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
