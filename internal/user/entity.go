// AngelaMos | 2026
// entity.go

package user

import (
	"slices"
	"time"
)

type User struct {
	ID            string     `db:"id"`
	Name          string     `db:"name"`
	Email         string     `db:"email"`
	PasswordHash  string     `db:"password_hash"`
	Role          string     `db:"role"`
	Status        string     `db:"status"`
	Plan          string     `db:"plan"`
	PlanValue     float64    `db:"plan_value"`
	PlanStatus    string     `db:"plan_status"`
	PlanExpiresAt *time.Time `db:"plan_expires_at"`
	LastPaymentAt *time.Time `db:"last_payment_at"`
	LastLoginAt   *time.Time `db:"last_login_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

func (u *User) IsBlocked() bool {
	return u.Status == StatusBlocked
}

const (
	RoleUser       = "USER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

const (
	StatusActive  = "active"
	StatusPaused  = "paused"
	StatusBlocked = "blocked"
)

const (
	PlanFree       = "free"
	PlanStarter    = "starter"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

const (
	PlanStatusActive   = "active"
	PlanStatusOverdue  = "overdue"
	PlanStatusCanceled = "canceled"
)

var (
	Roles        = []string{RoleUser, RoleAdmin, RoleSuperAdmin}
	Statuses     = []string{StatusActive, StatusPaused, StatusBlocked}
	Plans        = []string{PlanFree, PlanStarter, PlanPro, PlanEnterprise}
	PlanStatuses = []string{PlanStatusActive, PlanStatusOverdue, PlanStatusCanceled}
)

func ValidRole(role string) bool             { return slices.Contains(Roles, role) }
func ValidStatus(status string) bool         { return slices.Contains(Statuses, status) }
func ValidPlan(plan string) bool             { return slices.Contains(Plans, plan) }
func ValidPlanStatus(planStatus string) bool { return slices.Contains(PlanStatuses, planStatus) }

// Patch is a partial update: nil fields are left untouched.
type Patch struct {
	Name          *string
	Email         *string
	PasswordHash  *string
	Role          *string
	Status        *string
	Plan          *string
	PlanValue     *float64
	PlanStatus    *string
	PlanExpiresAt *time.Time
	LastPaymentAt *time.Time
	LastLoginAt   *time.Time
}

func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Apply copies the set fields onto u.
func (p Patch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.Plan != nil {
		u.Plan = *p.Plan
	}
	if p.PlanValue != nil {
		u.PlanValue = *p.PlanValue
	}
	if p.PlanStatus != nil {
		u.PlanStatus = *p.PlanStatus
	}
	if p.PlanExpiresAt != nil {
		u.PlanExpiresAt = p.PlanExpiresAt
	}
	if p.LastPaymentAt != nil {
		u.LastPaymentAt = p.LastPaymentAt
	}
	if p.LastLoginAt != nil {
		u.LastLoginAt = p.LastLoginAt
	}
}

// Aggregate holds tenant-wide counters for the admin dashboard.
type Aggregate struct {
	Total        int            `db:"total"`
	Active       int            `db:"active"`
	Blocked      int            `db:"blocked"`
	MRR          float64        `db:"mrr"`
	OverdueCount int            `db:"overdue_count"`
	ByPlan       map[string]int `db:"-"`
}
