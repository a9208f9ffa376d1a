// AngelaMos | 2026
// dto.go

package admin

import (
	"time"

	"github.com/agenciasuportapoio350-spec/part2/internal/user"
)

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type PlanRequest struct {
	Plan          string     `json:"plan"            validate:"required"`
	PlanValue     float64    `json:"plan_value"      validate:"gte=0"`
	PlanStatus    string     `json:"plan_status"     validate:"required"`
	PlanExpiresAt *time.Time `json:"plan_expires_at"`
}

type CreateUserRequest struct {
	Name      string  `json:"name"       validate:"required,min=1,max=100"`
	Email     string  `json:"email"      validate:"required,email,max=255"`
	Password  string  `json:"password"   validate:"required,max=128"`
	Role      string  `json:"role"`
	Plan      string  `json:"plan"`
	PlanValue float64 `json:"plan_value" validate:"gte=0"`
}

type ProfileRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
}

type PasswordResetRequest struct {
	NewPassword string `json:"new_password" validate:"required,max=128"`
}

type SessionUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse is returned when an impersonation session starts or ends.
type SessionResponse struct {
	AccessToken     string      `json:"access_token"`
	TokenType       string      `json:"token_type"`
	ExpiresAt       time.Time   `json:"expires_at"`
	User            SessionUser `json:"user"`
	IsImpersonating bool        `json:"is_impersonating"`
	OriginalUserID  string      `json:"original_user_id,omitempty"`
}

type CheckResponse struct {
	IsAdmin      bool   `json:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	Role         string `json:"role"`
}

type StatsResponse struct {
	TotalUsers   int            `json:"total_users"`
	ActiveUsers  int            `json:"active_users"`
	BlockedUsers int            `json:"blocked_users"`
	UsersByPlan  map[string]int `json:"users_by_plan"`
	TotalClients int            `json:"total_clients"`
	TotalLeads   int            `json:"total_leads"`
	TotalTasks   int            `json:"total_tasks"`
	MRR          float64        `json:"mrr"`
	OverdueCount int            `json:"overdue_count"`
}

const (
	EventNewUser   = "new_user"
	EventNewClient = "new_client"
	EventAudit     = "audit"
)

type Event struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Email     string    `json:"email,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type UserStats struct {
	ClientsCount  int     `json:"clients_count"`
	LeadsCount    int     `json:"leads_count"`
	TasksCount    int     `json:"tasks_count"`
	PaymentsTotal float64 `json:"payments_total"`
}

type UserDetailResponse struct {
	user.UserResponse
	Stats UserStats `json:"stats"`
}

type MessageResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}
