// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateMeRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type UserResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	Plan          string     `json:"plan"`
	PlanValue     float64    `json:"plan_value"`
	PlanStatus    string     `json:"plan_status"`
	PlanExpiresAt *time.Time `json:"plan_expires_at,omitempty"`
	LastPaymentAt *time.Time `json:"last_payment_at,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Status   string `json:"status"`
	Plan     string `json:"plan"`
	Role     string `json:"role"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		Status:        u.Status,
		Plan:          u.Plan,
		PlanValue:     u.PlanValue,
		PlanStatus:    u.PlanStatus,
		PlanExpiresAt: u.PlanExpiresAt,
		LastPaymentAt: u.LastPaymentAt,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
