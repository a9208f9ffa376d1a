// AngelaMos | 2026
// entity.go

package task

import (
	"slices"
	"time"
)

const (
	TypeOnboarding = "onboarding"
	TypeRecurring  = "recurring"
	TypeFollowUp   = "follow_up"
	TypeOther      = "other"
)

var Types = []string{TypeOnboarding, TypeRecurring, TypeFollowUp, TypeOther}

func ValidType(t string) bool {
	return slices.Contains(Types, t)
}

type Task struct {
	ID          string    `db:"id"          json:"id"`
	UserID      string    `db:"user_id"     json:"user_id"`
	Title       string    `db:"title"       json:"title"`
	Description *string   `db:"description" json:"description"`
	TaskType    string    `db:"task_type"   json:"task_type"`
	DueDate     time.Time `db:"due_date"    json:"due_date"`
	Completed   bool      `db:"completed"   json:"completed"`
	ClientID    *string   `db:"client_id"   json:"client_id"`
	ClientName  *string   `db:"client_name" json:"client_name"`
	LeadID      *string   `db:"lead_id"     json:"lead_id"`
	LeadName    *string   `db:"lead_name"   json:"lead_name"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
}

type Patch struct {
	Title       *string
	Description *string
	TaskType    *string
	DueDate     *time.Time
	Completed   *bool
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.TaskType == nil &&
		p.DueDate == nil && p.Completed == nil
}

func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.TaskType != nil {
		t.TaskType = *p.TaskType
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

const (
	FilterToday     = "today"
	FilterWeek      = "week"
	FilterFollowUps = "followups"
	FilterPending   = "pending"
)

// Filter narrows a task listing. Zero values match everything.
type Filter struct {
	OpenOnly  bool
	DueBefore *time.Time
	TaskType  string
}

// Matches reports whether t passes the filter.
func (f Filter) Matches(t Task) bool {
	if f.OpenOnly && t.Completed {
		return false
	}
	if f.DueBefore != nil && !t.DueDate.Before(*f.DueBefore) {
		return false
	}
	if f.TaskType != "" && t.TaskType != f.TaskType {
		return false
	}
	return true
}

// FilterFor resolves a named listing filter against now. Due dates up to
// the end of the relevant UTC day are included; unknown names match all.
func FilterFor(name string, now time.Time) Filter {
	startOfTomorrow := startOfDay(now).AddDate(0, 0, 1)

	switch name {
	case FilterToday:
		return Filter{OpenOnly: true, DueBefore: &startOfTomorrow}
	case FilterWeek:
		cutoff := startOfTomorrow.AddDate(0, 0, 7)
		return Filter{OpenOnly: true, DueBefore: &cutoff}
	case FilterFollowUps:
		return Filter{OpenOnly: true, TaskType: TypeFollowUp}
	case FilterPending:
		return Filter{OpenOnly: true}
	default:
		return Filter{}
	}
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

type CreateTaskRequest struct {
	Title       string    `json:"title"       validate:"required,min=1,max=200"`
	Description *string   `json:"description"`
	TaskType    string    `json:"task_type"   validate:"omitempty,oneof=onboarding recurring follow_up other"`
	DueDate     time.Time `json:"due_date"    validate:"required"`
	ClientID    *string   `json:"client_id"`
	LeadID      *string   `json:"lead_id"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	TaskType    *string    `json:"task_type"   validate:"omitempty,oneof=onboarding recurring follow_up other"`
	DueDate     *time.Time `json:"due_date"`
	Completed   *bool      `json:"completed"`
}

func (r UpdateTaskRequest) Patch() Patch {
	return Patch{
		Title:       r.Title,
		Description: r.Description,
		TaskType:    r.TaskType,
		DueDate:     r.DueDate,
		Completed:   r.Completed,
	}
}
