// AngelaMos | 2026
// entity_test.go

package task

import (
	"testing"
	"time"
)

func TestFilterFor(t *testing.T) {
	now := time.Date(2026, 4, 10, 15, 30, 0, 0, time.UTC)
	day := func(d, h int) time.Time { return time.Date(2026, 4, d, h, 0, 0, 0, time.UTC) }

	tasks := map[string]Task{
		"overdue":       {DueDate: day(8, 9), TaskType: TypeOther},
		"today late":    {DueDate: day(10, 23), TaskType: TypeOnboarding},
		"tomorrow":      {DueDate: day(11, 0), TaskType: TypeFollowUp},
		"in six days":   {DueDate: day(16, 12), TaskType: TypeRecurring},
		"in eight days": {DueDate: day(18, 0), TaskType: TypeFollowUp},
		"done today":    {DueDate: day(10, 8), TaskType: TypeFollowUp, Completed: true},
	}

	tests := []struct {
		filter string
		want   []string
	}{
		{FilterToday, []string{"overdue", "today late"}},
		{FilterWeek, []string{"overdue", "today late", "tomorrow", "in six days"}},
		{FilterFollowUps, []string{"tomorrow", "in eight days"}},
		{FilterPending, []string{"overdue", "today late", "tomorrow", "in six days", "in eight days"}},
		{"", []string{"overdue", "today late", "tomorrow", "in six days", "in eight days", "done today"}},
		{"bogus", []string{"overdue", "today late", "tomorrow", "in six days", "in eight days", "done today"}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			f := FilterFor(tt.filter, now)

			want := make(map[string]bool, len(tt.want))
			for _, name := range tt.want {
				want[name] = true
			}
			for name, task := range tasks {
				if got := f.Matches(task); got != want[name] {
					t.Errorf("%s: Matches = %v, want %v", name, got, want[name])
				}
			}
		})
	}
}

func TestFilterForUsesUTCDay(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	// 22:00 local on the 10th is already the 11th in UTC.
	now := time.Date(2026, 4, 10, 22, 0, 0, 0, saoPaulo)

	f := FilterFor(FilterToday, now)
	dueUTC11th := Task{DueDate: time.Date(2026, 4, 11, 12, 0, 0, 0, time.UTC)}
	if !f.Matches(dueUTC11th) {
		t.Error("today filter should cover the whole current UTC day")
	}
}

func TestMonthlyRoutine(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := MonthlyRoutine("owner", "client-1", "Salon", from)

	if len(tasks) != 6 {
		t.Fatalf("got %d tasks, want 6", len(tasks))
	}
	if tasks[0].Title != "Post 1 of the month" || tasks[5].Title != "Monthly review request" {
		t.Errorf("titles = %q .. %q", tasks[0].Title, tasks[5].Title)
	}
	last := tasks[5].DueDate
	if want := from.AddDate(0, 0, 30); !last.Equal(want) {
		t.Errorf("last due = %s, want %s", last, want)
	}
	if *tasks[0].Description != "Recurring task for Salon" {
		t.Errorf("description = %q", *tasks[0].Description)
	}
	if tasks[0].ID == tasks[1].ID {
		t.Error("tasks share an id")
	}
}

func TestPatchApply(t *testing.T) {
	done := true
	title := "Renamed"
	task := Task{Title: "Old", TaskType: TypeOther}

	Patch{}.Apply(&task)
	if task.Title != "Old" {
		t.Fatal("empty patch changed the task")
	}

	p := Patch{Title: &title, Completed: &done}
	if p.IsEmpty() {
		t.Fatal("patch reported empty")
	}
	p.Apply(&task)
	if task.Title != "Renamed" || !task.Completed || task.TaskType != TypeOther {
		t.Errorf("task = %+v", task)
	}
}
