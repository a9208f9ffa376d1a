// AngelaMos | 2026
// service_test.go

package task_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agenciasuportapoio350-spec/part2/internal/client"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/memstore"
	"github.com/agenciasuportapoio350-spec/part2/internal/task"
)

func TestCreateResolvesOwnedNames(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := task.NewService(store.Tasks(), store.Clients(), store.Leads())

	owned := &client.Client{ID: "c-1", UserID: "owner", Name: "Salon"}
	foreign := &client.Client{ID: "c-2", UserID: "someone-else", Name: "Hidden"}
	for _, c := range []*client.Client{owned, foreign} {
		if err := store.Clients().Create(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	due := time.Now().Add(time.Hour)
	mine, err := svc.Create(ctx, "owner", task.CreateTaskRequest{
		Title: "Call", DueDate: due, ClientID: &owned.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if mine.TaskType != task.TypeOther {
		t.Errorf("type = %q, want default other", mine.TaskType)
	}
	if mine.ClientName == nil || *mine.ClientName != "Salon" {
		t.Errorf("client name = %v", mine.ClientName)
	}

	other, err := svc.Create(ctx, "owner", task.CreateTaskRequest{
		Title: "Peek", DueDate: due, ClientID: &foreign.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if other.ClientName != nil {
		t.Errorf("foreign client name leaked: %q", *other.ClientName)
	}

	if _, err := svc.Create(ctx, "owner", task.CreateTaskRequest{
		Title: "Bad", DueDate: due, TaskType: "chore",
	}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("invalid type = %v", err)
	}
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	now := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	svc := task.NewService(store.Tasks(), store.Clients(), store.Leads()).
		WithClock(func() time.Time { return now })

	for _, req := range []task.CreateTaskRequest{
		{Title: "today", DueDate: now.Add(2 * time.Hour)},
		{Title: "next week", DueDate: now.AddDate(0, 0, 10), TaskType: task.TypeFollowUp},
		{Title: "tomorrow", DueDate: now.AddDate(0, 0, 1)},
	} {
		if _, err := svc.Create(ctx, "owner", req); err != nil {
			t.Fatal(err)
		}
	}

	today, err := svc.List(ctx, "owner", task.FilterToday)
	if err != nil || len(today) != 1 || today[0].Title != "today" {
		t.Fatalf("today = %+v, %v", today, err)
	}

	all, err := svc.List(ctx, "owner", "")
	if err != nil || len(all) != 3 {
		t.Fatalf("all = %+v, %v", all, err)
	}
	if all[0].Title != "today" || all[2].Title != "next week" {
		t.Errorf("not ordered by due date: %q, %q, %q", all[0].Title, all[1].Title, all[2].Title)
	}

	none, err := svc.List(ctx, "nobody", task.FilterPending)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("empty listing = %#v, %v", none, err)
	}

	done := true
	if _, err := svc.Update(ctx, today[0].ID, "owner", task.Patch{Completed: &done}); err != nil {
		t.Fatal(err)
	}
	followUps, err := svc.List(ctx, "owner", task.FilterFollowUps)
	if err != nil || len(followUps) != 1 {
		t.Fatalf("followups = %+v, %v", followUps, err)
	}
	pending, err := svc.List(ctx, "owner", task.FilterPending)
	if err != nil || len(pending) != 2 {
		t.Fatalf("pending = %+v, %v", pending, err)
	}
}
