// AngelaMos | 2026
// recorder_test.go

package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

type stubRepo struct {
	err      error
	inserted []Entry
}

func (r *stubRepo) Insert(_ context.Context, e *Entry) error {
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, *e)
	return nil
}

func (r *stubRepo) List(context.Context, ListParams) ([]Entry, int, error) {
	return r.inserted, len(r.inserted), nil
}

func (r *stubRepo) Recent(context.Context, int) ([]Entry, error) {
	return r.inserted, nil
}

func TestRecordStoresEntry(t *testing.T) {
	repo := &stubRepo{}
	rec := NewRecorder(repo)
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	rec.now = func() time.Time { return at }

	entry, err := rec.Record(context.Background(),
		Actor{ID: "admin-1", Email: "root@rankflow.test"},
		ActionChangeRole, "user-1", "u@rankflow.test",
		nil,
	)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if entry.ID == "" || entry.ActorID != "admin-1" || entry.Action != ActionChangeRole {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Details == nil {
		t.Error("nil details should be stored as an empty object")
	}
	if !entry.CreatedAt.Equal(at) || entry.CreatedAt.Location() != time.UTC {
		t.Errorf("created_at = %v, want %v in UTC", entry.CreatedAt, at)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d entries", len(repo.inserted))
	}
}

func TestRecordFailureIsUnavailable(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  error
	}{
		{"plain error", cause},
		{"duplicate key", core.ErrDuplicateKey},
		{"already unavailable", core.Unavailable("insert audit entry", cause)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecorder(&stubRepo{err: tt.err}).Record(
				context.Background(), Actor{ID: "a"}, ActionDeleteUser, "t", "", Details{"k": 1},
			)
			if !errors.Is(err, core.ErrStoreUnavailable) {
				t.Fatalf("err = %v, want store unavailable", err)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("err = %v, should keep cause %v", err, tt.err)
			}
		})
	}
}

func TestListParamsNormalize(t *testing.T) {
	tests := []struct {
		in         ListParams
		page, size int
		offset     int
	}{
		{ListParams{}, 1, 50, 0},
		{ListParams{Page: 3, PageSize: 10}, 3, 10, 20},
		{ListParams{Page: -2, PageSize: 1000}, 1, 200, 0},
	}

	for _, tt := range tests {
		p := tt.in
		p.Normalize()
		if p.Page != tt.page || p.PageSize != tt.size || p.Offset() != tt.offset {
			t.Errorf("Normalize(%+v) = page %d size %d offset %d", tt.in, p.Page, p.PageSize, p.Offset())
		}
	}
}
