// AngelaMos | 2026
// recorder.go

package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

// Recorder appends audit entries synchronously. A failed write is always
// reported as the store being unavailable so the caller fails the request.
type Recorder struct {
	repo Repository
	now  func() time.Time
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

func (r *Recorder) Record(
	ctx context.Context,
	actor Actor,
	action, targetID, targetEmail string,
	details Details,
) (*Entry, error) {
	if details == nil {
		details = Details{}
	}

	entry := &Entry{
		ID:          uuid.New().String(),
		ActorID:     actor.ID,
		ActorEmail:  actor.Email,
		Action:      action,
		TargetID:    targetID,
		TargetEmail: targetEmail,
		Details:     details,
		CreatedAt:   r.now().UTC(),
	}

	if err := r.repo.Insert(ctx, entry); err != nil {
		core.SetSpanError(ctx, err)
		if errors.Is(err, core.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, core.Unavailable("record audit entry", err)
	}

	return entry, nil
}
