package queries

import (
	"context"
	"time"

	"tutor-booking/internal/infra"
	"tutor-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errs.New("resource not found")
	ErrNotVisible    = errs.New("resource not visible to user")
	ErrInvalidCursor = errs.New("invalid cursor")
)

// Read models (DTO for read side)
type BookingView struct {
	ID          uuid.UUID      `json:"id"`
	StudentID   uuid.UUID      `json:"student_id"`
	ProviderID  uuid.UUID      `json:"provider_id"`
	Status      string         `json:"status"`
	AmountCents int64          `json:"amount_cents"`
	Currency    string         `json:"currency"`
	IntentID    string         `json:"intent_id"`
	Slots       []BookedWindow `json:"slots"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CanceledAt  *time.Time     `json:"canceled_at,omitempty"`
}

type BookedWindow struct {
	SlotID    uuid.UUID `json:"slot_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type BookingListItem struct {
	ID          uuid.UUID `json:"id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	Status      string    `json:"status"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
}

type BookingQueries interface {
	GetByID(ctx context.Context, actorID, id uuid.UUID) (*BookingView, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID, after *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
}

type BookingViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	// FindByStudentAfter lists newest first, strictly older than (afterTime, afterID) when given.
	FindByStudentAfter(ctx context.Context, studentID uuid.UUID, afterTime *time.Time, afterID *uuid.UUID, limit int32) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	repo BookingViewRepo
}

func NewBookingQueries(repo BookingViewRepo) BookingQueries {
	return &bookingQueriesImpl{repo: repo}
}

// GetByID only shows a booking to the student who owns it or the provider who teaches it.
func (q *bookingQueriesImpl) GetByID(ctx context.Context, actorID, id uuid.UUID) (*BookingView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if view.StudentID != actorID && view.ProviderID != actorID {
		return nil, ErrNotVisible
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByStudent(ctx context.Context, studentID uuid.UUID, after *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var afterTime *time.Time
	var afterID *uuid.UUID
	if after != nil && after.After != "" {
		t, id, err := DecodeAfterCursor(after.After)
		if err != nil {
			return nil, nil, errs.Mark(err, ErrInvalidCursor)
		}
		afterTime, afterID = &t, &id
	}

	// fetch one extra row to know whether another page exists
	items, err := q.repo.FindByStudentAfter(ctx, studentID, afterTime, afterID, int32(limit+1))
	if err != nil {
		return nil, nil, err
	}
	if len(items) <= limit {
		return items, nil, nil
	}

	items = items[:limit]
	last := items[len(items)-1]
	return items, &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}, nil
}

func notFoundOr(err error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(err, ErrNotFound)
	}
	return err
}
