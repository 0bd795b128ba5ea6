//go:build unit || e2e

// Package memstore is an in-memory UnitOfWork and read side. Transactions run
// one at a time under a single mutex against a copy of the state that is only
// swapped in when the callback succeeds.
package memstore

import (
	"context"
	"iter"
	"maps"
	"slices"
	"sync"
	"time"

	"tutor-booking/internal/domain/booking"
	"tutor-booking/internal/domain/checkout"
	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/infra"
	"tutor-booking/internal/usecase/queries"
	"tutor-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type OutboxRow struct {
	shared.OutboxEvent
	Status      string
	PublishedAt *time.Time
	LastError   string
}

type state struct {
	slots     map[uuid.UUID]*slot.Slot
	bookings  map[uuid.UUID]*booking.Booking
	payments  map[uuid.UUID]*payment.Record
	checkouts map[string]*checkout.Attempt
	outbox    []*OutboxRow
}

func (s *state) clone() *state {
	out := &state{
		slots:     maps.Clone(s.slots),
		bookings:  maps.Clone(s.bookings),
		payments:  maps.Clone(s.payments),
		checkouts: maps.Clone(s.checkouts),
		outbox:    make([]*OutboxRow, len(s.outbox)),
	}
	for i, row := range s.outbox {
		cp := *row
		out.outbox[i] = &cp
	}
	return out
}

type Store struct {
	mu sync.Mutex
	st *state

	// OnMarkBooked runs inside MarkBooked before slots are checked.
	OnMarkBooked func(ids []uuid.UUID)
}

func New() *Store {
	return &Store{st: &state{
		slots:     map[uuid.UUID]*slot.Slot{},
		bookings:  map[uuid.UUID]*booking.Booking{},
		payments:  map[uuid.UUID]*payment.Record{},
		checkouts: map[string]*checkout.Attempt{},
	}}
}

var (
	_ shared.UnitOfWork             = (*Store)(nil)
	_ queries.AvailabilityReadStore = (*Store)(nil)
	_ queries.BookingViewRepo       = (*Store)(nil)
	_ queries.CheckoutViewRepo      = (*Store)(nil)
)

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(ctx, &memTx{st: work, store: s}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) CommandReads() shared.CommandReads {
	return &commandReads{store: s}
}

// Seed inserts slots directly, bypassing publish rules.
func (s *Store) Seed(slots ...*slot.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range slots {
		s.st.slots[sl.ID()] = cloneSlot(sl)
	}
}

func (s *Store) Slot(id uuid.UUID) *slot.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.st.slots[id]
	if !ok {
		return nil
	}
	return cloneSlot(sl)
}

func (s *Store) Bookings() []*booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*booking.Booking, 0, len(s.st.bookings))
	for _, b := range s.st.bookings {
		out = append(out, cloneBooking(b))
	}
	return out
}

func (s *Store) Payments() []*payment.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(maps.Values(s.st.payments))
}

func (s *Store) Checkout(intentID string) *checkout.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.checkouts[intentID]
	if !ok {
		return nil
	}
	return cloneAttempt(a)
}

func (s *Store) Outbox() []OutboxRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]OutboxRow, len(s.st.outbox))
	for i, row := range s.st.outbox {
		out[i] = *row
	}
	return out
}

func (s *Store) OutboxOfKind(kind string) []OutboxRow {
	var out []OutboxRow
	for _, row := range s.Outbox() {
		if row.Kind == kind {
			out = append(out, row)
		}
	}
	return out
}

// Read side

func (s *Store) StreamFree(ctx context.Context, providerID uuid.UUID, date time.Time) iter.Seq2[*slot.Slot, error] {
	return func(yield func(*slot.Slot, error) bool) {
		s.mu.Lock()
		var matched []*slot.Slot
		for _, sl := range s.st.slots {
			if sl.ProviderID() == providerID && sl.Date().Equal(date) && sl.IsFree() {
				matched = append(matched, cloneSlot(sl))
			}
		}
		s.mu.Unlock()

		slices.SortFunc(matched, func(a, b *slot.Slot) int { return a.StartTime().Compare(b.StartTime()) })
		for _, sl := range matched {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(sl, nil) {
				return
			}
		}
	}
}

func (s *Store) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.st.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "booking not found", nil)
	}
	view := &queries.BookingView{
		ID:          b.ID(),
		StudentID:   b.StudentID(),
		ProviderID:  b.ProviderID(),
		Status:      b.Status().String(),
		AmountCents: b.Price().Amount(),
		Currency:    b.Price().Currency(),
		IntentID:    b.IntentID(),
		CreatedAt:   b.CreatedAt(),
		UpdatedAt:   b.UpdatedAt(),
		CanceledAt:  b.CanceledAt(),
	}
	for _, sid := range b.SlotIDs() {
		if sl, ok := s.st.slots[sid]; ok {
			view.Slots = append(view.Slots, queries.BookedWindow{SlotID: sid, StartTime: sl.StartTime(), EndTime: sl.EndTime()})
		}
	}
	return view, nil
}

func (s *Store) FindByStudentAfter(_ context.Context, studentID uuid.UUID, afterTime *time.Time, afterID *uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*booking.Booking
	for _, b := range s.st.bookings {
		if b.StudentID() == studentID {
			all = append(all, b)
		}
	}
	slices.SortFunc(all, func(a, b *booking.Booking) int {
		if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
			return c
		}
		return compareUUID(b.ID(), a.ID())
	})

	var out []*queries.BookingListItem
	for _, b := range all {
		if afterTime != nil && afterID != nil {
			c := b.CreatedAt().Compare(*afterTime)
			if c > 0 || (c == 0 && compareUUID(b.ID(), *afterID) >= 0) {
				continue
			}
		}
		item := &queries.BookingListItem{
			ID:          b.ID(),
			ProviderID:  b.ProviderID(),
			Status:      b.Status().String(),
			AmountCents: b.Price().Amount(),
			Currency:    b.Price().Currency(),
			CreatedAt:   b.CreatedAt(),
		}
		ids := b.SlotIDs()
		if first, ok := s.st.slots[ids[0]]; ok {
			item.StartTime = first.StartTime()
		}
		if last, ok := s.st.slots[ids[len(ids)-1]]; ok {
			item.EndTime = last.EndTime()
		}
		out = append(out, item)
		if int32(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) FindByIntentID(_ context.Context, intentID string) (*queries.CheckoutView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.checkouts[intentID]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "checkout not found", nil)
	}
	view := &queries.CheckoutView{
		IntentID:       a.IntentID(),
		StudentID:      a.StudentID(),
		ProviderID:     a.ProviderID(),
		SlotIDs:        a.SlotIDs(),
		AmountCents:    a.Amount().Amount(),
		Currency:       a.Amount().Currency(),
		State:          a.State().String(),
		BookingID:      a.BookingID(),
		CreatedAt:      a.CreatedAt(),
		UpdatedAt:      a.UpdatedAt(),
		LeaseExpiresAt: nil,
	}
	if r := a.RejectReason(); r != nil {
		reason := r.String()
		view.RejectReason = &reason
	}
	if l := a.Lease(); l != nil {
		exp := l.ExpiresAt()
		view.LeaseExpiresAt = &exp
	}
	return view, nil
}

func compareUUID(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}
