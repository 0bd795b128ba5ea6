//go:build unit || e2e

package memstore

import (
	"context"
	"slices"
	"time"

	"tutor-booking/internal/domain/booking"
	"tutor-booking/internal/domain/checkout"
	"tutor-booking/internal/domain/payment"
	"tutor-booking/internal/domain/slot"
	"tutor-booking/internal/infra"
	"tutor-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	outboxPending   = "pending"
	outboxPublished = "published"
	outboxFailed    = "failed"
)

type memTx struct {
	st    *state
	store *Store
}

func (t *memTx) Slots() shared.SlotRepository         { return &slotRepo{t} }
func (t *memTx) Bookings() shared.BookingRepository   { return &bookingRepo{t} }
func (t *memTx) Payments() shared.PaymentRepository   { return &paymentRepo{t} }
func (t *memTx) Checkouts() shared.CheckoutRepository { return &checkoutRepo{t} }
func (t *memTx) Outbox() shared.OutboxRepository      { return &outboxRepo{t} }

type slotRepo struct{ tx *memTx }

func (r *slotRepo) live(id uuid.UUID) (*slot.Slot, bool) {
	s, ok := r.tx.st.slots[id]
	if !ok || s.RetiredAt() != nil {
		return nil, false
	}
	return s, true
}

func (r *slotRepo) GetMany(_ context.Context, ids []uuid.UUID) ([]*slot.Slot, error) {
	out := make([]*slot.Slot, 0, len(ids))
	for _, id := range ids {
		s, ok := r.live(id)
		if !ok {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "slot not found", nil)
		}
		out = append(out, cloneSlot(s))
	}
	return out, nil
}

func (r *slotRepo) MarkBooked(_ context.Context, ids []uuid.UUID, bookingID uuid.UUID) error {
	if hook := r.tx.store.OnMarkBooked; hook != nil {
		hook(ids)
	}
	for _, id := range ids {
		s, ok := r.live(id)
		if !ok || !s.IsFree() {
			return infra.WrapRepoErr(infra.KindConflict, "slot no longer free", nil)
		}
	}
	for _, id := range ids {
		s := r.tx.st.slots[id]
		r.tx.st.slots[id] = slot.Reconstruct(s.ID(), s.ProviderID(), s.Date(), s.StartTime(), s.EndTime(),
			slot.StatusBooked, s.Lease(), &bookingID, nil)
	}
	return nil
}

func (r *slotRepo) WriteLease(_ context.Context, ids []uuid.UUID, lease slot.Lease) error {
	for _, id := range ids {
		s, ok := r.live(id)
		if !ok || !s.IsFree() {
			continue
		}
		r.tx.st.slots[id] = withLease(s, &lease)
	}
	return nil
}

func (r *slotRepo) ExtendLease(_ context.Context, ids []uuid.UUID, lease slot.Lease) (int64, error) {
	var n int64
	for _, id := range ids {
		s, ok := r.live(id)
		if !ok || !s.IsFree() || s.Lease() == nil || s.Lease().Token() != lease.Token() {
			continue
		}
		r.tx.st.slots[id] = withLease(s, &lease)
		n++
	}
	return n, nil
}

func (r *slotRepo) ReleaseLease(_ context.Context, ids []uuid.UUID, token uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		s, ok := r.live(id)
		if !ok || s.Lease() == nil || s.Lease().Token() != token {
			continue
		}
		r.tx.st.slots[id] = withLease(s, nil)
		n++
	}
	return n, nil
}

func (r *slotRepo) Publish(_ context.Context, slots []*slot.Slot) (int64, error) {
	var n int64
	for _, s := range slots {
		dup := false
		for _, existing := range r.tx.st.slots {
			if existing.RetiredAt() == nil && existing.ProviderID() == s.ProviderID() && existing.StartTime().Equal(s.StartTime()) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		r.tx.st.slots[s.ID()] = cloneSlot(s)
		n++
	}
	return n, nil
}

func (r *slotRepo) Reissue(_ context.Context, ids []uuid.UUID, now time.Time) ([]*slot.Slot, error) {
	fresh := make([]*slot.Slot, 0, len(ids))
	for _, id := range ids {
		s, ok := r.live(id)
		if !ok {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "slot not found", nil)
		}
		retired := now
		r.tx.st.slots[id] = slot.Reconstruct(s.ID(), s.ProviderID(), s.Date(), s.StartTime(), s.EndTime(),
			s.Status(), nil, s.BookingID(), &retired)
		ns := s.Reissue()
		r.tx.st.slots[ns.ID()] = ns
		fresh = append(fresh, cloneSlot(ns))
	}
	return fresh, nil
}

type bookingRepo struct{ tx *memTx }

func (r *bookingRepo) Create(_ context.Context, b *booking.Booking) error {
	if _, ok := r.tx.st.bookings[b.ID()]; ok {
		return infra.WrapRepoErr(infra.KindDuplicateKey, "booking exists", nil)
	}
	for _, existing := range r.tx.st.bookings {
		if existing.IntentID() == b.IntentID() {
			return infra.WrapRepoErr(infra.KindDuplicateKey, "booking for intent exists", nil)
		}
	}
	r.tx.st.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *bookingRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.tx.st.bookings[id]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "booking not found", nil)
	}
	return cloneBooking(b), nil
}

func (r *bookingRepo) UpdateStatus(_ context.Context, b *booking.Booking) error {
	if _, ok := r.tx.st.bookings[b.ID()]; !ok {
		return infra.WrapRepoErr(infra.KindNotFound, "booking not found", nil)
	}
	r.tx.st.bookings[b.ID()] = cloneBooking(b)
	return nil
}

type paymentRepo struct{ tx *memTx }

func (r *paymentRepo) Create(_ context.Context, rec *payment.Record) error {
	for _, existing := range r.tx.st.payments {
		if existing.BookingID() == rec.BookingID() {
			return infra.WrapRepoErr(infra.KindDuplicateKey, "payment for booking exists", nil)
		}
	}
	r.tx.st.payments[rec.ID()] = rec
	return nil
}

type checkoutRepo struct{ tx *memTx }

func (r *checkoutRepo) Create(_ context.Context, a *checkout.Attempt) error {
	if _, ok := r.tx.st.checkouts[a.IntentID()]; ok {
		return infra.WrapRepoErr(infra.KindDuplicateKey, "checkout exists", nil)
	}
	r.tx.st.checkouts[a.IntentID()] = cloneAttempt(a)
	return nil
}

func (r *checkoutRepo) FindByIntentIDForUpdate(_ context.Context, intentID string) (*checkout.Attempt, error) {
	a, ok := r.tx.st.checkouts[intentID]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "checkout not found", nil)
	}
	return cloneAttempt(a), nil
}

func (r *checkoutRepo) Update(_ context.Context, a *checkout.Attempt) error {
	if _, ok := r.tx.st.checkouts[a.IntentID()]; !ok {
		return infra.WrapRepoErr(infra.KindNotFound, "checkout not found", nil)
	}
	r.tx.st.checkouts[a.IntentID()] = cloneAttempt(a)
	return nil
}

func (r *checkoutRepo) ExtendLease(_ context.Context, lease slot.Lease, now time.Time) (int64, error) {
	var n int64
	for id, a := range r.tx.st.checkouts {
		cp := cloneAttempt(a)
		if cp.ExtendLease(lease, now) != nil {
			continue
		}
		r.tx.st.checkouts[id] = cp
		n++
	}
	return n, nil
}

func (r *checkoutRepo) ListLapsed(_ context.Context, now time.Time, limit int32) ([]*checkout.Attempt, error) {
	var out []*checkout.Attempt
	for _, a := range r.tx.st.checkouts {
		if a.State() != checkout.StateAwaitingPayment || a.Lease() == nil || a.Lease().ActiveAt(now) {
			continue
		}
		out = append(out, cloneAttempt(a))
	}
	slices.SortFunc(out, func(a, b *checkout.Attempt) int { return a.CreatedAt().Compare(b.CreatedAt()) })
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type outboxRepo struct{ tx *memTx }

func (r *outboxRepo) Enqueue(_ context.Context, kind, dedupeKey string, payload []byte, now time.Time) error {
	for _, row := range r.tx.st.outbox {
		if row.Kind == kind && row.DedupeKey == dedupeKey {
			return nil
		}
	}
	r.tx.st.outbox = append(r.tx.st.outbox, &OutboxRow{
		OutboxEvent: shared.OutboxEvent{
			ID:        uuid.New(),
			Kind:      kind,
			DedupeKey: dedupeKey,
			Payload:   slices.Clone(payload),
			CreatedAt: now,
		},
		Status: outboxPending,
	})
	return nil
}

func (r *outboxRepo) ClaimPending(_ context.Context, limit int32) ([]shared.OutboxEvent, error) {
	var out []shared.OutboxEvent
	for _, row := range r.tx.st.outbox {
		if row.Status != outboxPending {
			continue
		}
		out = append(out, row.OutboxEvent)
		if int32(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (r *outboxRepo) MarkPublished(_ context.Context, id uuid.UUID, now time.Time) error {
	for _, row := range r.tx.st.outbox {
		if row.ID == id {
			row.Status = outboxPublished
			row.PublishedAt = &now
			return nil
		}
	}
	return infra.WrapRepoErr(infra.KindNotFound, "outbox event not found", nil)
}

func (r *outboxRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	for _, row := range r.tx.st.outbox {
		if row.ID == id {
			row.Attempts++
			row.LastError = reason
			if row.Attempts >= 10 {
				row.Status = outboxFailed
			}
			return nil
		}
	}
	return infra.WrapRepoErr(infra.KindNotFound, "outbox event not found", nil)
}

func (r *outboxRepo) MarkRefunded(_ context.Context, id uuid.UUID, now time.Time) error {
	for _, row := range r.tx.st.outbox {
		if row.ID == id {
			if row.RefundedAt == nil {
				row.RefundedAt = &now
			}
			return nil
		}
	}
	return infra.WrapRepoErr(infra.KindNotFound, "outbox event not found", nil)
}

type commandReads struct{ store *Store }

func (c *commandReads) SlotsByIDs(_ context.Context, ids []uuid.UUID) ([]*slot.Slot, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	out := make([]*slot.Slot, 0, len(ids))
	for _, id := range ids {
		s, ok := c.store.st.slots[id]
		if !ok || s.RetiredAt() != nil {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "slot not found", nil)
		}
		out = append(out, cloneSlot(s))
	}
	return out, nil
}

func (c *commandReads) CheckoutByIntentID(_ context.Context, intentID string) (*checkout.Attempt, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	a, ok := c.store.st.checkouts[intentID]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "checkout not found", nil)
	}
	return cloneAttempt(a), nil
}

func withLease(s *slot.Slot, lease *slot.Lease) *slot.Slot {
	return slot.Reconstruct(s.ID(), s.ProviderID(), s.Date(), s.StartTime(), s.EndTime(),
		s.Status(), lease, s.BookingID(), s.RetiredAt())
}

func cloneSlot(s *slot.Slot) *slot.Slot {
	var lease *slot.Lease
	if l := s.Lease(); l != nil {
		cp := *l
		lease = &cp
	}
	return slot.Reconstruct(s.ID(), s.ProviderID(), s.Date(), s.StartTime(), s.EndTime(),
		s.Status(), lease, s.BookingID(), s.RetiredAt())
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	return booking.Reconstruct(b.ID(), b.StudentID(), b.ProviderID(), b.SlotIDs(), b.Status(),
		b.Price(), b.IntentID(), b.CreatedAt(), b.UpdatedAt(), b.CanceledAt())
}

func cloneAttempt(a *checkout.Attempt) *checkout.Attempt {
	var lease *slot.Lease
	if l := a.Lease(); l != nil {
		cp := *l
		lease = &cp
	}
	return checkout.Reconstruct(a.IntentID(), a.StudentID(), a.ProviderID(), a.SlotIDs(), a.Amount(),
		lease, a.State(), a.RejectReason(), a.BookingID(), a.CreatedAt(), a.UpdatedAt())
}
