// Package memstore keeps the whole data set in process memory. A unit of work
// holds the store lock for its whole duration, so transactions are serial,
// and a failing unit restores the state it started from.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/models"
	"github.com/BruksfildServices01/termine-api/internal/secret"
)

type Store struct {
	mu    sync.Mutex
	state state
}

type state struct {
	nextID       uint
	slots        []models.TimeSlot
	appointments []models.Appointment
	bookings     []models.Booking
	codes        map[string]struct{}
	users        map[string]models.User
	audit        []models.AuditLog
}

func New() *Store {
	return &Store{state: state{
		codes: map[string]struct{}{},
		users: map[string]models.User{},
	}}
}

// clone copies the state deeply enough to roll back: rows are values and
// pointer fields are replaced, never written through.
func (s *state) clone() state {
	out := state{
		nextID:       s.nextID,
		slots:        append([]models.TimeSlot(nil), s.slots...),
		appointments: append([]models.Appointment(nil), s.appointments...),
		bookings:     append([]models.Booking(nil), s.bookings...),
		audit:        append([]models.AuditLog(nil), s.audit...),
		codes:        make(map[string]struct{}, len(s.codes)),
		users:        make(map[string]models.User, len(s.users)),
	}
	for k := range s.codes {
		out.codes[k] = struct{}{}
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	return out
}

func (s *state) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) Atomic(ctx context.Context, fn func(tx domain.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return (&tx{st: &s.state}).Atomic(ctx, fn)
}

// --------------------------------------------------
// Slots
// --------------------------------------------------

func (s *Store) ListFreeSlots(
	_ context.Context,
	now time.Time,
	expiredBefore time.Time,
	limit int,
) ([]domain.FreeSlot, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	free := map[uint]int64{}
	for i := range s.state.appointments {
		ap := &s.state.appointments[i]
		if domain.IsClaimable(ap, expiredBefore) {
			free[ap.TimeSlotID]++
		}
	}

	var out []domain.FreeSlot
	for _, slot := range s.state.slots {
		if !slot.StartDateTime.After(now) || free[slot.ID] == 0 {
			continue
		}
		out = append(out, domain.FreeSlot{
			StartDateTime:    slot.StartDateTime,
			LengthMin:        slot.LengthMin,
			FreeAppointments: free[slot.ID],
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDateTime.Before(out[j].StartDateTime)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateTimeSlot(
	_ context.Context,
	slot *models.TimeSlot,
	capacity int,
) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.slots {
		if existing.StartDateTime.Equal(slot.StartDateTime) {
			return domain.ErrTimeSlotExists
		}
	}

	slot.ID = s.state.id()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now()
	}
	s.state.slots = append(s.state.slots, *slot)
	for i := 0; i < capacity; i++ {
		s.state.appointments = append(s.state.appointments, models.Appointment{
			ID:         s.state.id(),
			TimeSlotID: slot.ID,
		})
	}
	return nil
}

// --------------------------------------------------
// Reports
// --------------------------------------------------

func (s *Store) ListTimeSlots(
	_ context.Context,
	from time.Time,
	to time.Time,
) ([]models.TimeSlot, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.TimeSlot
	for _, slot := range s.state.slots {
		if !slot.StartDateTime.Before(from) && slot.StartDateTime.Before(to) {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDateTime.After(out[j].StartDateTime)
	})
	return out, nil
}

func (s *Store) ListBookedAppointments(
	_ context.Context,
	timeSlotID uint,
) ([]models.Appointment, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Appointment
	for _, ap := range s.state.appointments {
		if ap.TimeSlotID == timeSlotID && ap.Booked {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (s *Store) FindBooking(
	_ context.Context,
	appointmentID uint,
	bookedBy string,
) (*models.Booking, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.state.bookings {
		if b.AppointmentID != appointmentID {
			continue
		}
		if bookedBy != "" && b.BookedBy != bookedBy {
			continue
		}
		found := b
		return &found, nil
	}
	return nil, domain.ErrBookingNotFound
}

// --------------------------------------------------
// Users
// --------------------------------------------------

func (s *Store) FindUser(_ context.Context, userName string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.state.users[userName]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.users[u.UserName]; ok {
		return domain.ErrUserExists
	}
	u.ID = s.state.id()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.state.users[u.UserName] = *u
	return nil
}

func (s *Store) SetCoupons(_ context.Context, userName string, coupons int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.state.users[userName]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Coupons = coupons
	u.UpdatedAt = time.Now()
	s.state.users[userName] = u
	return nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.state.id()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.state.audit = append(s.state.audit, *entry)
	return nil
}

func (s *Store) ListAuditLogs(
	_ context.Context,
	filter domain.AuditLogFilter,
) ([]models.AuditLog, int64, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []models.AuditLog
	for _, row := range s.state.audit {
		switch {
		case filter.UserName != "" && row.UserName != filter.UserName,
			filter.Action != "" && row.Action != filter.Action,
			filter.Entity != "" && row.Entity != filter.Entity,
			!filter.From.IsZero() && row.CreatedAt.Before(filter.From),
			!filter.To.IsZero() && !row.CreatedAt.Before(filter.To):
			continue
		}
		matches = append(matches, row)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := int64(len(matches))
	if filter.Offset >= len(matches) {
		return []models.AuditLog{}, total, nil
	}
	matches = matches[filter.Offset:]
	if filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}
	return matches, total, nil
}

// AuditLogs returns a copy of the recorded audit rows.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.AuditLog(nil), s.state.audit...)
}

// --------------------------------------------------
// Transaction handle (store lock held)
// --------------------------------------------------

type tx struct {
	st *state
}

func (t *tx) Atomic(_ context.Context, fn func(tx domain.Tx) error) error {
	snapshot := t.st.clone()
	if err := fn(t); err != nil {
		*t.st = snapshot
		return err
	}
	return nil
}

func (t *tx) FindTimeSlot(_ context.Context, start time.Time) (*models.TimeSlot, error) {
	for _, slot := range t.st.slots {
		if slot.StartDateTime.Equal(start) {
			found := slot
			return &found, nil
		}
	}
	return nil, domain.ErrTimeSlotNotFound
}

func (t *tx) LockClaimable(
	_ context.Context,
	timeSlotID uint,
	expiredBefore time.Time,
) (*models.Appointment, error) {

	var best *models.Appointment
	for i := range t.st.appointments {
		ap := &t.st.appointments[i]
		if ap.TimeSlotID != timeSlotID || !domain.IsClaimable(ap, expiredBefore) {
			continue
		}
		if best == nil || domain.ClaimOrderLess(ap, best) {
			best = ap
		}
	}
	if best == nil {
		return nil, domain.ErrNoFreeAppointment
	}
	found := *best
	return &found, nil
}

func (t *tx) LockClaimed(
	_ context.Context,
	timeSlotID uint,
	claimToken string,
) (*models.Appointment, error) {

	for _, ap := range t.st.appointments {
		if ap.TimeSlotID == timeSlotID && !ap.Booked &&
			ap.ClaimToken != nil && *ap.ClaimToken == claimToken {
			found := ap
			return &found, nil
		}
	}
	return nil, domain.ErrAppointmentNotFound
}

func (t *tx) SaveAppointment(_ context.Context, ap *models.Appointment) error {
	for i := range t.st.appointments {
		if t.st.appointments[i].ID != ap.ID {
			continue
		}
		if ap.ClaimToken != nil {
			for j := range t.st.appointments {
				other := &t.st.appointments[j]
				if j != i && other.ClaimToken != nil && *other.ClaimToken == *ap.ClaimToken {
					return secret.ErrCollision
				}
			}
		}
		t.st.appointments[i].Booked = ap.Booked
		t.st.appointments[i].ClaimToken = ap.ClaimToken
		t.st.appointments[i].ClaimedAt = ap.ClaimedAt
		return nil
	}
	return domain.ErrAppointmentNotFound
}

func (t *tx) ReleaseClaim(_ context.Context, claimToken string) (bool, error) {
	for i := range t.st.appointments {
		ap := &t.st.appointments[i]
		if !ap.Booked && ap.ClaimToken != nil && *ap.ClaimToken == claimToken {
			domain.Release(ap)
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) InsertSlotCode(_ context.Context, code *models.SlotCode) error {
	key := code.Date + "|" + code.Secret
	if _, ok := t.st.codes[key]; ok {
		return secret.ErrCollision
	}
	code.ID = t.st.id()
	t.st.codes[key] = struct{}{}
	return nil
}

func (t *tx) CreateBooking(_ context.Context, b *models.Booking) error {
	for _, existing := range t.st.bookings {
		if existing.AppointmentID == b.AppointmentID {
			return domain.ErrAppointmentNotFound
		}
	}
	b.ID = t.st.id()
	t.st.bookings = append(t.st.bookings, *b)
	return nil
}

func (t *tx) DebitCoupon(_ context.Context, userName string) error {
	u, ok := t.st.users[userName]
	if !ok || u.Coupons <= 0 {
		return domain.ErrNoCoupons
	}
	u.Coupons--
	u.UpdatedAt = time.Now()
	t.st.users[userName] = u
	return nil
}

// Compile-time check
var _ domain.Store = (*Store)(nil)
var _ domain.Tx = (*tx)(nil)
