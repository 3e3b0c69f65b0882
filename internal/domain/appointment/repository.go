package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/termine-api/internal/models"
)

// Tx is the handle a unit of work runs on. Everything done through one Tx
// commits or rolls back together.
type Tx interface {
	// Atomic runs fn in a nested unit (savepoint). A failing fn undoes only
	// its own writes.
	Atomic(ctx context.Context, fn func(tx Tx) error) error

	// -------- TimeSlot --------
	FindTimeSlot(
		ctx context.Context,
		start time.Time,
	) (*models.TimeSlot, error)

	// -------- Appointment (claim / book) --------

	// LockClaimable selects and row-locks one free appointment of the slot,
	// skipping rows other transactions hold. ErrNoFreeAppointment if none.
	LockClaimable(
		ctx context.Context,
		timeSlotID uint,
		expiredBefore time.Time,
	) (*models.Appointment, error)

	// LockClaimed row-locks the unbooked appointment holding claimToken,
	// regardless of claim age.
	LockClaimed(
		ctx context.Context,
		timeSlotID uint,
		claimToken string,
	) (*models.Appointment, error)

	SaveAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// ReleaseClaim reports whether an appointment was released.
	ReleaseClaim(
		ctx context.Context,
		claimToken string,
	) (bool, error)

	// -------- Booking --------

	// InsertSlotCode returns secret.ErrCollision when (date, secret) exists.
	InsertSlotCode(
		ctx context.Context,
		code *models.SlotCode,
	) error

	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	// DebitCoupon takes one coupon from the user, ErrNoCoupons if none left.
	DebitCoupon(
		ctx context.Context,
		userName string,
	) error
}

type Store interface {
	Atomic(ctx context.Context, fn func(tx Tx) error) error

	// -------- Slots --------
	ListFreeSlots(
		ctx context.Context,
		now time.Time,
		expiredBefore time.Time,
		limit int,
	) ([]FreeSlot, error)

	CreateTimeSlot(
		ctx context.Context,
		slot *models.TimeSlot,
		capacity int,
	) error

	// -------- Reports --------

	// ListTimeSlots returns slots with from <= start < to, latest first.
	ListTimeSlots(
		ctx context.Context,
		from time.Time,
		to time.Time,
	) ([]models.TimeSlot, error)

	ListBookedAppointments(
		ctx context.Context,
		timeSlotID uint,
	) ([]models.Appointment, error)

	// FindBooking looks up the booking of an appointment. A non-empty
	// bookedBy restricts the match to that user.
	FindBooking(
		ctx context.Context,
		appointmentID uint,
		bookedBy string,
	) (*models.Booking, error)

	// -------- Users --------
	FindUser(
		ctx context.Context,
		userName string,
	) (*models.User, error)

	CreateUser(
		ctx context.Context,
		u *models.User,
	) error

	SetCoupons(
		ctx context.Context,
		userName string,
		coupons int,
	) error

	// -------- Audit --------
	CreateAuditLog(
		ctx context.Context,
		entry *models.AuditLog,
	) error

	// ListAuditLogs returns one page of matching rows, newest first, and the
	// total number of matches.
	ListAuditLogs(
		ctx context.Context,
		filter AuditLogFilter,
	) ([]models.AuditLog, int64, error)
}

// AuditLogFilter narrows an audit listing. Zero fields match everything;
// To is exclusive.
type AuditLogFilter struct {
	UserName string
	Action   string
	Entity   string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}
