package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/models"
	"github.com/BruksfildServices01/termine-api/internal/secret"
)

const pgUniqueViolation = "23505"

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) Atomic(
	ctx context.Context,
	fn func(tx domain.Tx) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

// --------------------------------------------------
// Slots
// --------------------------------------------------

func (r *AppointmentGormRepository) ListFreeSlots(
	ctx context.Context,
	now time.Time,
	expiredBefore time.Time,
	limit int,
) ([]domain.FreeSlot, error) {

	var slots []domain.FreeSlot
	if err := r.db.WithContext(ctx).
		Table("time_slots").
		Select("time_slots.start_date_time, time_slots.length_min, count(appointments.id) AS free_appointments").
		Joins("JOIN appointments ON appointments.time_slot_id = time_slots.id").
		Where("time_slots.start_date_time > ?", now).
		Where("appointments.booked = ?", false).
		Where("(appointments.claim_token IS NULL OR appointments.claimed_at < ?)", expiredBefore).
		Group("time_slots.start_date_time, time_slots.length_min").
		Order("time_slots.start_date_time ASC").
		Limit(limit).
		Scan(&slots).Error; err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *AppointmentGormRepository) CreateTimeSlot(
	ctx context.Context,
	slot *models.TimeSlot,
	capacity int,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(slot).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrTimeSlotExists
			}
			return err
		}

		if capacity <= 0 {
			return nil
		}
		aps := make([]models.Appointment, capacity)
		for i := range aps {
			aps[i].TimeSlotID = slot.ID
		}
		return tx.Create(&aps).Error
	})
}

// --------------------------------------------------
// Reports
// --------------------------------------------------

func (r *AppointmentGormRepository) ListTimeSlots(
	ctx context.Context,
	from time.Time,
	to time.Time,
) ([]models.TimeSlot, error) {

	var slots []models.TimeSlot
	if err := r.db.WithContext(ctx).
		Where("start_date_time >= ? AND start_date_time < ?", from, to).
		Order("start_date_time DESC").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *AppointmentGormRepository) ListBookedAppointments(
	ctx context.Context,
	timeSlotID uint,
) ([]models.Appointment, error) {

	var aps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where("time_slot_id = ? AND booked = ?", timeSlotID, true).
		Order("id ASC").
		Find(&aps).Error; err != nil {
		return nil, err
	}
	return aps, nil
}

func (r *AppointmentGormRepository) FindBooking(
	ctx context.Context,
	appointmentID uint,
	bookedBy string,
) (*models.Booking, error) {

	q := r.db.WithContext(ctx).Where("appointment_id = ?", appointmentID)
	if bookedBy != "" {
		q = q.Where("booked_by = ?", bookedBy)
	}

	var b models.Booking
	if err := q.Take(&b).Error; err != nil {
		return nil, notFound(err, domain.ErrBookingNotFound)
	}
	return &b, nil
}

// --------------------------------------------------
// Users
// --------------------------------------------------

func (r *AppointmentGormRepository) FindUser(
	ctx context.Context,
	userName string,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Where("user_name = ?", userName).
		Take(&u).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &u, nil
}

func (r *AppointmentGormRepository) CreateUser(
	ctx context.Context,
	u *models.User,
) error {

	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return err
	}
	return nil
}

func (r *AppointmentGormRepository) SetCoupons(
	ctx context.Context,
	userName string,
	coupons int,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_name = ?", userName).
		Update("coupons", coupons)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *AppointmentGormRepository) CreateAuditLog(
	ctx context.Context,
	entry *models.AuditLog,
) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AppointmentGormRepository) ListAuditLogs(
	ctx context.Context,
	filter domain.AuditLogFilter,
) ([]models.AuditLog, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter.UserName != "" {
		q = q.Where("user_name = ?", filter.UserName)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.Entity != "" {
		q = q.Where("entity = ?", filter.Entity)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at < ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// --------------------------------------------------
// Transaction handle
// --------------------------------------------------

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) Atomic(
	ctx context.Context,
	fn func(tx domain.Tx) error,
) error {
	// gorm turns a transaction inside a transaction into a savepoint
	return t.db.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		return fn(&gormTx{db: inner})
	})
}

func (t *gormTx) FindTimeSlot(
	ctx context.Context,
	start time.Time,
) (*models.TimeSlot, error) {

	var slot models.TimeSlot
	if err := t.db.WithContext(ctx).
		Where("start_date_time = ?", start).
		Take(&slot).Error; err != nil {
		return nil, notFound(err, domain.ErrTimeSlotNotFound)
	}
	return &slot, nil
}

func (t *gormTx) LockClaimable(
	ctx context.Context,
	timeSlotID uint,
	expiredBefore time.Time,
) (*models.Appointment, error) {

	// SKIP LOCKED: a concurrent claimer moves on to the next free row
	// instead of waiting for ours and then finding it taken.
	var ap models.Appointment
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("time_slot_id = ? AND booked = ?", timeSlotID, false).
		Where("(claim_token IS NULL OR claimed_at < ?)", expiredBefore).
		Order("claim_token DESC NULLS LAST").
		Take(&ap).Error; err != nil {
		return nil, notFound(err, domain.ErrNoFreeAppointment)
	}
	return &ap, nil
}

func (t *gormTx) LockClaimed(
	ctx context.Context,
	timeSlotID uint,
	claimToken string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("time_slot_id = ? AND booked = ? AND claim_token = ?", timeSlotID, false, claimToken).
		Take(&ap).Error; err != nil {
		return nil, notFound(err, domain.ErrAppointmentNotFound)
	}
	return &ap, nil
}

func (t *gormTx) SaveAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if err := t.db.WithContext(ctx).
		Model(ap).
		Select("booked", "claim_token", "claimed_at").
		Updates(ap).Error; err != nil {
		if isUniqueViolation(err) {
			return secret.ErrCollision
		}
		return err
	}
	return nil
}

func (t *gormTx) ReleaseClaim(
	ctx context.Context,
	claimToken string,
) (bool, error) {

	res := t.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("booked = ? AND claim_token = ?", false, claimToken).
		Updates(map[string]any{"claim_token": nil, "claimed_at": nil})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (t *gormTx) InsertSlotCode(
	ctx context.Context,
	code *models.SlotCode,
) error {

	if err := t.db.WithContext(ctx).Create(code).Error; err != nil {
		if isUniqueViolation(err) {
			return secret.ErrCollision
		}
		return err
	}
	return nil
}

func (t *gormTx) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return t.db.WithContext(ctx).Create(b).Error
}

func (t *gormTx) DebitCoupon(
	ctx context.Context,
	userName string,
) error {

	res := t.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_name = ? AND coupons > 0", userName).
		UpdateColumn("coupons", gorm.Expr("coupons - ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNoCoupons
	}
	return nil
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

func notFound(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Compile-time check
var _ domain.Store = (*AppointmentGormRepository)(nil)
var _ domain.Tx = (*gormTx)(nil)
