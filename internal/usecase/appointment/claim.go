package appointment

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/BruksfildServices01/termine-api/internal/audit"
	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/secret"
)

// ======================================================
// INPUT
// ======================================================

type ClaimAppointmentInput struct {
	StartDateTime time.Time
	UserName      string
	Coupons       int
	Now           time.Time
}

// ======================================================
// USE CASE
// ======================================================

type ClaimAppointment struct {
	store        domain.Store
	tokens       secret.Source
	claimTimeout time.Duration
	obs          Observer
}

func NewClaimAppointment(
	store domain.Store,
	tokens secret.Source,
	claimTimeout time.Duration,
	obs Observer,
) *ClaimAppointment {
	return &ClaimAppointment{
		store:        store,
		tokens:       tokens,
		claimTimeout: claimTimeout,
		obs:          obs,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *ClaimAppointment) Execute(
	ctx context.Context,
	in ClaimAppointmentInput,
) (string, error) {

	ctx, span := tracer.Start(ctx, "appointment.claim")
	defer span.End()
	span.SetAttributes(attribute.String("termine.start_date_time", in.StartDateTime.String()))
	defer uc.obs.since("claim", time.Now())

	token, apID, err := uc.claim(ctx, in)
	uc.obs.Metrics.ObserveClaim(err)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	uc.obs.logger().Info("claim created",
		"user", in.UserName,
		"start_date_time", in.StartDateTime,
		"appointment_id", apID,
	)
	uc.obs.Audit.Dispatch(audit.Event{
		UserName: in.UserName,
		Action:   audit.ActionClaimCreated,
		Entity:   "appointment",
		EntityID: &apID,
	})
	return token, nil
}

func (uc *ClaimAppointment) claim(
	ctx context.Context,
	in ClaimAppointmentInput,
) (string, uint, error) {

	// --------------------------------------------------
	// 1️⃣ Preconditions
	// --------------------------------------------------
	if in.Coupons <= 0 {
		return "", 0, domain.ErrNoCoupons
	}
	if in.StartDateTime.Before(in.Now) {
		return "", 0, domain.ErrStartInPast
	}

	var (
		token string
		apID  uint
	)
	err := uc.store.Atomic(ctx, func(tx domain.Tx) error {

		// --------------------------------------------------
		// 2️⃣ Slot by exact start
		// --------------------------------------------------
		slot, err := tx.FindTimeSlot(ctx, in.StartDateTime)
		if err != nil {
			return err
		}

		// --------------------------------------------------
		// 3️⃣ Lock one free appointment (stale claims first)
		// --------------------------------------------------
		ap, err := tx.LockClaimable(
			ctx,
			slot.ID,
			domain.ExpiredBefore(in.Now, uc.claimTimeout),
		)
		if err != nil {
			return err
		}

		// --------------------------------------------------
		// 4️⃣ Mark it with a fresh token
		// --------------------------------------------------
		token, err = secret.Unique(uc.tokens, func(candidate string) error {
			return tx.Atomic(ctx, func(tx domain.Tx) error {
				if err := domain.Claim(ap, candidate, in.Now); err != nil {
					return err
				}
				return tx.SaveAppointment(ctx, ap)
			})
		})
		apID = ap.ID
		return err
	})
	if err != nil {
		return "", 0, err
	}
	return token, apID, nil
}
