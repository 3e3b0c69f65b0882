package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/termine-api/internal/audit"
	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
)

type ReleaseClaim struct {
	store domain.Store
	obs   Observer
}

func NewReleaseClaim(
	store domain.Store,
	obs Observer,
) *ReleaseClaim {
	return &ReleaseClaim{
		store: store,
		obs:   obs,
	}
}

// Execute frees the appointment held by claimToken. Unknown, already
// released or booked tokens are a no-op.
func (uc *ReleaseClaim) Execute(
	ctx context.Context,
	claimToken string,
	userName string,
) error {

	ctx, span := tracer.Start(ctx, "appointment.release")
	defer span.End()
	defer uc.obs.since("release", time.Now())

	if claimToken == "" {
		uc.obs.Metrics.ObserveRelease(false, nil)
		return nil
	}

	var released bool
	err := uc.store.Atomic(ctx, func(tx domain.Tx) error {
		var err error
		released, err = tx.ReleaseClaim(ctx, claimToken)
		return err
	})
	uc.obs.Metrics.ObserveRelease(released, err)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if released {
		uc.obs.Audit.Dispatch(audit.Event{
			UserName: userName,
			Action:   audit.ActionClaimReleased,
			Entity:   "appointment",
		})
	}
	return nil
}
