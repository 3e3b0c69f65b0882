package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
)

type ListFreeSlots struct {
	store        domain.Store
	claimTimeout time.Duration
	limit        int
}

func NewListFreeSlots(
	store domain.Store,
	claimTimeout time.Duration,
	limit int,
) *ListFreeSlots {
	return &ListFreeSlots{
		store:        store,
		claimTimeout: claimTimeout,
		limit:        limit,
	}
}

// Execute lists future slots with their free capacity. Stale claims count
// as free.
func (uc *ListFreeSlots) Execute(
	ctx context.Context,
	now time.Time,
) ([]domain.FreeSlot, error) {

	if uc.limit <= 0 {
		return []domain.FreeSlot{}, nil
	}

	slots, err := uc.store.ListFreeSlots(
		ctx,
		now,
		domain.ExpiredBefore(now, uc.claimTimeout),
		uc.limit,
	)
	if err != nil {
		return nil, err
	}
	if slots == nil {
		slots = []domain.FreeSlot{}
	}
	return slots, nil
}
