package appointment

import (
	"context"
	"errors"
	"time"

	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/models"
)

type ProvisionSlotsInput struct {
	From      time.Time
	To        time.Time
	LengthMin int
	Capacity  int
}

type ProvisionSlots struct {
	store domain.Store
}

func NewProvisionSlots(store domain.Store) *ProvisionSlots {
	return &ProvisionSlots{store: store}
}

// Execute creates back-to-back slots of LengthMin starting at From, the last
// one ending no later than To, each with Capacity appointments. Slots that
// already exist are skipped. It returns the number created.
func (uc *ProvisionSlots) Execute(
	ctx context.Context,
	in ProvisionSlotsInput,
) (int, error) {

	if in.LengthMin <= 0 || in.Capacity <= 0 || !in.To.After(in.From) {
		return 0, domain.ErrInvalidRange
	}

	step := time.Duration(in.LengthMin) * time.Minute
	created := 0
	for cur := in.From; !cur.Add(step).After(in.To); cur = cur.Add(step) {
		err := uc.store.CreateTimeSlot(ctx, &models.TimeSlot{
			StartDateTime: cur,
			LengthMin:     in.LengthMin,
		}, in.Capacity)
		if errors.Is(err, domain.ErrTimeSlotExists) {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}
