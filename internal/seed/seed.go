// Package seed fills an empty store at startup so the API is usable without
// the admin CLI, e.g. on the memory store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BruksfildServices01/termine-api/internal/config"
	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/models"
	"github.com/BruksfildServices01/termine-api/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/termine-api/internal/usecase/appointment"
	ucUser "github.com/BruksfildServices01/termine-api/internal/usecase/user"
	"github.com/BruksfildServices01/termine-api/pkg/logging"
)

const (
	slotDayStart  = 8
	slotDayEnd    = 12
	slotLengthMin = 15
)

// Run creates the configured admin user and demo slots for the days after
// now. Existing users and slots are left alone, so it is safe on every start.
func Run(
	ctx context.Context,
	store domain.Store,
	cfg *config.Config,
	now time.Time,
	log *logging.Logger,
) error {
	if log == nil {
		log = logging.Default()
	}

	if cfg.SeedAdminUser != "" {
		_, err := ucUser.NewAddUser(store).Execute(ctx, ucUser.AddUserInput{
			UserName: cfg.SeedAdminUser,
			Password: cfg.SeedAdminPassword,
			Role:     models.RoleAdmin,
			Coupons:  cfg.SeedAdminCoupons,
		})
		switch {
		case errors.Is(err, domain.ErrUserExists):
			log.Info("seed admin already exists", "user", cfg.SeedAdminUser)
		case err != nil:
			return fmt.Errorf("seed admin %q: %w", cfg.SeedAdminUser, err)
		default:
			log.Info("seed admin created", "user", cfg.SeedAdminUser, "coupons", cfg.SeedAdminCoupons)
		}
	}

	if cfg.SeedSlotDays <= 0 {
		return nil
	}

	loc := timezone.Location(cfg.Timezone)
	provision := ucAppointment.NewProvisionSlots(store)
	today := now.In(loc)

	created := 0
	for d := 1; d <= cfg.SeedSlotDays; d++ {
		day := today.AddDate(0, 0, d)
		n, err := provision.Execute(ctx, ucAppointment.ProvisionSlotsInput{
			From:      time.Date(day.Year(), day.Month(), day.Day(), slotDayStart, 0, 0, 0, loc),
			To:        time.Date(day.Year(), day.Month(), day.Day(), slotDayEnd, 0, 0, 0, loc),
			LengthMin: slotLengthMin,
			Capacity:  cfg.SeedSlotCapacity,
		})
		if err != nil {
			return fmt.Errorf("seed slots for %s: %w", timezone.FormatDate(day, loc), err)
		}
		created += n
	}
	log.Info("seed slots created", "days", cfg.SeedSlotDays, "created", created)
	return nil
}
