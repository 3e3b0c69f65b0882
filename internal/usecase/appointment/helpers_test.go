package appointment

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/infra/memstore"
	"github.com/BruksfildServices01/termine-api/internal/models"
	"github.com/BruksfildServices01/termine-api/pkg/logging"
)

const claimTimeout = 5 * time.Minute

var (
	slotStart = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	dayBefore = slotStart.Add(-24 * time.Hour)
)

func quietObserver() Observer {
	return Observer{Logger: logging.NewWithWriter(io.Discard, "info")}
}

// newStore seeds one slot at slotStart with the given capacity and the users
// "user", "other" (one coupon each) and "admin".
func newStore(t *testing.T, capacity int) *memstore.Store {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()
	require.NoError(t, s.CreateTimeSlot(ctx, &models.TimeSlot{StartDateTime: slotStart, LengthMin: 15}, capacity))
	require.NoError(t, s.CreateUser(ctx, &models.User{UserName: "user", Coupons: 1}))
	require.NoError(t, s.CreateUser(ctx, &models.User{UserName: "other", Coupons: 1}))
	require.NoError(t, s.CreateUser(ctx, &models.User{UserName: "admin", Role: models.RoleAdmin, Coupons: 5}))
	return s
}

func addSlot(t *testing.T, s *memstore.Store, start time.Time, capacity int) {
	t.Helper()
	require.NoError(t, s.CreateTimeSlot(context.Background(), &models.TimeSlot{StartDateTime: start, LengthMin: 15}, capacity))
}

func coupons(t *testing.T, s *memstore.Store, userName string) int {
	t.Helper()
	u, err := s.FindUser(context.Background(), userName)
	require.NoError(t, err)
	return u.Coupons
}

// holdsClaim reports whether token still holds an unbooked appointment of the slot.
func holdsClaim(t *testing.T, s *memstore.Store, start time.Time, token string) bool {
	t.Helper()
	ctx := context.Background()
	var held bool
	require.NoError(t, s.Atomic(ctx, func(tx domain.Tx) error {
		slot, err := tx.FindTimeSlot(ctx, start)
		if err != nil {
			return err
		}
		_, err = tx.LockClaimed(ctx, slot.ID, token)
		held = err == nil
		return nil
	}))
	return held
}

type scriptedSource struct {
	mu     sync.Mutex
	values []string
	calls  int
}

func (s *scriptedSource) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.calls%len(s.values)]
	s.calls++
	return v, nil
}
