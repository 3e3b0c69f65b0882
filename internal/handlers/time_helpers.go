package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/termine-api/internal/domain/appointment"
	"github.com/BruksfildServices01/termine-api/internal/httperr"
	"github.com/BruksfildServices01/termine-api/internal/timezone"
)

// Clock returns the current instant. Handlers take one so tests can pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// dateParam reads a required yyyy-mm-dd query parameter as midnight in loc.
// On failure the response is already written.
func dateParam(c *gin.Context, name string, loc *time.Location) (time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		httperr.FromError(c, domain.ErrMissingParameter)
		return time.Time{}, false
	}

	t, err := timezone.ParseDate(v, loc)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Ungültiges Datum.")
		return time.Time{}, false
	}
	return t, true
}

func dateRange(c *gin.Context, loc *time.Location) (time.Time, time.Time, bool) {
	start, ok := dateParam(c, "start_date", loc)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok := dateParam(c, "end_date", loc)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		httperr.FromError(c, domain.ErrInvalidRange)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
