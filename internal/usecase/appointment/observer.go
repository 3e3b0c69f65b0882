package appointment

import (
	"time"

	"go.opentelemetry.io/otel"

	"github.com/BruksfildServices01/termine-api/internal/audit"
	"github.com/BruksfildServices01/termine-api/internal/observability/metrics"
	"github.com/BruksfildServices01/termine-api/pkg/logging"
)

var tracer = otel.Tracer("termine.usecase.appointment")

// Observer bundles the side channels every use case reports to. All fields
// are optional.
type Observer struct {
	Audit   *audit.Dispatcher
	Metrics *metrics.BookingMetrics
	Logger  *logging.Logger
}

func (o Observer) logger() *logging.Logger {
	if o.Logger == nil {
		return logging.Default()
	}
	return o.Logger
}

func (o Observer) since(operation string, start time.Time) {
	o.Metrics.ObserveDuration(operation, time.Since(start).Seconds())
}
