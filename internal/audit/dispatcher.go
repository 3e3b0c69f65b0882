package audit

import (
	"context"
	"sync"

	"github.com/BruksfildServices01/termine-api/pkg/logging"
)

const (
	ActionClaimCreated   = "claim_created"
	ActionClaimReleased  = "claim_released"
	ActionBookingCreated = "booking_created"
	ActionReportExported = "report_exported"
)

type Event struct {
	UserName string
	Action   string
	Entity   string
	EntityID *uint
	Metadata any
}

// Dispatcher writes audit events off the request path. A full queue drops
// events; auditing never fails a request.
type Dispatcher struct {
	logger *Logger
	log    *logging.Logger
	queue  chan Event
	done   chan struct{}
	once   sync.Once
}

func NewDispatcher(logger *Logger, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Default()
	}
	d := &Dispatcher{
		logger: logger,
		log:    log,
		queue:  make(chan Event, 100),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		if err := d.logger.Log(context.Background(), ev); err != nil {
			d.log.Error("audit write failed", "action", ev.Action, "error", err)
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("audit queue full, dropping event", "action", ev.Action)
	}
}

// Close stops accepting events and waits for queued ones to be written.
// Dispatch must not be called after Close.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() { close(d.queue) })
	<-d.done
}
