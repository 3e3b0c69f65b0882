package audit

import (
	"context"
	"encoding/json"

	"github.com/BruksfildServices01/termine-api/internal/models"
)

// Sink persists audit rows. Both stores implement it.
type Sink interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

type Logger struct {
	sink Sink
}

func New(sink Sink) *Logger {
	return &Logger{sink: sink}
}

func (l *Logger) Log(ctx context.Context, ev Event) error {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	return l.sink.CreateAuditLog(ctx, &models.AuditLog{
		UserName: ev.UserName,
		Action:   ev.Action,
		Entity:   ev.Entity,
		EntityID: ev.EntityID,
		Metadata: metaJSON,
	})
}
