package services

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// Auditor is fire-and-forget: Record never fails the caller.
type Auditor interface {
	Record(ctx context.Context, a *domain.Audit)
}

type AuditLogger struct {
	store repository.Store
	log   logrus.FieldLogger
}

func NewAuditLogger(store repository.Store, log logrus.FieldLogger) *AuditLogger {
	return &AuditLogger{store: store, log: log}
}

func (l *AuditLogger) Record(ctx context.Context, a *domain.Audit) {
	a.OldValues = domain.Snapshot(a.OldValues)
	a.NewValues = domain.Snapshot(a.NewValues)
	if err := l.store.Audits().Create(ctx, a); err != nil {
		l.log.WithError(err).WithFields(logrus.Fields{
			"entity_kind": a.EntityKind,
			"entity_id":   a.EntityID,
			"event":       a.Event,
		}).Warn("Failed to write audit record")
	}
}

func orderAudit(actorID string, order *domain.Order, event domain.AuditEvent, before, after domain.JSONMap) *domain.Audit {
	return &domain.Audit{
		ActorID:    actorID,
		EntityKind: domain.EntityOrder,
		EntityID:   strconv.FormatUint(order.ID, 10),
		Event:      event,
		OldValues:  before,
		NewValues:  after,
	}
}

var _ Auditor = (*AuditLogger)(nil)
