package service

import (
	"context"

	"go.uber.org/zap"

	"task-tracker/internal/logger"
	"task-tracker/internal/metrics"
	"task-tracker/internal/model"
)

// AuditLogStore persists audit entries.
type AuditLogStore interface {
	Append(ctx context.Context, entry *model.Log) error
}

// AuditService writes one immutable log row per audited mutation.
type AuditService struct {
	store  AuditLogStore
	logger *zap.Logger
}

func NewAuditService(store AuditLogStore, log *zap.Logger) *AuditService {
	return &AuditService{store: store, logger: log}
}

// Append records action on entity/entityID by actorID. An empty description
// is stored as NULL.
func (s *AuditService) Append(ctx context.Context, action model.LogAction, entity string, entityID uint, actorID *uint, description string) error {
	entry := model.Log{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		ActorID:  actorID,
	}
	if description != "" {
		entry.Description = &description
	}

	log := logger.FromContext(ctx, s.logger)
	if err := s.store.Append(ctx, &entry); err != nil {
		metrics.IncrementAuditFailure(entity, string(action))
		log.Error("audit append failed",
			zap.String("entity", entity),
			zap.Uint("entity_id", entityID),
			zap.String("action", string(action)),
			zap.Error(err),
		)
		return err
	}

	metrics.IncrementAuditEntry(entity, string(action))
	log.Debug("audit entry written",
		zap.Uint("log_id", entry.ID),
		zap.String("entity", entity),
		zap.Uint("entity_id", entityID),
		zap.String("action", string(action)),
	)
	return nil
}
