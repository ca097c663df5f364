package ingest

import (
	"context"

	"github.com/Sokol111/mqtt-event-ingestor/internal/store"
	"github.com/Sokol111/mqtt-event-ingestor/pkg/persistence"
)

// Gateway durably stores accepted events.
type Gateway interface {
	// Commit persists e in its own transaction and sets e.ID on success.
	Commit(ctx context.Context, e *Event) error
}

type txGateway struct {
	txManager persistence.TxManager
	repo      store.EventRepository
}

func NewGateway(txManager persistence.TxManager, repo store.EventRepository) Gateway {
	return &txGateway{txManager: txManager, repo: repo}
}

func (g *txGateway) Commit(ctx context.Context, e *Event) error {
	result, err := g.txManager.WithTransaction(ctx, func(txCtx context.Context) (any, error) {
		return g.repo.Insert(txCtx, toEntity(e))
	})
	if err != nil {
		return err
	}
	e.ID = result.(int64)
	return nil
}

func toEntity(e *Event) *store.EventEntity {
	return &store.EventEntity{
		Topic:     e.Topic,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Timestamp: e.Timestamp,
	}
}
