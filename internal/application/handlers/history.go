package handlers

import (
	"context"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/services"
)

// HistoryHandler handles history queries and retractions.
type HistoryHandler struct {
	service *services.HistoryService
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(service *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		service: service,
	}
}

// List returns up to limit records, newest first. A limit of 0 returns all.
func (h *HistoryHandler) List(ctx context.Context, limit int) ([]entities.HistoryRecord, error) {
	return h.service.Recent(ctx, limit)
}

// Facts returns the stored facts of a subject.
func (h *HistoryHandler) Facts(ctx context.Context, name string) ([]string, error) {
	return h.service.Facts(ctx, name)
}

// Stats summarizes the history.
func (h *HistoryHandler) Stats(ctx context.Context) (entities.HistoryStats, error) {
	return h.service.Stats(ctx)
}

// Retract removes a subject from history so it can be posted again.
func (h *HistoryHandler) Retract(ctx context.Context, name, reason string) error {
	return h.service.Retract(ctx, name, reason)
}
