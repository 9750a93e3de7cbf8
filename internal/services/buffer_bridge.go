package services

import (
	"context"
	"encoding/json"

	"github.com/focushub/backend/domain"
	"github.com/focushub/backend/internal/infrastructure/buffer"
	"github.com/focushub/backend/usecase"
)

type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	item := buffer.Item{
		ID:        task.ID,
		UserID:    task.UserID,
		Entity:    buffer.EntityTask,
		Operation: operation,
		Data:      payload,
		Priority:  4,
	}
	return b.processor.BufferOperation(ctx, item)
}

func (b *BufferBridge) BufferStats(ctx context.Context, userID string, stats *domain.Stats) error {
	if b.processor == nil || stats == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	item := buffer.Item{
		UserID:    userID,
		Entity:    buffer.EntityStats,
		Operation: buffer.OperationUpdate,
		Data:      payload,
		Priority:  3,
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
