package service

import (
	"context"
	"encoding/json"
	"fmt"

	"sellerhub/internal/model"
	"sellerhub/internal/repository"
	"sellerhub/pkg/idgen"

	"gorm.io/gorm"
)

// Notifier 订单状态通知，失败不影响业务结果
type Notifier interface {
	Notify(ctx context.Context, notes []*model.Notification) error
}

// OutboxNotifier 把通知写入 outbox 表，由 job.OutboxSender 异步投递
type OutboxNotifier struct {
	outboxRepo *repository.OutboxRepository
	topic      string
}

func NewOutboxNotifier(db *gorm.DB, topic string) *OutboxNotifier {
	return &OutboxNotifier{
		outboxRepo: repository.NewOutboxRepository(db),
		topic:      topic,
	}
}

func (n *OutboxNotifier) Notify(ctx context.Context, notes []*model.Notification) error {
	msgs := make([]*model.OutboxMessage, 0, len(notes))
	for _, note := range notes {
		payload, err := json.Marshal(note)
		if err != nil {
			return fmt.Errorf("序列化通知失败: %w", err)
		}
		msgs = append(msgs, &model.OutboxMessage{
			MessageKey: idgen.GenerateMessageKey(fmt.Sprintf("detail-order-%d", note.DetailOrderID)),
			Topic:      n.topic,
			Payload:    string(payload),
			Status:     model.OutboxStatusPending,
		})
	}
	return n.outboxRepo.Create(ctx, nil, msgs...)
}
