package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sellerhub/internal/infrastructure/chat"
	"sellerhub/internal/infrastructure/mq"
	"sellerhub/internal/model"
	"sellerhub/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sender 把一条 outbox 消息投递到外部
type Sender interface {
	Send(ctx context.Context, msg *model.OutboxMessage) error
}

// KafkaSender 原样投递 JSON 载荷，key 为消息 key
type KafkaSender struct {
	producer *mq.Producer
}

func NewKafkaSender(producer *mq.Producer) *KafkaSender {
	return &KafkaSender{producer: producer}
}

func (s *KafkaSender) Name() string { return "kafka" }

func (s *KafkaSender) Send(_ context.Context, msg *model.OutboxMessage) error {
	return s.producer.SendMessage(msg.Topic, msg.MessageKey, msg.Payload)
}

// ChatSender 把通知转成文本推送到聊天频道
type ChatSender struct {
	client *chat.Client
}

func NewChatSender(client *chat.Client) *ChatSender {
	return &ChatSender{client: client}
}

func (s *ChatSender) Name() string { return "chat" }

func (s *ChatSender) Send(ctx context.Context, msg *model.OutboxMessage) error {
	var note model.Notification
	if err := json.Unmarshal([]byte(msg.Payload), &note); err != nil {
		return fmt.Errorf("解析通知失败: %w", err)
	}
	return s.client.Post(ctx, note.Text())
}

// LogSender 没有配置任何外部通道时只记日志
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.Named("notification")}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(_ context.Context, msg *model.OutboxMessage) error {
	s.log.Info("订单通知", zap.String("key", msg.MessageKey), zap.String("payload", msg.Payload))
	return nil
}

// multiSender 逐个通道投递，成功的通道记在 msg.Delivered 上，
// 重试时只补发失败的通道，每个通道至少一次
type multiSender []Sender

func (m multiSender) Send(ctx context.Context, msg *model.OutboxMessage) error {
	var errs []error
	for i, s := range m {
		name := sinkName(i, s)
		if msg.DeliveredTo(name) {
			continue
		}
		if err := s.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		msg.MarkDelivered(name)
	}
	return errors.Join(errs...)
}

func sinkName(i int, s Sender) string {
	if n, ok := s.(interface{ Name() string }); ok && n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("sink%d", i)
}

// Senders 组合多个通道，只有一个时直接返回
func Senders(senders ...Sender) Sender {
	if len(senders) == 1 {
		return senders[0]
	}
	return multiSender(senders)
}

// ============================================================================
// OutboxSender
// ============================================================================

type OutboxSender struct {
	outboxRepo *repository.OutboxRepository
	sender     Sender
	log        *zap.Logger
	stopCh     chan struct{}
	interval   time.Duration
	batchSize  int
	maxRetry   int
}

func NewOutboxSender(db *gorm.DB, sender Sender, log *zap.Logger, interval time.Duration, maxRetry int) *OutboxSender {
	return &OutboxSender{
		outboxRepo: repository.NewOutboxRepository(db),
		sender:     sender,
		log:        log.Named("outbox_sender"),
		stopCh:     make(chan struct{}),
		interval:   interval,
		batchSize:  100,
		maxRetry:   maxRetry,
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	s.log.Info("消息发送任务启动", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("收到停止信号，任务退出")
			return
		case <-s.stopCh:
			s.log.Info("任务停止")
			return
		case <-ticker.C:
			s.ProcessPending(ctx)
		}
	}
}

func (s *OutboxSender) Stop() {
	close(s.stopCh)
}

// ProcessPending 投递一批待发送消息，返回成功数
func (s *OutboxSender) ProcessPending(ctx context.Context) int {
	messages, err := s.outboxRepo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		s.log.Error("查询消息失败", zap.Error(err))
		return 0
	}

	sent := 0
	for _, msg := range messages {
		if s.sendMessage(ctx, msg) {
			sent++
		}
	}
	return sent
}

func (s *OutboxSender) sendMessage(ctx context.Context, msg *model.OutboxMessage) bool {
	err := s.sender.Send(ctx, msg)
	if err == nil {
		if updateErr := s.outboxRepo.MarkAsSent(ctx, msg.ID); updateErr != nil {
			s.log.Error("更新消息状态失败", zap.Int64("id", msg.ID), zap.Error(updateErr))
		} else {
			s.log.Debug("消息发送成功", zap.Int64("id", msg.ID), zap.String("key", msg.MessageKey))
		}
		return true
	}

	s.log.Warn("消息发送失败", zap.Int64("id", msg.ID), zap.Int("retry_count", msg.RetryCount), zap.Error(err))

	if err := s.outboxRepo.IncrementRetryCount(ctx, msg.ID, msg.Delivered); err != nil {
		s.log.Error("增加重试次数失败", zap.Int64("id", msg.ID), zap.Error(err))
	}

	if msg.RetryCount+1 >= s.maxRetry {
		if err := s.outboxRepo.MarkAsFailed(ctx, msg.ID); err != nil {
			s.log.Error("标记消息失败状态失败", zap.Int64("id", msg.ID), zap.Error(err))
		} else {
			s.log.Warn("消息超过最大重试次数，标记为失败", zap.Int64("id", msg.ID))
		}
	}
	return false
}
