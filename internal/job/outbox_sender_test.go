package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sellerhub/internal/config"
	"sellerhub/internal/infrastructure/chat"
	"sellerhub/internal/infrastructure/database"
	"sellerhub/internal/infrastructure/mq"
	"sellerhub/internal/model"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type recordingSender struct {
	name string
	err  error
	sent []string
}

func (r *recordingSender) Name() string { return r.name }

func (r *recordingSender) Send(_ context.Context, msg *model.OutboxMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg.MessageKey)
	return nil
}

func seedOutbox(t *testing.T, db *gorm.DB, key string) *model.OutboxMessage {
	t.Helper()
	payload, err := json.Marshal(&model.Notification{DetailOrderID: 1, BuyerName: "김구매", ProductName: "오버핏 셔츠", Status: "배송중"})
	require.NoError(t, err)
	msg := &model.OutboxMessage{MessageKey: key, Topic: "order-status-notification", Payload: string(payload), Status: model.OutboxStatusPending}
	require.NoError(t, db.Create(msg).Error)
	return msg
}

func statusOf(t *testing.T, db *gorm.DB, id int64) model.OutboxMessage {
	t.Helper()
	var msg model.OutboxMessage
	require.NoError(t, db.First(&msg, id).Error)
	return msg
}

func TestProcessPendingMarksSent(t *testing.T) {
	db := setupTestDB(t)
	a := seedOutbox(t, db, "detail-order-1-a")
	b := seedOutbox(t, db, "detail-order-1-b")

	sender := &recordingSender{}
	s := NewOutboxSender(db, sender, zap.NewNop(), time.Second, 3)

	assert.Equal(t, 2, s.ProcessPending(context.Background()))
	assert.Equal(t, []string{a.MessageKey, b.MessageKey}, sender.sent)
	assert.Equal(t, model.OutboxStatusSent, statusOf(t, db, a.ID).Status)

	// 已发送的不会再投递
	assert.Zero(t, s.ProcessPending(context.Background()))
}

func TestProcessPendingRetriesThenFails(t *testing.T) {
	db := setupTestDB(t)
	msg := seedOutbox(t, db, "detail-order-1-a")
	s := NewOutboxSender(db, &recordingSender{err: errors.New("unavailable")}, zap.NewNop(), time.Second, 2)

	s.ProcessPending(context.Background())
	got := statusOf(t, db, msg.ID)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, model.OutboxStatusPending, got.Status)

	s.ProcessPending(context.Background())
	got = statusOf(t, db, msg.ID)
	assert.Equal(t, 2, got.RetryCount)
	assert.Equal(t, model.OutboxStatusFailed, got.Status)
}

func TestChatSenderPostsNotificationText(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	db := setupTestDB(t)
	msg := seedOutbox(t, db, "detail-order-1-a")
	sender := NewChatSender(chat.NewClient(&config.ChatConfig{WebhookURL: srv.URL, Channel: "#brandi-order"}))

	require.NoError(t, sender.Send(context.Background(), msg))
	assert.Equal(t, "#brandi-order", body["channel"])
	assert.Equal(t, "김구매 님이 주문하신 상품 안내 드립니다.\n상품명 : 오버핏 셔츠\n상태 : 배송중", body["text"])
}

func TestKafkaSenderUsesTopicAndKey(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(m *sarama.ProducerMessage) error {
		key, _ := m.Key.Encode()
		if m.Topic != "order-status-notification" || string(key) != "detail-order-1-a" {
			return fmt.Errorf("unexpected message %s/%s", m.Topic, key)
		}
		return nil
	})

	db := setupTestDB(t)
	msg := seedOutbox(t, db, "detail-order-1-a")
	sender := NewKafkaSender(mq.NewProducer(producer, zap.NewNop()))

	require.NoError(t, sender.Send(context.Background(), msg))
	require.NoError(t, producer.Close())
}

func TestSendersTriesEverySink(t *testing.T) {
	first := &recordingSender{name: "kafka", err: errors.New("down")}
	second := &recordingSender{name: "chat"}
	msg := &model.OutboxMessage{MessageKey: "k"}
	err := Senders(first, second).Send(context.Background(), msg)
	assert.ErrorContains(t, err, "kafka: down")
	assert.Equal(t, []string{"k"}, second.sent)
	assert.Equal(t, "chat", msg.Delivered)

	single := &recordingSender{}
	assert.Same(t, single, Senders(single))
}

func TestRetryOnlyResendsFailedSinks(t *testing.T) {
	db := setupTestDB(t)
	msg := seedOutbox(t, db, "detail-order-1-a")

	kafka := &recordingSender{name: "kafka"}
	chatSink := &recordingSender{name: "chat", err: errors.New("webhook down")}
	sender := NewOutboxSender(db, Senders(kafka, chatSink), zap.NewNop(), time.Second, 5)

	assert.Zero(t, sender.ProcessPending(context.Background()))
	got := statusOf(t, db, msg.ID)
	assert.Equal(t, model.OutboxStatusPending, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, "kafka", got.Delivered)

	chatSink.err = nil
	assert.Equal(t, 1, sender.ProcessPending(context.Background()))
	assert.Equal(t, model.OutboxStatusSent, statusOf(t, db, msg.ID).Status)

	// kafka 只发了一次
	assert.Len(t, kafka.sent, 1)
	assert.Len(t, chatSink.sent, 1)
}
