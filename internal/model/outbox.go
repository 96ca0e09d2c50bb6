package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

// OutboxMessage 待投递的通知，业务事务提交后写入，由 OutboxSender 异步投递
type OutboxMessage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageKey string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"message_key"`
	Topic      string    `gorm:"type:varchar(64);not null" json:"topic"`
	Payload    string    `gorm:"type:text;not null" json:"payload"` // Notification 的 JSON
	Status     string    `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	Delivered  string    `gorm:"type:varchar(64);not null;default:''" json:"delivered"` // 已投递成功的通道，逗号分隔
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_message"
}

// DeliveredTo 重试时跳过已经投递成功的通道
func (m *OutboxMessage) DeliveredTo(sink string) bool {
	for _, s := range strings.Split(m.Delivered, ",") {
		if s == sink {
			return true
		}
	}
	return false
}

func (m *OutboxMessage) MarkDelivered(sink string) {
	if m.DeliveredTo(sink) {
		return
	}
	if m.Delivered == "" {
		m.Delivered = sink
		return
	}
	m.Delivered += "," + sink
}

// Notification 子订单状态变化通知
type Notification struct {
	DetailOrderID int64     `json:"detail_order_id"`
	BuyerName     string    `json:"buyer_name"`
	ProductName   string    `json:"product_name"`
	StatusID      int       `json:"status_id"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Text 聊天频道展示的文本
func (n *Notification) Text() string {
	return fmt.Sprintf("%s 님이 주문하신 상품 안내 드립니다.\n상품명 : %s\n상태 : %s", n.BuyerName, n.ProductName, n.Status)
}
