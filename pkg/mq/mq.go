// Package mq 基于RabbitMQ的领域事件发布
//
// 写操作（图书入库、书架增删、书评增删改）提交成功后发布事件，
// 发布失败只记录日志，不影响已提交的事务。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/bookshelf/pkg/metrics"
)

// 事件路由键
const (
	EventBookIngested  = "book.ingested"
	EventShelfAdded    = "shelf.added"
	EventShelfRemoved  = "shelf.removed"
	EventReviewCreated = "review.created"
	EventReviewUpdated = "review.updated"
	EventReviewDeleted = "review.deleted"
)

// Event 事件信封
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEvent 构造事件信封
func NewEvent(eventType string, payload interface{}) (*Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("事件序列化失败: %w", err)
	}
	return &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    body,
	}, nil
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
	Close() error
}

// NopPublisher 未配置消息队列时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                       { return nil }

// channel amqp.Channel中用到的方法
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher 发布到topic类型Exchange
type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
}

// NewPublisher 根据URL创建发布者，URL为空时返回NopPublisher
func NewPublisher(url, exchange string) (Publisher, error) {
	if url == "" {
		return NopPublisher{}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	// durable topic exchange，消费方按book.*/shelf.*/review.*订阅
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	logrus.WithField("exchange", exchange).Info("事件发布者已创建")

	return &RabbitPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish 发布事件（持久化消息）
func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	event, err := NewEvent(routingKey, payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("事件序列化失败: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    event.ID,
		Type:         event.Type,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
	})
	metrics.ObservePublish(routingKey, err)
	if err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"event_id":    event.ID,
		"routing_key": routingKey,
	}).Debug("事件已发布")
	return nil
}

func (p *RabbitPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// PublishAsync 事务提交后调用：发布失败只记录日志
func PublishAsync(ctx context.Context, p Publisher, routingKey string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, payload); err != nil {
		logrus.WithError(err).WithField("routing_key", routingKey).Warn("事件发布失败")
	}
}
