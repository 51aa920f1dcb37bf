package eventbus

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/model"
	"github.com/segmentio/kafka-go"
)

// IPublisher auth事件發佈介面
// fire-and-forget: 呼叫端不因發佈失敗而中斷主流程
type IPublisher interface {
	// Publish 發佈單一auth事件, key為user id, 同一user的事件落同一partition
	Publish(ctx context.Context, event model.AuthEventModel) error
	// Close 關閉publisher
	Close() error
}

// kafkaPublisher implements the IPublisher interface
type kafkaPublisher struct {
	writer *kafka.Writer
	closed atomic.Bool
}

// NewKafkaPublisher 建立kafka publisher
func NewKafkaPublisher(brokers []string, topic string) IPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,

		// 重連機制設置
		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network string, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{
					Timeout:   10 * time.Second, // 連接超時
					DualStack: true,             // 支援 IPv4/IPv6
					KeepAlive: 30 * time.Second, // TCP keepalive
				}
				return dialer.DialContext(ctx, network, address)
			},
		},

		// 錯誤處理
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Printf("kafka publisher error: "+msg, args...)
		}),

		// 壓縮設置
		Compression: kafka.Snappy,
	}

	return &kafkaPublisher{
		writer: writer,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event model.AuthEventModel) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID.String()),
		Value: value,
	})
}

func (p *kafkaPublisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
