package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/openmusic/playlists-api/internal/pkg/logger"
)

var log = logger.Component("queue")

// Handler processes one message. A nil return deletes the message. An error
// wrapping ErrPoison also deletes it; any other error leaves it on the queue
// for redelivery after the visibility timeout.
type Handler interface {
	Handle(ctx context.Context, msg Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg Message) error { return f(ctx, msg) }

// ConsumerConfig tunes the receive loop.
type ConsumerConfig struct {
	QueueURL     string
	Topic        string
	MaxMessages  int32
	WaitSeconds  int32
	ErrorBackoff time.Duration
}

// Consumer long-polls one SQS queue.
type Consumer struct {
	client  API
	cfg     ConsumerConfig
	handler Handler
	done    chan struct{}
	stop    sync.Once
	wg      sync.WaitGroup
}

// NewConsumer creates a consumer. Zero config values get SQS-friendly defaults.
func NewConsumer(client API, cfg ConsumerConfig, h Handler) *Consumer {
	if cfg.MaxMessages <= 0 || cfg.MaxMessages > 10 {
		cfg.MaxMessages = 10
	}
	if cfg.WaitSeconds < 0 || cfg.WaitSeconds > 20 {
		cfg.WaitSeconds = 20
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = 5 * time.Second
	}
	return &Consumer{client: client, cfg: cfg, handler: h, done: make(chan struct{})}
}

// Start runs the poll loop in a goroutine until ctx is cancelled or Stop is
// called.
func (c *Consumer) Start(ctx context.Context) {
	log.Info("sqs consumer started", "queue", c.cfg.QueueURL, "topic", c.cfg.Topic)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.poll(ctx)
	}()
}

// Stop ends the poll loop and waits for in-flight messages to finish.
func (c *Consumer) Stop() {
	c.stop.Do(func() { close(c.done) })
	c.wg.Wait()
	log.Info("sqs consumer stopped", "queue", c.cfg.QueueURL)
}

func (c *Consumer) poll(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		if err := c.ReceiveOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("sqs receive failed", "queue", c.cfg.QueueURL, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-c.done:
				return
			case <-time.After(c.cfg.ErrorBackoff):
			}
		}
	}
}

// ReceiveOnce performs a single receive call and handles every returned
// message. It only errors when the receive itself fails.
func (c *Consumer) ReceiveOnce(ctx context.Context) error {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.cfg.QueueURL),
		MaxNumberOfMessages:   c.cfg.MaxMessages,
		WaitTimeSeconds:       c.cfg.WaitSeconds,
		MessageAttributeNames: []string{TopicAttribute},
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	})
	if err != nil {
		return err
	}

	for _, m := range out.Messages {
		msg := toMessage(m, c.cfg.Topic)
		err := c.handler.Handle(ctx, msg)
		switch {
		case err == nil:
			c.deleteMessage(ctx, msg)
		case errors.Is(err, ErrPoison):
			log.Warn("dropping poison message", "message_id", msg.ID, "error", err)
			c.deleteMessage(ctx, msg)
		default:
			log.Error("message handling failed, leaving for redelivery",
				"message_id", msg.ID, "receive_count", msg.ReceiveCount, "error", err)
		}
	}
	return nil
}

func (c *Consumer) deleteMessage(ctx context.Context, msg Message) {
	_, err := c.client.DeleteMessage(context.WithoutCancel(ctx), &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.cfg.QueueURL),
		ReceiptHandle: aws.String(msg.receiptHandle),
	})
	if err != nil {
		log.Warn("sqs delete failed", "message_id", msg.ID, "error", err)
	}
}

func toMessage(m types.Message, defaultTopic string) Message {
	msg := Message{
		ID:            aws.ToString(m.MessageId),
		Topic:         defaultTopic,
		Body:          []byte(aws.ToString(m.Body)),
		receiptHandle: aws.ToString(m.ReceiptHandle),
	}
	if attr, ok := m.MessageAttributes[TopicAttribute]; ok && attr.StringValue != nil {
		msg.Topic = *attr.StringValue
	}
	if n, err := strconv.Atoi(m.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)]); err == nil {
		msg.ReceiveCount = n
	}
	return msg
}
