package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Publisher sends messages to SQS queues keyed by topic.
type Publisher struct {
	client  API
	queues  map[string]string
	timeout time.Duration
}

// NewPublisher creates a publisher. queues maps topic names to queue URLs.
// A zero timeout leaves the caller's deadline in charge.
func NewPublisher(client API, queues map[string]string, timeout time.Duration) *Publisher {
	return &Publisher{client: client, queues: queues, timeout: timeout}
}

// Publish sends payload to the queue behind topic and returns the SQS
// message id once SQS has accepted it.
func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) (string, error) {
	url, ok := p.queues[topic]
	if !ok || url == "" {
		return "", fmt.Errorf("publish %s: %w", topic, ErrUnknownTopic)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(url),
		MessageBody: aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			TopicAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(topic),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sqs send %s: %w", topic, err)
	}
	return aws.ToString(out.MessageId), nil
}
