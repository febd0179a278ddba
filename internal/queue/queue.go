// Package queue carries export jobs over Amazon SQS.
//
// Topics are logical names ("export:songs") resolved to queue URLs at
// construction time. The Publisher waits for SendMessage to return, so a nil
// error means the broker has durably accepted the message. The Consumer
// long-polls a queue and deletes a message only after its handler succeeds;
// delivery is at-least-once and handlers must tolerate redelivery.
package queue

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// API is the subset of *sqs.Client the package uses.
type API interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// TopicAttribute is the message attribute carrying the logical topic name.
const TopicAttribute = "topic"

// ErrUnknownTopic is returned when publishing to a topic with no queue URL.
var ErrUnknownTopic = errors.New("unknown topic")

// ErrPoison marks a message that can never be processed. The consumer deletes
// it instead of leaving it for redelivery.
var ErrPoison = errors.New("poison message")

// Message is a received queue message.
type Message struct {
	ID            string
	Topic         string
	Body          []byte
	ReceiveCount  int
	receiptHandle string
}
