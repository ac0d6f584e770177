package messaging

import (
	"context"
)

// Broker defines the interface for the message channel that delivers
// notices to the clients. Delivery itself (push, chat, email) happens on
// the other side of the broker.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Topic names the worker publishes on.
const (
	TopicNotices = "notices"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
