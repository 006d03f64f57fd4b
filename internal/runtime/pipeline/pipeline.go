// Package pipeline drives the producer and consumer benchmark loops.
package pipeline

import (
	"context"
	"time"

	"github.com/telembus/kafkabench/internal/runtime/bridge"
)

const tracerName = "kafkabench"

// Publisher is the awaitable write surface provided by the bridge.
type Publisher interface {
	Publish(ctx context.Context, seqNum int64, payload []byte) error
}

// MessageReader is the awaitable read surface provided by the bridge.
type MessageReader interface {
	Read(ctx context.Context) (bridge.Message, error)
}

// nowSeconds returns the current wall-clock time as seconds since the Unix
// epoch, the unit used by the message stamps.
func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
