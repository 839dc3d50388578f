package sink

import (
	"chat-garden/domain"
	"context"
	"fmt"
)

var ErrSinkFull = fmt.Errorf("watcher buffer is full")

// ChannelSink buffers objects for a single watcher.
type ChannelSink struct {
	Objects chan domain.Object
}

func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{Objects: make(chan domain.Object, bufferSize)}
}

// Consume is called by the registry on every matching put.
// It never blocks the writer: a full buffer drops the object.
func (s *ChannelSink) Consume(ctx context.Context, o domain.Object) error {
	select {
	case s.Objects <- o:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrSinkFull
	}
}
