package runtime

import (
	"chat-garden/contract"
	"chat-garden/domain"
	"context"
	"log/slog"
	"sync"
)

type Set map[string]struct{}

// Registry tracks which subscribers watch which channels.
type Registry struct {
	mu              sync.RWMutex
	log             *slog.Logger
	sinks           map[string]contract.EventSink // map subscriber -> Sink
	channelWatchers map[string]Set                // map channel to subscribers
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:             log,
		sinks:           make(map[string]contract.EventSink),
		channelWatchers: make(map[string]Set),
	}
}

// GetSinksForChannels resolves the sinks watching any of the channels.
// A subscriber watching several of them is returned once.
// Returns nil when nobody watches.
func (r *Registry) GetSinksForChannels(channels []string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(Set)
	var activeSinks []contract.EventSink
	for _, channel := range channels {
		for subscriberID := range r.channelWatchers[channel] {
			if _, ok := seen[subscriberID]; ok {
				continue
			}
			seen[subscriberID] = struct{}{}
			if sink, exists := r.sinks[subscriberID]; exists {
				activeSinks = append(activeSinks, sink)
			}
		}
	}
	return activeSinks
}

// Subscribe registers a subscriber's sink for the given channels.
// Channels are created on the fly.
func (r *Registry) Subscribe(subscriberID string, channels []string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sinks[subscriberID] = sink
	for _, channel := range channels {
		if _, ok := r.channelWatchers[channel]; !ok {
			r.channelWatchers[channel] = make(Set)
		}
		r.channelWatchers[channel][subscriberID] = struct{}{}
	}
}

// Unsubscribe removes a subscriber from every channel it watched.
// Channels left without watchers are dropped.
func (r *Registry) Unsubscribe(subscriberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sinks, subscriberID)
	for channel, watchers := range r.channelWatchers {
		delete(watchers, subscriberID)
		if len(watchers) == 0 {
			delete(r.channelWatchers, channel)
		}
	}
}

// Publish hands the object to every sink watching one of its channels.
// A failing sink is logged and skipped.
func (r *Registry) Publish(ctx context.Context, object domain.Object) {
	for _, sink := range r.GetSinksForChannels(object.Channels) {
		if err := sink.Consume(ctx, object); err != nil {
			r.log.Warn("Dropped object for watcher", "url", object.URL, "error", err)
		}
	}
}
