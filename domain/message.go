// Package domain contains core concepts of the chat system.
// This file defines Message records and their display ordering.
package domain

import (
	"sort"
	"time"
)

// MessageSchema selects chat messages among the objects of a channel.
var MessageSchema = NewSchema(
	SchemaField{Name: "content", Kind: "string"},
	SchemaField{Name: "published", Kind: "number"},
)

// Message is a chat message as displayed in a timeline.
// Placeholder messages only carry an ID, remote ones carry the object URL.
type Message struct {
	ID        string
	URL       string
	Actor     string
	Content   string
	Published int64 // epoch milliseconds
	Edited    bool
	Lang      string
}

// Key is the identity of a message: its URL when known, its ID otherwise.
func (m Message) Key() string {
	if m.URL != "" {
		return m.URL
	}
	return m.ID
}

func (m Message) PublishedAt() time.Time {
	return time.UnixMilli(m.Published).UTC()
}

// Value renders the message as an object value.
func (m Message) Value() map[string]any {
	value := map[string]any{
		"content":   m.Content,
		"published": m.Published,
	}
	if m.Edited {
		value["edited"] = true
	}
	if m.Lang != "" {
		value["lang"] = m.Lang
	}
	return value
}

func MessageFromObject(o Object) Message {
	return Message{
		URL:       o.URL,
		Actor:     o.Actor,
		Content:   stringValue(o.Value["content"]),
		Published: int64Value(o.Value["published"]),
		Edited:    boolValue(o.Value["edited"]),
		Lang:      stringValue(o.Value["lang"]),
	}
}

// MergeAndSort unions placeholder and remote messages by key, placeholders
// winning, then orders them by ascending publication time.
// Messages published at the same millisecond keep their arrival order.
func MergeAndSort(placeholders, remote []Message) []Message {
	seen := make(map[string]struct{}, len(placeholders)+len(remote))
	merged := make([]Message, 0, len(placeholders)+len(remote))
	for _, group := range [][]Message{placeholders, remote} {
		for _, m := range group {
			if _, ok := seen[m.Key()]; ok {
				continue
			}
			seen[m.Key()] = struct{}{}
			merged = append(merged, m)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Published < merged[j].Published
	})
	return merged
}
