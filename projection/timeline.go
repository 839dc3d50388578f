// Package projection builds the local view of a channel from the messages discovered
// in the object store. Handles ordering, deduplication and the editing toggle.
// Does not talk to the store directly.
package projection

import (
	"chat-garden/domain"
	"chat-garden/errors"
	"sort"
)

// Timeline holds the ordered messages of one channel and the message being edited, if any.
// Not safe for concurrent use.
type Timeline struct {
	Channel  string
	Messages []domain.Message

	editing string
	buffer  string
}

func NewTimeline(channel string) *Timeline {
	return &Timeline{Channel: channel}
}

// Replace resets the timeline to already ordered messages.
// An edit in progress survives only if its message is still present.
func (t *Timeline) Replace(messages []domain.Message) {
	t.Messages = messages
	if t.editing != "" && t.indexOf(t.editing) < 0 {
		t.CancelEdit()
	}
}

// Upsert replaces the message with the same key, or inserts it in published order.
func (t *Timeline) Upsert(message domain.Message) {
	if i := t.indexOf(message.Key()); i >= 0 {
		t.Messages[i] = message
		return
	}
	t.Messages = append(t.Messages, message)
	sort.SliceStable(t.Messages, func(i, j int) bool {
		return t.Messages[i].Published < t.Messages[j].Published
	})
}

// Remove drops the message and leaves the editing state if it was being edited.
func (t *Timeline) Remove(key string) bool {
	i := t.indexOf(key)
	if i < 0 {
		return false
	}
	t.Messages = append(t.Messages[:i], t.Messages[i+1:]...)
	if t.editing == key {
		t.CancelEdit()
	}
	return true
}

func (t *Timeline) Find(key string) (domain.Message, bool) {
	i := t.indexOf(key)
	if i < 0 {
		return domain.Message{}, false
	}
	return t.Messages[i], true
}

// StartEdit switches the message to editing, with its content as the buffer.
// Any other message being edited goes back to viewing.
func (t *Timeline) StartEdit(key string) error {
	message, ok := t.Find(key)
	if !ok {
		return errors.ErrMessageUnknown
	}
	t.editing = key
	t.buffer = message.Content
	return nil
}

func (t *Timeline) SetBuffer(text string) error {
	if t.editing == "" {
		return errors.ErrNotEditing
	}
	t.buffer = text
	return nil
}

func (t *Timeline) CancelEdit() {
	t.editing = ""
	t.buffer = ""
}

// Editing returns the key of the message being edited and the edit buffer.
func (t *Timeline) Editing() (key string, buffer string, ok bool) {
	return t.editing, t.buffer, t.editing != ""
}

func (t *Timeline) IsEditing(key string) bool {
	return t.editing != "" && t.editing == key
}

func (t *Timeline) indexOf(key string) int {
	for i, message := range t.Messages {
		if message.Key() == key {
			return i
		}
	}
	return -1
}
