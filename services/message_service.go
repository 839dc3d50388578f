package services

import (
	"chat-garden/contract"
	"chat-garden/domain"
	"chat-garden/errors"
	"chat-garden/moderation"
	"chat-garden/projection"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
)

// MessageService sends, loads, edits and deletes the messages of a channel.
type MessageService struct {
	store        contract.IObjectStore
	index        contract.IMessageIndex
	moderator    *moderation.Moderator
	notifier     *Notifier
	log          *slog.Logger
	placeholders map[string][]domain.Message
	now          func() time.Time
}

// NewMessageService builds the service. Placeholders are local-only messages
// shown in a channel alongside the remote ones.
func NewMessageService(store contract.IObjectStore, index contract.IMessageIndex,
	moderator *moderation.Moderator, notifier *Notifier, log *slog.Logger,
	placeholders map[string][]domain.Message) *MessageService {
	return &MessageService{
		store:        store,
		index:        index,
		moderator:    moderator,
		notifier:     notifier,
		log:          log,
		placeholders: placeholders,
		now:          time.Now,
	}
}

// Send posts a message to the channel. Blank content or a missing channel sends nothing.
func (s *MessageService) Send(ctx context.Context, session domain.Session, channel, content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, errors.ErrEmptyContent
	}
	if channel == "" {
		return domain.Message{}, errors.ErrNoChannel
	}

	message := domain.Message{
		Actor:     session.Actor,
		Content:   s.censor(content),
		Published: s.now().UnixMilli(),
		Lang:      detectLanguage(content),
	}
	stored, err := s.store.Put(ctx, domain.Object{
		Channels: []string{channel},
		Value:    message.Value(),
	}, session)
	if err != nil {
		s.log.Error("Failed to send message", "channel", channel, "error", err)
		s.notifier.Error("Message not sent: %v", err)
		return domain.Message{}, err
	}

	message.URL = stored.URL
	message.Actor = stored.Actor
	s.indexMessages(channel, message)
	return message, nil
}

// Load discovers the messages of the channel and merges them with its placeholders.
func (s *MessageService) Load(ctx context.Context, session domain.Session, channel string) (*projection.Timeline, error) {
	timeline := projection.NewTimeline(channel)
	if err := s.Refresh(ctx, session, timeline); err != nil {
		return nil, err
	}
	return timeline, nil
}

// Refresh reloads the timeline in place, keeping an edit in progress.
func (s *MessageService) Refresh(ctx context.Context, session domain.Session, timeline *projection.Timeline) error {
	if timeline.Channel == "" {
		return errors.ErrNoChannel
	}
	objects, err := s.store.Discover(ctx, []string{timeline.Channel}, domain.MessageSchema, session)
	if err != nil {
		s.log.Error("Failed to load messages", "channel", timeline.Channel, "error", err)
		return err
	}
	remote := lo.Map(objects, func(o domain.Object, _ int) domain.Message {
		return domain.MessageFromObject(o)
	})
	timeline.Replace(domain.MergeAndSort(s.placeholders[timeline.Channel], remote))
	s.indexMessages(timeline.Channel, remote...)
	return nil
}

// Apply folds a live update from the store into the timeline.
// It reports whether the timeline changed.
func (s *MessageService) Apply(timeline *projection.Timeline, object domain.Object) bool {
	if !lo.Contains(object.Channels, timeline.Channel) {
		return false
	}
	if object.Tombstone {
		s.unindex(object.URL)
		return timeline.Remove(object.URL)
	}
	if _, ok := object.Value["content"].(string); !ok {
		return false
	}
	message := domain.MessageFromObject(object)
	timeline.Upsert(message)
	s.indexMessages(timeline.Channel, message)
	return true
}

// SaveEdit stores the edit buffer as the new content of the message being edited.
// A blank buffer cancels the edit and leaves the stored message untouched.
// It reports whether anything was saved.
func (s *MessageService) SaveEdit(ctx context.Context, session domain.Session, timeline *projection.Timeline) (bool, error) {
	key, buffer, ok := timeline.Editing()
	if !ok {
		return false, errors.ErrNotEditing
	}
	content := strings.TrimSpace(buffer)
	if content == "" {
		timeline.CancelEdit()
		return false, nil
	}
	message, ok := timeline.Find(key)
	if !ok {
		timeline.CancelEdit()
		return false, errors.ErrMessageUnknown
	}

	message.Content = s.censor(content)
	message.Edited = true
	if message.URL != "" {
		_, err := s.store.Put(ctx, domain.Object{
			URL:      message.URL,
			Channels: []string{timeline.Channel},
			Value:    message.Value(),
		}, session)
		if err != nil {
			s.log.Error("Failed to save edit", "url", message.URL, "error", err)
			s.notifier.Error("Edit not saved: %v", err)
			return false, err
		}
	}

	timeline.Upsert(message)
	timeline.CancelEdit()
	s.indexMessages(timeline.Channel, message)
	return true, nil
}

// Delete removes the message once the user confirmed it.
// It reports whether the message was deleted.
func (s *MessageService) Delete(ctx context.Context, session domain.Session,
	timeline *projection.Timeline, key string, confirm contract.Confirmer) (bool, error) {
	message, ok := timeline.Find(key)
	if !ok {
		return false, errors.ErrMessageUnknown
	}
	if confirm == nil || !confirm("Delete this message?") {
		return false, nil
	}
	if message.URL != "" {
		if _, err := s.store.Delete(ctx, message.URL, session); err != nil {
			s.log.Error("Failed to delete message", "url", message.URL, "error", err)
			s.notifier.Error("Message not deleted: %v", err)
			return false, err
		}
	}
	timeline.Remove(key)
	s.unindex(key)
	return true, nil
}

// Search looks the terms up among the messages seen so far, in every channel
// when channel is empty.
func (s *MessageService) Search(terms, channel string, limit int) ([]domain.Message, error) {
	if s.index == nil {
		return nil, nil
	}
	return s.index.Search(terms, channel, limit)
}

func (s *MessageService) IsOutgoing(session domain.Session, message domain.Message) bool {
	return session.Actor != "" && message.Actor == session.Actor
}

func (s *MessageService) censor(content string) string {
	censored, words := s.moderator.Censor(content)
	if len(words) > 0 {
		s.log.Info("Message censored", "words", len(words))
	}
	return censored
}

func (s *MessageService) indexMessages(channel string, messages ...domain.Message) {
	if s.index == nil || len(messages) == 0 {
		return
	}
	if err := s.index.Index(channel, messages...); err != nil {
		s.log.Warn("Failed to index messages", "channel", channel, "error", err)
	}
}

func (s *MessageService) unindex(key string) {
	if s.index == nil {
		return
	}
	if err := s.index.Delete(key); err != nil {
		s.log.Warn("Failed to unindex message", "key", key, "error", err)
	}
}

// detectLanguage returns the ISO 639-1 code of the content when the guess is reliable.
func detectLanguage(content string) string {
	info := whatlanggo.Detect(content)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
