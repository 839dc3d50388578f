package search

import (
	"chat-garden/domain"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/blugelabs/bluge"
)

const (
	DefaultLimit = 20

	fieldContent   = "content"
	fieldChannel   = "channel"
	fieldActor     = "actor"
	fieldURL       = "url"
	fieldMessageID = "message_id"
	fieldPublished = "published"
	fieldEdited    = "edited"
)

// MessageIndex is a bluge full-text index of the messages seen by a client.
// Documents are keyed by the message key so re-indexing an edited message replaces it.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// OpenMessageIndex opens an index on disk, or in memory when path is empty.
func OpenMessageIndex(path string, log *slog.Logger) (*MessageIndex, error) {
	cfg := bluge.InMemoryOnlyConfig()
	if path != "" {
		cfg = bluge.DefaultConfig(path)
	}
	writer, err := bluge.OpenWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return NewMessageIndex(writer, log), nil
}

func (i *MessageIndex) Close() error {
	return i.writer.Close()
}

func (i *MessageIndex) Index(channel string, messages ...domain.Message) error {
	if len(messages) == 0 {
		return nil
	}
	batch := bluge.NewBatch()
	for _, message := range messages {
		doc := bluge.NewDocument(message.Key()).
			AddField(bluge.NewTextField(fieldContent, message.Content).StoreValue()).
			AddField(bluge.NewKeywordField(fieldChannel, channel).StoreValue()).
			AddField(bluge.NewKeywordField(fieldActor, message.Actor).StoreValue()).
			AddField(bluge.NewKeywordField(fieldURL, message.URL).StoreValue()).
			AddField(bluge.NewKeywordField(fieldMessageID, message.ID).StoreValue()).
			AddField(bluge.NewKeywordField(fieldPublished, strconv.FormatInt(message.Published, 10)).StoreValue()).
			AddField(bluge.NewKeywordField(fieldEdited, strconv.FormatBool(message.Edited)).StoreValue())
		batch.Update(doc.ID(), doc)
	}
	if err := i.writer.Batch(batch); err != nil {
		return fmt.Errorf("failed to index messages: %w", err)
	}
	i.log.Debug("Messages indexed", "channel", channel, "count", len(messages))
	return nil
}

func (i *MessageIndex) Delete(key string) error {
	return i.writer.Delete(bluge.Identifier(key))
}

// Search matches the terms against message content, optionally within one channel.
func (i *MessageIndex) Search(terms string, channel string, limit int) ([]domain.Message, error) {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField(fieldContent))
	if channel != "" {
		query.AddMust(bluge.NewTermQuery(channel).SetField(fieldChannel))
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	iterator, err := reader.Search(context.Background(), bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	match, err := iterator.Next()
	for err == nil && match != nil {
		var message domain.Message
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case fieldContent:
				message.Content = string(value)
			case fieldActor:
				message.Actor = string(value)
			case fieldURL:
				message.URL = string(value)
			case fieldMessageID:
				message.ID = string(value)
			case fieldPublished:
				message.Published, _ = strconv.ParseInt(string(value), 10, 64)
			case fieldEdited:
				message.Edited = string(value) == "true"
			}
			return true
		})
		if err != nil {
			break
		}
		messages = append(messages, message)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}
	return messages, nil
}
