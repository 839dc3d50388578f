package services

import (
	"chat-garden/contract"
	"chat-garden/domain"
	"chat-garden/errors"
	"chat-garden/infrastructure/storage"
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// TagService associates free-text labels with messages.
// Records live in memory, in local storage, and as Tag activities in the store.
type TagService struct {
	mu          sync.Mutex
	store       contract.IObjectStore
	prefs       *storage.Preferences
	communities *CommunityService
	notifier    *Notifier
	log         *slog.Logger
	records     domain.TagBook
	memo        map[string][]string
	now         func() time.Time
}

func NewTagService(store contract.IObjectStore, prefs *storage.Preferences,
	communities *CommunityService, notifier *Notifier, log *slog.Logger) *TagService {
	return &TagService{
		store:       store,
		prefs:       prefs,
		communities: communities,
		notifier:    notifier,
		log:         log,
		records:     prefs.Tags(),
		memo:        make(map[string][]string),
		now:         time.Now,
	}
}

// AddTag labels the message. Blank labels are refused and nothing is recorded.
// The Tag activity is shared on a best-effort basis: when the store refuses it,
// the local record stays and the user is notified.
func (s *TagService) AddTag(ctx context.Context, session domain.Session,
	channelID string, message domain.Message, text string) (domain.TagRecord, error) {
	tag := strings.TrimSpace(text)
	if tag == "" {
		return domain.TagRecord{}, errors.ErrBlankTag
	}

	name := s.communities.Name(channelID)
	if name == "" {
		name = domain.UnknownCommunity
	}
	record := domain.TagRecord{
		MessageID:     message.Key(),
		Tag:           tag,
		CommunityName: name,
		Content:       message.Content,
		Actor:         session.Actor,
		ChannelID:     channelID,
		Published:     s.now().UnixMilli(),
	}

	s.mu.Lock()
	s.records[channelID] = append(s.records[channelID], record)
	persisted := s.prefs.Tags()
	persisted[channelID] = append(persisted[channelID], record)
	s.prefs.SaveTags(persisted)
	delete(s.memo, record.MessageID)
	s.mu.Unlock()

	_, err := s.store.Put(ctx, domain.Object{
		Channels: []string{domain.TagChannel},
		Value:    record.ActivityValue(),
	}, session)
	if err != nil {
		s.log.Error("Failed to share tag", "tag", tag, "message", record.MessageID, "error", err)
		s.notifier.Error("Tag %q saved locally only: %v", tag, err)
	}
	return record, nil
}

// TagsFor returns a copy of the distinct labels of a message.
func (s *TagService) TagsFor(messageID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tags, ok := s.memo[messageID]; ok {
		return append([]string(nil), tags...)
	}
	var tags []string
	for _, channel := range s.channels() {
		for _, record := range s.records[channel] {
			if record.MessageID == messageID {
				tags = append(tags, record.Tag)
			}
		}
	}
	tags = lo.Uniq(tags)
	s.memo[messageID] = tags
	return append([]string(nil), tags...)
}

// AllTags returns every label in use, sorted.
func (s *TagService) AllTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tags []string
	for _, records := range s.records {
		for _, record := range records {
			tags = append(tags, record.Tag)
		}
	}
	tags = lo.Uniq(tags)
	sort.Strings(tags)
	return tags
}

// SelectTag returns the messages carrying the label, newest first.
func (s *TagService) SelectTag(name string) []domain.TaggedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	var persisted domain.TagBook
	var tagged []domain.TaggedMessage
	for _, channel := range s.channels() {
		for _, record := range s.records[channel] {
			if record.Tag != name {
				continue
			}
			communityName := lookupCommunityName(s.records, record.MessageID)
			if communityName == "" {
				if persisted == nil {
					persisted = s.prefs.Tags()
				}
				communityName = lookupCommunityName(persisted, record.MessageID)
			}
			if communityName == "" {
				communityName = s.communityFromTarget(record.MessageID)
			}
			if communityName == "" {
				communityName = record.CommunityName
			}
			if communityName == "" {
				communityName = domain.UnknownCommunity
			}

			content := record.Content
			if content == "" {
				content = domain.ContentUnavailable
			}
			tagged = append(tagged, domain.TaggedMessage{
				MessageID:     record.MessageID,
				Tag:           record.Tag,
				Content:       content,
				CommunityName: communityName,
				Actor:         record.Actor,
				Published:     record.Published,
			})
		}
	}
	sort.SliceStable(tagged, func(i, j int) bool {
		return tagged[i].Published > tagged[j].Published
	})
	return tagged
}

// GroupByCommunity buckets tagged messages by community name, keeping their order.
func GroupByCommunity(tagged []domain.TaggedMessage) map[string][]domain.TaggedMessage {
	return lo.GroupBy(tagged, func(m domain.TaggedMessage) string {
		if m.CommunityName == "" {
			return domain.UnknownCommunity
		}
		return m.CommunityName
	})
}

// RemoveTag drops the label from the message everywhere: memory, local storage,
// and the Tag activities the actor shared.
func (s *TagService) RemoveTag(ctx context.Context, session domain.Session, tag, messageID string) error {
	matches := func(record domain.TagRecord, _ int) bool {
		return record.Tag == tag && record.MessageID == messageID
	}

	s.mu.Lock()
	for channel, records := range s.records {
		s.records[channel] = lo.Reject(records, matches)
	}
	persisted := s.prefs.Tags()
	for channel, records := range persisted {
		persisted[channel] = lo.Reject(records, matches)
	}
	s.prefs.SaveTags(persisted)
	delete(s.memo, messageID)
	s.mu.Unlock()

	if session.Actor == "" {
		return nil
	}
	objects, err := s.store.Discover(ctx, []string{domain.TagChannel},
		domain.TagActivitySchema(messageID, tag), session)
	if err != nil {
		s.log.Error("Failed to look up shared tags", "tag", tag, "error", err)
		s.notifier.Warn("Tag %q removed locally only", tag)
		return nil
	}
	for _, object := range objects {
		if object.Actor != session.Actor {
			continue
		}
		if _, err = s.store.Delete(ctx, object.URL, session); err != nil {
			s.log.Error("Failed to delete shared tag", "url", object.URL, "error", err)
			s.notifier.Warn("Tag %q removed locally only", tag)
		}
	}
	return nil
}

// Sync pulls the Tag activities shared by every actor into memory.
// Records already known by message, label and actor are skipped.
func (s *TagService) Sync(ctx context.Context, session domain.Session) (int, error) {
	objects, err := s.store.Discover(ctx, []string{domain.TagChannel},
		domain.TagActivitySchema("", ""), session)
	if err != nil {
		s.log.Error("Failed to sync tags", "error", err)
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, object := range objects {
		record := domain.TagRecordFromObject(object)
		if strings.TrimSpace(record.Tag) == "" || s.known(record) {
			continue
		}
		s.records[record.ChannelID] = append(s.records[record.ChannelID], record)
		delete(s.memo, record.MessageID)
		added++
	}
	if added > 0 {
		s.log.Debug("Tags synced", "added", added)
	}
	return added, nil
}

func (s *TagService) known(candidate domain.TagRecord) bool {
	for _, records := range s.records {
		for _, record := range records {
			if record.MessageID == candidate.MessageID && record.Tag == candidate.Tag &&
				record.Actor == candidate.Actor {
				return true
			}
		}
	}
	return false
}

// channels returns the channel buckets in a stable order.
func (s *TagService) channels() []string {
	channels := lo.Keys(s.records)
	sort.Strings(channels)
	return channels
}

// communityFromTarget finds a community whose id appears in the message id.
func (s *TagService) communityFromTarget(target string) string {
	for _, community := range s.communities.List() {
		if strings.Contains(target, community.ID) {
			return community.Name
		}
	}
	return ""
}

func lookupCommunityName(book domain.TagBook, target string) string {
	channels := lo.Keys(book)
	sort.Strings(channels)
	for _, channel := range channels {
		for _, record := range book[channel] {
			if record.MessageID == target && record.CommunityName != "" {
				return record.CommunityName
			}
		}
	}
	return ""
}
