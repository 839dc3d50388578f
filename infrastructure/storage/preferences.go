package storage

import (
	"chat-garden/contract"
	"chat-garden/domain"
	"encoding/json"
	"log/slog"
)

// Keys of the three blobs kept in local storage.
const (
	TagsKey              = "designftw-tags"
	CommunitiesKey       = "designftw-communities"
	JoinedCommunitiesKey = "designftw-joined-communities"
)

// Client state that outlives a single command.
const (
	SessionKey  = "chat-garden-session"
	SelectedKey = "chat-garden-selected"
)

// Preferences reads and writes the JSON blobs of local storage.
// Failures never reach the caller: they are logged and the namespace falls
// back to its empty default. A malformed blob therefore reads as empty.
type Preferences struct {
	store contract.IKeyValueStore
	log   *slog.Logger
}

func NewPreferences(store contract.IKeyValueStore, log *slog.Logger) *Preferences {
	return &Preferences{store: store, log: log}
}

func load[T any](p *Preferences, key string, def T) T {
	raw, err := p.store.Get(key)
	if err != nil {
		p.log.Error("Failed to read local storage", "key", key, "error", err)
		return def
	}
	if len(raw) == 0 {
		return def
	}
	var value T
	if err = json.Unmarshal(raw, &value); err != nil {
		p.log.Error("Malformed local storage blob, resetting", "key", key, "error", err)
		return def
	}
	return value
}

func save(p *Preferences, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		p.log.Error("Failed to encode local storage blob", "key", key, "error", err)
		return
	}
	if err = p.store.Set(key, raw); err != nil {
		p.log.Error("Failed to write local storage", "key", key, "error", err)
	}
}

func (p *Preferences) Tags() domain.TagBook {
	tags := load(p, TagsKey, domain.TagBook{})
	if tags == nil {
		return domain.TagBook{}
	}
	return tags
}

func (p *Preferences) SaveTags(tags domain.TagBook) {
	save(p, TagsKey, tags)
}

// Communities returns the user-created communities only.
func (p *Preferences) Communities() []domain.Community {
	return load[[]domain.Community](p, CommunitiesKey, nil)
}

func (p *Preferences) SaveCommunities(communities []domain.Community) {
	save(p, CommunitiesKey, communities)
}

func (p *Preferences) JoinedCommunities() []string {
	return load[[]string](p, JoinedCommunitiesKey, nil)
}

func (p *Preferences) SaveJoinedCommunities(ids []string) {
	save(p, JoinedCommunitiesKey, ids)
}

// Session returns the remembered session, zero when logged out.
func (p *Preferences) Session() domain.Session {
	return load(p, SessionKey, domain.Session{})
}

func (p *Preferences) SaveSession(session domain.Session) {
	save(p, SessionKey, session)
}

func (p *Preferences) SelectedCommunity() string {
	return load(p, SelectedKey, domain.DefaultCommunityID)
}

func (p *Preferences) SaveSelectedCommunity(id string) {
	save(p, SelectedKey, id)
}
