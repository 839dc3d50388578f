package services

import (
	"chat-garden/domain"
	"chat-garden/errors"
	"chat-garden/infrastructure/storage"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

type communityForm struct {
	Name        string `validate:"required,max=64"`
	Description string `validate:"max=280"`
}

// CommunityService is the registry of communities and of the ones the actor joined.
// Seeded communities come first, then user-created ones in stored order.
type CommunityService struct {
	mu          sync.RWMutex
	log         *slog.Logger
	prefs       *storage.Preferences
	notifier    *Notifier
	validate    *validator.Validate
	communities []domain.Community
	seeded      int
	joined      []string
	selected    string
}

func NewCommunityService(prefs *storage.Preferences, notifier *Notifier, log *slog.Logger) *CommunityService {
	defaults := domain.DefaultCommunities()
	communities := append(defaults, prefs.Communities()...)
	joined := prefs.JoinedCommunities()
	if len(joined) == 0 {
		joined = []string{domain.DefaultCommunityID}
	}
	return &CommunityService{
		log:         log,
		prefs:       prefs,
		notifier:    notifier,
		validate:    validator.New(),
		communities: communities,
		seeded:      len(defaults),
		joined:      joined,
		selected:    domain.DefaultCommunityID,
	}
}

func (s *CommunityService) List() []domain.Community {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Community(nil), s.communities...)
}

// Joined returns the joined communities in registry order.
func (s *CommunityService) Joined() []domain.Community {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.communities, func(c domain.Community, _ int) bool {
		return lo.Contains(s.joined, c.ID)
	})
}

func (s *CommunityService) IsJoined(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Contains(s.joined, id)
}

func (s *CommunityService) Get(id string) (domain.Community, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(id)
}

// Name returns the display name of a community, empty when unknown.
func (s *CommunityService) Name(id string) string {
	community, _ := s.Get(id)
	return community.Name
}

func (s *CommunityService) Selected() domain.Community {
	s.mu.RLock()
	defer s.mu.RUnlock()
	community, _ := s.find(s.selected)
	return community
}

// Select makes the community current, joining it first when needed.
func (s *CommunityService) Select(id string) (domain.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	community, ok := s.find(id)
	if !ok {
		return domain.Community{}, errors.ErrCommunityNotFound
	}
	s.join(id)
	s.selected = id
	return community, nil
}

// Create registers a new community whose id is derived from its name.
// The creator joins it.
func (s *CommunityService) Create(name, description, actor string) (domain.Community, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if err := s.validate.Struct(communityForm{Name: name, Description: description}); err != nil {
		return domain.Community{}, fmt.Errorf("%w: %v", errors.ErrInvalidCommunityName, err)
	}
	id := domain.Slugify(name)
	if id == "" {
		return domain.Community{}, errors.ErrInvalidCommunityName
	}
	// The tag channel carries Tag activities, which would read as messages.
	if id == domain.TagChannel {
		s.notifier.Error("The community id %q is reserved", id)
		return domain.Community{}, errors.ErrReservedCommunity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.find(id); exists {
		s.notifier.Error("A community with the id %q already exists", id)
		return domain.Community{}, errors.ErrCommunityExists
	}

	community := domain.Community{ID: id, Name: name, Description: description, CreatedBy: actor}
	s.communities = append(s.communities, community)
	s.prefs.SaveCommunities(s.custom())
	s.join(id)
	s.log.Info("Community created", "id", id, "actor", actor)
	return community, nil
}

// Join is idempotent.
func (s *CommunityService) Join(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.find(id); !ok {
		return errors.ErrCommunityNotFound
	}
	s.join(id)
	return nil
}

// Leave removes the membership. The default community cannot be left;
// leaving the selected community selects the default one.
func (s *CommunityService) Leave(id string) error {
	if id == domain.DefaultCommunityID {
		s.notifier.Warn("You cannot leave the default community")
		return errors.ErrDefaultCommunity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.find(id); !ok {
		return errors.ErrCommunityNotFound
	}
	s.leave(id)
	return nil
}

// Delete removes a community created by the actor, along with the membership.
func (s *CommunityService) Delete(id, actor string) error {
	if id == domain.DefaultCommunityID {
		s.notifier.Warn("The default community cannot be deleted")
		return errors.ErrDefaultCommunity
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	community, ok := s.find(id)
	if !ok {
		return errors.ErrCommunityNotFound
	}
	if community.CreatedBy == "" || community.CreatedBy != actor {
		s.notifier.Error("Only the creator can delete %s", community.Name)
		return errors.ErrNotCreator
	}

	s.communities = lo.Reject(s.communities, func(c domain.Community, _ int) bool {
		return c.ID == id
	})
	s.prefs.SaveCommunities(s.custom())
	s.leave(id)
	s.log.Info("Community deleted", "id", id, "actor", actor)
	return nil
}

func (s *CommunityService) find(id string) (domain.Community, bool) {
	return lo.Find(s.communities, func(c domain.Community) bool {
		return c.ID == id
	})
}

func (s *CommunityService) join(id string) {
	if lo.Contains(s.joined, id) {
		return
	}
	s.joined = append(s.joined, id)
	s.prefs.SaveJoinedCommunities(s.joined)
}

func (s *CommunityService) leave(id string) {
	s.joined = lo.Without(s.joined, id)
	s.prefs.SaveJoinedCommunities(s.joined)
	if s.selected == id {
		s.selected = domain.DefaultCommunityID
	}
}

// custom returns the user-created communities, the part of the registry that is persisted.
func (s *CommunityService) custom() []domain.Community {
	return append([]domain.Community(nil), s.communities[s.seeded:]...)
}
