package services

import (
	"chat-garden/contract"
	"chat-garden/domain"
	"chat-garden/domain/mimetypes"
	"chat-garden/errors"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// MaxIconSize bounds the files turned into data URL icons.
const MaxIconSize = 256 * 1024

// ProfileForm is what the user edits. Blank fields are stored blank,
// except the name which falls back on the shortened actor.
type ProfileForm struct {
	Name     string `validate:"max=64"`
	Pronouns string `validate:"max=32"`
	Bio      string `validate:"max=500"`
	Icon     string `validate:"omitempty,url|datauri"`
}

// ProfileService loads and saves the profile record of actors.
type ProfileService struct {
	mu       sync.Mutex
	store    contract.IObjectStore
	notifier *Notifier
	log      *slog.Logger
	validate *validator.Validate
	urls     map[string]string
	now      func() time.Time
}

func NewProfileService(store contract.IObjectStore, notifier *Notifier, log *slog.Logger) *ProfileService {
	return &ProfileService{
		store:    store,
		notifier: notifier,
		log:      log,
		validate: validator.New(),
		urls:     make(map[string]string),
		now:      time.Now,
	}
}

// Load returns the latest profile the actor wrote about themselves, nil when there is none.
// Records describing the actor but written by someone else are ignored.
func (s *ProfileService) Load(ctx context.Context, session domain.Session, actor string) (*domain.Profile, error) {
	objects, err := s.store.Discover(ctx, []string{actor}, domain.ProfileSchema(actor), session)
	if err != nil {
		s.log.Error("Failed to load profile", "actor", actor, "error", err)
		return nil, err
	}
	objects = lo.Filter(objects, func(o domain.Object, _ int) bool {
		return o.Actor == actor
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(objects) == 0 {
		delete(s.urls, actor)
		return nil, nil
	}
	latest := lo.MaxBy(objects, func(a, b domain.Object) bool {
		return domain.ProfileFromObject(a).Published > domain.ProfileFromObject(b).Published
	})
	profile := domain.ProfileFromObject(latest)
	s.urls[actor] = profile.URL
	return &profile, nil
}

// Save writes the profile of the session actor, overwriting the known record in place.
func (s *ProfileService) Save(ctx context.Context, session domain.Session, form ProfileForm) (domain.Profile, error) {
	if session.Actor == "" {
		return domain.Profile{}, errors.ErrNoSession
	}
	form = ProfileForm{
		Name:     strings.TrimSpace(form.Name),
		Pronouns: strings.TrimSpace(form.Pronouns),
		Bio:      strings.TrimSpace(form.Bio),
		Icon:     strings.TrimSpace(form.Icon),
	}
	if err := s.validate.Struct(form); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %v", errors.ErrInvalidProfile, err)
	}
	if form.Name == "" {
		form.Name = domain.ShortenActor(session.Actor)
	}

	url, known := s.knownURL(session.Actor)
	if !known {
		existing, err := s.Load(ctx, session, session.Actor)
		if err != nil {
			return domain.Profile{}, err
		}
		if existing != nil {
			url = existing.URL
		}
	}

	profile := domain.Profile{
		URL:       url,
		Name:      form.Name,
		Pronouns:  form.Pronouns,
		Bio:       form.Bio,
		Icon:      form.Icon,
		Describes: session.Actor,
		Published: s.now().UnixMilli(),
	}
	stored, err := s.store.Put(ctx, domain.Object{
		URL:      url,
		Channels: []string{session.Actor},
		Value:    profile.Value(),
	}, session)
	if err != nil {
		s.log.Error("Failed to save profile", "actor", session.Actor, "error", err)
		s.notifier.Error("Failed to save profile")
		return domain.Profile{}, err
	}

	profile.URL = stored.URL
	s.mu.Lock()
	s.urls[session.Actor] = stored.URL
	s.mu.Unlock()
	return profile, nil
}

// IconFromFile turns an image file into a data URL usable as an icon.
func (s *ProfileService) IconFromFile(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxIconSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxIconSize {
		return "", fmt.Errorf("icon larger than %d bytes", MaxIconSize)
	}
	detected := mimetypes.Detect(data)
	if !detected.IsImage() {
		return "", fmt.Errorf("%w: %s", errors.ErrNotAnImage, detected)
	}
	return fmt.Sprintf("data:%s;base64,%s", detected, base64.StdEncoding.EncodeToString(data)), nil
}

func (s *ProfileService) knownURL(actor string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url, ok := s.urls[actor]
	return url, ok
}
