package services

import (
	"bytes"
	"chat-garden/domain"
	"chat-garden/errors"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var pngIcon = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestProfileService_Load_Latest(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	objects := newObjectStore(t)
	svc := NewProfileService(objects, newNotifier(), slog.Default())

	profile, err := svc.Load(ctx, bob, "alice")
	req.NoError(err)
	req.Nil(profile)

	// Two records, the newest by published wins whatever the write order
	for _, p := range []domain.Profile{
		{Name: "Alice (new)", Describes: "alice", Published: 20},
		{Name: "Alice (old)", Describes: "alice", Published: 10},
	} {
		_, err = objects.Put(ctx, domain.Object{Channels: []string{"alice"}, Value: p.Value()}, alice)
		req.NoError(err)
	}
	// A record describing someone else on the same channel is ignored
	_, err = objects.Put(ctx, domain.Object{
		Channels: []string{"alice"},
		Value:    domain.Profile{Name: "Mallory", Describes: "mallory", Published: 99}.Value(),
	}, bob)
	req.NoError(err)

	profile, err = svc.Load(ctx, bob, "alice")
	req.NoError(err)
	req.NotNil(profile)
	req.Equal("Alice (new)", profile.Name)
	req.Equal("Alice (new)", domain.DisplayName(profile, "alice"))
}

func TestProfileService_Save_Creates_Then_Overwrites(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	objects := newObjectStore(t)
	svc := NewProfileService(objects, newNotifier(), slog.Default())
	svc.now = clock(1_000)
	session := domain.Session{Actor: "https://garden.example/actors/alice"}

	// An empty name falls back on the shortened actor
	created, err := svc.Save(ctx, session, ProfileForm{Pronouns: " she/her "})
	req.NoError(err)
	req.Equal("alice", created.Name)
	req.Equal("she/her", created.Pronouns)
	req.NotEmpty(created.URL)

	// A fresh service finds the record and overwrites it in place
	other := NewProfileService(objects, newNotifier(), slog.Default())
	other.now = clock(2_000)
	updated, err := other.Save(ctx, session, ProfileForm{Name: "Alice", Bio: "Gardener"})
	req.NoError(err)
	req.Equal(created.URL, updated.URL)

	records, err := objects.Discover(ctx, []string{session.Actor}, domain.ProfileSchema(session.Actor), session)
	req.NoError(err)
	req.Len(records, 1)

	loaded, err := svc.Load(ctx, session, session.Actor)
	req.NoError(err)
	req.Equal("Alice", loaded.Name)
	req.Equal("Gardener", loaded.Bio)
	req.Equal(int64(2_001), loaded.Published)
}

func TestProfileService_Ignores_Profiles_Written_By_Others(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	objects := newObjectStore(t)
	svc := NewProfileService(objects, newNotifier(), slog.Default())
	svc.now = clock(1_000)

	// Anyone may write to the alice channel
	forged, err := objects.Put(ctx, domain.Object{
		Channels: []string{"alice"},
		Value:    domain.Profile{Name: "Forged", Describes: "alice", Published: 1 << 50}.Value(),
	}, bob)
	req.NoError(err)

	profile, err := svc.Load(ctx, alice, "alice")
	req.NoError(err)
	req.Nil(profile)

	// Saving creates alice's own record instead of targeting the forged one
	saved, err := svc.Save(ctx, alice, ProfileForm{Name: "Alice"})
	req.NoError(err)
	req.NotEqual(forged.URL, saved.URL)

	// Overwrites keep targeting alice's record
	fresh := NewProfileService(objects, newNotifier(), slog.Default())
	fresh.now = clock(2_000)
	updated, err := fresh.Save(ctx, alice, ProfileForm{Name: "Alice", Bio: "Gardener"})
	req.NoError(err)
	req.Equal(saved.URL, updated.URL)

	profile, err = svc.Load(ctx, bob, "alice")
	req.NoError(err)
	req.NotNil(profile)
	req.Equal("Alice", profile.Name)
	req.Equal("Gardener", profile.Bio)
}

func TestProfileService_Save_Validation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	svc := NewProfileService(newObjectStore(t), newNotifier(), slog.Default())

	_, err := svc.Save(ctx, domain.Session{}, ProfileForm{Name: "Nobody"})
	req.ErrorIs(err, errors.ErrNoSession)

	_, err = svc.Save(ctx, alice, ProfileForm{Name: strings.Repeat("a", 65)})
	req.ErrorIs(err, errors.ErrInvalidProfile)

	_, err = svc.Save(ctx, alice, ProfileForm{Icon: "not a url"})
	req.ErrorIs(err, errors.ErrInvalidProfile)

	_, err = svc.Save(ctx, alice, ProfileForm{Icon: "https://garden.example/alice.png"})
	req.NoError(err)
}

func TestProfileService_IconFromFile(t *testing.T) {
	req := require.New(t)
	svc := NewProfileService(newObjectStore(t), newNotifier(), slog.Default())

	icon, err := svc.IconFromFile(bytes.NewReader(pngIcon))
	req.NoError(err)
	req.True(strings.HasPrefix(icon, "data:image/png;base64,"))

	// The data URL is accepted as an icon
	_, err = svc.Save(context.Background(), alice, ProfileForm{Icon: icon})
	req.NoError(err)

	_, err = svc.IconFromFile(strings.NewReader("plain words"))
	req.ErrorIs(err, errors.ErrNotAnImage)

	_, err = svc.IconFromFile(bytes.NewReader(make([]byte, MaxIconSize+1)))
	req.Error(err)
}
