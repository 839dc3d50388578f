package services

import (
	"chat-garden/contract"
	"chat-garden/domain"
	"chat-garden/errors"
	"chat-garden/projection"
	"context"
	"log/slog"
	"sync"
)

// Workspace is the view state of one session: the selected community and its
// timeline, the selected tag and its messages, and the sidebar.
type Workspace struct {
	mu          sync.Mutex
	session     domain.Session
	communities *CommunityService
	messages    *MessageService
	tags        *TagService
	notifier    *Notifier
	log         *slog.Logger

	timeline    *projection.Timeline
	selectedTag string
	tagged      []domain.TaggedMessage
	sidebarOpen bool
}

func NewWorkspace(session domain.Session, communities *CommunityService, messages *MessageService,
	tags *TagService, notifier *Notifier, log *slog.Logger) *Workspace {
	return &Workspace{
		session:     session,
		communities: communities,
		messages:    messages,
		tags:        tags,
		notifier:    notifier,
		log:         log,
		timeline:    projection.NewTimeline(communities.Selected().ID),
		sidebarOpen: true,
	}
}

func (w *Workspace) Session() domain.Session {
	return w.session
}

// SelectCommunity switches to the community, clears the selected tag and loads the timeline.
func (w *Workspace) SelectCommunity(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	community, err := w.communities.Select(id)
	if err != nil {
		w.notifier.Error("Unknown community %q", id)
		return err
	}
	w.selectedTag = ""
	w.tagged = nil

	timeline, err := w.messages.Load(ctx, w.session, community.ID)
	if err != nil {
		w.notifier.Error("Failed to load %s", community.Name)
		w.timeline = projection.NewTimeline(community.ID)
		return err
	}
	w.timeline = timeline
	return nil
}

// Refresh reloads the current timeline.
func (w *Workspace) Refresh(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.messages.Refresh(ctx, w.session, w.timeline)
}

// Apply folds a live store update into the current timeline.
func (w *Workspace) Apply(object domain.Object) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.messages.Apply(w.timeline, object)
}

func (w *Workspace) Timeline() []domain.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.Message(nil), w.timeline.Messages...)
}

func (w *Workspace) Channel() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timeline.Channel
}

func (w *Workspace) Send(ctx context.Context, content string) (domain.Message, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	message, err := w.messages.Send(ctx, w.session, w.timeline.Channel, content)
	if err != nil {
		return domain.Message{}, err
	}
	w.timeline.Upsert(message)
	return message, nil
}

func (w *Workspace) StartEdit(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timeline.StartEdit(key)
}

func (w *Workspace) SetEditBuffer(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timeline.SetBuffer(text)
}

func (w *Workspace) CancelEdit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timeline.CancelEdit()
}

// Editing returns the key of the message being edited and the buffer.
func (w *Workspace) Editing() (string, string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timeline.Editing()
}

func (w *Workspace) SaveEdit(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.messages.SaveEdit(ctx, w.session, w.timeline)
}

func (w *Workspace) DeleteMessage(ctx context.Context, key string, confirm contract.Confirmer) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.messages.Delete(ctx, w.session, w.timeline, key, confirm)
}

// Tag labels a message of the current timeline.
func (w *Workspace) Tag(ctx context.Context, key, text string) (domain.TagRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	message, ok := w.timeline.Find(key)
	if !ok {
		return domain.TagRecord{}, errors.ErrMessageUnknown
	}
	record, err := w.tags.AddTag(ctx, w.session, w.timeline.Channel, message, text)
	if err != nil {
		return domain.TagRecord{}, err
	}
	if w.selectedTag == record.Tag {
		w.tagged = w.tags.SelectTag(w.selectedTag)
	}
	return record, nil
}

func (w *Workspace) SelectTag(name string) []domain.TaggedMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selectedTag = name
	w.tagged = w.tags.SelectTag(name)
	return w.tagged
}

func (w *Workspace) ClearTag() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selectedTag = ""
	w.tagged = nil
}

func (w *Workspace) SelectedTag() (string, []domain.TaggedMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectedTag, w.tagged
}

func (w *Workspace) RemoveTag(ctx context.Context, tag, messageID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.tags.RemoveTag(ctx, w.session, tag, messageID); err != nil {
		return err
	}
	if w.selectedTag == tag {
		w.tagged = w.tags.SelectTag(tag)
	}
	return nil
}

// ToggleSidebar flips the sidebar and returns whether it is now open.
func (w *Workspace) ToggleSidebar() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sidebarOpen = !w.sidebarOpen
	return w.sidebarOpen
}

func (w *Workspace) SidebarOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sidebarOpen
}
