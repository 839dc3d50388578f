package services

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
)

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeWarn  NoticeLevel = "warn"
	NoticeError NoticeLevel = "error"

	DefaultNoticeTTL = 5 * time.Second
)

// Notice is a transient user-facing toast.
type Notice struct {
	Level NoticeLevel
	Text  string
	At    time.Time
}

// Notifier collects toasts until they expire or are drained.
type Notifier struct {
	mu      sync.Mutex
	log     *slog.Logger
	ttl     time.Duration
	notices []Notice
	now     func() time.Time
}

func NewNotifier(log *slog.Logger, ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &Notifier{log: log, ttl: ttl, now: time.Now}
}

func (n *Notifier) Info(format string, args ...any) {
	n.push(NoticeInfo, fmt.Sprintf(format, args...))
}

func (n *Notifier) Warn(format string, args ...any) {
	n.push(NoticeWarn, fmt.Sprintf(format, args...))
}

func (n *Notifier) Error(format string, args ...any) {
	n.push(NoticeError, fmt.Sprintf(format, args...))
}

func (n *Notifier) push(level NoticeLevel, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, Notice{Level: level, Text: text, At: n.now()})
	n.log.Debug("Notice", "level", level, "text", text)
}

// Pending returns the notices that have not expired yet, oldest first.
func (n *Notifier) Pending() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expire()
	return append([]Notice(nil), n.notices...)
}

// Drain returns the pending notices and forgets them.
func (n *Notifier) Drain() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expire()
	drained := n.notices
	n.notices = nil
	return drained
}

func (n *Notifier) expire() {
	deadline := n.now().Add(-n.ttl)
	n.notices = lo.Filter(n.notices, func(notice Notice, _ int) bool {
		return notice.At.After(deadline)
	})
}
