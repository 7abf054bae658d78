// Package notification raises operator alerts: a short sound plus a local
// alert. Both are best-effort and never fail the caller.
package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-hotel-dashboard/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnsupported is returned by a capability that cannot run in the current
// environment, e.g. no operator screen is connected.
var ErrUnsupported = errors.New("notification capability not supported")

// DefaultErrorWindow is how long an error alert title stays suppressed after
// it was shown.
const DefaultErrorWindow = 4 * time.Second

type Player interface {
	PlaySound(ctx context.Context) error
}

type Presenter interface {
	ShowAlert(ctx context.Context, n models.Notification) error
}

// Sink delivers alerts to the sound and alert capabilities. Either may be
// nil, which makes that side effect a no-op.
type Sink struct {
	player    Player
	presenter Presenter
	logger    *zap.Logger
	window    time.Duration
	now       func() time.Time

	mu        sync.Mutex
	lastShown map[string]time.Time
	inflight  sync.WaitGroup
}

func NewSink(player Player, presenter Presenter, window time.Duration, logger *zap.Logger) *Sink {
	if window <= 0 {
		window = DefaultErrorWindow
	}
	return &Sink{
		player:    player,
		presenter: presenter,
		logger:    logger,
		window:    window,
		now:       time.Now,
		lastShown: make(map[string]time.Time),
	}
}

// Notify plays the sound and shows an arrival alert in the background.
func (s *Sink) Notify(title, body string) {
	n := s.newNotification(models.AlertArrival, title, body)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx := context.Background()
		if s.player != nil {
			s.safely("sound", func() error { return s.player.PlaySound(ctx) })
		}
		if s.presenter != nil {
			s.safely("alert", func() error { return s.presenter.ShowAlert(ctx, n) })
		}
	}()
}

// ReportError shows an error alert unless one with the same title was shown
// within the suppression window. It reports whether the alert was shown.
func (s *Sink) ReportError(title, message string) bool {
	now := s.now()
	s.mu.Lock()
	if last, ok := s.lastShown[title]; ok && now.Sub(last) < s.window {
		s.mu.Unlock()
		s.logger.Debug("Error alert suppressed",
			zap.String("title", title),
			zap.String("message", message),
		)
		return false
	}
	s.lastShown[title] = now
	s.mu.Unlock()

	s.logger.Warn("Error alert",
		zap.String("title", title),
		zap.String("message", message),
	)
	if s.presenter != nil {
		n := s.newNotification(models.AlertError, title, message)
		s.safely("alert", func() error { return s.presenter.ShowAlert(context.Background(), n) })
	}
	return true
}

// Wait blocks until background notifications have finished.
func (s *Sink) Wait() {
	s.inflight.Wait()
}

func (s *Sink) newNotification(kind, title, body string) models.Notification {
	return models.Notification{
		ID:         uuid.NewString(),
		Kind:       kind,
		Title:      title,
		Body:       body,
		Created_at: s.now(),
	}
}

func (s *Sink) safely(capability string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Notification capability panicked",
				zap.String("capability", capability),
				zap.Any("panic", r),
			)
		}
	}()

	err := fn()
	switch {
	case err == nil:
	case errors.Is(err, ErrUnsupported):
		s.logger.Debug("Notification capability unavailable",
			zap.String("capability", capability),
		)
	default:
		s.logger.Warn("Notification failed",
			zap.String("capability", capability),
			zap.Error(err),
		)
	}
}
