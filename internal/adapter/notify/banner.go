package notify

import (
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/metrics"
	"go.uber.org/zap"
)

// Message is what the banner currently displays.
type Message struct {
	Text    string
	IsError bool
	ShownAt time.Time
}

// Sink receives every shown message and a nil on hide.
type Sink func(msg *Message)

// Banner is a single-slot timed message display. Show never blocks; a newer
// message replaces the visible one and restarts the hide timer.
type Banner struct {
	duration time.Duration
	sink     Sink
	logger   *logger.Logger
	metrics  *metrics.MetricsManager

	mu      sync.Mutex
	current *Message
	gen     uint64
	timer   *time.Timer
}

func NewBanner(duration time.Duration, sink Sink, log *logger.Logger, m *metrics.MetricsManager) *Banner {
	return &Banner{
		duration: duration,
		sink:     sink,
		logger:   log.Named("Notifications"),
		metrics:  m,
	}
}

func (b *Banner) Show(text string, isError bool) {
	msg := &Message{Text: text, IsError: isError, ShownAt: time.Now()}

	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.current = msg
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.duration, func() { b.hide(gen) })
	b.mu.Unlock()

	kind := "info"
	if isError {
		kind = "error"
	}
	b.metrics.Notification(kind)
	b.logger.Debug("Notification shown", zap.String("kind", kind), zap.String("text", text))
	if b.sink != nil {
		b.sink(msg)
	}
}

// hide clears the banner unless a newer message took its place.
func (b *Banner) hide(gen uint64) {
	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return
	}
	b.current = nil
	b.timer = nil
	b.mu.Unlock()

	if b.sink != nil {
		b.sink(nil)
	}
}

// Current returns the visible message, nil when hidden.
func (b *Banner) Current() *Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	m := *b.current
	return &m
}

// Close stops the pending hide timer.
func (b *Banner) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
