package widget

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"salon-chat-client/internal/chat"
	"salon-chat-client/internal/faq"
)

// ViewMode is which surface the widget shows. It is derived on every read
// from (status, transcript length, last navigation action) rather than stored,
// so it can never fall out of sync with the machine.
type ViewMode string

const (
	ModeFAQList   ViewMode = "faq-list"
	ModeFAQAnswer ViewMode = "faq-answer"
	ModeChat      ViewMode = "chat"
)

// EscalationText is the fixed message sent when the visitor asks for a human.
const EscalationText = "من نیاز به کمک پشتیبان دارم"

// faqLoadError is the inline error shown when reference data fails to load.
const faqLoadError = "خطا در بارگذاری سوالات متداول"

type navAction int

const (
	navNone navAction = iota
	navSelectFAQ
	navBack
	navEscalate
)

// Sender is the outbound half of the realtime channel.
type Sender interface {
	Send(text string)
	IsConnected() bool
}

// FAQSource provides the widget's reference data, usually the cached REST
// client.
type FAQSource interface {
	InitialFAQs(ctx context.Context) ([]faq.FAQ, error)
}

// Controller drives the conversation widget: it decides which surface to
// show and exposes the user actions available on it.
type Controller struct {
	machine *chat.Machine
	sender  Sender
	source  FAQSource
	touch   func(ctx context.Context, id int) error
	enqueue func(fn func() error)
	log     *logrus.Logger

	mu         sync.Mutex
	entries    []faq.FAQ
	loadErr    string
	selected   *faq.FAQ
	lastAction navAction
	closed     bool
}

type Options struct {
	Machine *chat.Machine
	Sender  Sender
	Source  FAQSource
	// Touch registers an FAQ view on the backend. Optional.
	Touch func(ctx context.Context, id int) error
	// Enqueue runs fire-and-forget side effects. Defaults to a goroutine.
	Enqueue func(fn func() error)
	Log     *logrus.Logger
}

func NewController(opts Options) *Controller {
	if opts.Machine == nil {
		opts.Machine = chat.NewMachine()
	}
	if opts.Log == nil {
		opts.Log = logrus.New()
	}
	if opts.Enqueue == nil {
		opts.Enqueue = func(fn func() error) {
			go func() { _ = fn() }()
		}
	}
	return &Controller{
		machine: opts.Machine,
		sender:  opts.Sender,
		source:  opts.Source,
		touch:   opts.Touch,
		enqueue: opts.Enqueue,
		log:     opts.Log,
	}
}

// LoadFAQs fetches the reference data for the faq-list surface. A failure
// leaves the widget usable: an empty list with an inline error, with the
// escalate action untouched. Safe to call again as a retry.
func (c *Controller) LoadFAQs(ctx context.Context) {
	entries, err := c.source.InitialFAQs(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// The fetch outlived the widget; drop the result.
		return
	}
	if err != nil {
		c.log.WithError(err).Warn("faq reference data failed to load")
		c.entries = nil
		c.loadErr = faqLoadError
		return
	}
	c.entries = entries
	c.loadErr = ""
}

// Mode derives the current surface. Precedence: explicit escalation, then a
// live exchange (queued/admin status or more than the greeting in the
// transcript), then the selected FAQ, then the list.
func (c *Controller) Mode() ViewMode {
	c.mu.Lock()
	lastAction := c.lastAction
	selected := c.selected
	c.mu.Unlock()

	if lastAction == navEscalate {
		return ModeChat
	}

	status := c.machine.Status()
	if status == chat.StatusQueued || status == chat.StatusAdmin || c.machine.Len() > 1 {
		return ModeChat
	}

	if lastAction == navSelectFAQ && selected != nil {
		return ModeFAQAnswer
	}

	return ModeFAQList
}

// SelectFAQ opens one entry and registers the view on the backend without
// blocking the transition.
func (c *Controller) SelectFAQ(id int) bool {
	c.mu.Lock()
	var picked *faq.FAQ
	for i := range c.entries {
		if c.entries[i].ID == id {
			entry := c.entries[i]
			picked = &entry
			break
		}
	}
	if picked == nil {
		c.mu.Unlock()
		return false
	}
	c.selected = picked
	c.lastAction = navSelectFAQ
	c.mu.Unlock()

	if c.touch != nil {
		c.enqueue(func() error {
			if err := c.touch(context.Background(), id); err != nil {
				c.log.WithError(err).WithField("faq_id", id).Debug("faq view count update failed")
			}
			return nil
		})
	}
	return true
}

// Back returns to the FAQ list. Reaching the list from chat is only offered
// while the status is still bot and nothing beyond the greeting happened;
// Mode enforces that, so Back just records the navigation.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
	c.lastAction = navBack
}

// Escalate switches to the chat surface and always sends the fixed
// help-request text through the channel. It is the fallback for failed
// self-service, so nothing may block it.
func (c *Controller) Escalate() {
	c.mu.Lock()
	c.lastAction = navEscalate
	c.mu.Unlock()

	if c.sender != nil {
		c.sender.Send(EscalationText)
	}
}

// SendMessage forwards visitor input to the channel. Disconnected or closed
// conversations make it a no-op, never an error.
func (c *Controller) SendMessage(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if c.sender == nil || !c.sender.IsConnected() {
		return
	}
	if c.machine.Status() == chat.StatusClosed {
		return
	}
	c.sender.Send(text)
}

// CanSend reports whether the input affordance should be enabled.
func (c *Controller) CanSend() bool {
	if c.sender == nil || !c.sender.IsConnected() {
		return false
	}
	return c.machine.Status() != chat.StatusClosed
}

func (c *Controller) FAQs() []faq.FAQ {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]faq.FAQ, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Controller) LoadError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

func (c *Controller) Selected() (faq.FAQ, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return faq.FAQ{}, false
	}
	return *c.selected, true
}

func (c *Controller) Status() chat.Status {
	return c.machine.Status()
}

func (c *Controller) Transcript() []chat.Entry {
	return c.machine.Transcript()
}

func (c *Controller) QueuePosition() (int, bool) {
	return c.machine.QueuePosition()
}

// Close marks the widget unmounted so late fetches stop mutating state.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
