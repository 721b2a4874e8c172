package session

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StorageKey is the fixed key the session identifier lives under, shared with
// the browser widget so a visitor keeps one identity across clients.
const StorageKey = "chat_session_key"

// Store is durable storage for the visitor session identifier.
type Store interface {
	Load() (string, bool)
	Save(id string) error
}

// Provider hands out the per-install session identifier that addresses the
// chat channel. The identifier is created once and never rewritten; when the
// store is unavailable the provider degrades to a fresh identifier per call,
// which costs the visitor their queue continuity but never fails.
type Provider struct {
	store Store
	newID func() string
	log   *logrus.Logger
}

func NewProvider(store Store, log *logrus.Logger) *Provider {
	if log == nil {
		log = logrus.New()
	}
	return &Provider{
		store: store,
		newID: uuid.NewString,
		log:   log,
	}
}

func (p *Provider) GetOrCreateSessionID() string {
	if id, ok := p.store.Load(); ok && id != "" {
		return id
	}

	id := p.newID()
	if err := p.store.Save(id); err != nil {
		p.log.WithError(err).Warn("session store unavailable, visitor continuity lost")
	}
	return id
}
