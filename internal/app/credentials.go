package app

import (
	"strings"
	"sync"
)

// CredentialState tells whether a usable API key is configured.
type CredentialState int

const (
	CredentialAbsent CredentialState = iota
	CredentialPresent
)

// Credentials holds the API key, persists it in its own storage slot, and
// notifies subscribers on every transition so cached client capabilities can
// be rebuilt or torn down without polling.
type Credentials struct {
	storage Storage
	logger  *Logger

	mu        sync.Mutex
	value     string
	observers []func(CredentialState, string)
}

func NewCredentials(storage Storage, logger *Logger) *Credentials {
	c := &Credentials{storage: storage, logger: logger}
	if data, err := c.storage.Load(StorageKeyCredential); err == nil {
		c.value = strings.TrimSpace(string(data))
	} else if err != ErrNotFound {
		logger.Error("load credential", map[string]interface{}{"error": err.Error()})
	}
	return c
}

// Subscribe registers a callback fired synchronously after each state
// transition (save, clear, invalidate).
func (c *Credentials) Subscribe(fn func(CredentialState, string)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Current returns the key and whether one is configured.
func (c *Credentials) Current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.value != ""
}

// Save stores a new key. Blank input is rejected and leaves the state
// untouched.
func (c *Credentials) Save(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrBlankCredential
	}
	c.mu.Lock()
	if err := c.storage.Save(StorageKeyCredential, []byte(key)); err != nil {
		c.mu.Unlock()
		return err
	}
	c.value = key
	observers := append([]func(CredentialState, string){}, c.observers...)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(CredentialPresent, key)
	}
	return nil
}

// Clear removes the stored key. Subscribers observing the absent state must
// tear down any live client built from the old key.
func (c *Credentials) Clear() error {
	c.mu.Lock()
	if err := c.storage.Clear(StorageKeyCredential); err != nil {
		c.mu.Unlock()
		return err
	}
	c.value = ""
	observers := append([]func(CredentialState, string){}, c.observers...)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(CredentialAbsent, "")
	}
	return nil
}

// Invalidate is Clear for keys the backend rejected; kept separate so
// callers can log the reason.
func (c *Credentials) Invalidate(reason string) {
	c.logger.Warn("invalidating credential", map[string]interface{}{"reason": reason})
	_ = c.Clear()
}
