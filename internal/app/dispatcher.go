package app

import (
	"context"
	"sync"
)

// DispatchState is the phase of the submit-to-reply cycle.
type DispatchState int

const (
	StateIdle DispatchState = iota
	StateDispatching
	StateAwaitingCredential
)

func (s DispatchState) String() string {
	switch s {
	case StateDispatching:
		return "dispatching"
	case StateAwaitingCredential:
		return "awaiting-credential"
	default:
		return "idle"
	}
}

// User-facing prompts surfaced next to the credential dialog.
const (
	promptKeyMissing  = "API key is not configured. Enter a key to continue."
	promptKeyRejected = "The API key was rejected. Check it and enter it again."
	promptKeyUnusable = "Failed to initialize with this API key. Check it and enter it again."
)

// ClientFactory builds an AIClient from a saved API key. Construction must
// fail fast on a structurally unusable key.
type ClientFactory func(ctx context.Context, apiKey string) (AIClient, error)

// Dispatcher turns a submitted text into a durable state transition: append
// the user message, call the backend, classify the outcome, append the
// resulting model message. It also owns the single-slot pending message
// replayed once after a new key is saved.
type Dispatcher struct {
	ctx      context.Context
	sessions *SessionStore
	creds    *Credentials
	factory  ClientFactory
	logger   *Logger
	fallback string

	mu        sync.Mutex
	client    AIClient
	state     DispatchState
	pending   string
	loading   bool
	needKey   bool
	lastError string
	observers []func()
}

func NewDispatcher(ctx context.Context, sessions *SessionStore, creds *Credentials, factory ClientFactory, fallback string, logger *Logger) *Dispatcher {
	d := &Dispatcher{
		ctx:      ctx,
		sessions: sessions,
		creds:    creds,
		factory:  factory,
		logger:   logger,
		fallback: fallback,
	}
	// Rebuild or tear down the cached capability as the credential moves;
	// this is also the replay trigger.
	creds.Subscribe(d.onCredential)
	if key, ok := creds.Current(); ok {
		d.installClient(key)
	}
	return d
}

// Subscribe registers a callback fired synchronously after every state
// transition. The TUI reads the new state through the snapshot accessors.
func (d *Dispatcher) Subscribe(fn func()) {
	d.mu.Lock()
	d.observers = append(d.observers, fn)
	d.mu.Unlock()
}

func (d *Dispatcher) notify() {
	d.mu.Lock()
	observers := append([]func(){}, d.observers...)
	d.mu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// State returns the current phase.
func (d *Dispatcher) State() DispatchState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Loading reports whether a dispatch is in flight.
func (d *Dispatcher) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// CredentialRequired reports whether the UI should show the key dialog.
func (d *Dispatcher) CredentialRequired() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.needKey
}

// Pending returns the parked text, empty when none.
func (d *Dispatcher) Pending() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// LastError returns the last user-visible error string, empty when none.
func (d *Dispatcher) LastError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastError
}

// Submit runs one full dispatch cycle. With no capability configured the
// text is parked and the credential dialog is requested; nothing is
// appended to any session. Overlapping submits are rejected with ErrBusy.
func (d *Dispatcher) Submit(ctx context.Context, text string) error {
	d.mu.Lock()
	if d.loading {
		d.mu.Unlock()
		return ErrBusy
	}
	client := d.client
	if client == nil {
		d.pending = text
		d.needKey = true
		d.state = StateAwaitingCredential
		d.lastError = promptKeyMissing
		d.mu.Unlock()
		d.notify()
		return nil
	}
	d.loading = true
	d.state = StateDispatching
	d.lastError = ""
	d.mu.Unlock()
	d.notify()

	// The user message is durably appended and persisted before the call
	// goes out, so a crash mid-call leaves the conversation inspectable.
	sessionID, err := d.sessions.Append(d.sessions.CurrentID(), NewMessage(RoleUser, text))
	if err != nil {
		d.logger.Error("append user message", map[string]interface{}{"error": err.Error()})
	}

	reply, sendErr := client.SendMessage(ctx, text)

	// Appends happen while loading is still true so a racing submit can
	// never slide its user turn between this cycle's user and model turns.
	switch {
	case sendErr == nil:
		if _, err := d.sessions.Append(sessionID, NewMessage(RoleModel, reply)); err != nil {
			d.logger.Error("append model message", map[string]interface{}{"error": err.Error()})
		}
		d.mu.Lock()
		d.loading = false
		d.state = StateIdle
		d.mu.Unlock()
	case IsCredentialError(sendErr):
		d.logger.Warn("send classified as credential failure", map[string]interface{}{"error": sendErr.Error()})
		d.mu.Lock()
		d.loading = false
		d.client = nil
		d.pending = text
		d.needKey = true
		d.state = StateAwaitingCredential
		d.lastError = promptKeyRejected
		d.mu.Unlock()
		d.creds.Invalidate(sendErr.Error())
	default:
		// Transient failure: absorbed into the conversation, never
		// retried automatically, never touches the credential.
		d.logger.Error("send failed", map[string]interface{}{"error": sendErr.Error(), "session": sessionID})
		if _, err := d.sessions.Append(sessionID, NewMessage(RoleModel, d.fallback)); err != nil {
			d.logger.Error("append fallback message", map[string]interface{}{"error": err.Error()})
		}
		d.mu.Lock()
		d.loading = false
		d.state = StateIdle
		d.mu.Unlock()
	}
	d.notify()
	return nil
}

// DismissCredentialPrompt abandons the pending message without retrying.
func (d *Dispatcher) DismissCredentialPrompt() {
	d.mu.Lock()
	d.pending = ""
	d.needKey = false
	d.lastError = ""
	if d.state == StateAwaitingCredential {
		d.state = StateIdle
	}
	d.mu.Unlock()
	d.notify()
}

func (d *Dispatcher) installClient(key string) {
	client, err := d.factory(d.ctx, key)
	if err != nil {
		d.logger.Error("client construction failed", map[string]interface{}{"error": err.Error()})
		d.mu.Lock()
		d.client = nil
		d.needKey = true
		d.lastError = promptKeyUnusable
		d.state = StateAwaitingCredential
		d.mu.Unlock()
		// Tear the unusable key back out of storage; the absent
		// transition below is a no-op for the client.
		_ = d.creds.Clear()
		return
	}
	d.mu.Lock()
	d.client = client
	d.mu.Unlock()
}

// onCredential reacts to credential transitions. Saving a usable key
// dismisses the prompt and replays the parked text exactly once: the slot
// is cleared before the replay's call resolves, so a second save cannot
// dispatch it again.
func (d *Dispatcher) onCredential(state CredentialState, key string) {
	if state == CredentialAbsent {
		d.mu.Lock()
		d.client = nil
		d.mu.Unlock()
		d.notify()
		return
	}

	d.installClient(key)

	d.mu.Lock()
	if d.client == nil {
		d.mu.Unlock()
		d.notify()
		return
	}
	d.needKey = false
	d.lastError = ""
	replay := d.pending
	d.pending = ""
	if d.state == StateAwaitingCredential {
		d.state = StateIdle
	}
	d.mu.Unlock()
	d.notify()

	if replay != "" {
		if err := d.Submit(d.ctx, replay); err != nil {
			d.logger.Error("replay failed", map[string]interface{}{"error": err.Error()})
		}
	}
}
