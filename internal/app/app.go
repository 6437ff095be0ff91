package app

import (
	"context"
	"fmt"
	"io"
)

// Application owns the process-wide context: storage, session store,
// credential holder, and dispatcher. Created at startup, torn down with
// Close; no package-level state.
type Application struct {
	Config     Config
	Logger     *Logger
	Storage    Storage
	Sessions   *SessionStore
	Creds      *Credentials
	Dispatcher *Dispatcher

	cancel context.CancelFunc
}

// Options tweak construction for tests and the --mock demo mode.
type Options struct {
	// MockClient replaces the Gemini capability with a scripted one.
	MockClient bool
	// LogWriter overrides the default log file destination.
	LogWriter io.Writer
}

func New(cfg Config, opts Options) (*Application, error) {
	logWriter := opts.LogWriter
	if logWriter == nil {
		logWriter = DefaultLogWriter(cfg.DataDir)
	}
	logger := NewLogger(logWriter)

	storage, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	var factory ClientFactory
	if opts.MockClient {
		factory = func(context.Context, string) (AIClient, error) {
			return NewMockClient(), nil
		}
	} else {
		factory = func(ctx context.Context, apiKey string) (AIClient, error) {
			return NewGeminiClient(ctx, apiKey, cfg.Model, cfg.SystemPrompt, cfg.MaxOutputTokens)
		}
	}

	sessions := NewSessionStore(storage, cfg.Greeting, logger)
	creds := NewCredentials(storage, logger)
	dispatcher := NewDispatcher(ctx, sessions, creds, factory, cfg.FallbackReply, logger)

	return &Application{
		Config:     cfg,
		Logger:     logger,
		Storage:    storage,
		Sessions:   sessions,
		Creds:      creds,
		Dispatcher: dispatcher,
		cancel:     cancel,
	}, nil
}

func openStorage(cfg Config) (Storage, error) {
	switch cfg.Storage {
	case "", "file":
		return NewFileStorage(cfg.DataDir), nil
	case "sqlite":
		return NewSQLiteStorage(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

func (a *Application) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
