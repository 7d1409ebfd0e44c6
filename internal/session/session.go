// Package session wires the event bus and run history around one command.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vmunix/distill/internal/events"
	"github.com/vmunix/distill/internal/migrations"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

// subscriberBuffer bounds events waiting for the handler.
const subscriberBuffer = 256

// Session owns the event bus and, when enabled, the history database.
type Session struct {
	db      *sql.DB
	history *events.EventLog
	bus     *events.Bus
	log     *slog.Logger
}

// Open creates a session. An empty historyPath runs without persistence.
func Open(ctx context.Context, historyPath string, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{log: log}

	if historyPath != "" {
		db, err := openHistory(ctx, historyPath)
		if err != nil {
			return nil, err
		}
		s.db = db
		s.history = events.NewEventLog(db)
	}
	s.bus = events.NewBus(s.history, log)
	return s, nil
}

// openHistory opens the SQLite history database at path and applies the schema.
func openHistory(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Bus returns the session's event bus.
func (s *Session) Bus() *events.Bus {
	return s.bus
}

// History returns the event log, or nil when persistence is disabled.
func (s *Session) History() *events.EventLog {
	return s.history
}

// Run calls work while handle receives every event published on the bus.
// It returns once work has finished and every delivered event was handled.
func (s *Session) Run(ctx context.Context, handle func(events.Event), work func(ctx context.Context) error) error {
	ch := s.bus.SubscribeAll(subscriberBuffer)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for e := range ch {
			if handle != nil {
				handle(e)
			}
		}
		return nil
	})
	g.Go(func() error {
		// Closing the subscription lets the handler loop drain and exit.
		defer s.bus.Unsubscribe(ch)
		return work(ctx)
	})

	return g.Wait()
}

// Close shuts down the bus and the history database.
func (s *Session) Close() error {
	_ = s.bus.Close()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
