package app

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/freelance-hub/jobhub/internal/session"
)

// SessionMsg delivers a store write to the update loop.
type SessionMsg struct {
	Event session.Event
}

// feed bridges store listeners, which run on the writer's goroutine, into
// Bubble Tea messages.
type feed struct {
	ch   chan session.Event
	stop func()
}

const feedBuffer = 64

func newFeed(r session.Reader) *feed {
	f := &feed{ch: make(chan session.Event, feedBuffer)}
	f.stop = r.Subscribe(func(ev session.Event) {
		select {
		case f.ch <- ev:
		default:
			// The loop re-reads Current() on every message, so a dropped
			// event only loses its debug log line.
			log.Printf("app: session feed full, dropped %s event", ev.Kind)
		}
	})
	return f
}

// Next blocks until the next store event or until ctx is done.
func (f *feed) Next(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-f.ch:
			return SessionMsg{Event: ev}
		case <-ctx.Done():
			return nil
		}
	}
}

func (f *feed) Close() { f.stop() }
