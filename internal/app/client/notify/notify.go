// Package notify delivers short user-facing messages about queue and sync
// outcomes.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/exp/slog"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

type Notification struct {
	Kind    Kind
	Title   string
	Message string
}

func (n Notification) String() string {
	if n.Message == "" {
		return n.Title
	}
	return n.Title + ": " + n.Message
}

type Notifier interface {
	Notify(n Notification)
}

// Func adapts a plain function to Notifier.
type Func func(Notification)

func (f Func) Notify(n Notification) { f(n) }

// Console prints notifications in color.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Notify(n Notification) {
	var title string
	switch n.Kind {
	case KindSuccess:
		title = color.GreenString("✓ %s", n.Title)
	case KindError:
		title = color.RedString("✗ %s", n.Title)
	default:
		title = color.CyanString("• %s", n.Title)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if n.Message == "" {
		fmt.Fprintln(c.out, title)
		return
	}
	fmt.Fprintf(c.out, "%s\n  %s\n", title, n.Message)
}

// Log writes notifications to a logger. Used by long-running commands whose
// output goes to logs only.
type Log struct {
	log *slog.Logger
}

func NewLog(log *slog.Logger) *Log {
	return &Log{log: log.With("component", "notify")}
}

func (l *Log) Notify(n Notification) {
	attrs := []any{"kind", n.Kind, "title", n.Title}
	if n.Message != "" {
		attrs = append(attrs, "message", n.Message)
	}
	if n.Kind == KindError {
		l.log.Warn("notification", attrs...)
		return
	}
	l.log.Info("notification", attrs...)
}

// Recorder keeps every notification it gets.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.all...)
}

// Last returns the most recent notification and false when there was none.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.all) == 0 {
		return Notification{}, false
	}
	return r.all[len(r.all)-1], true
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, x := range m {
		x.Notify(n)
	}
}
