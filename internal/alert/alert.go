// Package alert sends out-of-band crisis notifications by email.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalambet/wellbuddy/internal/storage"
)

// Subject is the subject line of every crisis alert.
const Subject = "Crisis Alert from Wellness Buddy"

// ErrNotConfigured means sender credentials or a recipient are missing.
var ErrNotConfigured = errors.New("alert transport not configured")

// Config carries the sender credentials and alert defaults.
type Config struct {
	Sender           string
	Password         string
	DefaultRecipient string
	Hotline          string
	Host             string
	Port             int
}

// Message is a single plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers one message. Implementations must not retry.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Recorder persists dispatch outcomes.
type Recorder interface {
	SaveAlert(a storage.AlertRecord) error
}

// Result is the outcome of one Dispatch call.
type Result struct {
	Sent      bool
	Recipient string
	Err       error
}

// Dispatcher resolves the recipient, composes the alert and makes exactly one
// delivery attempt. It never panics and never retries.
type Dispatcher struct {
	cfg      Config
	sender   Sender
	recorder Recorder
	now      func() time.Time
}

// NewDispatcher returns a dispatcher delivering through sender. recorder may
// be nil.
func NewDispatcher(cfg Config, sender Sender, recorder Recorder) *Dispatcher {
	return &Dispatcher{cfg: cfg, sender: sender, recorder: recorder, now: time.Now}
}

// Recipient picks the first non-empty of override, the configured default
// recipient and the sender address.
func (d *Dispatcher) Recipient(override string) string {
	for _, r := range []string{override, d.cfg.DefaultRecipient, d.cfg.Sender} {
		if r != "" {
			return r
		}
	}
	return ""
}

// Body renders the alert text for the triggering message.
func (d *Dispatcher) Body(text string) string {
	body := `Crisis detected in message: "` + text + `".`
	if d.cfg.Hotline != "" {
		body += fmt.Sprintf(" Please call this hotline: %s.", d.cfg.Hotline)
	}
	return body
}

// Dispatch sends a crisis alert about text. override, when non-empty, takes
// precedence over the configured recipient.
func (d *Dispatcher) Dispatch(ctx context.Context, text, override string) Result {
	res := Result{Recipient: d.Recipient(override)}

	if d.cfg.Sender == "" || d.cfg.Password == "" || res.Recipient == "" || d.sender == nil {
		res.Err = ErrNotConfigured
	} else {
		res.Err = d.send(ctx, Message{
			From:    d.cfg.Sender,
			To:      res.Recipient,
			Subject: Subject,
			Body:    d.Body(text),
		})
		res.Sent = res.Err == nil
	}

	if res.Sent {
		slog.Info("crisis alert sent", "recipient", res.Recipient)
	} else {
		slog.Warn("crisis alert failed", "recipient", res.Recipient, "error", res.Err)
	}
	d.record(res)
	return res
}

func (d *Dispatcher) send(ctx context.Context, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("alert transport panic: %v", r)
		}
	}()
	return d.sender.Send(ctx, msg)
}

func (d *Dispatcher) record(res Result) {
	if d.recorder == nil {
		return
	}
	rec := storage.AlertRecord{
		CreatedAt: d.now(),
		Recipient: res.Recipient,
		Delivered: res.Sent,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	if err := d.recorder.SaveAlert(rec); err != nil {
		slog.Warn("recording crisis alert", "error", err)
	}
}
