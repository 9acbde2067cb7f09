// Package pipeline runs a chat turn and wellness-plan generation end to end,
// degrading to fixed fallbacks when the external services fail.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalambet/wellbuddy/internal/alert"
	"github.com/kalambet/wellbuddy/internal/composer"
	"github.com/kalambet/wellbuddy/internal/crisis"
	"github.com/kalambet/wellbuddy/internal/sentiment"
	"github.com/kalambet/wellbuddy/internal/storage"
)

// FallbackReply stands in for the model text when generation fails.
const FallbackReply = "I'm here for you. Could you tell me more?"

// Generator produces model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Alerter delivers a crisis alert and reports whether it went out.
type Alerter interface {
	Dispatch(ctx context.Context, text, override string) alert.Result
}

// ChatStore persists the conversation and reads the emergency contact.
type ChatStore interface {
	SaveMessage(m storage.ChatMessage) error
	GetSetting(key string) (string, error)
}

// Chat orchestrates one conversational turn.
type Chat struct {
	store     ChatStore
	analyzer  sentiment.Analyzer
	generator Generator
	scanner   *crisis.Scanner
	alerter   Alerter
}

// NewChat wires a chat pipeline. A nil scanner uses the default keywords.
func NewChat(store ChatStore, analyzer sentiment.Analyzer, gen Generator, scanner *crisis.Scanner, alerter Alerter) *Chat {
	if scanner == nil {
		scanner = crisis.NewScanner(nil)
	}
	return &Chat{
		store:     store,
		analyzer:  analyzer,
		generator: gen,
		scanner:   scanner,
		alerter:   alerter,
	}
}

// Turn handles one user message:
//  1. persist the user message
//  2. score sentiment (0 on failure)
//  3. generate the model reply (FallbackReply on failure)
//  4. append the coping suggestion
//  5. on a crisis keyword, dispatch an alert and append its outcome
//  6. persist and return the assistant reply
//
// Only persistence failures are returned as errors.
func (c *Chat) Turn(ctx context.Context, message string) (string, error) {
	start := time.Now()

	if err := c.store.SaveMessage(storage.ChatMessage{Role: storage.RoleUser, Content: message}); err != nil {
		return "", fmt.Errorf("saving user message: %w", err)
	}

	compound := 0.0
	if c.analyzer != nil {
		if scores, err := c.analyzer.Score(message); err != nil {
			slog.Warn("sentiment scoring failed, assuming neutral", "error", err)
		} else {
			compound = scores.Compound
		}
	}

	aiText := c.generate(ctx, composer.ChatPrompt(message, compound))
	reply := composer.Compose(aiText, compound)

	if matched := c.scanner.Matches(message); len(matched) > 0 {
		slog.Warn("crisis keywords detected", "keywords", matched)
		res := c.dispatch(ctx, message)
		reply = composer.WithCrisisNotice(reply, res.Sent)
	}

	if err := c.store.SaveMessage(storage.ChatMessage{Role: storage.RoleAssistant, Content: reply}); err != nil {
		return "", fmt.Errorf("saving assistant message: %w", err)
	}

	slog.Debug("chat turn complete", "compound", compound, "duration_ms", time.Since(start).Milliseconds())
	return reply, nil
}

func (c *Chat) generate(ctx context.Context, prompt string) string {
	if c.generator == nil {
		return FallbackReply
	}
	text, err := c.generator.Generate(ctx, prompt)
	if err != nil || text == "" {
		slog.Warn("ai reply failed, using fallback", "error", err)
		return FallbackReply
	}
	return text
}

func (c *Chat) dispatch(ctx context.Context, message string) alert.Result {
	if c.alerter == nil {
		return alert.Result{Err: alert.ErrNotConfigured}
	}
	// The alert must go out even if the client has already hung up; the
	// transport timeout still bounds the single attempt.
	return c.alerter.Dispatch(context.WithoutCancel(ctx), message, c.emergencyContact())
}

func (c *Chat) emergencyContact() string {
	v, err := c.store.GetSetting(storage.SettingEmergencyEmail)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("reading emergency contact", "error", err)
		}
		return ""
	}
	return v
}
