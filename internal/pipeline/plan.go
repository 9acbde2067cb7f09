package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kalambet/wellbuddy/internal/composer"
	"github.com/kalambet/wellbuddy/internal/storage"
)

// FallbackPlan is returned when the model cannot produce a plan.
const FallbackPlan = "Day 1: Walk, meditation.\nDay 2: Exercise, talk to a friend.\nDay 3: Creative activity, relax."

// PlanStore reads the history a plan is built from.
type PlanStore interface {
	ListMoods() ([]storage.MoodEntry, error)
	RecentMessages(limit int) ([]storage.ChatMessage, error)
}

// Planner generates a 3-day wellness plan from the stored history.
type Planner struct {
	store     PlanStore
	generator Generator
}

func NewPlanner(store PlanStore, gen Generator) *Planner {
	return &Planner{store: store, generator: gen}
}

// Plan returns the generated plan, or FallbackPlan when generation fails.
// Only history read failures are returned as errors.
func (p *Planner) Plan(ctx context.Context) (string, error) {
	moods, err := p.store.ListMoods()
	if err != nil {
		return "", fmt.Errorf("loading moods: %w", err)
	}
	msgs, err := p.store.RecentMessages(composer.MaxPlanMessages)
	if err != nil {
		return "", fmt.Errorf("loading messages: %w", err)
	}

	recent := make([]string, len(msgs))
	for i, m := range msgs {
		recent[i] = m.Content
	}
	latest := ""
	if len(moods) > 0 {
		latest = moods[len(moods)-1].Category
	}

	if p.generator == nil {
		return FallbackPlan, nil
	}
	// Sent bare, without the chat persona or a sentiment band: the persona
	// caps replies at a few sentences, which truncates a 3-day plan.
	plan, err := p.generator.Generate(ctx, composer.PlanPrompt(moods, recent, latest))
	if err != nil || plan == "" {
		slog.Warn("plan generation failed, using fallback", "error", err)
		return FallbackPlan, nil
	}
	return plan, nil
}
