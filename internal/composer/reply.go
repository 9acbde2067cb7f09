// Package composer assembles chat replies and the prompts sent to the
// generative model.
package composer

const (
	BreathingSuggestion = "Try breathing: Inhale 4s, hold 4s, exhale 4s."
	PositiveSuggestion  = "Keep up the positivity!"

	CrisisSentSuffix   = " ⚠️ Crisis detected, email sent with hotline info."
	CrisisFailedSuffix = " ⚠️ Crisis detected, but alert failed. Please seek help immediately."
)

// Suggestion picks the coping tip for a compound sentiment score. Zero
// counts as non-negative.
func Suggestion(compound float64) string {
	if compound < 0 {
		return BreathingSuggestion
	}
	return PositiveSuggestion
}

// Compose joins the model text and the suggestion with a single space.
func Compose(aiText string, compound float64) string {
	return aiText + " " + Suggestion(compound)
}

// WithCrisisNotice appends the alert outcome to a composed reply.
func WithCrisisNotice(reply string, sent bool) string {
	if sent {
		return reply + CrisisSentSuffix
	}
	return reply + CrisisFailedSuffix
}
