package composer

import (
	"fmt"
	"strings"

	"github.com/kalambet/wellbuddy/internal/storage"
)

// MaxPlanMessages bounds how many recent chat messages feed the plan prompt.
const MaxPlanMessages = 10

const persona = `You are Wellness Buddy, an empathetic AI companion for teens. Your personality:
- Warm, caring, and non-judgmental
- Use casual, friendly language appropriate for teens
- Be encouraging and supportive
- Ask thoughtful follow-up questions
- Offer practical, actionable advice
- Use emojis occasionally but not excessively
- Keep responses conversational and not too long (2-3 sentences max)`

const closing = "Respond as Wellness Buddy with empathy and helpful guidance. " +
	"If they're struggling, offer specific coping strategies. " +
	"If they're happy, celebrate with them. " +
	"Always end with a question to keep the conversation flowing naturally."

// SentimentContext describes the user's mood band to the model.
func SentimentContext(compound float64) string {
	switch {
	case compound < -0.5:
		return "The user seems to be feeling very negative or distressed. Be extra gentle, empathetic, and offer specific support resources."
	case compound < 0:
		return "The user appears to be having a difficult time. Show understanding and offer helpful suggestions."
	case compound < 0.5:
		return "The user seems to be in a neutral mood. Be encouraging and ask engaging questions."
	default:
		return "The user appears to be in a positive mood. Celebrate with them and help maintain their positive energy."
	}
}

// ChatPrompt builds the single-turn prompt for a chat message.
func ChatPrompt(message string, compound float64) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nSentiment analysis: ")
	b.WriteString(SentimentContext(compound))
	fmt.Fprintf(&b, "\nUser's message: %q\n\n", message)
	b.WriteString(closing)
	return b.String()
}

// PlanPrompt builds the wellness-plan prompt from the mood history, the most
// recent chat messages (oldest first) and the latest mood category.
func PlanPrompt(moods []storage.MoodEntry, recentMessages []string, latestCategory string) string {
	var history string
	if len(moods) > 0 {
		parts := make([]string, len(moods))
		for i, m := range moods {
			parts[i] = fmt.Sprintf("%s: %d (%s)", m.Date, m.Score, m.Category)
		}
		history = "User mood scores: " + strings.Join(parts, ", ")
	} else {
		history = "No mood history."
	}

	if len(recentMessages) > MaxPlanMessages {
		recentMessages = recentMessages[len(recentMessages)-MaxPlanMessages:]
	}
	if len(recentMessages) > 0 {
		history += ". Recent messages: " + strings.Join(recentMessages, ", ")
	} else {
		history += ". No recent messages."
	}

	if latestCategory == "" {
		latestCategory = "Neutral"
	}
	return fmt.Sprintf("Generate a 3-day wellness plan for a teen. %s. Latest mood: %s.", history, latestCategory)
}
