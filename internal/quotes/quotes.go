// Package quotes serves the motivational quote of the day.
package quotes

import "time"

// Quotes rotate by day of year.
var Quotes = []string{
	"The best way to predict the future is to create it. – Peter Drucker",
	"You are enough just as you are. – Meghan Markle",
	"Happiness is not something ready-made. It comes from your own actions. – Dalai Lama",
	"Believe you can and you're halfway there. – Theodore Roosevelt",
	"The only way to do great work is to love what you do. – Steve Jobs",
}

// ForDay returns the quote for t's calendar day in t's location. Every call
// on the same day returns the same quote.
func ForDay(t time.Time) string {
	return Quotes[t.YearDay()%len(Quotes)]
}
