package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// SettingEmergencyEmail holds the user-supplied emergency contact address.
const SettingEmergencyEmail = "emergency_email"

// DateLayout is the calendar-date format used for mood entries.
const DateLayout = "2006-01-02"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MoodEntry is one mood check-in. Date is a local calendar date.
type MoodEntry struct {
	Date     string `json:"date"`
	Score    int    `json:"score"`
	Category string `json:"category"`
}

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// AlertRecord is the outcome of one crisis alert dispatch.
type AlertRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Recipient string    `json:"recipient"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error"`
}
