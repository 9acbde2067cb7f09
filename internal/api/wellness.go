package api

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/kalambet/wellbuddy/internal/quotes"
	"github.com/kalambet/wellbuddy/internal/storage"
)

type moodRequest struct {
	Score    *int   `json:"score"`
	Category string `json:"category"`
}

type moodResponse struct {
	Message  string `json:"message"`
	Date     string `json:"date"`
	Score    int    `json:"score"`
	Category string `json:"category"`
}

type chatRequest struct {
	Message *string `json:"message"`
}

type emergencyEmailRequest struct {
	EmergencyEmail string `json:"emergencyEmail"`
}

func handleMotivation(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"quote": quotes.ForDay(deps.now())})
	}
}

func handleSaveMood(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moodRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Score == nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "score is required")
			return
		}
		category := strings.TrimSpace(req.Category)
		if category == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "category is required")
			return
		}

		entry := storage.MoodEntry{
			Date:     deps.now().Format(storage.DateLayout),
			Score:    *req.Score,
			Category: category,
		}
		if err := deps.Store.SaveMood(entry); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save mood: %v", err)
			return
		}

		writeJSON(w, moodResponse{
			Message:  "Mood saved!",
			Date:     entry.Date,
			Score:    entry.Score,
			Category: entry.Category,
		})
	}
}

func handleListMoods(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		moods, err := deps.Store.ListMoods()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list moods: %v", err)
			return
		}
		writeJSON(w, moods)
	}
}

func handlePlan(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := deps.Planner.Plan(r.Context())
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to build plan: %v", err)
			return
		}
		writeJSON(w, map[string]string{"plan": plan})
	}
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		// A blank message is still a turn; only a missing field is rejected.
		if req.Message == nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
			return
		}

		reply, err := deps.Chat.Turn(r.Context(), *req.Message)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "chat failed: %v", err)
			return
		}
		writeJSON(w, map[string]string{"response": reply})
	}
}

func handleGetEmergencyEmail(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, err := deps.Store.GetSetting(storage.SettingEmergencyEmail)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to read emergency email: %v", err)
			return
		}
		writeJSON(w, map[string]string{"emergencyEmail": email})
	}
}

func handleSetEmergencyEmail(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emergencyEmailRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		email := strings.TrimSpace(req.EmergencyEmail)
		if email == "" {
			if err := deps.Store.DeleteSetting(storage.SettingEmergencyEmail); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "failed to clear emergency email: %v", err)
				return
			}
			writeJSON(w, map[string]string{
				"message":        "Emergency email cleared",
				"emergencyEmail": "",
			})
			return
		}
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "emergencyEmail must be a plain email address")
			return
		}

		if err := deps.Store.SetSetting(storage.SettingEmergencyEmail, email); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to save emergency email: %v", err)
			return
		}

		writeJSON(w, map[string]string{
			"message":        "Emergency email updated successfully",
			"emergencyEmail": email,
		})
	}
}

func handleListAlerts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 200)
		alerts, err := deps.Store.ListAlerts(limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list alerts: %v", err)
			return
		}
		writeJSON(w, alerts)
	}
}
