package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
)

// PreferredModels are tried in order when no usable override is configured.
var PreferredModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-flash-latest",
	"gemini-2.0-flash",
	"gemini-pro",
}

// ModelLister lists model names usable with generateContent.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

type listModelsResponse struct {
	Models []struct {
		Name                       string   `json:"name"`
		SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
	} `json:"models"`
	NextPageToken string `json:"nextPageToken"`
}

// ListModels returns models supporting generateContent, without the
// "models/" prefix, following pagination.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	var names []string
	pageToken := ""
	for {
		req := c.rc.R().
			SetContext(ctx).
			SetQueryParam("key", c.apiKey).
			SetQueryParam("pageSize", "1000")
		if pageToken != "" {
			req.SetQueryParam("pageToken", pageToken)
		}
		resp, err := req.Get("/models")
		if err != nil {
			return nil, fmt.Errorf("listing gemini models: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, apiError(resp)
		}

		var lr listModelsResponse
		if err := json.Unmarshal(resp.Body(), &lr); err != nil {
			return nil, fmt.Errorf("decoding model list: %w", err)
		}
		for _, m := range lr.Models {
			if slices.Contains(m.SupportedGenerationMethods, "generateContent") {
				names = append(names, strings.TrimPrefix(m.Name, "models/"))
			}
		}

		if lr.NextPageToken == "" {
			return names, nil
		}
		pageToken = lr.NextPageToken
	}
}

// ResolveModel picks the model to use for the process lifetime: the override
// when listed, else the first listed preferred model, else the first listed
// model. If listing fails it returns the override, or PreferredModels[0].
func ResolveModel(ctx context.Context, lister ModelLister, override string) string {
	fallback := override
	if fallback == "" {
		fallback = PreferredModels[0]
	}

	available, err := lister.ListModels(ctx)
	if err != nil {
		slog.Warn("could not list gemini models, using fallback", "model", fallback, "error", err)
		return fallback
	}
	if len(available) == 0 {
		slog.Warn("gemini lists no generateContent models, using fallback", "model", fallback)
		return fallback
	}

	if override != "" {
		if slices.Contains(available, override) {
			return override
		}
		slog.Warn("configured gemini model not available", "model", override)
	}
	for _, m := range PreferredModels {
		if slices.Contains(available, m) {
			return m
		}
	}
	return available[0]
}
