package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestListModelsFiltersAndPaginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q, want /models", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("pageToken") {
		case "":
			fmt.Fprint(w, `{"models":[
				{"name":"models/embedding-001","supportedGenerationMethods":["embedContent"]},
				{"name":"models/gemini-pro","supportedGenerationMethods":["generateContent","countTokens"]}
			],"nextPageToken":"p2"}`)
		case "p2":
			fmt.Fprint(w, `{"models":[
				{"name":"models/gemini-2.0-flash","supportedGenerationMethods":["generateContent"]}
			]}`)
		default:
			t.Errorf("unexpected pageToken %q", r.URL.Query().Get("pageToken"))
		}
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", "", srv.URL)
	got, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	want := []string{"gemini-pro", "gemini-2.0-flash"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListModels = %v, want %v", got, want)
	}
}

type stubLister struct {
	models []string
	err    error
}

func (s stubLister) ListModels(context.Context) ([]string, error) {
	return s.models, s.err
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		name     string
		lister   stubLister
		override string
		want     string
	}{
		{"override available", stubLister{models: []string{"gemini-pro", "custom-x"}}, "custom-x", "custom-x"},
		{"override missing uses preferred", stubLister{models: []string{"gemini-pro", "gemini-2.0-flash"}}, "custom-x", "gemini-2.0-flash"},
		{"preferred order", stubLister{models: []string{"gemini-pro", "gemini-1.5-flash-latest"}}, "", "gemini-1.5-flash-latest"},
		{"first listed", stubLister{models: []string{"gemini-exp", "gemini-other"}}, "", "gemini-exp"},
		{"list error with override", stubLister{err: errors.New("403")}, "custom-x", "custom-x"},
		{"list error without override", stubLister{err: errors.New("403")}, "", "gemini-1.5-flash"},
		{"empty list", stubLister{}, "", "gemini-1.5-flash"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveModel(context.Background(), tt.lister, tt.override); got != tt.want {
				t.Errorf("ResolveModel = %q, want %q", got, tt.want)
			}
		})
	}
}
