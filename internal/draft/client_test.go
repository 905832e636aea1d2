package draft

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientSendsBearerTokenAndDecodesEnvelope(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.Method != http.MethodGet || r.URL.Path != "/cv/cv-1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"cv": map[string]any{"id": "cv-1", "title": "My CV"},
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "tok-123")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	doc, err := client.GetCV(context.Background(), "cv-1")
	if err != nil {
		t.Fatalf("GetCV: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("unexpected Authorization header %q", gotAuth)
	}
	if doc["title"] != "My CV" {
		t.Fatalf("unexpected document: %v", doc)
	}
}

func TestClientUpdateSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/cv/cv-1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["title"] != "Renamed" {
			t.Errorf("unexpected body: %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"cv": body})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL+"/", "")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	doc, err := client.UpdateCV(context.Background(), "cv-1", map[string]any{"id": "cv-1", "title": "Renamed"})
	if err != nil {
		t.Fatalf("UpdateCV: %v", err)
	}
	if doc["title"] != "Renamed" {
		t.Fatalf("unexpected document: %v", doc)
	}
}

func TestClientMapsStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrUnauthorized},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		client, err := NewClient(srv.URL, "tok")
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}
		if _, err := client.GetCV(context.Background(), "cv-x"); !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		srv.Close()
	}
}

func TestClientRejectsEmptyBaseURL(t *testing.T) {
	if _, err := NewClient("  ", "tok"); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}
