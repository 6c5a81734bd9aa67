package store

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aperture/aperture/backend-go/internal/shape"
)

func TestClientElementsRoundTrip(t *testing.T) {
	var stored []shape.Shape
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if r.URL.Path != "/api/canvases/canvas_1/elements" {
			t.Errorf("path = %q", r.URL.Path)
		}

		switch r.Method {
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&stored); err != nil {
				t.Errorf("decode body: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			json.NewEncoder(w).Encode(stored)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	want := []shape.Shape{{ID: "el_1", Kind: shape.KindRectangle, Width: 10, Height: 5}}

	if err := c.SaveElements(context.Background(), "canvas_1", want); err != nil {
		t.Fatalf("SaveElements: %v", err)
	}

	got, err := c.GetElements(context.Background(), "canvas_1")
	if err != nil {
		t.Fatalf("GetElements: %v", err)
	}
	if len(got) != 1 || got[0].ID != "el_1" || got[0].Width != 10 {
		t.Errorf("GetElements = %+v, want %+v", got, want)
	}
}

func TestClientNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.GetElements(context.Background(), "canvas_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetElements error = %v, want ErrNotFound", err)
	}
}
