package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cp25sy5-modjot/doc-extract-service/internal/domain"
)

func testDescriptor() domain.ServiceDescriptor {
	return domain.ServiceDescriptor{
		Name: "Document Extraction",
		Slug: "doc-extract-service",
		URL:  "http://worker:8000",
	}
}

func TestAnnounce_PostsDescriptor(t *testing.T) {
	var gotPath string
	var gotDesc domain.ServiceDescriptor
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotDesc); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewHTTPClient()
	if err := c.Announce(context.Background(), srv.URL, testDescriptor()); err != nil {
		t.Fatalf("Announce() error = %v", err)
	}
	if gotPath != "POST /services" {
		t.Errorf("request = %s, want POST /services", gotPath)
	}
	if gotDesc.Slug != "doc-extract-service" {
		t.Errorf("descriptor slug = %q", gotDesc.Slug)
	}
}

func TestAnnounce_ErrorStatuses(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"accepted", http.StatusOK, false},
		{"created", http.StatusCreated, false},
		{"conflict", http.StatusConflict, true},
		{"server error", http.StatusInternalServerError, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			err := NewHTTPClient().Announce(context.Background(), srv.URL, testDescriptor())
			if (err != nil) != tc.wantErr {
				t.Errorf("Announce() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestAnnounce_UnreachableEngine(t *testing.T) {
	// Reserved TEST-NET-1 address; the dial must fail.
	err := NewHTTPClient().Announce(context.Background(), "http://192.0.2.1:1", testDescriptor())
	if err == nil {
		t.Fatal("expected connection error")
	}
}

func TestWithdraw_DeletesBySlug(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := NewHTTPClient().Withdraw(context.Background(), srv.URL, testDescriptor()); err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}
	if gotPath != "DELETE /services/doc-extract-service" {
		t.Errorf("request = %s, want DELETE /services/doc-extract-service", gotPath)
	}
}

func TestWithdraw_NotFoundIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if err := NewHTTPClient().Withdraw(context.Background(), srv.URL, testDescriptor()); err != nil {
		t.Errorf("Withdraw() on 404 = %v, want nil", err)
	}
}
