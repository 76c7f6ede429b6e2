package urlexpand

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qrshield/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "disabled"})
}

func TestExpandFollowsRedirects(t *testing.T) {
	var final string
	mux := http.NewServeMux()
	mux.HandleFunc("/dest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final, http.StatusFound)
	})
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop", http.StatusMovedPermanently)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()
	final = srv.URL + "/dest"

	e := NewHTTPExpander(5*time.Second, testLogger())
	got, err := e.Expand(context.Background(), srv.URL+"/short")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if got != final {
		t.Errorf("Expand = %q, want %q", got, final)
	}
}

func TestExpandConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	e := NewHTTPExpander(2*time.Second, testLogger())
	_, err := e.Expand(context.Background(), addr)
	if err == nil {
		t.Fatal("expected an error for a closed server")
	}

	var expErr *Error
	if !errors.As(err, &expErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if expErr.Kind != FailureConnection && expErr.Kind != FailureOther {
		t.Errorf("Kind = %q, want connection or request", expErr.Kind)
	}
}

func TestExpandTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	e := NewHTTPExpander(100*time.Millisecond, testLogger())
	_, err := e.Expand(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected a timeout error")
	}

	var expErr *Error
	if !errors.As(err, &expErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if expErr.Kind != FailureTimeout {
		t.Errorf("Kind = %q, want timeout", expErr.Kind)
	}
}

func TestExpandInvalidURL(t *testing.T) {
	e := NewHTTPExpander(time.Second, testLogger())
	_, err := e.Expand(context.Background(), "http://\x7f invalid")
	if err == nil {
		t.Fatal("expected an error for an unparseable URL")
	}
}
