package hebcal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nach-yomi-bot/internal/domain"
)

func TestHebrewDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/converter" || q.Get("cfg") != "json" || q.Get("g2h") != "1" {
			t.Errorf("unexpected request %s", r.URL)
		}
		if q.Get("gy") != "2026" || q.Get("gm") != "2" || q.Get("gd") != "15" {
			t.Errorf("unexpected date params %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"hy":5786,"hebrew":"כ״ח שְׁבָט תשפ״ו"}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL, nil).HebrewDate(context.Background(), domain.Date{Year: 2026, Month: 2, Day: 15})
	if err != nil {
		t.Fatalf("HebrewDate: %v", err)
	}
	if got != "כ״ח שְׁבָט תשפ״ו" {
		t.Fatalf("unexpected date %q", got)
	}
}

func TestHebrewDateErrors(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer empty.Close()
	if _, err := New(empty.URL, nil).HebrewDate(context.Background(), domain.Date{Year: 2026, Month: 1, Day: 1}); !errors.Is(err, ErrEmptyDate) {
		t.Fatalf("expected ErrEmptyDate, got %v", err)
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()
	if _, err := New(failing.URL, nil).HebrewDate(context.Background(), domain.Date{Year: 2026, Month: 1, Day: 1}); err == nil {
		t.Fatalf("expected error on 503")
	}
}
