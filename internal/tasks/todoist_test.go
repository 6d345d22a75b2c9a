package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daniel5812/brain-dump-server/internal/user"
)

// 2026-01-21 is a Wednesday.
var testNow = time.Date(2026, time.January, 21, 12, 0, 0, 0, time.Local)

func testClock() Option {
	return WithClock(func() time.Time { return testNow })
}

func TestResolveDue(t *testing.T) {
	t.Parallel()

	td := New(user.NewMemStore(), user.Defaults{}, testClock())

	tests := []struct {
		due        string
		wantString string
		wantDate   string
	}{
		{"", "", ""},
		{"היום", "today", ""},
		{"מחר", "tomorrow", ""},
		{"יום ראשון", "", "2026-01-25"},
		{"יום רביעי", "", "2026-01-28"}, // same weekday rolls a week forward
		{"שבת", "", "2026-01-24"},
		{"2026-02-01T23:59:00", "", "2026-02-01"},
		{"2026-02-01", "", "2026-02-01"},
		{"בקרוב", "", ""},
	}

	for _, tt := range tests {
		gotString, gotDate := td.resolveDue(tt.due)
		if gotString != tt.wantString || gotDate != tt.wantDate {
			t.Errorf("resolveDue(%q) = %q, %q, want %q, %q",
				tt.due, gotString, gotDate, tt.wantString, tt.wantDate)
		}
	}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	users := user.NewMemStore(user.Config{ID: "972501234567", TodoistToken: "tok-user"})
	td := New(users, user.Defaults{}, WithBaseURL(srv.URL), testClock())

	err := td.Create(context.Background(), "972501234567", "לשלם חשבון", "2026-02-01T23:59:00")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if gotAuth != "Bearer tok-user" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotBody["content"] != "לשלם חשבון" || gotBody["due_date"] != "2026-02-01" {
		t.Fatalf("body = %v", gotBody)
	}
}

func TestCreateNotConfigured(t *testing.T) {
	t.Parallel()

	td := New(user.NewMemStore(), user.Defaults{TodoistToken: "sys"}, testClock())

	err := td.Create(context.Background(), "972501234567", "משימה", "")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Create = %v, want ErrNotConfigured", err)
	}
}

func TestCreateSystemDefaultToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	users := user.NewMemStore(user.Config{ID: "admin", UseSystemDefaults: true})
	td := New(users, user.Defaults{TodoistToken: "sys"}, WithBaseURL(srv.URL), testClock())

	if err := td.Create(context.Background(), "admin", "משימה", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if gotAuth != "Bearer sys" {
		t.Fatalf("Authorization = %q, want system token", gotAuth)
	}
}

func TestCreateAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusForbidden)
	}))
	defer srv.Close()

	users := user.NewMemStore(user.Config{ID: "u", TodoistToken: "tok"})
	td := New(users, user.Defaults{}, WithBaseURL(srv.URL), testClock())

	if err := td.Create(context.Background(), "u", "משימה", ""); err == nil {
		t.Fatal("Create should surface API errors")
	}
}
