package discord

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "adpulse/internal/platform/errors"
	kit "adpulse/internal/platform/testkit"

	json "github.com/goccy/go-json"
)

func TestPost_PayloadShape(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("method=%s ct=%s", r.Method, r.Header.Get("Content-Type"))
		}
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &got); err != nil {
			t.Errorf("decode: %v", err)
		}
		kit.MustContain(t, string(b), `"color":15158332`)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(Options{WebhookURL: srv.URL})
	err := c.Post(context.Background(), Payload{
		Content: Mentions([]string{"1", " ", "<@&2>"}),
		Embeds: []Embed{{
			Title:       "Low revenue",
			Color:       ColorAlert,
			Description: "3 sites",
			Fields:      []Field{{Name: "a.com", Value: "cost 10.00"}},
		}},
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if got.Content != "<@1> <@&2>" || got.Username != "adpulse" {
		t.Fatalf("payload = %#v", got)
	}
	if len(got.Embeds) != 1 || got.Embeds[0].Fields[0].Name != "a.com" {
		t.Fatalf("embeds = %#v", got.Embeds)
	}
}

func TestPost_Non2xxIsNotificationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid Form Body"}`))
	}))
	defer srv.Close()

	err := New(Options{WebhookURL: srv.URL}).Post(context.Background(), Payload{Content: "x"})
	if !perr.IsCode(err, perr.ErrorCodeNotification) {
		t.Fatalf("want Notification, got %v", err)
	}
	kit.MustContain(t, err.Error(), "Invalid Form Body")
}

func TestPost_TransportAndDisabled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if err := New(Options{WebhookURL: url}).Post(context.Background(), Payload{}); !perr.IsCode(err, perr.ErrorCodeNotification) {
		t.Fatalf("transport: %v", err)
	}
	c := New(Options{WebhookURL: "  "})
	if c.Enabled() {
		t.Fatal("blank url should disable")
	}
	if err := c.Post(context.Background(), Payload{}); !perr.IsCode(err, perr.ErrorCodeNotification) {
		t.Fatalf("disabled: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", 10)
	if got := truncate(long, 4); got != "ééé…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Fatalf("short = %q", got)
	}
}

func TestTruncateBlock_KeepsFenceClosed(t *testing.T) {
	block := "```\n" + strings.Repeat("row.example.com 12\n", 100) + "```"
	got := truncateBlock(block, 64)
	if n := len([]rune(got)); n != 64 {
		t.Fatalf("len = %d", n)
	}
	if !strings.HasPrefix(got, "```\n") || !strings.HasSuffix(got, "…\n```") {
		t.Fatalf("block = %q", got)
	}
	if got := truncateBlock("```\nshort\n```", 64); got != "```\nshort\n```" {
		t.Fatalf("short = %q", got)
	}
}

func TestPost_TruncatesFields(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(b, &got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	preview := "```\n" + strings.Repeat("a-very-long-subdomain.example.com  1500  0.0007\n", 40) + "```"
	err := New(Options{WebhookURL: srv.URL}).Post(context.Background(), Payload{
		Embeds: []Embed{{Title: "t", Fields: []Field{{Name: strings.Repeat("n", 300), Value: preview}}}},
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	f := got.Embeds[0].Fields[0]
	if n := len([]rune(f.Value)); n != maxFieldValue {
		t.Fatalf("value len = %d", n)
	}
	if n := len([]rune(f.Name)); n != maxFieldName {
		t.Fatalf("name len = %d", n)
	}
	kit.MustContain(t, f.Value, "…\n```")
}
