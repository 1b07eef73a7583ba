package config

import (
	"net/url"
	"testing"
	"time"

	kit "adpulse/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	root := New()
	ch := root.Prefix("CLICKHOUSE_")
	if got := ch.key("URL"); got != "CLICKHOUSE_URL" {
		t.Fatalf("key() = %q, want %q", got, "CLICKHOUSE_URL")
	}
	nested := root.Prefix("CORE_").Prefix("ALERT_")
	if got := nested.key("MAX_REVENUE"); got != "CORE_ALERT_MAX_REVENUE" {
		t.Fatalf("nested key() = %q", got)
	}
}

// Must* panics

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  adpulse ")
	if got := c.MustString("NAME"); got != "adpulse" {
		t.Fatalf("MustString = %q, want %q", got, "adpulse")
	}
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustInt(t *testing.T) {
	c := New().Prefix("SVC_")
	t.Setenv("SVC_WORKERS", "  8 ")
	if got := c.MustInt("WORKERS"); got != 8 {
		t.Fatalf("MustInt = %d, want %d", got, 8)
	}
	kit.MustPanic(t, func() { _ = c.MustInt("MISSING") })
	t.Setenv("SVC_BAD", "x")
	kit.MustPanic(t, func() { _ = c.MustInt("BAD") })
}

func TestMustURL(t *testing.T) {
	c := New().Prefix("U_")
	t.Setenv("U_BASE", "https://plausible.io/api/v1")
	u := c.MustURL("BASE")
	if _, err := url.Parse("https://plausible.io/api/v1"); err != nil || !u.IsAbs() {
		t.Fatalf("MustURL returned non-absolute URL")
	}
	t.Setenv("U_BAD1", "://bad")
	kit.MustPanic(t, func() { _ = c.MustURL("BAD1") })
	t.Setenv("U_BAD2", "/relative")
	kit.MustPanic(t, func() { _ = c.MustURL("BAD2") })
}

func TestRequireAndMissing(t *testing.T) {
	c := New().Prefix("CLICKHOUSE_")
	t.Setenv("CLICKHOUSE_URL", "http://localhost:8123")
	t.Setenv("CLICKHOUSE_USER", "   ")
	c.Require("URL")
	kit.MustPanic(t, func() { c.Require("URL", "USER") })

	miss := c.Missing("URL", "USER", "PASSWORD")
	if len(miss) != 2 || miss[0] != "CLICKHOUSE_USER" || miss[1] != "CLICKHOUSE_PASSWORD" {
		t.Fatalf("Missing = %#v", miss)
	}
}

// May* fallbacks

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q, want %q", got, "def")
	}
	t.Setenv("S_NAME", " adpulse ")
	if got := c.MayString("NAME", "x"); got != "adpulse" {
		t.Fatalf("MayString value = %q", got)
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("MISSING", 9); got != 9 {
		t.Fatalf("MayInt default = %d, want %d", got, 9)
	}
	t.Setenv("I_OK", " 7 ")
	if got := c.MayInt("OK", 0); got != 7 {
		t.Fatalf("MayInt ok = %d, want %d", got, 7)
	}
	t.Setenv("I_BAD", "x")
	if got := c.MayInt("BAD", 3); got != 3 {
		t.Fatalf("MayInt bad -> default = %d, want %d", got, 3)
	}
}

func TestMayFloat64(t *testing.T) {
	c := New().Prefix("F_")
	if got := c.MayFloat64("MISSING", 1.0); got != 1.0 {
		t.Fatalf("MayFloat64 default = %v", got)
	}
	t.Setenv("F_MAX", "0.25")
	if got := c.MayFloat64("MAX", 1.0); got != 0.25 {
		t.Fatalf("MayFloat64 = %v, want 0.25", got)
	}
	t.Setenv("F_BAD", "one")
	if got := c.MayFloat64("BAD", 2.5); got != 2.5 {
		t.Fatalf("MayFloat64 bad -> default = %v", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	if got := c.MayBool("MISSING", true); got != true {
		t.Fatalf("MayBool default true expected")
	}
	t.Setenv("B_T", "true")
	if got := c.MayBool("T", false); got != true {
		t.Fatalf("MayBool true expected")
	}
	t.Setenv("B_BAD", "nope")
	if got := c.MayBool("BAD", false); got != false {
		t.Fatalf("MayBool bad -> default false expected")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("DUR_")
	if got := c.MayDuration("MISS", 5*time.Second); got != 5*time.Second {
		t.Fatalf("MayDuration default expected")
	}
	t.Setenv("DUR_OK", "150ms")
	if got := c.MayDuration("OK", time.Second); got != 150*time.Millisecond {
		t.Fatalf("MayDuration ok = %v", got)
	}
	t.Setenv("DUR_BAD", "nope")
	if got := c.MayDuration("BAD", time.Minute); got != time.Minute {
		t.Fatalf("MayDuration bad -> default expected")
	}
}

func TestMayLocation(t *testing.T) {
	c := New().Prefix("TZ_")
	if got := c.MayLocation("MISS", time.UTC); got != time.UTC {
		t.Fatalf("MayLocation default expected")
	}
	t.Setenv("TZ_OK", "America/Sao_Paulo")
	if got := c.MayLocation("OK", time.UTC); got.String() != "America/Sao_Paulo" {
		t.Fatalf("MayLocation = %v", got)
	}
	t.Setenv("TZ_BAD", "Mars/Olympus")
	if got := c.MayLocation("BAD", time.UTC); got != time.UTC {
		t.Fatalf("MayLocation bad -> default expected")
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CSV_")
	def := []string{"a", "b"}
	if got := c.MayCSV("MISS", def); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("MayCSV default mismatch: %#v", got)
	}
	t.Setenv("CSV_VALS", " a.com, b.com , ,c.com ,, ")
	got := c.MayCSV("VALS", nil)
	want := []string{"a.com", "b.com", "c.com"}
	if len(got) != len(want) {
		t.Fatalf("MayCSV len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MayCSV[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	t.Setenv("CSV_EMPTY", " , ,  ,")
	if got := c.MayCSV("EMPTY", []string{"fallback"}); len(got) != 1 || got[0] != "fallback" {
		t.Fatalf("MayCSV all-empty -> default mismatch: %#v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")

	if got := c.MayEnum("MISS", "timeseries", "timeseries", "breakdown"); got != "timeseries" {
		t.Fatalf("MayEnum default = %q", got)
	}

	t.Setenv("E_MODE", "Breakdown")
	if got := c.MayEnum("MODE", "timeseries", "timeseries", "breakdown"); got != "breakdown" {
		t.Fatalf("MayEnum allowed value = %q, want %q", got, "breakdown")
	}

	t.Setenv("E_BAD", "xml")
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "timeseries", "timeseries", "breakdown") })

	if got := c.MayEnum("MISSING", "", "a", "b"); got != "" {
		t.Fatalf("MayEnum with empty def = %q", got)
	}
}
