package app

import (
	"testing"
	"time"
)

func TestEnvString(t *testing.T) {
	t.Setenv("COURTSIDE_TEST_STR", "")
	if got := EnvString("COURTSIDE_TEST_STR", "fallback"); got != "fallback" {
		t.Fatalf("empty: got %q", got)
	}
	t.Setenv("COURTSIDE_TEST_STR", "  value  ")
	if got := EnvString("COURTSIDE_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("trimmed: got %q", got)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("COURTSIDE_TEST_BOOL", "true")
	if !EnvBool("COURTSIDE_TEST_BOOL", false) {
		t.Fatal("true not parsed")
	}
	t.Setenv("COURTSIDE_TEST_BOOL", "nope")
	if EnvBool("COURTSIDE_TEST_BOOL", false) {
		t.Fatal("garbage must keep the default")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("COURTSIDE_TEST_INT", "42")
	if got := EnvInt("COURTSIDE_TEST_INT", 7); got != 42 {
		t.Fatalf("got %d", got)
	}
	for _, v := range []string{"", "abc", "0", "-3"} {
		t.Setenv("COURTSIDE_TEST_INT", v)
		if got := EnvInt("COURTSIDE_TEST_INT", 7); got != 7 {
			t.Fatalf("%q: got %d, want default", v, got)
		}
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("COURTSIDE_TEST_DUR", "90s")
	if got := EnvDuration("COURTSIDE_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("got %v", got)
	}
	for _, v := range []string{"", "soon", "-5s", "0"} {
		t.Setenv("COURTSIDE_TEST_DUR", v)
		if got := EnvDuration("COURTSIDE_TEST_DUR", time.Second); got != time.Second {
			t.Fatalf("%q: got %v, want default", v, got)
		}
	}
}
