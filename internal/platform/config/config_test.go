package config

import (
	"testing"
	"time"

	kit "carcrawl/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	root := New()
	crawl := root.Prefix("CRAWL_")
	if got := crawl.key("SLEEP"); got != "CRAWL_SLEEP" {
		t.Fatalf("key() = %q, want %q", got, "CRAWL_SLEEP")
	}
	pg := crawl.Prefix("PGSQL_")
	if got := pg.key("DBURL"); got != "CRAWL_PGSQL_DBURL" {
		t.Fatalf("nested key() = %q, want %q", got, "CRAWL_PGSQL_DBURL")
	}
}

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	if got := c.MayString("MISSING", "./data"); got != "./data" {
		t.Fatalf("MayString default = %q", got)
	}
	t.Setenv("S_DIR", " /tmp/out ")
	if got := c.MayString("DIR", "./data"); got != "/tmp/out" {
		t.Fatalf("MayString = %q", got)
	}
}

func TestMayURL(t *testing.T) {
	c := New().Prefix("U_")
	t.Setenv("U_OK", "http://127.0.0.1:8080/search")
	if got := c.MayURL("OK", "https://def"); got != "http://127.0.0.1:8080/search" {
		t.Fatalf("MayURL = %q", got)
	}
	t.Setenv("U_BAD", "not a url")
	if got := c.MayURL("BAD", "https://def"); got != "https://def" {
		t.Fatalf("MayURL invalid = %q, want default", got)
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("MISSING", 200); got != 200 {
		t.Fatalf("MayInt default = %d", got)
	}
	t.Setenv("I_MAX", "3")
	if got := c.MayInt("MAX", 200); got != 3 {
		t.Fatalf("MayInt = %d", got)
	}
	t.Setenv("I_BAD", "three")
	if got := c.MayInt("BAD", 200); got != 200 {
		t.Fatalf("MayInt invalid = %d, want default", got)
	}
}

func TestMayPositiveInt(t *testing.T) {
	c := New().Prefix("P_")
	t.Setenv("P_ZERO", "0")
	if got := c.MayPositiveInt("ZERO", 4); got != 4 {
		t.Fatalf("MayPositiveInt(0) = %d, want default", got)
	}
	t.Setenv("P_TWO", "2")
	if got := c.MayPositiveInt("TWO", 4); got != 2 {
		t.Fatalf("MayPositiveInt = %d", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	if !c.MayBool("MISSING", true) {
		t.Fatalf("MayBool default lost")
	}
	t.Setenv("B_OFF", "false")
	if c.MayBool("OFF", true) {
		t.Fatalf("MayBool false expected")
	}
	t.Setenv("B_BAD", "maybe")
	if !c.MayBool("BAD", true) {
		t.Fatalf("MayBool invalid should return default")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("D_")
	if got := c.MayDuration("MISSING", time.Second); got != time.Second {
		t.Fatalf("MayDuration default = %v", got)
	}
	t.Setenv("D_GO", "250ms")
	if got := c.MayDuration("GO", time.Second); got != 250*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	t.Setenv("D_SECS", "1.5")
	if got := c.MayDuration("SECS", time.Second); got != 1500*time.Millisecond {
		t.Fatalf("MayDuration seconds = %v", got)
	}
	t.Setenv("D_BAD", "soon")
	if got := c.MayDuration("BAD", time.Second); got != time.Second {
		t.Fatalf("MayDuration invalid = %v, want default", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")
	if got := c.MayEnum("MISSING", "csv", "csv", "pg"); got != "csv" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("E_STORE", "PG")
	if got := c.MayEnum("STORE", "csv", "csv", "pg"); got != "pg" {
		t.Fatalf("MayEnum = %q, want canonical pg", got)
	}
	t.Setenv("E_BAD", "sqlite")
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "csv", "csv", "pg") })
}
