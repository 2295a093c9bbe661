package cache

import (
	"strings"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Expected hit")
	}
	if string(got) != "v" {
		t.Errorf("Expected v, got %s", got)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	if _, ok := c.Get("absent"); ok {
		t.Error("Expected miss")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Expected entry to expire")
	}
}

func TestMemoryCache_DeleteClear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_ = c.Set("a", []byte("1"), time.Minute)
	_ = c.Set("b", []byte("2"), time.Minute)

	if err := c.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Expected a to be deleted")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Expected b to be cleared")
	}
}

func TestKey(t *testing.T) {
	if Key("a") == Key("b") {
		t.Error("Different inputs must produce different keys")
	}
	if Key("a") != Key("a") {
		t.Error("Keys must be stable")
	}
	if !strings.HasPrefix(Key("a"), "claimscope:v1:") {
		t.Errorf("Key must carry the version prefix, got %s", Key("a"))
	}
}
