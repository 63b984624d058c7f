package caching

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c, err := NewCache(filepath.Join(t.TempDir(), "cache"), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	key := Key("fingerprint", "config")
	if _, ok := c.Get(key); ok {
		t.Fatal("Get() hit on empty cache")
	}

	if err := c.Set(key, []byte(`{"results":[]}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, ok := c.Get(key)
	if !ok {
		t.Fatal("Get() miss after Set()")
	}
	if string(data) != `{"results":[]}` {
		t.Errorf("Get() = %s", data)
	}
}

func TestCache_ReadOnlyOnceWritten(t *testing.T) {
	c, err := NewCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	key := Key("a")
	if err := c.Set(key, []byte("first")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set(key, []byte("second")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, _ := c.Get(key)
	if string(data) != "first" {
		t.Errorf("Get() = %s, want first", data)
	}
}

func TestCache_Expired(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, time.Minute)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	key := Key("old")
	if err := c.Set(key, []byte("stale")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(c.file(key), past, past); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	if _, ok := c.Get(key); ok {
		t.Error("Get() returned an expired entry")
	}
}

func TestKey(t *testing.T) {
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key() ignores part boundaries")
	}
	if Key("x") != Key("x") {
		t.Error("Key() is not deterministic")
	}
}
