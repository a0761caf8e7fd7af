package cache

import (
	"testing"
	"time"

	"3tcapital/ms_service_documents/internal/core/document"
)

func TestAssetCache_SetGet(t *testing.T) {
	c := NewAssetCache(time.Minute)
	img := &document.Image{Bytes: []byte{1, 2, 3}, Extension: "png"}

	if _, ok := c.Get("logo"); ok {
		t.Fatal("expected empty cache")
	}

	c.Set("logo", img)
	got, ok := c.Get("logo")
	if !ok || got != img {
		t.Fatalf("expected cached image, got %v %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}

	c.Invalidate("logo")
	if _, ok := c.Get("logo"); ok {
		t.Error("expected entry to be invalidated")
	}
}

func TestAssetCache_Expiry(t *testing.T) {
	c := NewAssetCache(20 * time.Millisecond)
	c.Set("logo", &document.Image{Extension: "png"})

	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get("logo"); ok {
		t.Error("expected entry to expire")
	}
}
