package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if data, hit, err := c.Get(ctx, "key"); hit || data != nil || err != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if n, err := Clear(ctx, c); n != 0 || err != nil {
		t.Errorf("Clear = %d, %v", n, err)
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("hello")) != Hash([]byte("hello")) {
		t.Error("Hash is not deterministic")
	}
	if Hash([]byte("hello")) == Hash([]byte("world")) {
		t.Error("different inputs share a hash")
	}
	if n := len(Hash(nil)); n != 64 {
		t.Errorf("len = %d, want 64", n)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := TreeKeyOpts{Artboard: "Home", Decorators: []string{"rect-transform", "name"}, Layer: 5}
	changed := []TreeKeyOpts{
		{Artboard: "Settings", Decorators: base.Decorators, Layer: 5},
		{Artboard: "Home", Decorators: []string{"name", "rect-transform"}, Layer: 5},
		{Artboard: "Home", Decorators: base.Decorators, Layer: 6},
		{Artboard: "Home", Decorators: base.Decorators, Layer: 5, Policy: "proportional"},
		{Artboard: "Home", Decorators: base.Decorators, Layer: 5, AssetsHash: "x"},
	}
	key := k.TreeKey("doc", base)
	if !strings.HasPrefix(key, "tree:") || key != k.TreeKey("doc", base) {
		t.Errorf("TreeKey = %s", key)
	}
	if key == k.TreeKey("other", base) {
		t.Error("document hash not part of the key")
	}
	for _, o := range changed {
		if k.TreeKey("doc", o) == key {
			t.Errorf("options %+v share the key of %+v", o, base)
		}
	}

	svg := k.ArtifactKey("t", ArtifactKeyOpts{Format: "svg"})
	if svg == k.ArtifactKey("t", ArtifactKeyOpts{Format: "png"}) ||
		svg == k.ArtifactKey("t", ArtifactKeyOpts{Format: "svg", Detailed: true}) {
		t.Error("artifact options not part of the key")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "v1:")
	if got := scoped.TreeKey("doc", TreeKeyOpts{}); !strings.HasPrefix(got, "v1:tree:") {
		t.Errorf("TreeKey = %s", got)
	}
	if got := NewScopedKeyer(nil, "p:").ArtifactKey("t", ArtifactKeyOpts{}); !strings.HasPrefix(got, "p:artifact:") {
		t.Errorf("nil inner ArtifactKey = %s", got)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) || err.Error() != ErrNetwork.Error() {
		t.Errorf("Retryable(ErrNetwork) = %v", err)
	}
	if IsRetryable(ErrNetwork) {
		t.Error("plain error is retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond
	ctx := context.Background()
	permanent := errors.New("permanent")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"permanent", 5, permanent, 1, permanent},
		{"recovers", 2, Retryable(ErrNetwork), 3, nil},
		{"exhausted", 5, Retryable(ErrNetwork), 3, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil || tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoffCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()
	c := NewFileCacheFS(fs)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if _, hit, err := c.Get(ctx, "a"); hit || err != nil {
		t.Fatalf("empty Get = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "a", []byte("alpha"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "b", []byte("beta"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if data, hit, _ := c.Get(ctx, "a"); !hit || string(data) != "alpha" {
		t.Errorf("Get a = %q, %v", data, hit)
	}

	st, err := c.Stats(ctx)
	if err != nil || st.Entries != 2 || st.Bytes == 0 {
		t.Errorf("Stats = %+v, %v", st, err)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("expired entry returned")
	}
	if data, hit, _ := c.Get(ctx, "b"); !hit || string(data) != "beta" {
		t.Errorf("entry without ttl expired: %q, %v", data, hit)
	}
	if st, _ := c.Stats(ctx); st.Entries != 1 {
		t.Errorf("expired entry kept on disk: %+v", st)
	}

	if err := c.Delete(ctx, "b"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Delete(ctx, "b"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("deleted entry returned")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()
	c := NewFileCacheFS(fs)
	if err := util.WriteFile(fs, c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt Get = %v, %v; want miss", hit, err)
	}
	if _, err := fs.Stat(c.path("k")); err == nil {
		t.Error("corrupt entry not removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()
	if err := util.WriteFile(fs, "/README", []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := NewFileCacheFS(fs)
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := Clear(ctx, c)
	if n != 3 || err != nil {
		t.Errorf("Clear = %d, %v", n, err)
	}
	if _, err := fs.Stat("/README"); err != nil {
		t.Error("Clear removed a foreign file")
	}
	if st, _ := c.Stats(ctx); st.Entries != 0 {
		t.Errorf("entries after Clear = %d", st.Entries)
	}
}
