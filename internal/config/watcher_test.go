package config

import (
	"os"
	"testing"
	"time"
)

func TestWatcherDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `[log]
level = "info"
`)

	w, err := NewWatcher(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	reloaded := make(chan Config, 1)
	w.OnChange(func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	w.Start()

	writeFile(t, dir, "config.toml", `[log]
level = "debug"
`)

	select {
	case cfg := <-reloaded:
		if cfg.Log.Level != "debug" {
			t.Errorf("reloaded level = %q, want debug", cfg.Log.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}
}

func TestWatcherSurvivesRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `[view]
tab_width = 4
`)

	w, err := NewWatcher(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	reloaded := make(chan Config, 1)
	w.OnChange(func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	w.Start()

	// Save the way editors do: write a sibling, rename over the target.
	tmp := writeFile(t, dir, "config.toml.new", `[view]
tab_width = 8
`)
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.View.TabWidth != 8 {
			t.Errorf("reloaded tab width = %d, want 8", cfg.View.TabWidth)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}
}

func TestWatcherReportsBadReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `[log]
level = "info"
`)

	w, err := NewWatcher(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	changed := make(chan Config, 1)
	failed := make(chan error, 1)
	w.OnChange(func(cfg Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	w.OnError(func(err error) {
		select {
		case failed <- err:
		default:
		}
	})
	w.Start()

	writeFile(t, dir, "config.toml", "[log\nbroken")

	select {
	case err := <-failed:
		if err == nil {
			t.Fatal("nil error delivered")
		}
	case cfg := <-changed:
		t.Fatalf("got config %+v, want error", cfg)
	case <-time.After(5 * time.Second):
		t.Fatal("no error delivered")
	}
}
