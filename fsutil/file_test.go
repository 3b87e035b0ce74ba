package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oxhide/greenrt"
	"github.com/oxhide/greenrt/fsutil"
)

func TestFileWriteThenRead(t *testing.T) {
	rt, err := greenrt.New()
	if err != nil {
		t.Fatalf("greenrt.New() error: %v", err)
	}
	defer func() {
		if err := rt.Shutdown(); err != nil {
			t.Errorf("Shutdown() error: %v", err)
		}
	}()

	path := filepath.Join(t.TempDir(), "greenrt-fsutil-test.txt")

	handle, err := greenrt.Spawn(rt, func() error {
		w, err := fsutil.Create(rt, path)
		if err != nil {
			return err
		}
		if _, err := w.Write([]byte("hello green thread")); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}

		r, err := fsutil.Open(rt, path)
		if err != nil {
			return err
		}
		defer r.Close()

		buf := make([]byte, 64)
		n, err := r.Read(buf)
		if err != nil {
			return err
		}
		if got := string(buf[:n]); got != "hello green thread" {
			t.Fatalf("Read() = %q, want %q", got, "hello green thread")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Spawn() error: %v", err)
	}

	if err, joinErr := handle.Join(rt); joinErr != nil {
		t.Fatalf("Join() error: %v", joinErr)
	} else if err != nil {
		t.Fatalf("file body returned error: %v", err)
	}
}

func TestStatReportsRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "greenrt-fsutil-stat.txt")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("os.WriteFile() error: %v", err)
	}

	meta, err := fsutil.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if !meta.IsRegular() {
		t.Fatal("IsRegular() = false, want true")
	}
	if meta.IsDir() {
		t.Fatal("IsDir() = true, want false")
	}
	if meta.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", meta.Size())
	}
}
