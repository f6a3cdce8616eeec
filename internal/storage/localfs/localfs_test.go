package localfs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chordfs/chordfs/internal/storage"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	s := New(root, nil)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return s, root
}

func TestInitializeCreatesMissingDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "storage")
	s := New(root, nil)
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("root should not exist before Initialize")
	}
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root should exist after Initialize: %v", err)
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, root := newTestStore(t)

	path, err := s.Save(ctx, "test.txt", []byte("hello world"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path != filepath.Join(root, "test.txt") {
		t.Fatalf("Save path = %q, want %q", path, filepath.Join(root, "test.txt"))
	}

	got, err := s.Get(ctx, "test.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("Get = %q, want %q", got, "hello world")
	}
}

func TestSaveOverwritesExisting(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	if _, err := s.Save(ctx, "test.txt", []byte("first")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Save(ctx, "test.txt", []byte("second")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, "test.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("Get = %q, want %q", got, "second")
	}
}

func TestSaveSanitizesPathTraversal(t *testing.T) {
	ctx := context.Background()
	s, root := newTestStore(t)

	path, err := s.Save(ctx, "../../../etc/passwd", []byte("malicious"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := filepath.Join(root, "passwd")
	if path != want {
		t.Fatalf("Save path = %q, want %q (escaped root)", path, want)
	}
	if data, err := os.ReadFile(filepath.Join(root, "..", "..", "..", "etc", "passwd")); err == nil && string(data) == "malicious" {
		t.Fatalf("path traversal escaped the storage root")
	}
}

func TestSaveSanitizesDotAndDotDot(t *testing.T) {
	ctx := context.Background()
	s, root := newTestStore(t)

	path, err := s.Save(ctx, "..", []byte("x"))
	if err != nil {
		t.Fatalf("Save(\"..\"): %v", err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("Save(\"..\") wrote outside root: %q", path)
	}
	path, err = s.Save(ctx, ".", []byte("y"))
	if err != nil {
		t.Fatalf("Save(\".\"): %v", err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("Save(\".\") wrote outside root: %q", path)
	}
}

func TestGetNonexistentReturnsErrNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Get(context.Background(), "nonexistent.txt")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get nonexistent = %v, want storage.ErrNotFound", err)
	}
}

func TestGetBinaryContent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	binary := make([]byte, 256)
	for i := range binary {
		binary[i] = byte(i)
	}
	if _, err := s.Save(ctx, "binary.bin", binary); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, "binary.bin")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != len(binary) {
		t.Fatalf("Get len = %d, want %d", len(got), len(binary))
	}
	for i := range binary {
		if got[i] != binary[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], binary[i])
		}
	}
}

func TestDeleteExistingAndNonexistent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	if _, err := s.Save(ctx, "test.txt", []byte("hello")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	deleted, err := s.Delete(ctx, "test.txt")
	if err != nil || !deleted {
		t.Fatalf("Delete(existing) = %v, %v; want true, nil", deleted, err)
	}
	if exists, _ := s.Exists(ctx, "test.txt"); exists {
		t.Fatalf("file should no longer exist after Delete")
	}

	deleted, err = s.Delete(ctx, "test.txt")
	if err != nil || deleted {
		t.Fatalf("Delete(already gone) = %v, %v; want false, nil", deleted, err)
	}
}

func TestExistsTrueAndFalse(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	if exists, err := s.Exists(ctx, "nonexistent.txt"); err != nil || exists {
		t.Fatalf("Exists(missing) = %v, %v; want false, nil", exists, err)
	}
	if _, err := s.Save(ctx, "test.txt", []byte("hello")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if exists, err := s.Exists(ctx, "test.txt"); err != nil || !exists {
		t.Fatalf("Exists(present) = %v, %v; want true, nil", exists, err)
	}
}

func TestListEmptyAndMultipleExcludingDirectories(t *testing.T) {
	ctx := context.Background()
	s, root := newTestStore(t)

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("List on empty store = %v, want empty", names)
	}

	for _, n := range []string{"file1.txt", "file2.txt", "file3.txt"} {
		if _, err := s.Save(ctx, n, []byte(n)); err != nil {
			t.Fatalf("Save %s: %v", n, err)
		}
	}
	if err := os.Mkdir(filepath.Join(root, "subdir"), 0o755); err != nil {
		t.Fatalf("Mkdir subdir: %v", err)
	}

	names, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"file1.txt", "file2.txt", "file3.txt"}
	if len(names) != len(want) {
		t.Fatalf("List = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("List[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
