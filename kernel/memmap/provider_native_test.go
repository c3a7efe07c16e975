package memmap

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenFileCreatesAndMaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region")
	p, err := OpenFile(FileOptions{Path: path, Size: 4096, Create: true})
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	defer p.Close()

	if p.Size() != 4096 {
		t.Fatalf("expected size 4096, got %d", p.Size())
	}

	p.Bytes()[0] = 0x42
	if err := p.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
}

func TestOpenFileRequiresSizeWhenCreating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region")
	if _, err := OpenFile(FileOptions{Path: path, Create: true}); err != ErrNotCreate {
		t.Fatalf("expected ErrNotCreate, got %v", err)
	}
}

func TestOpenFileRejectsSizeNotAMultipleOfPageSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region")
	if _, err := OpenFile(FileOptions{Path: path, Size: 4097, Create: true}); err != ErrMisaligned {
		t.Fatalf("expected ErrMisaligned, got %v", err)
	}
}

func TestCloneIsPrivateAndCommitPropagates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region")
	orig, err := OpenFile(FileOptions{Path: path, Size: 4096, Create: true})
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	defer orig.Close()
	orig.Bytes()[0] = 1

	clone, err := Clone(orig)
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	defer clone.Close()

	clone.Bytes()[0] = 2
	if orig.Bytes()[0] != 1 {
		t.Fatalf("clone write leaked into original mapping")
	}

	if err := clone.CommitTo(orig); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if orig.Bytes()[0] != 2 {
		t.Fatalf("commit did not propagate clone bytes")
	}
}

func TestCommitToRejectsSizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region")
	orig, err := OpenFile(FileOptions{Path: path, Size: 8192, Create: true})
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	defer orig.Close()

	clone, err := Clone(orig)
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	defer clone.Close()

	other, err := NewMemoryProvider(4096)
	if err != nil {
		t.Fatalf("new memory provider: %v", err)
	}

	if err := clone.CommitTo(other); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}
