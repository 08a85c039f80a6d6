package pager

import (
	"os"
	"path/filepath"
	"testing"
)

func tempPagerPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "nested", "table.db")
}

func TestOpenCreatesMissingDirectoryAndFile(t *testing.T) {
	path := tempPagerPath(t)

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected backing file to exist: %v", err)
	}
	if p.FileLength() != 0 {
		t.Fatalf("expected fresh file length 0, got %d", p.FileLength())
	}
}

func TestGetPageBeyondEOFIsZeroed(t *testing.T) {
	p, err := Open(tempPagerPath(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	buf, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d: expected 0, got %d", i, b)
		}
	}
	if !p.Populated(0) {
		t.Fatalf("expected page 0 to be marked populated after GetPage")
	}
	if p.Populated(1) {
		t.Fatalf("expected page 1 to remain unpopulated")
	}
}

func TestFlushThenReopenRoundTrips(t *testing.T) {
	path := tempPagerPath(t)

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	buf, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	copy(buf, []byte("hello"))

	if err := p.Flush(0, 5); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p2.Close()

	if p2.FileLength() != 5 {
		t.Fatalf("expected reopened file length 5, got %d", p2.FileLength())
	}

	buf2, err := p2.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage after reopen: %v", err)
	}
	if got := string(buf2[:5]); got != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got)
	}
	for i := 5; i < PageSize; i++ {
		if buf2[i] != 0 {
			t.Fatalf("byte %d beyond written region: expected 0, got %d", i, buf2[i])
		}
	}
}

func TestPartialPageReadLeavesTailZeroed(t *testing.T) {
	path := tempPagerPath(t)

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	buf, _ := p.GetPage(0)
	copy(buf, []byte("partial"))
	if err := p.Flush(0, len("partial")); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p2.Close()

	buf2, err := p2.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if string(buf2[:len("partial")]) != "partial" {
		t.Fatalf("unexpected prefix: %q", buf2[:len("partial")])
	}
	if buf2[len("partial")] != 0 {
		t.Fatalf("expected byte immediately after written data to be zero")
	}
}
