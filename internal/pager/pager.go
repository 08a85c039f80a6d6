// Package pager implements the demand-loaded page cache that every table's
// backing file is read and written through. A page is read from disk at
// most once per process lifetime; writes stay in memory until Flush is
// called explicitly.
package pager

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// PageSize is the fixed width, in bytes, of every page.
	PageSize = 4096
	// TableMaxPages bounds how many pages a single table's backing file
	// may grow to.
	TableMaxPages = 100
)

// Pager maps (page index) -> in-memory buffer for a single backing file.
// A nil entry in pages means the slot has never been touched.
type Pager struct {
	file       *os.File
	fileLength int64
	pages      [TableMaxPages][]byte
}

// Open opens path for read/write, creating it (and its parent directory)
// if it does not already exist. It records the file's length but does not
// read any page eagerly.
func Open(path string) (*Pager, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "pager: create backing directory")
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, errors.Wrap(err, "pager: open backing file")
	}

	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "pager: stat backing file")
	}

	return &Pager{
		file:       f,
		fileLength: fi.Size(),
	}, nil
}

// FileLength returns the backing file's length as observed at Open time.
func (p *Pager) FileLength() int64 {
	return p.fileLength
}

// GetPage returns the buffer for pageNum, loading it from disk on first
// touch. Pages beyond the current end of file come back zero-initialized.
// Requesting a page at or beyond TableMaxPages is a fatal, unrecoverable
// error: the pager has no way to address it.
func (p *Pager) GetPage(pageNum uint32) ([]byte, error) {
	if pageNum >= TableMaxPages {
		logrus.Fatalf("pager: page %d out of bounds (max %d pages)", pageNum, TableMaxPages)
	}

	if p.pages[pageNum] == nil {
		buf, err := p.loadPage(pageNum)
		if err != nil {
			return nil, err
		}
		p.pages[pageNum] = buf
	}

	return p.pages[pageNum], nil
}

// Populated reports whether pageNum has ever been returned by GetPage (and
// so may hold data that needs flushing).
func (p *Pager) Populated(pageNum uint32) bool {
	return p.pages[pageNum] != nil
}

func (p *Pager) loadPage(pageNum uint32) ([]byte, error) {
	buf := make([]byte, PageSize)

	off := int64(pageNum) * PageSize
	if off >= p.fileLength {
		// Entirely beyond EOF: nothing to read, buffer stays zeroed.
		return buf, nil
	}

	if _, err := p.file.Seek(off, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "pager: seek to page %d", pageNum)
	}

	// A short read is expected here: the last page on disk may be
	// partial. Anything read is kept; the untouched tail stays zeroed.
	if _, err := io.ReadFull(p.file, buf); err != nil &&
		err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, errors.Wrapf(err, "pager: read page %d", pageNum)
	}

	return buf, nil
}

// Flush writes the first size bytes of the populated slot pageNum to disk
// at its page-aligned offset. Flushing an unpopulated slot is a fatal,
// unrecoverable error: there would be nothing correct to write.
func (p *Pager) Flush(pageNum uint32, size int) error {
	buf := p.pages[pageNum]
	if buf == nil {
		logrus.Fatalf("pager: flush requested on empty page %d", pageNum)
	}

	off := int64(pageNum) * PageSize
	if _, err := p.file.Seek(off, io.SeekStart); err != nil {
		return errors.Wrapf(err, "pager: seek to page %d for flush", pageNum)
	}
	if _, err := p.file.Write(buf[:size]); err != nil {
		return errors.Wrapf(err, "pager: write page %d", pageNum)
	}

	return nil
}

// Close releases every populated slot and closes the backing file. Callers
// are responsible for flushing whatever pages need to survive first.
func (p *Pager) Close() error {
	for i := range p.pages {
		p.pages[i] = nil
	}
	if err := p.file.Close(); err != nil {
		return errors.Wrap(err, "pager: close backing file")
	}
	return nil
}
