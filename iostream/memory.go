package iostream

import (
	"os"

	"github.com/mdouchement/rasterio/status"
)

// memBuffer is a growable in-memory backing store, used both for read-only
// "decode from []byte" sessions and for expanding write buffers (spec
// section 3: "expanding memory buffer (auto-grow on write)").
type memBuffer struct {
	buf  []byte
	pos  int64
	grow bool
}

// FromBytes wraps a read-only in-memory buffer as an Io. Writes fail with
// status.WriteIO since the backing slice is not owned by the stream.
func FromBytes(data []byte) Io {
	return &memBuffer{buf: data}
}

// NewExpandingBuffer returns a write-oriented Io that grows its backing
// slice on demand; Bytes() returns the accumulated content.
func NewExpandingBuffer() *ExpandingBuffer {
	return &ExpandingBuffer{memBuffer: &memBuffer{grow: true}}
}

// ExpandingBuffer is the auto-growing write sink variant.
type ExpandingBuffer struct {
	*memBuffer
}

// Bytes returns the bytes written so far.
func (e *ExpandingBuffer) Bytes() []byte { return e.buf }

func (m *memBuffer) StrictRead(buf []byte) error {
	n, err := m.TolerantRead(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return status.New(status.EndOfStream)
	}
	return nil
}

func (m *memBuffer) TolerantRead(buf []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, nil
	}
	n := copy(buf, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memBuffer) StrictWrite(buf []byte) error {
	n, err := m.TolerantWrite(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return status.New(status.WriteIO)
	}
	return nil
}

func (m *memBuffer) TolerantWrite(buf []byte) (int, error) {
	end := m.pos + int64(len(buf))
	if end > int64(len(m.buf)) {
		if !m.grow {
			return 0, status.New(status.WriteIO)
		}
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	n := copy(m.buf[m.pos:end], buf)
	m.pos += int64(n)
	return n, nil
}

func (m *memBuffer) Seek(offset int64, whence Whence) error {
	var base int64
	switch whence {
	case Set:
		base = 0
	case Cur:
		base = m.pos
	case End:
		base = int64(len(m.buf))
	default:
		return status.New(status.UnsupportedSeekWhence)
	}
	pos := base + offset
	if pos < 0 {
		return status.New(status.SeekIO)
	}
	m.pos = pos
	return nil
}

func (m *memBuffer) Tell() (int64, error) { return m.pos, nil }

func (m *memBuffer) Flush() error { return nil }

func (m *memBuffer) Size() (int64, error) { return int64(len(m.buf)), nil }

// FromFile opens path for the given read/write access, wrapping the
// resulting *os.File as an Io (spec section 3, "file-backed" variant).
func FromFile(path string, write bool) (Io, *os.File, error) {
	var (
		f   *os.File
		err error
	)
	if write {
		f, err = os.Create(path)
	} else {
		f, err = os.Open(path)
	}
	if err != nil {
		code := status.OpenFile
		return nil, nil, status.Wrap(code, path, err)
	}
	return FromReadWriteSeeker(f), f, nil
}
