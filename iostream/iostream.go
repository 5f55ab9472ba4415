// Package iostream implements the Io capability-set abstraction of spec
// section 6, generalizing the teacher's io.ReaderAt-backed buffer/file
// access in decoder.go/idf.go (newReaderAt, the *buffer fast-path in
// decompress) into the strict/tolerant read/write, seek/tell/flush/size
// contract every codec is driven through.
package iostream

import (
	"io"

	"github.com/mdouchement/rasterio/status"
)

// Whence mirrors io.Seek{Start,Current,End} under the spec's own naming.
type Whence int

const (
	Set Whence = iota
	Cur
	End
)

// Io is the polymorphic stream every codec load/save state is driven
// through (spec section 6).
type Io interface {
	StrictRead(buf []byte) error
	TolerantRead(buf []byte) (int, error)
	StrictWrite(buf []byte) error
	TolerantWrite(buf []byte) (int, error)
	Seek(offset int64, whence Whence) error
	Tell() (int64, error)
	Flush() error
	Size() (int64, error)
}

func seekWhence(w Whence) (int, error) {
	switch w {
	case Set:
		return io.SeekStart, nil
	case Cur:
		return io.SeekCurrent, nil
	case End:
		return io.SeekEnd, nil
	default:
		return 0, status.New(status.UnsupportedSeekWhence)
	}
}

// rwsStream adapts any io.ReadWriteSeeker (files, bytes.Reader-over-buffer
// wrappers) to Io.
type rwsStream struct {
	rws io.ReadWriteSeeker
}

// FromReadWriteSeeker wraps an io.ReadWriteSeeker (e.g. *os.File) as an Io.
func FromReadWriteSeeker(rws io.ReadWriteSeeker) Io {
	return &rwsStream{rws: rws}
}

func (s *rwsStream) StrictRead(buf []byte) error {
	_, err := io.ReadFull(s.rws, buf)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return status.Wrap(status.EndOfStream, "read", err)
		}
		return status.Wrap(status.ReadIO, "read", err)
	}
	return nil
}

func (s *rwsStream) TolerantRead(buf []byte) (int, error) {
	n, err := s.rws.Read(buf)
	if err != nil && err != io.EOF {
		return n, status.Wrap(status.ReadIO, "read", err)
	}
	return n, nil
}

func (s *rwsStream) StrictWrite(buf []byte) error {
	n, err := s.rws.Write(buf)
	if err != nil {
		return status.Wrap(status.WriteIO, "write", err)
	}
	if n != len(buf) {
		return status.Newf(status.WriteIO, "short write: %d of %d bytes", n, len(buf))
	}
	return nil
}

func (s *rwsStream) TolerantWrite(buf []byte) (int, error) {
	n, err := s.rws.Write(buf)
	if err != nil {
		return n, status.Wrap(status.WriteIO, "write", err)
	}
	return n, nil
}

func (s *rwsStream) Seek(offset int64, whence Whence) error {
	w, err := seekWhence(whence)
	if err != nil {
		return err
	}
	_, err = s.rws.Seek(offset, w)
	if err != nil {
		return status.Wrap(status.SeekIO, "seek", err)
	}
	return nil
}

func (s *rwsStream) Tell() (int64, error) {
	pos, err := s.rws.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, status.Wrap(status.TellIO, "tell", err)
	}
	return pos, nil
}

func (s *rwsStream) Flush() error {
	if f, ok := s.rws.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return status.Wrap(status.FlushIO, "flush", err)
		}
	}
	return nil
}

func (s *rwsStream) Size() (int64, error) {
	cur, err := s.Tell()
	if err != nil {
		return 0, err
	}
	end, err := s.rws.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, status.Wrap(status.SeekIO, "size", err)
	}
	if _, err := s.rws.Seek(cur, io.SeekStart); err != nil {
		return 0, status.Wrap(status.SeekIO, "size-restore", err)
	}
	return end, nil
}
