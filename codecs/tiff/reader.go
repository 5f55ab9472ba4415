package tiff

import "io"

// buffer is an in-memory io.ReaderAt, the teacher's decoder.go/idf.go call
// newReaderAt(r) to obtain but never define anywhere in that source tree;
// this fills that gap in the teacher's own corpus, grounded on the same
// whole-file-in-memory convention golang.org/x/image/tiff uses internally
// for strip/tile random access.
type buffer struct {
	data []byte
}

// newReaderAt reads r fully into memory and returns a buffer over it. TIFF
// readers need random access for IFD chasing and out-of-order strip/tile
// offsets, so there is no streaming alternative worth pursuing here.
func newReaderAt(data []byte) *buffer {
	return &buffer{data: data}
}

func (b *buffer) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

// Slice returns a zero-copy view of n bytes at off, the fast-path
// decompress()'s *buffer type-assertion relies on to skip the
// copy-through-ReadAt round trip for uncompressed strips/tiles.
func (b *buffer) Slice(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > int64(len(b.data)) {
		return nil, io.ErrUnexpectedEOF
	}
	return b.data[off : off+n], nil
}
