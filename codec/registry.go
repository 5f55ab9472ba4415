package codec

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/mdouchement/rasterio/iostream"
	"github.com/mdouchement/rasterio/status"
)

// Registry is the process-wide, immutable-after-init codec catalog of
// spec section 4.1, generalizing the teacher's single image.RegisterFormat
// call in reader.go's init() into an explicitly initialized list guarded
// by a read-write mutex; lookups take the shared read lock (spec section 9:
// "an explicit init() that callers may invoke eagerly or rely on lazy
// first-use initialization with memoization").
type Registry struct {
	mu     sync.RWMutex
	codecs []Codec
}

// NewRegistry returns an empty registry. Built-in codecs are registered by
// the top-level rasterio package's init(), mirroring the teacher's own
// package-level init() registering its TIFF decoder.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a codec under the write lock. Codecs are registered
// during package init; after that the registry is treated as read-only,
// and lookups only take the read lock.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs = append(r.codecs, c)
}

// Codecs returns the ordered, immutable list of registered codecs.
func (r *Registry) Codecs() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Codec, len(r.codecs))
	copy(out, r.codecs)
	return out
}

// FromExtension resolves a codec by file extension (with or without the
// leading dot), case-insensitively.
func (r *Registry) FromExtension(ext string) (Codec, error) {
	for _, c := range r.Codecs() {
		if c.Info().MatchesExtension(ext) {
			return c, nil
		}
	}
	return nil, status.Newf(status.CodecNotFound, "extension %q", ext)
}

// FromPath resolves a codec from a file path's extension.
func (r *Registry) FromPath(path string) (Codec, error) {
	return r.FromExtension(strings.TrimPrefix(filepath.Ext(path), "."))
}

// FromMIME resolves a codec by case-insensitive MIME type match.
func (r *Registry) FromMIME(mime string) (Codec, error) {
	for _, c := range r.Codecs() {
		if c.Info().MatchesMIME(mime) {
			return c, nil
		}
	}
	return nil, status.Newf(status.CodecNotFound, "mime %q", mime)
}

// FromMagic performs the non-destructive signature probe of spec section
// 4.1: it reads the first N bytes (N = the largest declared signature
// across all codecs) from io, restores the stream position, and returns
// the first codec whose signature set matches.
func (r *Registry) FromMagic(io iostream.Io) (Codec, error) {
	codecs := r.Codecs()

	max := 0
	for _, c := range codecs {
		if n := c.Info().MaxSignatureLength(); n > max {
			max = n
		}
	}
	if max == 0 {
		return nil, status.New(status.CodecNotFound)
	}

	pos, err := io.Tell()
	if err != nil {
		return nil, err
	}
	if err := io.Seek(0, iostream.Set); err != nil {
		return nil, err
	}

	buf := make([]byte, max)
	n, err := io.TolerantRead(buf)
	if err != nil {
		return nil, err
	}
	buf = buf[:n]

	if serr := io.Seek(pos, iostream.Set); serr != nil {
		return nil, serr
	}

	for _, c := range codecs {
		if c.Info().MatchesMagic(buf) {
			return c, nil
		}
	}
	return nil, status.New(status.CodecNotFound)
}
