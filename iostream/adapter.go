package iostream

import "io"

// Reader adapts an Io to io.Reader, for codecs built on stdlib/ecosystem
// decoders (image/gif, image/jpeg, image/png, golang.org/x/image/webp)
// that expect a plain io.Reader rather than the Io capability set.
func Reader(s Io) io.Reader { return &readerAdapter{io: s} }

type readerAdapter struct{ io Io }

func (r *readerAdapter) Read(buf []byte) (int, error) {
	n, err := r.io.TolerantRead(buf)
	if err != nil {
		return n, err
	}
	if n == 0 && len(buf) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Writer adapts an Io to io.Writer, for codecs built on stdlib/ecosystem
// encoders (image/gif, image/png, github.com/HugoSmits86/nativewebp).
func Writer(s Io) io.Writer { return &writerAdapter{io: s} }

type writerAdapter struct{ io Io }

func (w *writerAdapter) Write(buf []byte) (int, error) {
	return w.io.TolerantWrite(buf)
}
