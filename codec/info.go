package codec

import (
	"strings"

	"github.com/mdouchement/rasterio/pixelformat"
)

// Signature is one (offset, pattern[, mask]) magic-byte rule (spec
// section 4.1). A codec may declare several; any match succeeds.
type Signature struct {
	Offset  int
	Pattern []byte
	Mask    []byte // optional, same length as Pattern when set
}

// Matches reports whether buf (read from offset 0 of the stream) satisfies
// this signature.
func (s Signature) Matches(buf []byte) bool {
	if s.Offset+len(s.Pattern) > len(buf) {
		return false
	}
	window := buf[s.Offset : s.Offset+len(s.Pattern)]
	for i, want := range s.Pattern {
		got := window[i]
		if s.Mask != nil {
			got &= s.Mask[i]
			want &= s.Mask[i]
		}
		if got != want {
			return false
		}
	}
	return true
}

// LoadFeatures declares what a codec's decoder supports.
type LoadFeatures struct {
	Animated       bool
	MultiPage      bool
	MetaData       bool
	Interlaced     bool
	ICCProfile     bool
	SourceImage    bool
}

// SaveFeatures declares what a codec's encoder accepts.
type SaveFeatures struct {
	PixelFormats        []pixelformat.Format
	Compressions         []Compression
	DefaultCompression   Compression
	CompressionLevelMin  float64
	CompressionLevelMax  float64
	CompressionLevelDflt float64
}

// Info is the static per-format descriptor (spec section 3, CodecInfo).
type Info struct {
	Name        string
	Description string
	MIMETypes   []string
	Extensions  []string
	Signatures  []Signature
	Load        LoadFeatures
	Save        SaveFeatures
}

// MaxSignatureLength returns the largest offset+pattern-length across sigs,
// the probe window size codec_from_magic needs to read (spec section 4.1).
func (i *Info) MaxSignatureLength() int {
	max := 0
	for _, s := range i.Signatures {
		n := s.Offset + len(s.Pattern)
		if n > max {
			max = n
		}
	}
	return max
}

// MatchesExtension reports whether ext (case-insensitive, with or without
// a leading dot) is one of this codec's declared extensions.
func (i *Info) MatchesExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, e := range i.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// MatchesMIME reports case-insensitive MIME match.
func (i *Info) MatchesMIME(mime string) bool {
	mime = strings.ToLower(mime)
	for _, m := range i.MIMETypes {
		if strings.ToLower(m) == mime {
			return true
		}
	}
	return false
}

// MatchesMagic reports whether any declared signature matches buf.
func (i *Info) MatchesMagic(buf []byte) bool {
	for _, s := range i.Signatures {
		if s.Matches(buf) {
			return true
		}
	}
	return false
}

// AcceptsPixelFormat reports whether f is in this codec's accepted output
// set for Save.
func (i *Info) AcceptsPixelFormat(f pixelformat.Format) bool {
	for _, pf := range i.Save.PixelFormats {
		if pf == f {
			return true
		}
	}
	return false
}
