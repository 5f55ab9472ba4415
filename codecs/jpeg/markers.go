package jpeg

// Hand-rolled APP1 (Exif)/APP2 (ICC_PROFILE) marker scan. No third-party
// JPEG marker library is importable from this corpus (the closest relative,
// other_examples/6b0786bc_jrm-1535-jpeg__app.go.go, is a standalone file
// naming a module that isn't one of the fetchable example repos); this is
// documented here as the required stdlib-only justification for metadata
// extraction. The actual DCT decode/encode is stdlib image/jpeg, the
// wrapped "third-party" library the spec treats as a black box.

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerCOM  = 0xFE
	markerAPP1 = 0xE1
	markerAPP2 = 0xE2
)

var exifPrefix = []byte("Exif\x00\x00")
var iccPrefix = []byte("ICC_PROFILE\x00")

// scanMarkers walks the marker segment sequence up to (not including) the
// scan data, collecting Exif and (possibly multi-segment) ICC profile
// payloads plus the first COM comment. Malformed/truncated input yields
// partial or empty results
// rather than an error, since metadata is optional.
func scanMarkers(data []byte) (exif []byte, icc []byte, comment string) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, nil, ""
	}

	type iccChunk struct {
		seq, total int
		data       []byte
	}
	var iccChunks []iccChunk

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			break
		}
		marker := data[pos+1]
		if marker == markerSOS || marker == markerEOI {
			break
		}
		if marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			pos += 2
			continue
		}

		segLen := int(data[pos+2])<<8 | int(data[pos+3])
		if segLen < 2 || pos+2+segLen > len(data) {
			break
		}
		payload := data[pos+4 : pos+2+segLen]

		switch marker {
		case markerCOM:
			if comment == "" {
				comment = string(payload)
			}
		case markerAPP1:
			if hasPrefix(payload, exifPrefix) && exif == nil {
				exif = append([]byte(nil), payload[len(exifPrefix):]...)
			}
		case markerAPP2:
			if hasPrefix(payload, iccPrefix) && len(payload) >= len(iccPrefix)+2 {
				rest := payload[len(iccPrefix):]
				seq, total := int(rest[0]), int(rest[1])
				iccChunks = append(iccChunks, iccChunk{seq: seq, total: total, data: append([]byte(nil), rest[2:]...)})
			}
		}

		pos += 2 + segLen
	}

	if len(iccChunks) > 0 {
		total := iccChunks[0].total
		ordered := make([][]byte, total)
		for _, c := range iccChunks {
			if c.seq >= 1 && c.seq <= total {
				ordered[c.seq-1] = c.data
			}
		}
		for _, chunk := range ordered {
			icc = append(icc, chunk...)
		}
	}

	return exif, icc, comment
}

func hasPrefix(b, prefix []byte) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == string(prefix)
}
