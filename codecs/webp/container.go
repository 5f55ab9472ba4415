// Package webp implements the animated WebP container: RIFF chunk framing,
// VP8X/ANIM/ANMF parsing, canvas composition (disposal/blend) and chunk-
// based metadata extraction, grounded on spec §4.6.5 and the chunk byte
// layouts demonstrated by deepteams-webp/mux (chunk.go/demux.go). Per-frame
// bitstream decoding uses golang.org/x/image/webp (already the corpus's
// own decoder); encoding uses github.com/HugoSmits86/nativewebp, wrapping
// its single-frame output into hand-assembled ANMF chunks since neither
// library offers an animation muxer.
package webp

import "encoding/binary"

const (
	fourCCRIFF = "RIFF"
	fourCCWEBP = "WEBP"
	fourCCVP8  = "VP8 "
	fourCCVP8L = "VP8L"
	fourCCVP8X = "VP8X"
	fourCCANIM = "ANIM"
	fourCCANMF = "ANMF"
	fourCCALPH = "ALPH"
	fourCCICCP = "ICCP"
	fourCCEXIF = "EXIF"
	fourCCXMP  = "XMP "
)

const (
	chunkHeaderSize = 8
	riffHeaderSize  = 12
	vp8xChunkSize   = 10
	animChunkSize   = 6
	anmfChunkSize   = 16
)

// chunk is a single RIFF sub-chunk: 4-byte FourCC + 4-byte little-endian
// size, the payload following (padded to an even byte count on disk).
type chunk struct {
	fourCC string
	data   []byte
}

// readChunks walks a flat sequence of RIFF chunks starting at payload[0].
func readChunks(payload []byte) ([]chunk, error) {
	var chunks []chunk
	pos := 0
	for pos+chunkHeaderSize <= len(payload) {
		fourCC := string(payload[pos : pos+4])
		size := binary.LittleEndian.Uint32(payload[pos+4 : pos+8])
		start := pos + chunkHeaderSize
		end := start + int(size)
		if end > len(payload) {
			break
		}
		chunks = append(chunks, chunk{fourCC: fourCC, data: payload[start:end]})
		pos = end
		if size%2 != 0 {
			pos++ // padding byte
		}
	}
	return chunks, nil
}

// writeChunk appends a FourCC + size + payload (+ padding) to buf.
func writeChunk(buf []byte, fourCC string, payload []byte) []byte {
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(payload)))
	buf = append(buf, fourCC...)
	buf = append(buf, size[:]...)
	buf = append(buf, payload...)
	if len(payload)%2 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// wrapSimpleWebP builds a minimal single-chunk RIFF/WEBP container so a
// bare VP8/VP8L/VP8X payload (e.g. one ANMF frame's image data, or the
// output of a single-frame encoder) can be handed to an image.Image
// decoder that expects a complete file.
func wrapSimpleWebP(fourCC string, payload []byte) []byte {
	inner := make([]byte, 0, chunkHeaderSize+len(payload)+1)
	inner = writeChunk(inner, fourCC, payload)

	buf := make([]byte, 0, riffHeaderSize+len(inner))
	buf = append(buf, fourCCRIFF...)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(4+len(inner)))
	buf = append(buf, size[:]...)
	buf = append(buf, fourCCWEBP...)
	buf = append(buf, inner...)
	return buf
}

// firstImageChunk extracts the first VP8/VP8L image sub-chunk (plus
// any preceding ALPH chunk) from a flat chunk list, used both to pull a
// frame's bitstream out of an ANMF payload and to unwrap a freshly encoded
// single-frame WebP file back down to its raw chunk for muxing.
func firstImageChunk(chunks []chunk) (alpha, image []byte, imageFourCC string) {
	for _, c := range chunks {
		switch c.fourCC {
		case fourCCALPH:
			alpha = c.data
		case fourCCVP8, fourCCVP8L:
			return alpha, c.data, c.fourCC
		}
	}
	return alpha, image, imageFourCC
}
