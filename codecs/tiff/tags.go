// Package tiff implements the TIFF codec of spec section 4.6.6,
// generalizing the teacher's HDR-only decoder (decoder.go, idf.go,
// reader.go: SGI LogL/LogLuv and 32-bit-float RGB photometric modes) into
// a PixelFormat-driven codec.Codec that also covers baseline 8/16-bit
// TIFF via golang.org/x/image/tiff, the compression schemes the teacher's
// own strip/tile decoder never implemented.
package tiff

const (
	leHeader = "II\x2A\x00" // Header for little-endian files.
	beHeader = "MM\x00\x2A" // Header for big-endian files.

	ifdLen = 12 // Length of an IFD entry in bytes.
)

// Data types (TIFF 6.0 spec, p. 14-16).
const (
	dtByte      = 1
	dtASCII     = 2
	dtShort     = 3
	dtLong      = 4
	dtRational  = 5
	dtSByte     = 6
	dtUndefined = 7
	dtSShort    = 8
	dtSLong     = 9
	dtSRational = 10
	dtFloat     = 11
	dtDouble    = 12
)

// lengths is the byte length of one instance of each data type, indexed by
// datatype id.
var lengths = [...]uint32{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

// Tags (TIFF 6.0 spec p. 28-41, plus the Adobe LogLuv/STONITS supplement).
const (
	tImageWidth                = 256
	tImageLength               = 257
	tBitsPerSample             = 258
	tCompression               = 259
	tPhotometricInterpretation = 262
	tDocumentName              = 269
	tImageDescription          = 270
	tMake                      = 271
	tModel                     = 272
	tStripOffsets              = 273
	tOrientation               = 274
	tSamplesPerPixel           = 277
	tRowsPerStrip              = 278
	tStripByteCounts           = 279
	tXResolution               = 282
	tYResolution               = 283
	tPlanarConfiguration       = 284
	tResolutionUnit            = 296
	tSoftware                  = 305
	tDateTime                  = 306
	tArtist                    = 315
	tPredictor                 = 317
	tColorMap                  = 320
	tTileWidth                 = 322
	tTileLength                = 323
	tTileOffsets               = 324
	tTileByteCounts            = 325
	tExtraSamples              = 338
	tSampleFormat              = 339
	tCopyright                 = 33432
	tStonits                   = 37439
)

// Compression types.
const (
	cNone       = 1
	cCCITT      = 2
	cG3         = 3 // Group 3 Fax.
	cG4         = 4 // Group 4 Fax.
	cLZW        = 5
	cJPEGOld    = 6 // Superseded by cJPEG.
	cJPEG       = 7
	cDeflate    = 8 // zlib compression.
	cPackBits   = 32773
	cDeflateOld = 32946 // Adobe's pre-standard Deflate tag value.

	cSGILogRLE      = 34676 // LogLuv.
	cSGILog24Packed = 34677 // LogLuv.
)

// Photometric interpretation values.
const (
	pWhiteIsZero = 0
	pBlackIsZero = 1
	pRGB         = 2
	pPaletted    = 3
	pTransMask   = 4
	pCMYK        = 5
	pYCbCr       = 6
	pCIELab      = 8

	pLogL   = 32844 // GrayScale - CIE Log2(L).
	pLogLuv = 32845 // Color - CIE Log2(L) (u', v').
)

// Values for the tPredictor tag.
const (
	prNone          = 1
	prHorizontal    = 2
	prFloatingPoint = 3
)

// Values for the tResolutionUnit tag.
const (
	resNone    = 1
	resPerInch = 2
	resPerCM   = 3
)

// imageMode picks which decode path a file takes: the teacher's own
// strip/tile HDR decoder, or golang.org/x/image/tiff for everything else.
type imageMode int

const (
	mBaseline imageMode = iota
	mRGB                // 32-bit float RGB.
	mLogL               // 16-bit CIE Log2(L) grayscale.
	mLogLuv             // 16-bit CIE Log2(L)(u',v') color.
)

// modeFor picks the decode path from the photometric interpretation and
// bit depth the teacher's newDecoder used to gate on, without erroring out
// of the whole parse when neither hits: the baseline path takes over
// instead of newDecoder's original UnsupportedError bailout.
func modeFor(d *idf) imageMode {
	bpp := d.firstVal(tBitsPerSample)
	switch d.firstVal(tPhotometricInterpretation) {
	case pRGB:
		if bpp == 32 {
			return mRGB
		}
	case pLogL:
		if bpp == 16 {
			return mLogL
		}
	case pLogLuv:
		if bpp == 16 {
			return mLogLuv
		}
	}
	return mBaseline
}
