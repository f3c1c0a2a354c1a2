// Package pvr encodes and decodes PowerVR (PVR/VQF/PVP) texture containers
// for the Dreamcast/CLX2 family of GPUs, including the vector-quantisation
// codec used to build VQ codebooks.
//
// Encode builds a container from a raw RGB(A) raster; Decode parses one back
// into a Raster. The VQ pipeline (partition, search tree, assignment,
// reorder) is exposed separately for callers that want to drive it by hand.
package pvr

import "errors"

// Errors returned by encode/decode. Use errors.Is to check.
var (
	// ErrOutOfMemory mirrors the legacy C++ tool's out-of-memory error code.
	// Go does not fail allocations the way that tool did, and no function in
	// this package returns it.
	ErrOutOfMemory = errors.New("pvr: out of memory")
	// ErrInvalidSize is returned when width/height are not in the allowed set.
	ErrInvalidSize = errors.New("pvr: invalid image dimensions")
	// ErrInvalidParameter is returned for an unrecognised color format, dither
	// mode, metric, or a combination of options the format cannot express.
	ErrInvalidParameter = errors.New("pvr: invalid parameter")
	// ErrUnsupportedFormat is returned on decode when a texture class this
	// package does not read is encountered (e.g. BUMP).
	ErrUnsupportedFormat = errors.New("pvr: unsupported texture format")
	// ErrTruncatedFile is returned when the decoder runs off the end of the
	// input buffer.
	ErrTruncatedFile = errors.New("pvr: truncated file")
	// ErrInvalidMagic is returned when a container's tag does not match the
	// expected magic bytes (PVRT, GBIX, PVPL, or the VQF "PV" header).
	ErrInvalidMagic = errors.New("pvr: invalid magic")
	// ErrMissingTag names a missing required chunk tag. No function in this
	// package returns it: a missing PVRT tag is reported as ErrInvalidMagic.
	ErrMissingTag = errors.New("pvr: missing required tag")
)
