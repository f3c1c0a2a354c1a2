package pvr

import "log/slog"

// MaxGBIX is the highest global index value not reserved by the host OS
// (Ninja_GD.pdf pg. 99: 0xFFFFFFF0-0xFFFFFFFF are reserved).
const MaxGBIX = 0xFFFFFFEF

// Encoder holds the policy inputs the legacy tool kept as process-wide
// globals (the opaque-alpha byte, the GBIX counter) as session fields
// instead, per the design notes on global mutable state. A zero-value
// Encoder is usable: OpaqueAlpha defaults to fully opaque on first use and
// the GBIX counter starts at zero.
type Encoder struct {
	// Logger receives non-fatal diagnostics: Jacobi non-convergence in the
	// partitioner (§4.4) and GBIX values beyond MaxGBIX (§4.8). Nil is
	// silent.
	Logger *slog.Logger
	// OpaqueAlpha substitutes for alpha in formats that carry none (RGB565)
	// or when no alpha plane was supplied. Zero value is treated as 0xFF.
	OpaqueAlpha uint8
	// NextGlobalIndex is incremented and emitted each time a GBIX chunk is
	// written with EnableGlobalIndex set.
	NextGlobalIndex uint32
	// EnableGlobalIndex, when true, causes Encode to prefix the container
	// with a GBIX chunk carrying NextGlobalIndex, then increment it.
	EnableGlobalIndex bool
}

func (e *Encoder) opaqueAlpha() uint8 {
	if e == nil || e.OpaqueAlpha == 0 {
		return 0xFF
	}
	return e.OpaqueAlpha
}

func (e *Encoder) logf(msg string, args ...any) {
	if e == nil || e.Logger == nil {
		return
	}
	e.Logger.Warn(msg, args...)
}

// takeGlobalIndex returns the next GBIX value and advances the counter,
// logging if the value falls in the OS-reserved range.
func (e *Encoder) takeGlobalIndex() uint32 {
	idx := e.NextGlobalIndex
	e.NextGlobalIndex++
	if idx > MaxGBIX {
		e.logf("pvr: global index in OS-reserved range", "index", idx)
	}
	return idx
}

// Decoder holds session policy for decode. OpaqueAlpha substitutes for
// alpha in formats that carry none.
type Decoder struct {
	Logger      *slog.Logger
	OpaqueAlpha uint8
}

func (d *Decoder) opaqueAlpha() uint8 {
	if d == nil || d.OpaqueAlpha == 0 {
		return 0xFF
	}
	return d.OpaqueAlpha
}
