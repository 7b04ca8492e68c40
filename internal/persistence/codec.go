package persistence

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
)

// Shared coders; EncodeAll and DecodeAll are safe for concurrent use.
// Zero frames keep empty observations from encoding to a NULL blob.
var (
	obsEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithZeroFrames(true))
	obsDecoder, _ = zstd.NewReader(nil)
)

// EncodeObservation packs an observation as little-endian float64s and
// compresses it.
func EncodeObservation(obs []float64) []byte {
	raw := make([]byte, 8*len(obs))
	for i, v := range obs {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}
	return obsEncoder.EncodeAll(raw, nil)
}

// DecodeObservation reverses EncodeObservation.
func DecodeObservation(blob []byte) ([]float64, error) {
	raw, err := obsDecoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress observation: %w", err)
	}
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("observation payload of %d bytes is not a float64 array", len(raw))
	}
	obs := make([]float64, len(raw)/8)
	for i := range obs {
		obs[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return obs, nil
}
