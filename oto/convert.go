package oto

import (
	"encoding/binary"
	"math"
)

// floatBufferToLE appends the raw little-endian float32 bytes of buff
// to dst, the sample layout FormatFloat32LE expects.
func floatBufferToLE(buff []float32, dst []byte) []byte {
	for _, v := range buff {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}
