package db

import (
	"encoding/binary"
	"math"
)

// VectorToBytes encodes a float32 vector as little-endian FLOAT32 bytes,
// the wire format of Redis vector hash fields and KNN query blobs.
func VectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// BytesToVector decodes little-endian FLOAT32 bytes back into a vector.
func BytesToVector(s string) []float32 {
	v := make([]float32, len(s)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(s[i*4 : i*4+4])))
	}
	return v
}
