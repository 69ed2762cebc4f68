// Package shortvec implements the compact-u16 length prefix used in Solana
// transaction encoding: seven bits per byte, least significant group first,
// with the high bit marking continuation.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedLen = 3

// EncodeLen writes length to w, returning the number of bytes written. Lengths
// above math.MaxUint16 are rejected.
func EncodeLen(w io.Writer, length int) (int, error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, errors.Errorf("length %d outside [0, %d]", length, math.MaxUint16)
	}

	var encoded [maxEncodedLen]byte
	n := 0
	for {
		encoded[n] = byte(length & 0x7f)
		length >>= 7
		if length == 0 {
			n++
			break
		}
		encoded[n] |= 0x80
		n++
	}

	return w.Write(encoded[:n])
}

// DecodeLen reads a compact-u16 length from r.
func DecodeLen(r io.Reader) (int, error) {
	var (
		val  int
		next [1]byte
	)
	for i := 0; i < maxEncodedLen; i++ {
		if _, err := io.ReadFull(r, next[:]); err != nil {
			if err == io.EOF && i > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}

		val |= int(next[0]&0x7f) << (7 * i)
		if next[0]&0x80 == 0 {
			return val, nil
		}
	}
	return 0, errors.Errorf("length prefix longer than %d bytes", maxEncodedLen)
}
