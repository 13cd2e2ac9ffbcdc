// Package gameid generates match identifiers: a UUIDv7 rendered as 26
// lowercase Crockford base32 characters, so IDs sort by creation time.
package gameid

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded ID. 26 characters hold 130 bits; the top two are
// always zero.
const Length = 26

// Generator produces IDs from a random source.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a generator reading randomness from r. A nil r uses
// crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate creates a new match ID.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new match ID using the generator's random source.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.rand == nil {
		id, err = uuid.NewV7()
	} else {
		id, err = uuid.NewV7FromReader(g.rand)
	}
	if err != nil {
		panic("gameid: failed to generate UUIDv7: " + err.Error())
	}
	return Encode(id)
}

// Encode renders id in base32.
func Encode(id uuid.UUID) string {
	hi, lo := split(id)
	out := make([]byte, Length)
	for i := range out {
		shift := uint(5 * (Length - 1 - i))
		out[i] = alphabet[extract(hi, lo, shift)]
	}
	return string(out)
}

// Parse decodes a match ID back into its UUID.
func Parse(s string) (uuid.UUID, error) {
	if err := Validate(s); err != nil {
		return uuid.Nil, err
	}
	var hi, lo uint64
	for i := 0; i < len(s); i++ {
		v := uint64(strings.IndexByte(alphabet, s[i]))
		hi = hi<<5 | lo>>59
		lo = lo<<5 | v
	}
	var id uuid.UUID
	for i := 0; i < 8; i++ {
		id[i] = byte(hi >> (56 - 8*i))
		id[8+i] = byte(lo >> (56 - 8*i))
	}
	return id, nil
}

// Time returns the creation time embedded in a match ID.
func Time(s string) (time.Time, error) {
	id, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if id.Version() != 7 {
		return time.Time{}, fmt.Errorf("game ID is UUID version %d, not 7", id.Version())
	}
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec), nil
}

// Validate checks if a game ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}

	// The leading character carries only three bits.
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}

	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}

func split(id uuid.UUID) (hi, lo uint64) {
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(id[i])
		lo = lo<<8 | uint64(id[8+i])
	}
	return hi, lo
}

// extract returns the five bits of the 128-bit value hi:lo starting at shift.
func extract(hi, lo uint64, shift uint) uint64 {
	var v uint64
	switch {
	case shift >= 64:
		v = hi >> (shift - 64)
	case shift == 0:
		v = lo
	default:
		v = lo>>shift | hi<<(64-shift)
	}
	return v & 0x1f
}
