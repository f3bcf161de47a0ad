// Package hashid encodes integer primary keys into short reversible identifiers
// for use in public URLs and file names.
package hashid

import (
	"errors"
	"fmt"

	"github.com/speps/go-hashids/v2"
)

// ErrInvalid is returned when a value does not decode to exactly one id.
var ErrInvalid = errors.New("invalid hashed id")

// Codec encodes and decodes ids with a fixed salt.
type Codec struct {
	h *hashids.HashID
}

// New creates a Codec for the given salt and minimum output length.
func New(salt string, minLength int) (*Codec, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = minLength

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("hashid: %w", err)
	}
	return &Codec{h: h}, nil
}

// Encode returns the hashed form of id.
func (c *Codec) Encode(id int64) string {
	s, err := c.h.EncodeInt64([]int64{id})
	if err != nil {
		// EncodeInt64 only fails for negative input
		return ""
	}
	return s
}

// Decode returns the id hashed in s.
func (c *Codec) Decode(s string) (int64, error) {
	ids, err := c.h.DecodeInt64WithError(s)
	if err != nil || len(ids) != 1 {
		return 0, ErrInvalid
	}
	return ids[0], nil
}
