package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Short returns the first 12 hex characters, for logs.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// Fingerprinter accumulates typed values into a SHA-256 digest.
// Every write is length- or width-prefixed so adjacent values cannot collide.
type Fingerprinter struct {
	h   hash.Hash
	buf [8]byte
}

// NewFingerprinter creates an empty fingerprinter
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{h: sha256.New()}
}

// Str adds a string
func (f *Fingerprinter) Str(s string) *Fingerprinter {
	f.Int(len(s))
	f.h.Write([]byte(s))
	return f
}

// Int adds an integer
func (f *Fingerprinter) Int(n int) *Fingerprinter {
	binary.LittleEndian.PutUint64(f.buf[:], uint64(n))
	f.h.Write(f.buf[:])
	return f
}

// Float adds a float; all NaN payloads hash the same.
func (f *Fingerprinter) Float(v float64) *Fingerprinter {
	bits := math.Float64bits(v)
	if math.IsNaN(v) {
		bits = 0x7FF8000000000001
	}
	binary.LittleEndian.PutUint64(f.buf[:], bits)
	f.h.Write(f.buf[:])
	return f
}

// Bool adds a boolean
func (f *Fingerprinter) Bool(b bool) *Fingerprinter {
	if b {
		f.h.Write([]byte{1})
	} else {
		f.h.Write([]byte{0})
	}
	return f
}

// Sum returns the digest
func (f *Fingerprinter) Sum() Hash {
	return Hash(hex.EncodeToString(f.h.Sum(nil)))
}

// ComputeKeyHash hashes an ordered list of keys, e.g. the feature list of a cache entry
func ComputeKeyHash(keys []string) Hash {
	f := NewFingerprinter().Int(len(keys))
	for _, k := range keys {
		f.Str(k)
	}
	return f.Sum()
}

// JoinKey builds a composite cache key from a hash and further parts
func JoinKey(h Hash, parts ...string) string {
	var b strings.Builder
	b.WriteString(string(h))
	for _, p := range parts {
		b.WriteByte('|')
		b.WriteString(p)
	}
	return b.String()
}
