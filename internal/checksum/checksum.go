// Package checksum builds structural SHA-256 identities for descriptors,
// documents and cache entries.
//
// A checksum is the only identity that may be used across compilations:
// two values whose checksums are equal are interchangeable for caching,
// reference identity is never assumed stable across process boundaries or
// serialization.
package checksum

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"

	"fortio.org/safecast"
)

// Digest is a fixed 256-bit hash.
type Digest [32]byte

// String returns the lowercase hex form.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 8 hex digits, handy for logs and dumps.
func (d Digest) Short() string {
	return hex.EncodeToString(d[:4])
}

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseDigest decodes the hex form produced by Digest.String.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	raw, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("checksum: %w", err)
	}
	if len(raw) != len(d) {
		return d, fmt.Errorf("checksum: want %d bytes, got %d", len(d), len(raw))
	}
	copy(d[:], raw)
	return d, nil
}

// type tags written before every scalar
const (
	tagNull byte = iota + 1
	tagString
	tagInt
	tagUint
	tagBool
	tagDigest
	tagKind
)

// Builder appends fields in a fixed order and mixes them with SHA-256.
// Every value is prefixed with a one-byte tag and strings are length
// prefixed, so ("ab","c") and ("a","bc") never produce the same stream.
type Builder struct {
	h   hash.Hash
	buf [binary.MaxVarintLen64 + 1]byte
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{h: sha256.New()}
}

// Of is a shortcut for New + fn + Sum.
func Of(fn func(b *Builder)) Digest {
	b := New()
	fn(b)
	return b.Sum()
}

func (b *Builder) writeTag(tag byte) {
	b.buf[0] = tag
	_, _ = b.h.Write(b.buf[:1])
}

func (b *Builder) writeUvarint(v uint64) {
	n := binary.PutUvarint(b.buf[:], v)
	_, _ = b.h.Write(b.buf[:n])
}

// AppendString appends a length-prefixed string.
func (b *Builder) AppendString(s string) *Builder {
	b.writeTag(tagString)
	b.writeUvarint(uint64(len(s)))
	_, _ = b.h.Write([]byte(s))
	return b
}

// AppendOptionalString appends s, or a null marker when s is empty.
// Used for fields where "absent" and "empty" are the same thing.
func (b *Builder) AppendOptionalString(s string) *Builder {
	if s == "" {
		return b.AppendNull()
	}
	return b.AppendString(s)
}

// AppendInt appends a signed integer.
func (b *Builder) AppendInt(v int64) *Builder {
	b.writeTag(tagInt)
	n := binary.PutVarint(b.buf[:], v)
	_, _ = b.h.Write(b.buf[:n])
	return b
}

// AppendUint appends an unsigned integer.
func (b *Builder) AppendUint(v uint64) *Builder {
	b.writeTag(tagUint)
	b.writeUvarint(v)
	return b
}

// AppendLen appends a collection length.
func (b *Builder) AppendLen(n int) *Builder {
	v, err := safecast.Conv[uint64](n)
	if err != nil {
		panic(fmt.Errorf("checksum: negative length %d: %w", n, err))
	}
	return b.AppendUint(v)
}

// AppendBool appends a boolean.
func (b *Builder) AppendBool(v bool) *Builder {
	b.writeTag(tagBool)
	if v {
		b.buf[0] = 1
	} else {
		b.buf[0] = 0
	}
	_, _ = b.h.Write(b.buf[:1])
	return b
}

// AppendDigest appends a nested checksum.
func (b *Builder) AppendDigest(d Digest) *Builder {
	b.writeTag(tagDigest)
	_, _ = b.h.Write(d[:])
	return b
}

// AppendNull appends an explicit "no value" marker.
func (b *Builder) AppendNull() *Builder {
	b.writeTag(tagNull)
	return b
}

// AppendKind appends a record discriminator so that different descriptor
// types with identical field values still hash differently.
func (b *Builder) AppendKind(kind byte) *Builder {
	b.writeTag(tagKind)
	b.buf[0] = kind
	_, _ = b.h.Write(b.buf[:1])
	return b
}

// Sum finalizes the digest. The builder must not be reused afterwards.
func (b *Builder) Sum() Digest {
	var out Digest
	copy(out[:], b.h.Sum(nil))
	return out
}

// AppendEnum appends an enum ordinal as an integer.
func AppendEnum[E ~uint8 | ~uint16 | ~uint32 | ~int](b *Builder, v E) *Builder {
	n, err := safecast.Conv[int64](v)
	if err != nil {
		panic(fmt.Errorf("checksum: enum ordinal overflow: %w", err))
	}
	return b.AppendInt(n)
}

// Combine builds H(content || dep1 || dep2 ...). The order of deps matters.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// OfBytes hashes raw content.
func OfBytes(content []byte) Digest {
	return sha256.Sum256(content)
}
