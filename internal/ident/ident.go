// Package ident derives the deterministic note identifiers the collection
// format relies on: the GUID the importing application uses to recognize a
// note across files, and the checksum backing its duplicate-detection
// index. Both are pure functions of note content and involve no I/O or
// clock reads.
package ident

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
)

// guidAlphabet is the 91-character alphabet the importing application
// expects in its guid column. The order is part of the format; never
// reorder it.
const guidAlphabet = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!#$%&()*+,-./:;<=>?@[]^_`{|}~"

// fieldSep separates field values before hashing. Field values may not
// contain it, so distinct value sequences never collide by concatenation.
const fieldSep = "\x1f"

// GUIDFor derives a stable GUID from ordered field values: the first eight
// bytes of a SHA-256 over the separator-joined values, read big-endian and
// encoded in the guid alphabet. Same values in the same order yield the
// same GUID on every run and platform.
func GUIDFor(fieldValues []string) string {
	h := sha256.New()
	for i, v := range fieldValues {
		if i > 0 {
			h.Write([]byte(fieldSep))
		}
		h.Write([]byte(v))
	}
	return encodeGUID(binary.BigEndian.Uint64(h.Sum(nil)[:8]))
}

// encodeGUID renders x in the guid alphabet, most significant digit first.
func encodeGUID(x uint64) string {
	if x == 0 {
		return guidAlphabet[:1]
	}
	base := uint64(len(guidAlphabet))
	var buf [11]byte // 91^11 > 2^64, so eleven digits always suffice
	i := len(buf)
	for x > 0 {
		i--
		buf[i] = guidAlphabet[x%base]
		x /= base
	}
	return string(buf[i:])
}

// FieldChecksum returns the integer stored in the notes table's duplicate
// index: the first eight hex digits of a SHA-1 over the first field's
// value, which is exactly its first four bytes read big-endian.
func FieldChecksum(firstField string) uint32 {
	sum := sha1.Sum([]byte(firstField))
	return binary.BigEndian.Uint32(sum[:4])
}
