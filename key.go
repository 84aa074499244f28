package lingo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Normalize trims the text and collapses internal whitespace runs to a
// single space. All durable-memory addressing goes through this, so any
// whitespace variant of the same text resolves to the same entry.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// HashText returns a fixed-width hex digest of the text using xxhash.
// The hash is fast, deterministic across process restarts, and
// deliberately non-cryptographic: durable lookups re-check the stored
// source text for equality, so collisions are rejected there.
func HashText(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

// DurableKey builds the content-addressed key for the persistent store:
// fingerprint, normalized length, and hash of the normalized text. The
// length+hash pair is a bucket, not a guarantee; the store compares the
// stored source against the query before returning a hit.
func DurableKey(text, fingerprint string) string {
	n := Normalize(text)
	return fingerprint + ":" + strconv.Itoa(len(n)) + ":" + HashText(n)
}

// VolatileKey builds the message-addressed key for the in-process cache.
// It is scoped by message id so identical text in two messages does not
// collide here, while still sharing one durable entry. The asymmetry is
// intentional: durable memory is reusable across messages, the volatile
// cache is a fast per-message lookup.
func VolatileKey(messageID, rawText, fingerprint string) string {
	return messageID + ":" + rawText + ":" + fingerprint
}
