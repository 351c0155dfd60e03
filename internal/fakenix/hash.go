package fakenix

import (
	"crypto/sha256"
	"strings"
)

// Domain prefix for fake store path hashes.
const domainStorePath = "fakenix/store-path/v1"

// nixBase32Alphabet omits e, o, u and t.
const nixBase32Alphabet = "0123456789abcdfghijklmnpqrsvwxyz"

// hashPartLen is the length of the hash part of a store path base name.
const hashPartLen = 32

// PathFor returns the store path the fake assigns to name under storeDir.
// The hash part is derived from the name alone, so it is stable across runs.
func PathFor(storeDir, name string) string {
	return storeDir + "/" + hashPart(name) + "-" + name
}

// hashPart computes SHA-256 with domain separation, folds it to 160 bits
// and renders it in Nix base32.
// Format: SHA256(domain + 0x00 + name)
func hashPart(name string) string {
	h := sha256.New()
	h.Write([]byte(domainStorePath))
	h.Write([]byte{0x00})
	h.Write([]byte(name))
	return nixBase32(compressHash(h.Sum(nil), 20))
}

// compressHash xor-folds hash into size bytes.
func compressHash(hash []byte, size int) []byte {
	out := make([]byte, size)
	for i, b := range hash {
		out[i%size] ^= b
	}
	return out
}

// nixBase32 encodes b the way Nix does: least significant bits last.
func nixBase32(b []byte) string {
	n := (len(b)*8-1)/5 + 1
	var sb strings.Builder
	sb.Grow(n)
	for i := n - 1; i >= 0; i-- {
		bit := i * 5
		j, k := bit/8, uint(bit%8)
		c := b[j] >> k
		if j+1 < len(b) {
			c |= b[j+1] << (8 - k)
		}
		sb.WriteByte(nixBase32Alphabet[c&0x1f])
	}
	return sb.String()
}

// splitStorePath validates path as <storeDir>/<hash>-<name> and returns the
// base name and the name.
func splitStorePath(storeDir, path string) (base, name string, ok bool) {
	prefix := storeDir + "/"
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	base = path[len(prefix):]
	if strings.Contains(base, "/") || len(base) < hashPartLen+2 || base[hashPartLen] != '-' {
		return "", "", false
	}
	for i := 0; i < hashPartLen; i++ {
		if !strings.ContainsRune(nixBase32Alphabet, rune(base[i])) {
			return "", "", false
		}
	}
	return base, base[hashPartLen+1:], true
}
