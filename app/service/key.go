package service

import (
	"math/rand"
	"strconv"
	"strings"
)

const (
	KeyPrefix      = "tvly-"
	maskVisible    = 4
	maskLength     = 17
	maskCharacter  = "*"
	keyChunkLength = 8
)

// GenerateKeyValue returns KeyPrefix followed by 16 base36 characters.
//
// The entropy comes from math/rand. Values are test-grade tokens and must not be used as
// production credentials; a production variant should draw from crypto/rand.
func GenerateKeyValue() string {
	return KeyPrefix + randomChunk() + randomChunk()
}

func randomChunk() string {
	chunk := strconv.FormatUint(rand.Uint64(), 36)
	for len(chunk) < keyChunkLength {
		chunk = "0" + chunk
	}
	return chunk[len(chunk)-keyChunkLength:]
}

// MaskForDisplay keeps the first four characters and replaces the rest with a fixed run of
// 17 mask characters. Values of four characters or fewer are returned unchanged.
func MaskForDisplay(value string) string {
	runes := []rune(value)
	if len(runes) <= maskVisible {
		return value
	}
	return string(runes[:maskVisible]) + strings.Repeat(maskCharacter, maskLength)
}
