package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompressUsernameRoundTrip(t *testing.T) {
	// A typical 32-char hex user id from the host platform.
	userID := "0123456789abcdef0123456789abcdef"

	compressed := CompressUsername(userID)
	assert.NotEqual(t, userID, compressed)
	assert.Less(t, len(compressed), len(userID))
	assert.NotContains(t, compressed, "=")

	assert.Equal(t, userID, DecompressUsername(compressed))
}

func TestCompressUsernamePassThrough(t *testing.T) {
	// Non-hex ids (e.g. from authoring tool previews) are kept as-is.
	for _, username := range []string{"student_1", "preview-user", "zzz"} {
		assert.Equal(t, username, CompressUsername(username))
	}
}

func TestDecompressUsernamePassThrough(t *testing.T) {
	assert.Equal(t, "not base64 at all!", DecompressUsername("not base64 at all!"))
}
