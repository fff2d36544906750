package util

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// CompressUsername shortens an external learner id for use as an internal
// username. Compression is only applied when the id is a plain hex user id;
// anything else is returned unchanged (this keeps question previews from the
// authoring tool working, which launch with non-hex ids).
//
// DecompressUsername reverses this scheme; keep the two in sync.
func CompressUsername(username string) string {
	binary, err := hex.DecodeString(username)
	if err != nil {
		return username
	}
	return strings.ReplaceAll(base64.URLEncoding.EncodeToString(binary), "=", "+")
}

// DecompressUsername recovers the external learner id that CompressUsername
// encoded. Usernames that do not use the compression scheme are returned
// unchanged.
func DecompressUsername(username string) string {
	binary, err := base64.URLEncoding.DecodeString(strings.ReplaceAll(username, "+", "="))
	if err != nil {
		return username
	}
	return hex.EncodeToString(binary)
}
