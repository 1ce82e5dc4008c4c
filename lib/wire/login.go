package wire

import (
	"crypto/md5"
	"encoding/hex"
)

// LoginHash returns the MD5 hex digest of username+password concatenated,
// as required by the server's Login message. Test vector:
// LoginHash("username", "password") == "d51c9a7e9353746a6020f9602d452929".
func LoginHash(username, password string) string {
	sum := md5.Sum([]byte(username + password))
	return hex.EncodeToString(sum[:])
}
