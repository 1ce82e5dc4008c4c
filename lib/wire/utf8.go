package wire

import (
	"errors"
	"unicode/utf8"
)

var errInvalidUTF8 = errors.New("invalid utf-8")

func validUTF8(b []byte) bool {
	return utf8.Valid(b)
}
