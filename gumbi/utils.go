package gumbi

import (
	"bytes"
	"strconv"
)

var crlf = []byte{13, 10}

// trimCRLF strips a single trailing CRLF or LF.
func trimCRLF(buf []byte) []byte {
	i := len(buf)
	if i >= 2 && bytes.Equal(buf[i-2:i], crlf) {
		return buf[:i-2]
	}
	if i >= 1 && buf[i-1] == '\n' {
		return buf[:i-1]
	}
	return buf
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
