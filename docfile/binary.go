package docfile

import "bytes"

// sniffLen is how much of a file is inspected for binary content.
const sniffLen = 512

// IsBinaryContent reports whether data looks like a binary file: a NUL byte within
// the first sniffLen bytes. Such files never carry include directives.
func IsBinaryContent(data []byte) bool {
	return bytes.IndexByte(data[:min(len(data), sniffLen)], 0) >= 0
}
