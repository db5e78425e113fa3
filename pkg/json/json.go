// Package json provides JSON serialization backed by goccy/go-json with
// pooled buffers.
package json

import (
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/typesplit/pkg/pool"
)

const maxPooledBuffer = 1024 * 1024

var buffers = pool.New(
	func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 4096)) },
	func(b *bytes.Buffer) { b.Reset() },
)

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	return buffers.Get()
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	buffers.Put(buf)
}

// Marshal is a drop-in replacement for json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// Encode writes v to w as indented JSON followed by a newline. HTML
// characters are written verbatim so string values survive unchanged.
func Encode(w io.Writer, v interface{}, indent string) error {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(v)
}

// MarshalToBuffer marshals v to a pooled buffer. The caller returns the
// buffer with PutBuffer.
func MarshalToBuffer(v interface{}, indent string) (*bytes.Buffer, error) {
	buf := GetBuffer()
	if err := Encode(buf, v, indent); err != nil {
		PutBuffer(buf)
		return nil, err
	}
	return buf, nil
}
