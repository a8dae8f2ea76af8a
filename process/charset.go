package process

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"cssnorm/css"
)

var (
	bomUTF8    = []byte{0xef, 0xbb, 0xbf}
	bomUTF16BE = []byte{0xfe, 0xff}
	bomUTF16LE = []byte{0xff, 0xfe}
)

// decode converts stylesheet to UTF-8. Byte order mark wins, then forced
// charset, then leading @charset rule. Without any of them input is taken as
// UTF-8. It returns IANA name of the source encoding.
func decode(data []byte, forced string) ([]byte, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "UTF-8", nil
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), "UTF-16BE", data)
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), "UTF-16LE", data)
	}

	label := strings.TrimSpace(forced)
	if label == "" {
		label = css.DetectCharset(data)
	}
	if label == "" {
		return data, "UTF-8", nil
	}

	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, "", fmt.Errorf("unknown character set %q: %w", label, err)
	}
	if enc == nil {
		return nil, "", fmt.Errorf("unsupported character set %q", label)
	}
	name, err := ianaindex.IANA.Name(enc)
	if err != nil {
		name = label
	}
	if enc == unicode.UTF8 {
		return data, name, nil
	}
	return decodeWith(enc, name, data)
}

func decodeWith(enc encoding.Encoding, name string, data []byte) ([]byte, string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("unable to decode %s input: %w", name, err)
	}
	return out, name, nil
}
