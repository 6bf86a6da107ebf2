// Package encoding normalises uploaded bank statements to UTF-8. Banks export
// in whatever code page their software uses, so the charset is sniffed from
// the first block of the file.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sampleSize = 4096

// Charset names the encoding a statement was decoded from.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF8BOM     Charset = "UTF-8 (BOM)"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88599    Charset = "ISO-8859-9"
)

var boms = []struct {
	prefix  []byte
	charset Charset
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8BOM},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

func decoder(c Charset) *encoding.Decoder {
	switch c {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case ISO88599:
		return charmap.ISO8859_9.NewDecoder()
	case Windows1252:
		return charmap.Windows1252.NewDecoder()
	case UTF8, UTF8BOM:
		return nil
	}

	return charmap.Windows1252.NewDecoder()
}

// Detect guesses the charset of sample. A byte order mark wins, then valid
// UTF-8, then chardet's best guess; anything else is read as Windows-1252.
// truncated reports that sample was cut from a longer input, in which case a
// partial rune at its end is ignored.
func Detect(sample []byte, truncated bool) Charset {
	for _, b := range boms {
		if bytes.HasPrefix(sample, b.prefix) {
			return b.charset
		}
	}

	if truncated {
		sample = trimPartialRune(sample)
	}

	if utf8.Valid(sample) {
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return Windows1252
	}

	switch result.Charset {
	case "UTF-8":
		return UTF8
	case "ISO-8859-9":
		return ISO88599
	}

	return Windows1252
}

func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}

			break
		}
	}

	return b
}

// NewUTF8Reader returns a reader yielding r's content as UTF-8 with any
// UTF-8 byte order mark removed, and the charset it decoded from.
func NewUTF8Reader(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sampleSize)

	sample, err := br.Peek(sampleSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("reading sample: %w", err)
	}

	charset := Detect(sample, len(sample) == sampleSize)

	if charset == UTF8BOM {
		if _, err := br.Discard(len(boms[0].prefix)); err != nil {
			return nil, "", fmt.Errorf("skipping byte order mark: %w", err)
		}
	}

	if d := decoder(charset); d != nil {
		return transform.NewReader(br, d), charset, nil
	}

	return br, charset, nil
}
