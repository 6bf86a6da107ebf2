package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daycare/internal/encoding"
)

func decode(t *testing.T, input []byte) (string, encoding.Charset) {
	t.Helper()

	r, charset, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestNewUTF8Reader(t *testing.T) {
	const header = "Descrição;Montante\n"

	type testCase struct {
		name        string
		input       []byte
		want        string
		wantCharset encoding.Charset
	}

	tests := []testCase{
		{
			name:        "UTF8Passthrough",
			input:       []byte("Descrição;Montante\nPagamento INV-20240115-0001;450,00\n"),
			want:        "Descrição;Montante\nPagamento INV-20240115-0001;450,00\n",
			wantCharset: encoding.UTF8,
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, header...),
			want:        header,
			wantCharset: encoding.UTF8BOM,
		},
		{
			name: "Windows1252",
			input: []byte{
				'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
				'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
			},
			want:        header,
			wantCharset: encoding.Windows1252,
		},
		{
			name:        "UTF16LE",
			input:       []byte{0xFF, 0xFE, 'O', 0, 'K', 0, '\n', 0},
			want:        "OK\n",
			wantCharset: encoding.UTF16LE,
		},
		{
			name:        "UTF16BE",
			input:       []byte{0xFE, 0xFF, 0, 'O', 0, 'K', 0, '\n'},
			want:        "OK\n",
			wantCharset: encoding.UTF16BE,
		},
		{
			name:        "Empty",
			input:       nil,
			want:        "",
			wantCharset: encoding.UTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, charset := decode(t, tt.input)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCharset, charset)
		})
	}
}

func TestNewUTF8Reader_RuneAcrossSampleBoundary(t *testing.T) {
	// The two-byte "ç" straddles the end of the sniffed block.
	input := strings.Repeat("a", 4095) + "ç;10,00\n"

	got, charset := decode(t, []byte(input))

	assert.Equal(t, encoding.UTF8, charset)
	assert.Equal(t, input, got)
}
