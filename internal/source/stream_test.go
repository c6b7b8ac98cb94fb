// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package source

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		enc  Encoding
		skip int
	}{
		{"utf8-bom", []byte{0xEF, 0xBB, 0xBF, '<'}, EncodingUTF8, 3},
		{"utf32be-bom", []byte{0x00, 0x00, 0xFE, 0xFF}, EncodingUTF32BE, 4},
		{"utf32le-bom", []byte{0xFF, 0xFE, 0x00, 0x00}, EncodingUTF32LE, 4},
		{"utf16be-bom", []byte{0xFE, 0xFF, 0x00, '<'}, EncodingUTF16BE, 2},
		{"utf16le-bom", []byte{0xFF, 0xFE, '<', 0x00}, EncodingUTF16LE, 2},
		{"utf32be-bare", []byte{0x00, 0x00, 0x00, '<'}, EncodingUTF32BE, 0},
		{"utf32le-bare", []byte{'<', 0x00, 0x00, 0x00}, EncodingUTF32LE, 0},
		{"utf16be-bare", []byte{0x00, '<', 0x00, '?'}, EncodingUTF16BE, 0},
		{"utf16le-bare", []byte{'<', 0x00, '?', 0x00}, EncodingUTF16LE, 0},
		{"utf8-bare", []byte("<?xm"), EncodingUTF8, 0},
		{"default", []byte("<a/>"), EncodingUTF8, 0},
		{"short", []byte{'<'}, EncodingUTF8, 0},
		{"empty", nil, EncodingUTF8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			enc, skip := detect(tt.data)
			assert.Equal(t, tt.enc, enc)
			assert.Equal(t, tt.skip, skip)
		})
	}
}

func TestStreamDecodes(t *testing.T) {
	t.Parallel()

	// BMP, Latin-1, and a surrogate pair; the decoded units must be
	// identical for every wire encoding.
	const text = "<a>héllo \U0001F600</a>"
	want := utf16.Encode([]rune(text))

	utf16le := func() []byte {
		var b bytes.Buffer
		b.Write([]byte{0xFF, 0xFE})
		for _, u := range want {
			b.WriteByte(byte(u))
			b.WriteByte(byte(u >> 8))
		}
		return b.Bytes()
	}()
	utf16be := func() []byte {
		var b bytes.Buffer
		b.Write([]byte{0xFE, 0xFF})
		for _, u := range want {
			b.WriteByte(byte(u >> 8))
			b.WriteByte(byte(u))
		}
		return b.Bytes()
	}()
	utf32le := func() []byte {
		var b bytes.Buffer
		b.Write([]byte{0xFF, 0xFE, 0x00, 0x00})
		for _, r := range text {
			b.WriteByte(byte(r))
			b.WriteByte(byte(r >> 8))
			b.WriteByte(byte(r >> 16))
			b.WriteByte(0)
		}
		return b.Bytes()
	}()

	tests := []struct {
		name string
		data []byte
		enc  Encoding
	}{
		{"utf8", []byte(text), EncodingUTF8},
		{"utf8-bom", append([]byte{0xEF, 0xBB, 0xBF}, text...), EncodingUTF8},
		{"utf16le-bom", utf16le, EncodingUTF16LE},
		{"utf16be-bom", utf16be, EncodingUTF16BE},
		{"utf32le-bom", utf32le, EncodingUTF32LE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := NewStream(bytes.NewReader(tt.data), EncodingAuto)
			require.NoError(t, err)
			assert.Equal(t, tt.enc, s.Encoding())
			assert.Equal(t, want, drainStream(s))
			assert.NoError(t, s.Err())

			// Again one byte at a time, crossing every refill boundary.
			s, err = NewStream(iotest.OneByteReader(bytes.NewReader(tt.data)), EncodingAuto)
			require.NoError(t, err)
			assert.Equal(t, want, drainStream(s))
			assert.NoError(t, s.Err())
		})
	}
}

func drainStream(s *Stream) []uint16 {
	var out []uint16
	for {
		c, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, c)
	}
}

func TestStreamOverride(t *testing.T) {
	t.Parallel()

	// BOM-less UTF-16LE that does not start with '<?': the heuristic
	// would fall back to UTF-8, the override decodes it properly. A BOM
	// belonging to the overridden encoding is still skipped.
	raw := []byte{'<', 0x00, 'a', 0x00, '/', 0x00, '>', 0x00}

	s, err := NewStream(bytes.NewReader(raw), EncodingUTF16LE)
	require.NoError(t, err)
	assert.Equal(t, []uint16{'<', 'a', '/', '>'}, drainStream(s))

	s, err = NewStream(bytes.NewReader(append([]byte{0xFF, 0xFE}, raw...)), EncodingUTF16LE)
	require.NoError(t, err)
	assert.Equal(t, []uint16{'<', 'a', '/', '>'}, drainStream(s))
}

func TestStreamPreview(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("abcdefgh", 3)
	s, err := NewStream(strings.NewReader(text), EncodingAuto)
	require.NoError(t, err)

	// The first window holds only the four sniffed bytes; reading past
	// them refills the window from the rest of the stream.
	for _, want := range "abcde" {
		c, ok := s.Next()
		require.True(t, ok)
		require.Equal(t, uint16(want), c)
	}

	v, ok := s.Preview8()
	require.True(t, ok)
	assert.Equal(t, utf16.Encode([]rune("fghabcde")), v.AppendTo(nil))
	s.Advance(8)

	assert.Equal(t, utf16.Encode([]rune(text[13:])), drainStream(s))
}

func TestStreamReadError(t *testing.T) {
	t.Parallel()

	fail := errors.New("boom")
	r := io.MultiReader(strings.NewReader("<a>some text"), iotest.ErrReader(fail))

	s, err := NewStream(r, EncodingAuto)
	require.NoError(t, err)

	units := drainStream(s)
	assert.Equal(t, utf16.Encode([]rune("<a>some text")), units)
	assert.ErrorIs(t, s.Err(), fail)
}
