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
	"io"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"buf.build/go/hyperxml/internal/lane"
)

// Encoding identifies the byte encoding of a stream.
type Encoding int

// The encodings the stream source can detect and decode.
const (
	EncodingAuto Encoding = iota
	EncodingUTF8
	EncodingUTF16LE
	EncodingUTF16BE
	EncodingUTF32LE
	EncodingUTF32BE
)

// String implements [fmt.Stringer].
func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	case EncodingUTF32LE:
		return "utf-32le"
	case EncodingUTF32BE:
		return "utf-32be"
	default:
		return "auto"
	}
}

// streamWindow is the size of the decoded code-unit window, and of the raw
// byte window feeding it.
const streamWindow = 4096

// Stream is a source backed by a byte stream. Construction sniffs the
// leading bytes for the encoding; afterwards bytes are decoded through
// x/text into a refilling code-unit window.
//
// Preview8 never refills: once the window holds fewer than eight units it
// reports false and the parser falls back to scalar reads, which drain the
// window and trigger the next refill.
type Stream struct {
	r   io.Reader // decoded UTF-8
	enc Encoding

	raw  []byte // undecoded UTF-8 tail carried between refills
	rawN int
	eof  bool
	err  error // sticky non-EOF read error

	units []uint16
	pos   int
}

// NewStream returns a source decoding r.
//
// Up to four leading bytes are inspected against the BOM and heuristic
// table of XML 1.0 Appendix F. override, when not [EncodingAuto], takes
// precedence; a BOM is still skipped when it belongs to the overridden
// encoding.
func NewStream(r io.Reader, override Encoding) (*Stream, error) {
	var head [4]byte
	n, err := io.ReadFull(r, head[:])
	switch err {
	case nil, io.ErrUnexpectedEOF:
	case io.EOF:
		n = 0
	default:
		return nil, err
	}

	enc, skip := detect(head[:n])
	if override != EncodingAuto {
		if enc != override {
			skip = 0
		}
		enc = override
	}

	rest := append([]byte(nil), head[skip:n]...)
	raw := io.MultiReader(bytes.NewReader(rest), r)

	return &Stream{
		r:     transform.NewReader(raw, decoderFor(enc)),
		enc:   enc,
		raw:   make([]byte, streamWindow),
		units: make([]uint16, 0, streamWindow+2),
	}, nil
}

// detect matches the leading bytes against Appendix F. The returned skip
// is nonzero only for a BOM match. UTF-32 BOMs are checked before UTF-16:
// FF FE 00 00 is a UTF-32LE BOM, not a UTF-16LE BOM followed by a NUL.
func detect(b []byte) (Encoding, int) {
	switch {
	case len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF:
		return EncodingUTF8, 3
	case len(b) >= 4 && b[0] == 0x00 && b[1] == 0x00 && b[2] == 0xFE && b[3] == 0xFF:
		return EncodingUTF32BE, 4
	case len(b) >= 4 && b[0] == 0xFF && b[1] == 0xFE && b[2] == 0x00 && b[3] == 0x00:
		return EncodingUTF32LE, 4
	case len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF:
		return EncodingUTF16BE, 2
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE:
		return EncodingUTF16LE, 2
	case len(b) >= 4 && b[0] == 0x00 && b[1] == 0x00 && b[2] == 0x00 && b[3] == 0x3C:
		return EncodingUTF32BE, 0
	case len(b) >= 4 && b[0] == 0x3C && b[1] == 0x00 && b[2] == 0x00 && b[3] == 0x00:
		return EncodingUTF32LE, 0
	case len(b) >= 4 && b[0] == 0x00 && b[1] == 0x3C && b[2] == 0x00 && b[3] == 0x3F:
		return EncodingUTF16BE, 0
	case len(b) >= 4 && b[0] == 0x3C && b[1] == 0x00 && b[2] == 0x3F && b[3] == 0x00:
		return EncodingUTF16LE, 0
	default:
		return EncodingUTF8, 0
	}
}

func decoderFor(enc Encoding) transform.Transformer {
	switch enc {
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	case EncodingUTF32LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM).NewDecoder()
	case EncodingUTF32BE:
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM).NewDecoder()
	default:
		return unicode.UTF8.NewDecoder()
	}
}

// Encoding returns the encoding the stream committed to.
func (s *Stream) Encoding() Encoding { return s.enc }

// Err returns the sticky read error, if any. The parser sees a read error
// as end of stream; the entry point surfaces this afterwards.
func (s *Stream) Err() error { return s.err }

// Next implements [Source].
func (s *Stream) Next() (uint16, bool) {
	if s.pos >= len(s.units) {
		s.refill()
		if s.pos >= len(s.units) {
			return 0, false
		}
	}
	c := s.units[s.pos]
	s.pos++
	return c, true
}

// Preview8 implements [Source].
func (s *Stream) Preview8() (lane.U16x8, bool) {
	if len(s.units)-s.pos < lane.N {
		return lane.U16x8{}, false
	}
	return lane.Load(s.units[s.pos:]), true
}

// Advance implements [Source].
func (s *Stream) Advance(n int) {
	s.pos += n
}

// refill replaces the consumed window with freshly decoded units, carrying
// the undecoded byte tail across the boundary.
func (s *Stream) refill() {
	s.units = s.units[:0]
	s.pos = 0

	for len(s.units) == 0 && (s.rawN > 0 || !s.eof) {
		if !s.eof && s.rawN < len(s.raw) {
			n, err := s.r.Read(s.raw[s.rawN:])
			s.rawN += n
			switch err {
			case nil:
			case io.EOF:
				s.eof = true
			default:
				s.err = err
				s.eof = true
			}
		}

		b := s.raw[:s.rawN]
		consumed := 0
		for len(b) > 0 && len(s.units) < streamWindow {
			r, size := utf8.DecodeRune(b)
			if r == utf8.RuneError && size <= 1 {
				if !s.eof && len(b) < utf8.UTFMax {
					// Partial rune at the window edge; decode it next
					// round, once more bytes have arrived.
					break
				}
				size = 1
			}
			s.units = utf16.AppendRune(s.units, r)
			b = b[size:]
			consumed += size
		}

		copy(s.raw, s.raw[consumed:s.rawN])
		s.rawN -= consumed

		if consumed == 0 && s.eof {
			break
		}
	}
}
