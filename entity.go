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

package hyperxml

import (
	"unicode/utf16"

	"buf.build/go/hyperxml/internal/xmlchar"
)

// reference decodes a reference after its '&' and appends the result to
// the lexeme. Only numeric character references and the five predefined
// entities exist; everything else is a hard error.
func (p *parser[H, S, V, T]) reference() {
	c := p.mustNext()
	if c == '#' {
		p.charRef()
		return
	}

	// The longest predefined entity name is four units.
	var name [4]uint16
	n := 0
	for c != ';' {
		if n == len(name) {
			p.fail(errUnknownEntity)
		}
		name[n] = c
		n++
		c = p.mustNext()
	}

	switch {
	case n == 2 && name[0] == 'l' && name[1] == 't':
		p.buf.Append('<')
	case n == 2 && name[0] == 'g' && name[1] == 't':
		p.buf.Append('>')
	case n == 3 && name[0] == 'a' && name[1] == 'm' && name[2] == 'p':
		p.buf.Append('&')
	case n == 4 && name[0] == 'a' && name[1] == 'p' && name[2] == 'o' && name[3] == 's':
		p.buf.Append('\'')
	case n == 4 && name[0] == 'q' && name[1] == 'u' && name[2] == 'o' && name[3] == 't':
		p.buf.Append('"')
	default:
		p.fail(errUnknownEntity)
	}
}

// charRef decodes '&#10;' or '&#x0A;' after the '#'. The code point must
// be a Unicode scalar value; it is encoded into one code unit, or two for
// the supplementary planes.
func (p *parser[H, S, V, T]) charRef() {
	c := p.mustNext()
	var cp uint32

	if c == 'x' {
		c = p.mustNext()
		if !xmlchar.Is(c, xmlchar.IsHexDigit) {
			p.fail(errInvalidHexDigit)
		}
		for xmlchar.Is(c, xmlchar.IsHexDigit) {
			cp = cp*16 + xmlchar.HexDigit(c)
			if cp > 0x10FFFF {
				p.fail(errInvalidCharRef)
			}
			c = p.mustNext()
		}
	} else {
		if !xmlchar.Is(c, xmlchar.IsDigit) {
			p.fail(errInvalidDigit)
		}
		for xmlchar.Is(c, xmlchar.IsDigit) {
			cp = cp*10 + uint32(c-'0')
			if cp > 0x10FFFF {
				p.fail(errInvalidCharRef)
			}
			c = p.mustNext()
		}
	}

	if c != ';' {
		p.fail(errExpectingSemicolon)
	}
	if !xmlchar.IsScalar(rune(cp)) {
		p.fail(errInvalidCharRef)
	}

	if cp < 0x10000 {
		p.buf.Append(uint16(cp))
	} else {
		hi, lo := utf16.EncodeRune(rune(cp))
		p.buf.Append(uint16(hi))
		p.buf.Append(uint16(lo))
	}
}
