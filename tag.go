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
	"buf.build/go/hyperxml/internal/cfg"
	"buf.build/go/hyperxml/internal/lane"
	"buf.build/go/hyperxml/internal/xmlchar"
)

// parseName accumulates a Name into the lexeme. first is the
// already-consumed first unit; an invalid one reports code at the given
// position. Returns the first unit after the name; ok is false at end of
// input.
func (p *parser[H, S, V, T]) parseName(first uint16, code errCode, line, column int) (uint16, bool) {
	switch {
	case xmlchar.IsHighSurrogate(first):
		lo, ok := p.next()
		if !ok || !xmlchar.IsLowSurrogate(lo) {
			p.fail(errLoneSurrogate)
		}
		if !xmlchar.IsSupplementaryNameStart(xmlchar.Combine(first, lo)) {
			p.failAt(code, line, column)
		}
		p.buf.Append(first)
		p.buf.Append(lo)
	case !xmlchar.Is(first, xmlchar.IsNameStart):
		p.failAt(code, line, column)
	default:
		p.buf.Append(first)
	}

	for {
		if cfg.Enabled[V]() {
			// Copy runs of [A-Za-z0-9:_.-], the overwhelmingly common
			// name alphabet; anything rarer drops to the scalar loop.
			for {
				v, ok := p.src.Preview8()
				if !ok {
					break
				}
				n := 0
				for n < lane.N && xmlchar.Is(v.Lane(n), xmlchar.IsCommonName) {
					n++
				}
				for i := 0; i < n; i++ {
					p.buf.Append(v.Lane(i))
				}
				p.src.Advance(n)
				p.column += n
				if n < lane.N {
					break
				}
			}
		}

		c, ok := p.next()
		if !ok {
			return 0, false
		}
		switch {
		case xmlchar.Is(c, xmlchar.IsName):
			p.buf.Append(c)
		case xmlchar.IsHighSurrogate(c):
			lo, ok := p.next()
			if !ok || !xmlchar.IsLowSurrogate(lo) {
				p.fail(errLoneSurrogate)
			}
			if !xmlchar.IsSupplementaryName(xmlchar.Combine(c, lo)) {
				p.fail(errInvalidChar)
			}
			p.buf.Append(c)
			p.buf.Append(lo)
		default:
			return c, true
		}
	}
}

// beginTag parses '<Name (S Attribute)* S? >' or '... S? />'. first is the
// already-consumed first name unit; (line, column) is the position right
// after the '<', where the name starts.
func (p *parser[H, S, V, T]) beginTag(first uint16, line, column int) {
	// An invalid name is reported at the '<' itself.
	term, ok := p.parseName(first, errInvalidBeginTagName, line, column-1)
	if !ok {
		p.fail(errUnexpectedEOF)
	}

	p.h.OnBeginTag(p.buf.Lexeme(), line, column)
	if cfg.Enabled[T]() {
		p.buf.PushName()
	} else {
		p.buf.ClearLexeme()
	}

	c := term
	for {
		var sawSpace bool
		c, sawSpace = p.skipSpace(c)

		switch c {
		case '>':
			return
		case '/':
			if p.mustNext() != '>' {
				p.fail(errInvalidCharAfterSlash)
			}
			if cfg.Enabled[T]() {
				p.buf.PopName()
			}
			p.h.OnEndTagEmpty()
			return
		default:
			if !sawSpace {
				p.fail(errExpectingWhitespace)
			}
			p.attribute(c)
			c = p.mustNext()
		}
	}
}

// attribute parses 'Name Eq AttValue'. first is the already-consumed first
// name unit.
func (p *parser[H, S, V, T]) attribute(first uint16) {
	// first has been consumed, so the name starts one column back.
	nameLine, nameColumn := p.line, p.column-1
	nameStart := p.buf.Len()

	term, ok := p.parseName(first, errInvalidAttrName, nameLine, nameColumn)
	if !ok {
		p.fail(errUnexpectedEOF)
	}

	c, _ := p.skipSpace(term)
	if c != '=' {
		p.fail(errExpectingEq)
	}
	c, _ = p.skipSpace(p.mustNext())
	if c != '"' && c != '\'' {
		p.fail(errAttrValueNotQuoted)
	}
	// c is the opening quote, already consumed.
	valueLine, valueColumn := p.line, p.column-1

	valueStart := p.buf.Len()
	p.attrValue(c)

	p.h.OnAttribute(
		p.buf.Slice(nameStart, valueStart),
		p.buf.From(valueStart),
		nameLine, nameColumn,
		valueLine, valueColumn,
	)
	p.buf.ClearLexeme()
}

// attrValue accumulates an attribute value up to the closing quote.
// References are decoded in place, and both \r and \r\n normalize to a
// single \n, as attribute-value normalization requires.
func (p *parser[H, S, V, T]) attrValue(quote uint16) {
	for {
		if cfg.Enabled[V]() {
			for {
				v, ok := p.src.Preview8()
				if !ok || !v.AttrValueSafe(quote) {
					break
				}
				p.buf.AppendLane(v)
				p.src.Advance(lane.N)
				p.column += lane.N
			}
		}

		c := p.mustNext()

	dispatch:
		switch {
		case c == quote:
			return
		case c == '<':
			p.fail(errLtInAttrValue)
		case c == '&':
			p.reference()
		case c == '\n':
			p.buf.Append('\n')
			p.line++
			p.column = 0
		case c == '\r':
			p.buf.Append('\n')
			c2 := p.mustNext()
			p.line++
			if c2 != '\n' {
				p.column = 1
				c = c2
				goto dispatch
			}
			p.column = 0
		case xmlchar.IsHighSurrogate(c):
			p.surrogatePair(c)
		case xmlchar.IsLowSurrogate(c):
			p.fail(errLoneSurrogate)
		case !xmlchar.Is(c, xmlchar.IsChar):
			p.fail(errInvalidCharInAttrValue)
		default:
			p.buf.Append(c)
		}
	}
}

// endTag parses '</Name S? >'. On entry the '/' has been consumed, so
// (line, column) is the start of the name, which is also where any
// mismatch is reported.
func (p *parser[H, S, V, T]) endTag() {
	line, column := p.line, p.column

	if cfg.Enabled[T]() {
		// The expected name is the top of the open-tag stack: match the
		// input against it directly instead of re-parsing a name.
		expect, ok := p.buf.PopName()
		if !ok {
			p.failAt(errEndTagMismatch, line, column)
		}

		i := 0
		for i < len(expect) {
			if cfg.Enabled[V]() && len(expect)-i >= lane.N {
				if v, ok := p.src.Preview8(); ok {
					if !v.Eq(lane.Load(expect[i:])) {
						p.failAt(errEndTagMismatch, line, column)
					}
					p.src.Advance(lane.N)
					p.column += lane.N
					i += lane.N
					continue
				}
			}
			if p.mustNext() != expect[i] {
				p.failAt(errEndTagMismatch, line, column)
			}
			i++
		}

		c, _ := p.skipSpace(p.mustNext())
		if c != '>' {
			if xmlchar.Is(c, xmlchar.IsName) {
				// The input name continues past the expected one.
				p.failAt(errEndTagMismatch, line, column)
			}
			p.fail(errInvalidEndTagName)
		}

		p.h.OnEndTag(expect, line, column)
		return
	}

	term, ok := p.parseName(p.mustNext(), errInvalidEndTagName, line, column)
	if !ok {
		p.fail(errUnexpectedEOF)
	}
	c, _ := p.skipSpace(term)
	if c != '>' {
		p.fail(errInvalidEndTagName)
	}
	p.h.OnEndTag(p.buf.Lexeme(), line, column)
	p.buf.ClearLexeme()
}
