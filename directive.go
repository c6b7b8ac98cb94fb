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

// comment parses a comment after '<!-'. The body runs to '-->'; a lone
// '-' is body data, but '--' must be the terminator.
func (p *parser[H, S, V, T]) comment() {
	if p.mustNext() != '-' {
		p.fail(errMalformedCommentStart)
	}
	line, column := p.line, p.column

	for {
		if cfg.Enabled[V]() {
			for {
				v, ok := p.src.Preview8()
				if !ok || !v.CommentSafe() {
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
		case c == '-':
			c2 := p.mustNext()
			if c2 != '-' {
				p.buf.Append('-')
				c = c2
				goto dispatch
			}
			if p.mustNext() != '>' {
				p.fail(errDoubleDashInComment)
			}
			p.h.OnComment(p.buf.Lexeme(), line, column)
			p.buf.ClearLexeme()
			return
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
			p.fail(errInvalidChar)
		default:
			p.buf.Append(c)
		}
	}
}

// cdata parses a CDATA section after '<!['. The body runs to ']]>'; any
// shorter run of ']' is body data.
func (p *parser[H, S, V, T]) cdata() {
	for _, want := range [6]uint16{'C', 'D', 'A', 'T', 'A', '['} {
		if p.mustNext() != want {
			p.fail(errMalformedCDATAStart)
		}
	}
	line, column := p.line, p.column

	for {
		if cfg.Enabled[V]() {
			for {
				v, ok := p.src.Preview8()
				if !ok || !v.CDATASafe() {
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
		case c == ']':
			n := 1
			c = p.mustNext()
			for c == ']' {
				n++
				c = p.mustNext()
			}
			if n >= 2 && c == '>' {
				// The final two brackets belong to the terminator; any
				// extras are body data.
				for ; n > 2; n-- {
					p.buf.Append(']')
				}
				p.h.OnCDATA(p.buf.Lexeme(), line, column)
				p.buf.ClearLexeme()
				return
			}
			for ; n > 0; n-- {
				p.buf.Append(']')
			}
			goto dispatch
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
			p.fail(errInvalidChar)
		default:
			p.buf.Append(c)
		}
	}
}

// xmlDecl parses the XML declaration after '<?'. (line, column) is the
// position of the '?'. The declaration is only valid before any content.
func (p *parser[H, S, V, T]) xmlDecl(line, column int) {
	if p.pastProlog {
		p.failAt(errXMLDeclNotFirst, line, column)
	}
	for _, want := range [3]uint16{'x', 'm', 'l'} {
		if p.mustNext() != want {
			p.failAt(errExpectingXMLDecl, line, column)
		}
	}

	c, saw := p.skipSpace(p.mustNext())
	if !saw {
		p.fail(errExpectingWhitespace)
	}

	p.declWord(c, "version", errExpectingVersion)
	v0, v1 := p.declValue()

	// Absent pseudo-attributes report empty slices.
	e0, e1 := v1, v1
	s0, s1 := v1, v1

	c, saw = p.skipSpace(p.mustNext())
	if c == 'e' {
		if !saw {
			p.fail(errExpectingWhitespace)
		}
		p.declWord(c, "encoding", errExpectingEncoding)
		e0, e1 = p.declValue()
		s0, s1 = e1, e1
		c, saw = p.skipSpace(p.mustNext())
	}
	if c == 's' {
		if !saw {
			p.fail(errExpectingWhitespace)
		}
		p.declWord(c, "standalone", errExpectingStandalone)
		s0, s1 = p.declValue()
		c, _ = p.skipSpace(p.mustNext())
	}

	if c != '?' || p.mustNext() != '>' {
		p.fail(errExpectingDeclEnd)
	}

	p.h.OnXMLDeclaration(
		p.buf.Slice(v0, v1),
		p.buf.Slice(e0, e1),
		p.buf.Slice(s0, s1),
		line, column,
	)
	p.buf.ClearLexeme()
}

// declWord matches a literal keyword whose first unit, already consumed,
// is c.
func (p *parser[H, S, V, T]) declWord(c uint16, word string, code errCode) {
	for i := 0; i < len(word); i++ {
		if i > 0 {
			c = p.mustNext()
		}
		if c != uint16(word[i]) {
			p.fail(code)
		}
	}
}

// declValue parses Eq AttValue, with optional whitespace around the '=',
// and returns the value's bounds in the scratch buffer.
func (p *parser[H, S, V, T]) declValue() (start, end int) {
	c, _ := p.skipSpace(p.mustNext())
	if c != '=' {
		p.fail(errExpectingEq)
	}
	c, _ = p.skipSpace(p.mustNext())
	if c != '"' && c != '\'' {
		p.fail(errAttrValueNotQuoted)
	}
	start = p.buf.Len()
	p.attrValue(c)
	return start, p.buf.Len()
}
