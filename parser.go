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
	"fmt"

	"buf.build/go/hyperxml/internal/cfg"
	"buf.build/go/hyperxml/internal/debug"
	"buf.build/go/hyperxml/internal/lane"
	"buf.build/go/hyperxml/internal/scratch"
	"buf.build/go/hyperxml/internal/source"
	"buf.build/go/hyperxml/internal/xmlchar"
)

// parser is the state machine for one document. V enables the vectorized
// fast paths; T enables matched-tag checking. One parser parses one
// document and is then discarded.
//
// column counts the code units consumed on the current line, which makes
// it the zero-based column of the next unread unit. Event positions are
// captured from it at each production's anchor point.
type parser[H Handler, S source.Source, V, T cfg.Flag] struct {
	h   H
	src S
	buf *scratch.Buffer

	line, column int

	// Where the current character data run began: the position right
	// after the most recent markup ended.
	contentLine, contentColumn int

	// Set once any non-whitespace content has been observed; forbids
	// subsequent XML declarations and gates the suppression of
	// whitespace-only text before the document element.
	pastProlog bool

	err *Error
}

// fail aborts the parse at the current position.
func (p *parser[H, S, V, T]) fail(code errCode) {
	p.failAt(code, p.line, p.column)
}

// failAt aborts the parse, reporting the given position. The sentinel
// unwinds to the top-level parse routine, which emits the one OnError.
func (p *parser[H, S, V, T]) failAt(code errCode, line, column int) {
	p.err = &Error{Message: messages[code], Line: line, Column: column}
	p.log("fail", "%d %q at %d:%d", code, p.err.Message, line, column)
	panic(abortParse)
}

func (p *parser[H, S, V, T]) log(op, format string, args ...any) {
	if !debug.Enabled {
		return
	}
	debug.Log([]any{"%d:%d", p.line, p.column}, op, format, args...)
}

// next consumes one code unit, keeping the column count.
func (p *parser[H, S, V, T]) next() (uint16, bool) {
	c, ok := p.src.Next()
	if ok {
		p.column++
	}
	return c, ok
}

// mustNext is next for positions where the grammar forbids end of input.
func (p *parser[H, S, V, T]) mustNext() uint16 {
	c, ok := p.next()
	if !ok {
		p.fail(errUnexpectedEOF)
	}
	return c
}

// run drives the parse to end of input, then reports any tags left open.
func (p *parser[H, S, V, T]) run() {
	p.content()
	p.flushText()

	if cfg.Enabled[T]() {
		// Unclosed elements at a clean end of input, innermost first.
		// These do not unwind: the document has already been consumed.
		for {
			name, ok := p.buf.PopName()
			if !ok {
				break
			}
			e := &Error{
				Message: fmt.Sprintf("Invalid tag %s not closed at the end of the document.", String(name)),
				Line:    p.line,
				Column:  p.column,
			}
			p.h.OnError(e.Message, e.Line, e.Column)
			if p.err == nil {
				p.err = e
			}
		}
	}
}

// content is the top-level dispatch loop. It accumulates character data
// in the scratch lexeme and hands off to the markup sub-parsers at '<'.
func (p *parser[H, S, V, T]) content() {
	for {
		if cfg.Enabled[V]() {
			// Bulk-copy lanes with no markup, references, line breaks, or
			// surrogates. Lanes of pure spaces do not count as content.
			for {
				v, ok := p.src.Preview8()
				if !ok || !v.ContentSafe() {
					break
				}
				p.buf.AppendLane(v)
				p.src.Advance(lane.N)
				p.column += lane.N
				if !v.AllSpace() {
					p.pastProlog = true
				}
			}
		}

		c, ok := p.next()
		if !ok {
			return
		}

	dispatch:
		switch {
		case c == '<':
			p.flushText()
			p.markup()
			p.contentLine, p.contentColumn = p.line, p.column

		case c == '&':
			p.pastProlog = true
			p.reference()

		case c == '\n':
			p.buf.Append('\n')
			p.line++
			p.column = 0

		case c == '\r':
			// Character data keeps the \r literally; only the position
			// accounting treats \r and \r\n as single line breaks.
			p.buf.Append('\r')
			c2, ok := p.next()
			if !ok {
				p.line++
				p.column = 0
				return
			}
			p.line++
			if c2 == '\n' {
				p.buf.Append('\n')
				p.column = 0
			} else {
				// The pending unit is the first of the new line and has
				// already been consumed.
				p.column = 1
				c = c2
				goto dispatch
			}

		default:
			p.contentChar(c)
		}
	}
}

// contentChar validates and accumulates one character data unit.
func (p *parser[H, S, V, T]) contentChar(c uint16) {
	switch {
	case xmlchar.IsHighSurrogate(c):
		p.surrogatePair(c)
		p.pastProlog = true
	case xmlchar.IsLowSurrogate(c):
		p.fail(errLoneSurrogate)
	case !xmlchar.Is(c, xmlchar.IsChar):
		p.fail(errInvalidChar)
	default:
		p.buf.Append(c)
		if !xmlchar.IsSpace(c) {
			p.pastProlog = true
		}
	}
}

// surrogatePair reads the partner of a high surrogate and accumulates the
// pair. A lone surrogate is never passed through silently.
func (p *parser[H, S, V, T]) surrogatePair(hi uint16) {
	lo, ok := p.next()
	if !ok || !xmlchar.IsLowSurrogate(lo) {
		p.fail(errLoneSurrogate)
	}
	p.buf.Append(hi)
	p.buf.Append(lo)
}

// flushText emits the accumulated character data run, if any. Runs before
// the document's first markup can only be whitespace (anything else set
// pastProlog) and are dropped rather than emitted.
func (p *parser[H, S, V, T]) flushText() {
	if p.buf.LexemeLen() == 0 {
		return
	}
	if !p.pastProlog {
		p.buf.ClearLexeme()
		return
	}
	p.h.OnText(p.buf.Lexeme(), p.contentLine, p.contentColumn)
	p.buf.ClearLexeme()
}

// markup dispatches the production after a '<'. On entry the '<' has been
// consumed, so (line, column) is the position right after it, which is the
// anchor the sub-parsers report events at.
func (p *parser[H, S, V, T]) markup() {
	markLine, markColumn := p.line, p.column

	c := p.mustNext()
	switch c {
	case '?':
		p.xmlDecl(markLine, markColumn)
	case '!':
		switch p.mustNext() {
		case '-':
			p.comment()
		case '[':
			p.cdata()
		default:
			// Position of the '!'.
			p.failAt(errUnsupportedDirective, markLine, markColumn)
		}
	case '/':
		p.endTag()
	default:
		p.beginTag(c, markLine, markColumn)
	}

	p.pastProlog = true
}

// skipSpace consumes whitespace starting at the already-consumed c,
// maintaining line accounting, and returns the first unit that is not
// whitespace along with whether any whitespace was seen.
func (p *parser[H, S, V, T]) skipSpace(c uint16) (uint16, bool) {
	saw := false
	for {
		switch c {
		case ' ', '\t':
		case '\n':
			p.line++
			p.column = 0
		case '\r':
			c = p.mustNext()
			p.line++
			if c != '\n' {
				p.column = 1
				saw = true
				continue
			}
			p.column = 0
		default:
			return c, saw
		}
		saw = true
		c = p.mustNext()
	}
}
