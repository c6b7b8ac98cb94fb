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

// Package source supplies UTF-16 code units to the parser, one at a time
// or in eight-unit preview lanes.
package source

import (
	"unicode/utf16"

	"buf.build/go/hyperxml/internal/lane"
)

// Source is a finite stream of UTF-16 code units.
//
// Preview8 returns the next eight units without consuming them, and only
// when at least eight are currently available; a false return does not
// imply end of stream. Advance consumes units previously returned by
// Preview8. No unit is ever skipped or duplicated.
type Source interface {
	Next() (uint16, bool)
	Preview8() (lane.U16x8, bool)
	Advance(n int)
}

// Buffer is a source backed by a contiguous code-unit buffer. Previews
// succeed everywhere except within eight units of the end.
type Buffer struct {
	units []uint16
	pos   int
}

// NewBuffer returns a source reading from units without copying. The
// caller must not mutate units during the parse.
func NewBuffer(units []uint16) *Buffer {
	return &Buffer{units: units}
}

// FromString transcodes s into a fresh code-unit buffer. This is the one
// copy of the document a string parse makes; reading from the buffer
// afterwards allocates nothing.
func FromString(s string) *Buffer {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		units = utf16.AppendRune(units, r)
	}
	return &Buffer{units: units}
}

// Next implements [Source].
func (b *Buffer) Next() (uint16, bool) {
	if b.pos >= len(b.units) {
		return 0, false
	}
	c := b.units[b.pos]
	b.pos++
	return c, true
}

// Preview8 implements [Source].
func (b *Buffer) Preview8() (lane.U16x8, bool) {
	if len(b.units)-b.pos < lane.N {
		return lane.U16x8{}, false
	}
	return lane.Load(b.units[b.pos:]), true
}

// Advance implements [Source].
func (b *Buffer) Advance(n int) {
	b.pos += n
}
