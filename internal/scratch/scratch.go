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

// Package scratch provides the parser's working storage: a single growable
// code-unit buffer that holds both the stack of open tag names and the
// lexeme currently being assembled.
//
// The two regions share one allocation, separated by a moving split point:
// [0, split) is the serialized name stack, [split, len) the lexeme. Each
// stack frame is the name's code units followed by the name's length in
// two trailing code units, so popping needs no side table.
//
// Slices handed out by [Buffer.Lexeme], [Buffer.From], and [Buffer.PopName]
// alias the buffer. They stay valid until the next append, which is exactly
// the borrow window the parser grants its handler.
package scratch

import "buf.build/go/hyperxml/internal/lane"

// InitialCap is the starting capacity of a fresh buffer, in code units.
const InitialCap = 128

// Buffer is the combined name stack and lexeme storage. The zero value is
// usable; [New] preallocates.
type Buffer struct {
	data  []uint16
	split int
}

// New returns a buffer with [InitialCap] capacity.
func New() *Buffer {
	return &Buffer{data: make([]uint16, 0, InitialCap)}
}

// Reset empties the buffer, retaining its storage.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.split = 0
}

// Len returns the write cursor: the end of all accumulated data.
func (b *Buffer) Len() int { return len(b.data) }

// LexemeLen returns the length of the current lexeme.
func (b *Buffer) LexemeLen() int { return len(b.data) - b.split }

// Append appends one code unit to the lexeme.
func (b *Buffer) Append(c uint16) {
	if len(b.data) == cap(b.data) {
		b.grow(1)
	}
	b.data = append(b.data, c)
}

// AppendLane appends one vector lane to the lexeme.
func (b *Buffer) AppendLane(v lane.U16x8) {
	if len(b.data)+lane.N > cap(b.data) {
		b.grow(lane.N)
	}
	b.data = v.AppendTo(b.data)
}

// grow doubles capacity until n more units fit.
func (b *Buffer) grow(n int) {
	c := max(cap(b.data), InitialCap)
	for c < len(b.data)+n {
		c *= 2
	}
	data := make([]uint16, len(b.data), c)
	copy(data, b.data)
	b.data = data
}

// Lexeme returns the current lexeme, [split, len).
func (b *Buffer) Lexeme() []uint16 { return b.data[b.split:] }

// From returns [i, len) for a caller-saved index, used to delimit the
// attribute name once the value has been appended after it.
func (b *Buffer) From(i int) []uint16 { return b.data[i:] }

// Slice returns [i, j).
func (b *Buffer) Slice(i, j int) []uint16 { return b.data[i:j] }

// ClearLexeme resets the write cursor to the split point.
func (b *Buffer) ClearLexeme() { b.data = b.data[:b.split] }

// PushName turns the current lexeme into a stack frame: the name's code
// units are already in place, so only the trailing length is appended
// before the split point advances past the frame.
func (b *Buffer) PushName() {
	n := b.LexemeLen()
	b.Append(uint16(n))
	b.Append(uint16(n >> 16))
	b.split = len(b.data)
}

// PopName removes the top frame and returns its name, or ok=false if the
// stack is empty. The returned slice aliases the frame's storage and stays
// valid until the next append.
func (b *Buffer) PopName() (name []uint16, ok bool) {
	if b.split == 0 {
		return nil, false
	}
	n := int(b.data[b.split-2]) | int(b.data[b.split-1])<<16
	start := b.split - 2 - n
	name = b.data[start : b.split-2]
	b.split = start
	b.data = b.data[:start]
	return name, true
}

// Empty reports whether the name stack has no frames.
func (b *Buffer) Empty() bool { return b.split == 0 }
