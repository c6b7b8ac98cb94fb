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

import "unicode/utf16"

// Handler receives parse events.
//
// The entry points are generic over the concrete handler type, so a
// handler defined as a named struct is dispatched statically; wrap one in
// an interface variable only if you need object-style polymorphism.
//
// Every code-unit slice is borrowed from parser-internal storage and is
// valid only for the duration of the call; it must not be retained.
// Positions are zero-based (line, column) pairs; the anchors for each
// event are documented on the methods.
//
// Callbacks run synchronously on the parsing goroutine and must not
// re-enter the parser they were called from.
type Handler interface {
	// OnXMLDeclaration is called once, before any other event, if the
	// document has an XML declaration. encoding and standalone are empty
	// when absent. The position is that of the '?'.
	OnXMLDeclaration(version, encoding, standalone []uint16, line, column int)

	// OnBeginTag is called at '<Name', positioned at the start of the
	// name.
	OnBeginTag(name []uint16, line, column int)

	// OnEndTagEmpty is called immediately after the '/>' of an
	// empty-element tag, following the element's OnBeginTag and
	// OnAttribute events.
	OnEndTagEmpty()

	// OnEndTag is called at '</Name', positioned at the start of the
	// name.
	OnEndTag(name []uint16, line, column int)

	// OnAttribute is called once per attribute, after the element's
	// OnBeginTag. The name position is the start of the attribute name;
	// the value position is the opening quote.
	OnAttribute(name, value []uint16, nameLine, nameColumn, valueLine, valueColumn int)

	// OnText is called once per contiguous, non-empty character data run,
	// positioned at its first code unit. References are already decoded
	// into the run.
	OnText(text []uint16, line, column int)

	// OnComment is called with the body between '<!--' and '-->',
	// positioned at the first body code unit.
	OnComment(text []uint16, line, column int)

	// OnCDATA is called with the body between '<![CDATA[' and ']]>',
	// positioned at the first body code unit.
	OnCDATA(text []uint16, line, column int)

	// OnError is called once per non-recoverable parse error, after which
	// no further events follow — except at a clean end of input with
	// unclosed elements, where it is called once per unclosed tag,
	// innermost first. Every reported error is also returned from the
	// parse entry point, so ignoring this callback still fails loudly.
	OnError(message string, line, column int)
}

// BaseHandler is a [Handler] with no-op defaults for every event. Embed it
// and override the methods you need.
type BaseHandler struct{}

func (BaseHandler) OnXMLDeclaration(version, encoding, standalone []uint16, line, column int) {}
func (BaseHandler) OnBeginTag(name []uint16, line, column int)                                {}
func (BaseHandler) OnEndTagEmpty()                                                            {}
func (BaseHandler) OnEndTag(name []uint16, line, column int)                                  {}
func (BaseHandler) OnAttribute(name, value []uint16, nameLine, nameColumn, valueLine, valueColumn int) {
}
func (BaseHandler) OnText(text []uint16, line, column int)    {}
func (BaseHandler) OnComment(text []uint16, line, column int) {}
func (BaseHandler) OnCDATA(text []uint16, line, column int)   {}
func (BaseHandler) OnError(message string, line, column int)  {}

// String decodes a borrowed code-unit slice into a fresh string. This is
// the copy a handler makes when it wants to keep an event's payload.
func String(units []uint16) string {
	return string(utf16.Decode(units))
}
