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

import "fmt"

const (
	errNone errCode = iota
	errUnexpectedEOF
	errInvalidChar
	errLoneSurrogate
	errInvalidBeginTagName
	errExpectingWhitespace
	errInvalidCharAfterSlash
	errInvalidAttrName
	errExpectingEq
	errAttrValueNotQuoted
	errLtInAttrValue
	errInvalidCharInAttrValue
	errInvalidHexDigit
	errInvalidDigit
	errExpectingSemicolon
	errUnknownEntity
	errInvalidCharRef
	errInvalidEndTagName
	errEndTagMismatch
	errUnsupportedDirective
	errMalformedCommentStart
	errDoubleDashInComment
	errMalformedCDATAStart
	errXMLDeclNotFirst
	errExpectingXMLDecl
	errExpectingVersion
	errExpectingEncoding
	errExpectingStandalone
	errExpectingDeclEnd
)

// errCode identifies a parse failure. Each code carries a fixed message;
// the only formatted message is the unclosed-tag report at end of input,
// which names the tag.
type errCode int

var messages = [...]string{
	errNone:                   "",
	errUnexpectedEOF:          "Unexpected end of XML stream",
	errInvalidChar:            "Invalid character found",
	errLoneSurrogate:          "Invalid character found. A high surrogate must be followed by a low surrogate",
	errInvalidBeginTagName:    "Invalid begin tag name",
	errExpectingWhitespace:    "Invalid character found. Expecting a whitespace",
	errInvalidCharAfterSlash:  "Invalid character after /. Expecting >",
	errInvalidAttrName:        "Invalid attribute name",
	errExpectingEq:            "Invalid character found. Expecting =",
	errAttrValueNotQuoted:     "Invalid character found. Expecting a simple quote ' or a double quote \"",
	errLtInAttrValue:          "Invalid character < found in attribute value",
	errInvalidCharInAttrValue: "Invalid character found in attribute value",
	errInvalidHexDigit:        "Invalid hexadecimal digit in character reference",
	errInvalidDigit:           "Invalid decimal digit in character reference",
	errExpectingSemicolon:     "Invalid character found. Expecting ; to terminate a reference",
	errUnknownEntity:          "Invalid entity name. Only lt, gt, amp, apos and quot are supported",
	errInvalidCharRef:         "Invalid character reference. The code point is not a Unicode scalar value",
	errInvalidEndTagName:      "Invalid end tag name",
	errEndTagMismatch:         "Invalid end tag. No matching start tag found",
	errUnsupportedDirective:   "Invalid directive. Only comments and CDATA sections are supported",
	errMalformedCommentStart:  "Invalid comment start. Expecting <!--",
	errDoubleDashInComment:    "Invalid -- found in comment. Expecting >",
	errMalformedCDATAStart:    "Invalid CDATA section start. Expecting <![CDATA[",
	errXMLDeclNotFirst:        "Invalid XML declaration. It must appear before any content",
	errExpectingXMLDecl:       "Invalid processing instruction. Expecting <?xml",
	errExpectingVersion:       "Invalid XML declaration. Expecting version attribute",
	errExpectingEncoding:      "Invalid XML declaration. Expecting encoding attribute",
	errExpectingStandalone:    "Invalid XML declaration. Expecting standalone attribute",
	errExpectingDeclEnd:       "Invalid XML declaration. Expecting ?>",
}

// Error is a parse error, as delivered to [Handler.OnError] and returned
// by the parse entry points.
//
// Line and Column are the zero-based position the parser reported the
// error at.
type Error struct {
	Message      string
	Line, Column int
}

// Error implements [error].
func (e *Error) Error() string {
	return fmt.Sprintf("hyperxml: parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// abortParse is the panic value used to unwind from a failure site deep in
// the sub-parsers to the top-level parse routine, which translates it into
// a single OnError call. Any other panic value is re-raised untouched.
var abortParse = new(byte)
