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

// Package hyperxml is a highly optimized streaming XML 1.0 parser that
// delivers parse events to a user-supplied handler without allocating per
// event.
//
// To use this package, implement [Handler] (usually by embedding
// [BaseHandler] and overriding the callbacks you care about) and call
// [Parse], [ParseUTF16], or [ParseReader]. Callbacks receive borrowed
// UTF-16 code-unit slices that are valid only for the duration of the
// call; copy (for example with [String]) anything you want to keep.
//
// The parser checks well-formedness at the character and structural level:
// character classes, surrogate pairing, tag nesting, attribute syntax,
// comments, CDATA sections, the XML declaration, and the five predefined
// entities. Errors are reported once through [Handler.OnError] and
// returned from the parse call.
//
// # Support Status
//
// This package is specialized for fast, forward-only event delivery. The
// following XML features are out of scope; the first three are reported
// as errors:
//
//   - DTDs and any <!...> directive other than comments and CDATA.
//   - Processing instructions other than the XML declaration.
//   - Entity declarations beyond lt, gt, amp, apos and quot.
//   - Namespace resolution and duplicate-attribute detection. Prefixed
//     names and repeated attributes are delivered as they appear, with
//     no error.
package hyperxml
