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

import "buf.build/go/hyperxml/internal/source"

// Encoding identifies the byte encoding of a stream passed to
// [ParseReader].
type Encoding = source.Encoding

// The encodings [ParseReader] can detect and decode.
const (
	EncodingAuto    = source.EncodingAuto
	EncodingUTF8    = source.EncodingUTF8
	EncodingUTF16LE = source.EncodingUTF16LE
	EncodingUTF16BE = source.EncodingUTF16BE
	EncodingUTF32LE = source.EncodingUTF32LE
	EncodingUTF32BE = source.EncodingUTF32BE
)

// Option is a configuration setting for a parse. Options are consumed at
// construction and immutable for the parse's lifetime.
type Option struct{ apply func(*options) }

type options struct {
	encoding Encoding
	vector   bool
	tagMatch bool
}

func resolve(opts []Option) options {
	o := options{
		encoding: EncodingAuto,
		vector:   true,
		tagMatch: true,
	}
	for _, opt := range opts {
		if opt.apply != nil {
			opt.apply(&o)
		}
	}
	return o
}

// WithEncoding overrides stream encoding detection for [ParseReader]. The
// default, [EncodingAuto], detects the encoding from the leading bytes.
// The option is ignored by the in-memory entry points.
func WithEncoding(encoding Encoding) Option {
	return Option{func(o *options) { o.encoding = encoding }}
}

// WithVector sets whether the parser uses the vectorized fast paths for
// bulk content copying and name scanning. The default is true; event
// sequences are identical either way.
func WithVector(enabled bool) Option {
	return Option{func(o *options) { o.vector = enabled }}
}

// WithTagMatching sets whether the parser checks that every end tag
// matches the most recent open begin tag, and reports tags left unclosed
// at the end of the document. The default is true.
func WithTagMatching(enabled bool) Option {
	return Option{func(o *options) { o.tagMatch = enabled }}
}
