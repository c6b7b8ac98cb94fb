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
	"io"

	"buf.build/go/hyperxml/internal/cfg"
	"buf.build/go/hyperxml/internal/scratch"
	"buf.build/go/hyperxml/internal/source"
	"buf.build/go/hyperxml/internal/sync2"
)

var scratchPool = sync2.Pool[scratch.Buffer]{
	New:   scratch.New,
	Reset: (*scratch.Buffer).Reset,
}

// Parse parses an in-memory document and delivers its events to h.
//
// The text is transcoded once, at construction, into a contiguous UTF-16
// buffer; event delivery after that is allocation free. It returns nil on
// success, or the first error reported to [Handler.OnError].
func Parse[H Handler](text string, h H, options ...Option) error {
	return run(source.FromString(text), h, resolve(options))
}

// ParseUTF16 parses a document supplied as raw UTF-16 code units, without
// copying. The caller must not mutate units during the parse.
func ParseUTF16[H Handler](units []uint16, h H, options ...Option) error {
	return run(source.NewBuffer(units), h, resolve(options))
}

// ParseReader parses a document from a byte stream.
//
// Up to four leading bytes are matched against the BOM and heuristic table
// of XML 1.0 Appendix F to commit to an encoding ([WithEncoding] takes
// precedence); the stream is then decoded incrementally. A read error
// ends the parse and is returned, taking precedence over any parse error
// reported after the truncation point.
func ParseReader[H Handler](r io.Reader, h H, options ...Option) error {
	o := resolve(options)
	src, err := source.NewStream(r, o.encoding)
	if err != nil {
		return err
	}
	perr := run(src, h, o)
	if err := src.Err(); err != nil {
		return err
	}
	return perr
}

// run picks one of the four statically specialized parser instantiations.
// The two flags are type parameters rather than fields so that disabled
// branches are dead code in each instantiation, not runtime tests on a
// hot path.
func run[H Handler, S source.Source](src S, h H, o options) error {
	buf, drop := scratchPool.Get()
	defer drop()

	switch {
	case o.vector && o.tagMatch:
		return parse[H, S, cfg.On, cfg.On](src, h, buf)
	case o.vector:
		return parse[H, S, cfg.On, cfg.Off](src, h, buf)
	case o.tagMatch:
		return parse[H, S, cfg.Off, cfg.On](src, h, buf)
	default:
		return parse[H, S, cfg.Off, cfg.Off](src, h, buf)
	}
}

// parse is the top-level parse routine: it owns the in-band error
// protocol. Failure sites anywhere below store the error and panic with
// a private sentinel; this frame recovers, delivers the single OnError,
// and returns the error. The scratch buffer is released by run regardless
// of how the parse ends.
func parse[H Handler, S source.Source, V, T cfg.Flag](src S, h H, buf *scratch.Buffer) (err error) {
	p := &parser[H, S, V, T]{h: h, src: src, buf: buf}

	defer func() {
		switch r := recover(); r {
		case nil:
		case abortParse:
			p.h.OnError(p.err.Message, p.err.Line, p.err.Column)
			err = p.err
		default:
			panic(r)
		}
	}()

	p.run()
	if p.err != nil {
		// Unclosed tags at a clean end of input: already reported, one
		// OnError per tag, without unwinding.
		err = p.err
	}
	return err
}
