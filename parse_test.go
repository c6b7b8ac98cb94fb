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

package hyperxml_test

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"gopkg.in/yaml.v3"

	"buf.build/go/hyperxml"
)

//go:embed testdata/*.yaml
var testdata embed.FS

// testCase is a case from the test data corpus: one document, given as
// text or as raw code units, and the event trace it must produce.
type testCase struct {
	Name string `yaml:"name"`

	// Two ways to encode the input: a string, or raw UTF-16 code units
	// for documents (lone surrogates) that a Go string cannot carry.
	Text  string   `yaml:"text"`
	Units []uint16 `yaml:"units"`

	// "on" or "off" restricts the case to one tag-matching mode; empty
	// runs it in both, expecting identical events.
	TagMatching string `yaml:"tag_matching"`

	Events []string `yaml:"events"`
}

type testFile struct {
	Cases []*testCase `yaml:"cases"`
}

// recorder captures every event as one formatted line.
type recorder struct {
	events []string
}

var _ hyperxml.Handler = (*recorder)(nil)

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) OnXMLDeclaration(version, encoding, standalone []uint16, line, column int) {
	r.add("xmldecl %q %q %q %d:%d",
		hyperxml.String(version), hyperxml.String(encoding), hyperxml.String(standalone),
		line, column)
}

func (r *recorder) OnBeginTag(name []uint16, line, column int) {
	r.add("begin %q %d:%d", hyperxml.String(name), line, column)
}

func (r *recorder) OnEndTagEmpty() {
	r.add("empty")
}

func (r *recorder) OnEndTag(name []uint16, line, column int) {
	r.add("end %q %d:%d", hyperxml.String(name), line, column)
}

func (r *recorder) OnAttribute(name, value []uint16, nameLine, nameColumn, valueLine, valueColumn int) {
	r.add("attr %q=%q %d:%d %d:%d",
		hyperxml.String(name), hyperxml.String(value),
		nameLine, nameColumn, valueLine, valueColumn)
}

func (r *recorder) OnText(text []uint16, line, column int) {
	r.add("text %q %d:%d", hyperxml.String(text), line, column)
}

func (r *recorder) OnComment(text []uint16, line, column int) {
	r.add("comment %q %d:%d", hyperxml.String(text), line, column)
}

func (r *recorder) OnCDATA(text []uint16, line, column int) {
	r.add("cdata %q %d:%d", hyperxml.String(text), line, column)
}

func (r *recorder) OnError(message string, line, column int) {
	r.add("error %q %d:%d", message, line, column)
}

func loadCases(t testing.TB) []*testCase {
	t.Helper()

	var cases []*testCase
	err := fs.WalkDir(testdata, ".", func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err, "loading tests %q", path)
		if d.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}

		data, err := fs.ReadFile(testdata, path)
		require.NoError(t, err, "loading tests %q", path)

		file := new(testFile)
		require.NoError(t, yaml.Unmarshal(data, file), "loading tests %q", path)

		group := strings.TrimSuffix(strings.TrimPrefix(path, "testdata/"), ".yaml")
		for _, tc := range file.Cases {
			tc.Name = group + "/" + tc.Name
			cases = append(cases, tc)
		}
		return nil
	})
	require.NoError(t, err)
	return cases
}

func (tc *testCase) wantsError() bool {
	for _, e := range tc.Events {
		if strings.HasPrefix(e, "error ") {
			return true
		}
	}
	return false
}

func (tc *testCase) check(t *testing.T, events []string, err error) {
	t.Helper()
	require.Equal(t, tc.Events, events)
	if tc.wantsError() {
		require.Error(t, err)
		var perr *hyperxml.Error
		require.ErrorAs(t, err, &perr)
	} else {
		require.NoError(t, err)
	}
}

var combos = []struct {
	name            string
	vector, matched bool
}{
	{"vector+matched", true, true},
	{"vector", true, false},
	{"matched", false, true},
	{"scalar", false, false},
}

// TestParse runs every corpus case through the four parser
// specializations; event sequences must not depend on the flags.
func TestParse(t *testing.T) {
	t.Parallel()
	for _, tc := range loadCases(t) {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			for _, combo := range combos {
				if tc.TagMatching == "on" && !combo.matched {
					continue
				}
				if tc.TagMatching == "off" && combo.matched {
					continue
				}

				t.Run(combo.name, func(t *testing.T) {
					rec := new(recorder)
					opts := []hyperxml.Option{
						hyperxml.WithVector(combo.vector),
						hyperxml.WithTagMatching(combo.matched),
					}

					var err error
					if tc.Units != nil {
						err = hyperxml.ParseUTF16(tc.Units, rec, opts...)
					} else {
						err = hyperxml.Parse(tc.Text, rec, opts...)
					}
					tc.check(t, rec.events, err)
				})
			}
		})
	}
}

// streamEncodings are the byte encodings every text case is re-run
// through; each must produce the trace of the in-memory parse.
var streamEncodings = []struct {
	name   string
	encode func(string) []byte
}{
	{"utf8", func(s string) []byte { return []byte(s) }},
	{"utf8-bom", func(s string) []byte {
		return append([]byte{0xEF, 0xBB, 0xBF}, s...)
	}},
	{"utf16le-bom", encodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes)},
	{"utf16be-bom", encodeWith(unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes)},
	{"utf32le-bom", encodeWith(utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder().Bytes)},
	{"utf32be-bom", encodeWith(utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewEncoder().Bytes)},
}

func encodeWith(enc func([]byte) ([]byte, error)) func(string) []byte {
	return func(s string) []byte {
		b, err := enc([]byte(s))
		if err != nil {
			panic(err)
		}
		return b
	}
}

// TestParseReader checks that the stream entry point produces the same
// events as the in-memory one, across encodings and at one-byte refill
// granularity.
func TestParseReader(t *testing.T) {
	t.Parallel()
	for _, tc := range loadCases(t) {
		if tc.Text == "" || tc.TagMatching == "off" {
			continue
		}
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			want := new(recorder)
			wantErr := hyperxml.Parse(tc.Text, want)

			for _, enc := range streamEncodings {
				t.Run(enc.name, func(t *testing.T) {
					data := enc.encode(tc.Text)

					rec := new(recorder)
					err := hyperxml.ParseReader(bytes.NewReader(data), rec)
					assert.Equal(t, want.events, rec.events)
					assert.Equal(t, wantErr == nil, err == nil)

					// Again, one byte at a time, to cross every refill
					// boundary.
					rec = new(recorder)
					err = hyperxml.ParseReader(iotest.OneByteReader(bytes.NewReader(data)), rec)
					assert.Equal(t, want.events, rec.events)
					assert.Equal(t, wantErr == nil, err == nil)
				})
			}
		})
	}
}

// TestBOMlessDetection exercises the heuristic half of the Appendix F
// table, which keys on the encoded '<?xm' prefix.
func TestBOMlessDetection(t *testing.T) {
	t.Parallel()
	const doc = `<?xml version="1.0"?><root enabled="true">Hello World!</root>`

	want := new(recorder)
	require.NoError(t, hyperxml.Parse(doc, want))

	encodings := []struct {
		name   string
		encode func(string) []byte
	}{
		{"utf16le", encodeWith(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes)},
		{"utf16be", encodeWith(unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder().Bytes)},
		{"utf32le", encodeWith(utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM).NewEncoder().Bytes)},
		{"utf32be", encodeWith(utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM).NewEncoder().Bytes)},
	}
	for _, enc := range encodings {
		t.Run(enc.name, func(t *testing.T) {
			t.Parallel()
			rec := new(recorder)
			require.NoError(t, hyperxml.ParseReader(bytes.NewReader(enc.encode(doc)), rec))
			assert.Equal(t, want.events, rec.events)
		})
	}
}

// TestEncodingOverride parses a BOM-less UTF-16 document that defeats the
// heuristic (it does not start with '<?'), which only works with an
// explicit encoding.
func TestEncodingOverride(t *testing.T) {
	t.Parallel()
	data := encodeWith(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes)(`<a/>`)

	rec := new(recorder)
	require.Error(t, hyperxml.ParseReader(bytes.NewReader(data), rec))

	rec = new(recorder)
	require.NoError(t, hyperxml.ParseReader(bytes.NewReader(data), rec,
		hyperxml.WithEncoding(hyperxml.EncodingUTF16LE)))
	assert.Equal(t, []string{`begin "a" 0:1`, "empty"}, rec.events)
}

// TestNumericReferenceRoundTrip checks that a numeric character reference
// for a scalar value comes back as exactly its UTF-16 encoding.
func TestNumericReferenceRoundTrip(t *testing.T) {
	t.Parallel()
	scalars := []rune{
		0x1, 0x9, 0x20, 'A', 0x7F, 0xFF, 0x7FF, 0xD7FF,
		0xE000, 0xFFFD, 0x10000, 0x1F600, 0x10FFFF,
	}
	for _, u := range scalars {
		t.Run(fmt.Sprintf("U+%04X", u), func(t *testing.T) {
			t.Parallel()
			h := new(attrCapture)
			require.NoError(t, hyperxml.Parse(fmt.Sprintf(`<r a="&#x%X;"/>`, u), h))
			require.Len(t, h.values, 1)
			assert.Equal(t, utf16.Encode([]rune{u}), h.values[0])
		})
	}
}

type attrCapture struct {
	hyperxml.BaseHandler
	values [][]uint16
}

func (h *attrCapture) OnAttribute(name, value []uint16, _, _, _, _ int) {
	h.values = append(h.values, append([]uint16(nil), value...))
}

// buildDoc generates a document with every production: attributes,
// references, comments, CDATA with embedded brackets, empty elements,
// and multi-line text.
func buildDoc(books int) string {
	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<library>\n")
	for i := range books {
		fmt.Fprintf(&sb,
			"<book id=\"bk%04d\" title='T &amp; %d'>"+
				"<author>A. Author</author>"+
				"<desc><![CDATA[text ]] here %d]]></desc>"+
				"<!-- note %d --><empty/>\nplain &lt;text&gt; run"+
				"</book>\n",
			i, i, i, i)
	}
	sb.WriteString("</library>\n")
	return sb.String()
}

// TestVectorParity parses a large generated document with the fast paths
// on and off; the traces must be identical.
func TestVectorParity(t *testing.T) {
	t.Parallel()
	doc := buildDoc(300)

	on := new(recorder)
	require.NoError(t, hyperxml.Parse(doc, on, hyperxml.WithVector(true)))

	off := new(recorder)
	require.NoError(t, hyperxml.Parse(doc, off, hyperxml.WithVector(false)))

	require.Equal(t, on.events, off.events)
}

// TestStreamMatchesBuffer is the large-document version of
// TestParseReader's equivalence check.
func TestStreamMatchesBuffer(t *testing.T) {
	t.Parallel()
	doc := buildDoc(300)

	want := new(recorder)
	require.NoError(t, hyperxml.Parse(doc, want))

	rec := new(recorder)
	require.NoError(t, hyperxml.ParseReader(strings.NewReader(doc), rec))
	require.Equal(t, want.events, rec.events)

	rec = new(recorder)
	data := encodeWith(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes)(doc)
	require.NoError(t, hyperxml.ParseReader(bytes.NewReader(data), rec))
	require.Equal(t, want.events, rec.events)
}

type countHandler struct {
	hyperxml.BaseHandler
	events int
}

func (h *countHandler) OnBeginTag(name []uint16, line, column int) { h.events++ }
func (h *countHandler) OnText(text []uint16, line, column int)     { h.events++ }

// TestParseAllocs pins the per-event allocation count at zero: the cost
// of a parse must not grow with the number of events. Each parse pays a
// small constant (the parser itself and its pool bookkeeping), so the
// small and large documents must cost the same.
func TestParseAllocs(t *testing.T) {
	small := utf16.Encode([]rune(buildDoc(5)))
	large := utf16.Encode([]rune(buildDoc(500)))
	h := new(countHandler)

	// Warm the scratch pool up to the large document's high-water mark.
	require.NoError(t, hyperxml.ParseUTF16(large, h))

	perSmall := testing.AllocsPerRun(20, func() {
		_ = hyperxml.ParseUTF16(small, h)
	})
	perLarge := testing.AllocsPerRun(20, func() {
		_ = hyperxml.ParseUTF16(large, h)
	})
	assert.InDelta(t, perSmall, perLarge, 1)
}

func BenchmarkParse(b *testing.B) {
	doc := buildDoc(1000)
	units := utf16.Encode([]rune(doc))
	h := new(countHandler)

	b.Run("string", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(doc)))
		for range b.N {
			_ = hyperxml.Parse(doc, h)
		}
	})
	b.Run("utf16", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(units) * 2))
		for range b.N {
			_ = hyperxml.ParseUTF16(units, h)
		}
	})
	b.Run("utf16-scalar", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(units) * 2))
		for range b.N {
			_ = hyperxml.ParseUTF16(units, h, hyperxml.WithVector(false))
		}
	})
	b.Run("reader", func(b *testing.B) {
		b.ReportAllocs()
		b.SetBytes(int64(len(doc)))
		r := new(bytes.Reader)
		data := []byte(doc)
		for range b.N {
			r.Reset(data)
			_ = hyperxml.ParseReader(r, h)
		}
	})
}
