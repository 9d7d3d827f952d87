package source

import "testing"

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.wv", []byte("package a;\ninterface X {\n}\n"))

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{10, LineCol{1, 11}}, // the newline itself
		{11, LineCol{2, 1}},
		{21, LineCol{2, 11}},
		{25, LineCol{3, 1}},
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start != tc.want {
			t.Errorf("offset %d: got %+v, want %+v", tc.off, start, tc.want)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("a.wv", []byte("one\ntwo\nthree")))
	for i, want := range []string{"", "one", "two", "three", ""} {
		if got := f.GetLine(uint32(i)); got != want {
			t.Errorf("line %d: got %q, want %q", i, got, want)
		}
	}
}

func TestNormalization(t *testing.T) {
	content, bom := removeBOM([]byte("\xEF\xBB\xBFa\r\nb\rc"))
	if !bom {
		t.Fatalf("BOM not detected")
	}
	content, crlf := normalizeCRLF(content)
	if !crlf || string(content) != "a\nb\rc" {
		t.Fatalf("unexpected normalization: %q (crlf=%v)", content, crlf)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got.Start != 2 || got.End != 8 {
		t.Fatalf("cover = %v", got)
	}
	if got := a.Cover(Span{File: 2, Start: 0, End: 100}); got != a {
		t.Fatalf("cross-file cover must keep receiver, got %v", got)
	}
	if !a.Contains(4) || a.Contains(8) {
		t.Fatalf("contains is not half-open")
	}
	if fs := NewFileSet(); fs.Len() != 0 {
		t.Fatalf("fresh file set is not empty")
	}
}

func TestTextAndLookup(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("dir/../x.wv", []byte("contract Counter {}"))
	if got := fs.Text(Span{File: id, Start: 9, End: 16}); got != "Counter" {
		t.Fatalf("text = %q", got)
	}
	if _, ok := fs.Lookup("x.wv"); !ok {
		t.Fatalf("lookup by normalized path failed")
	}
}
