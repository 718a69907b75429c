package token

import (
	"testing"
)

func TestKindStrings(t *testing.T) {
	kinds := []Kind{KindStartTag, KindEndTag, KindSelfClosing, KindComment, KindNewline, KindText, KindEOF}
	for _, k := range kinds {
		if k.String() == "unknown" {
			t.Errorf("expected kind %d to have a name, hasn't", k)
		}
	}
}

func TestTSRKnown(t *testing.T) {
	if UnknownTSR.Known() {
		t.Error("expected UnknownTSR not to be known, is")
	}
	tsr := TSR{Start: 0, End: 4}
	if !tsr.Known() {
		t.Errorf("expected %v to be known, isn't", tsr)
	}
}

func TestTokenNames(t *testing.T) {
	toks := []Token{
		&StartTag{Name: "table"},
		&EndTag{Name: "table"},
		&SelfClosing{Name: "meta"},
		&Text{Value: "hello"},
	}
	names := []string{"table", "table", "meta", ""}
	for i, tk := range toks {
		if Name(tk) != names[i] {
			t.Errorf("expected token %d to have name %q, has %q", i, names[i], Name(tk))
		}
	}
}

func TestAttrHelpers(t *testing.T) {
	attrs := []Attr{{K: "class", V: "x"}}
	attrs = SetAttr(attrs, "id", "y")
	attrs = SetAttr(attrs, "class", "z")
	if v, ok := GetAttr(attrs, "class"); !ok || v != "z" {
		t.Errorf("expected class to be z, is %q", v)
	}
	attrs = RemoveAttr(attrs, "class")
	if _, ok := GetAttr(attrs, "class"); ok {
		t.Error("expected class to be removed, isn't")
	}
	if len(attrs) != 1 {
		t.Errorf("expected 1 attribute left, are %d", len(attrs))
	}
}

func TestNormalizeOption(t *testing.T) {
	if n := NormalizeOption("  a   b \t c "); n != "a b c" {
		t.Errorf("expected whitespace to collapse, got %q", n)
	}
}

func TestDataAttribsClone(t *testing.T) {
	da := &DataAttribs{TSR: TSR{1, 2}, Stx: "html"}
	cp := da.Clone()
	cp.TSR.Start = 9
	if da.TSR.Start != 1 {
		t.Error("expected clone to be independent, isn't")
	}
	var nilDA *DataAttribs
	if nilDA.Clone() != nil {
		t.Error("expected nil clone to stay nil, doesn't")
	}
}
