package page

import (
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func elem(name string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: name, DataAtom: atom.Lookup([]byte(name))}
}

func TestBundleAssignAndLookup(t *testing.T) {
	b := NewBundle()
	n := elem("p")
	dp := b.DataParsoid(n)
	if dp == nil {
		t.Fatal("expected a data-parsoid record, got nil")
	}
	id := NodeID(n)
	if id == 0 {
		t.Fatal("expected the node to carry a bundle id, doesn't")
	}
	if b.DataParsoid(n) != dp {
		t.Error("expected repeated access to return the same record, doesn't")
	}
	if b.Owner(id) != n {
		t.Error("expected reverse lookup to find the node, doesn't")
	}
}

func TestBundleFreshIDOnReassign(t *testing.T) {
	b := NewBundle()
	n := elem("span")
	id1 := b.Assign(n)
	id2 := b.Assign(n) // clone freshening reuses Assign
	if id1 == id2 {
		t.Errorf("expected a fresh id, got %d twice", id1)
	}
	if NodeID(n) != id2 {
		t.Errorf("expected the node to carry the new id %d, carries %d", id2, NodeID(n))
	}
}

func TestBundleGC(t *testing.T) {
	b := NewBundle()
	root := elem("body")
	kept := elem("p")
	root.AppendChild(kept)
	b.DataParsoid(kept)
	gone := elem("span")
	b.DataParsoid(gone) // never attached to the tree
	b.GC(root)
	if len(b.Parsoid) != 1 {
		t.Errorf("expected exactly one record to survive GC, got %d", len(b.Parsoid))
	}
	if !b.HasDataParsoid(kept) {
		t.Error("expected the attached node's record to survive, didn't")
	}
}

func TestBundleMarshal(t *testing.T) {
	b := NewBundle()
	n := elem("p")
	dp := b.DataParsoid(n)
	dp.DSR = DSR{0, 5, 0, 0}
	b.SetDataMW(n, &DataMW{Parts: []Part{{WT: "x"}}})
	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	s := string(raw)
	if !strings.Contains(s, `"data-parsoid"`) || !strings.Contains(s, `"data-mw"`) {
		t.Errorf("expected both side-tables in the bundle, got %s", s)
	}
}

func TestDSRMarshalUnknown(t *testing.T) {
	raw, err := json.Marshal(UnknownDSR)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "[null,null,null,null]" {
		t.Errorf("expected unknown components as null, got %s", raw)
	}
}

func TestTplArgInfoRoundTrip(t *testing.T) {
	ai := &TplArgInfo{TSR: [2]int{3, 17}}
	ai.Dict.Target = Target{WT: "echo"}
	ai.Dict.Params = map[string]Param{"1": {WT: "foo"}}
	ai.ParamInfos = []ParamInfo{{Key: "1", SrcOffsets: [4]int{8, 8, 8, 11}}}
	back, err := ParseTplArgInfo(ai.Serialize())
	if err != nil {
		t.Fatal(err)
	}
	if back.Dict.Target.WT != "echo" || back.TSR != ai.TSR {
		t.Errorf("expected round-trip to preserve the dict, got %#v", back)
	}
	if len(back.ParamInfos) != 1 || back.ParamInfos[0].Key != "1" {
		t.Errorf("expected param infos preserved, got %#v", back.ParamInfos)
	}
}

func TestEnvAboutIDs(t *testing.T) {
	env := NewEnv(&Config{})
	if id := env.NewAboutID(); id != "#mwt1" {
		t.Errorf("expected #mwt1, got %s", id)
	}
	if id := env.NewAboutID(); id != "#mwt2" {
		t.Errorf("expected #mwt2, got %s", id)
	}
}

func TestEnvFragments(t *testing.T) {
	env := NewEnv(&Config{})
	frag := elem("div")
	key := env.StoreFragment(frag)
	if env.TakeFragment(key) != frag {
		t.Error("expected to get the parked fragment back, didn't")
	}
	if env.TakeFragment(key) != nil {
		t.Error("expected the fragment to be consumed, isn't")
	}
}
