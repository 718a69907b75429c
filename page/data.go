package page

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"encoding/json"
	"fmt"

	"github.com/npillmayer/wikidom/token"
)

// DSR is a DOM source range: byte offsets of an element's content into the
// original wikitext, plus the widths of the opening and closing constructs.
// Unknown components are -1; downstream passes never extrapolate past an
// unknown offset.
type DSR struct {
	Start      int
	End        int
	OpenWidth  int
	CloseWidth int
}

// UnknownDSR is the "no source information" value.
var UnknownDSR = DSR{-1, -1, -1, -1}

// Known tells if both content offsets are valid.
func (d DSR) Known() bool {
	return d.Start >= 0 && d.End >= 0
}

func (d DSR) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", d.Start, d.End, d.OpenWidth, d.CloseWidth)
}

// MarshalJSON renders the four-tuple as a JSON array, with null for
// unknown components.
func (d DSR) MarshalJSON() ([]byte, error) {
	comp := func(c int) any {
		if c < 0 {
			return nil
		}
		return c
	}
	return json.Marshal([]any{comp(d.Start), comp(d.End), comp(d.OpenWidth), comp(d.CloseWidth)})
}

// ParamInfo records the source offsets of one template parameter: key
// start/end and value start/end.
type ParamInfo struct {
	Key        string `json:"k"`
	SrcOffsets [4]int `json:"srcOffsets"`
}

// Scratch is the pass-local scratch slot of a data-parsoid record. It is
// never serialized.
type Scratch struct {
	RangeIDs   map[int]bool // template-range coverage, set by the encapsulator
	ArgInfo    string       // serialized tplarginfo carried over from the marker token
	SectionPar bool         // section wrapper bookkeeping
}

// DataParsoid is the per-node round-trip record. It is kept in the page
// bundle, indirected through a numeric node id, and serialized into the
// data-parsoid attribute only once, at cleanup.
type DataParsoid struct {
	DSR               DSR         `json:"dsr"`
	Src               string      `json:"src,omitempty"`
	TSR               token.TSR   `json:"-"`
	Stx               string      `json:"stx,omitempty"`
	Fostered          bool        `json:"fostered,omitempty"`
	AutoInserted      bool        `json:"autoInsertedEnd,omitempty"`
	FirstWikitextNode string      `json:"firstWikitextNode,omitempty"`
	PI                [][]ParamInfo `json:"pi,omitempty"`
	Tmp               Scratch     `json:"-"`
}

// NewDataParsoid returns a record with all offsets unknown.
func NewDataParsoid() *DataParsoid {
	return &DataParsoid{DSR: UnknownDSR, TSR: token.UnknownTSR}
}

// FromDataAttribs seeds a data-parsoid record from a token's side record.
func FromDataAttribs(da *token.DataAttribs) *DataParsoid {
	dp := NewDataParsoid()
	if da == nil {
		return dp
	}
	dp.TSR = da.TSR
	dp.Stx = da.Stx
	dp.Fostered = da.Fostered
	dp.Tmp.ArgInfo = da.TplArgInfo
	if da.TSR.Known() {
		dp.DSR = DSR{da.TSR.Start, da.TSR.End, da.OpenWidth, da.CloseWidth}
	}
	return dp
}

// --- data-mw ---------------------------------------------------------------

// Target names a template: its wikitext form and the resolved href.
type Target struct {
	WT   string `json:"wt"`
	Href string `json:"href,omitempty"`
}

// Param is one template parameter value in data-mw.
type Param struct {
	WT string `json:"wt"`
}

// TemplateInfo describes one transclusion inside a compound part list.
type TemplateInfo struct {
	Target Target           `json:"target"`
	Params map[string]Param `json:"params"`
	I      int              `json:"i"`
}

// Part is one entry of data-mw.parts: either a literal wikitext run or a
// template/template-argument invocation.
type Part struct {
	WT          string
	Template    *TemplateInfo
	TemplateArg *TemplateInfo
}

// MarshalJSON emits a bare string for wikitext runs and a keyed object for
// template parts, matching the wire format of the parts array.
func (p Part) MarshalJSON() ([]byte, error) {
	if p.Template != nil {
		return json.Marshal(map[string]*TemplateInfo{"template": p.Template})
	}
	if p.TemplateArg != nil {
		return json.Marshal(map[string]*TemplateInfo{"templatearg": p.TemplateArg})
	}
	return json.Marshal(p.WT)
}

// DataMW is the per-node semantic record: template parts, extension
// invocation arguments, media captions.
type DataMW struct {
	Parts   []Part            `json:"parts,omitempty"`
	Name    string            `json:"name,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Body    *ExtBody          `json:"body,omitempty"`
	Caption string            `json:"caption,omitempty"`
}

// ExtBody carries the raw inner source of an extension invocation.
type ExtBody struct {
	Extsrc string `json:"extsrc"`
}

// TplArgInfo is the serialized description of one transclusion's
// arguments, carried on the start marker meta and consumed by the
// template encapsulator.
type TplArgInfo struct {
	Dict       TemplateInfo `json:"dict"`
	ParamInfos []ParamInfo  `json:"paramInfos,omitempty"`
	IsParam    bool         `json:"isParam,omitempty"`
	TSR        [2]int       `json:"tsr"`
}

// Serialize renders the arg info for transport in a token side record.
func (t *TplArgInfo) Serialize() string {
	raw, err := json.Marshal(t)
	if err != nil {
		tracer().Errorf("cannot serialize tplarginfo: %v", err)
		return ""
	}
	return string(raw)
}

// ParseTplArgInfo decodes a serialized arg info.
func ParseTplArgInfo(s string) (*TplArgInfo, error) {
	if s == "" {
		return nil, fmt.Errorf("empty tplarginfo")
	}
	var t TplArgInfo
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return nil, err
	}
	return &t, nil
}
