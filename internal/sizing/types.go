// internal/sizing/types.go
package sizing

import (
	"encoding/json"
	"fmt"
)

// MediaType is the garment style: below-knee, full-leg or pantyhose.
type MediaType string

const (
	MediaTypeAD MediaType = "AD"
	MediaTypeAG MediaType = "AG"
	MediaTypeAT MediaType = "AT"
)

// Valid reports whether m is one of the known media types.
func (m MediaType) Valid() bool {
	switch m {
	case MediaTypeAD, MediaTypeAG, MediaTypeAT:
		return true
	}
	return false
}

// BandType is the width of the upper band. Only meaningful for AG.
type BandType string

const (
	BandNormal BandType = "normal"
	BandWide   BandType = "ancha"
)

// Valid reports whether b is a known band width. Unspecified is valid.
func (b BandType) Valid() bool {
	switch b {
	case "", BandNormal, BandWide:
		return true
	}
	return false
}

// MeasurementCode is a size-table column key.
type MeasurementCode string

const (
	CodeAnkle      MeasurementCode = "cB"
	CodeCalf       MeasurementCode = "cC"
	CodeBelowKnee  MeasurementCode = "cD"
	CodeThigh      MeasurementCode = "cG"
	CodeMidThigh   MeasurementCode = "cF"
	CodeAboveKnee  MeasurementCode = "cE"
	CodeAboveAnkle MeasurementCode = "cB1"
	CodeInstep     MeasurementCode = "cY"
	CodeFoot       MeasurementCode = "cA"

	CodeThighNormalBand MeasurementCode = "cG_AG_normal"
	CodeThighWideBand   MeasurementCode = "cG_AG_ancha"
	CodeThighPantyhose  MeasurementCode = "cG_AT"
)

// KnownCodes lists every column key a size table may carry.
var KnownCodes = []MeasurementCode{
	CodeAnkle, CodeCalf, CodeBelowKnee,
	CodeThigh, CodeThighNormalBand, CodeThighWideBand, CodeThighPantyhose,
	CodeMidThigh, CodeAboveKnee, CodeAboveAnkle, CodeInstep, CodeFoot,
}

// Known reports whether c is a recognised column key.
func (c MeasurementCode) Known() bool {
	for _, k := range KnownCodes {
		if k == c {
			return true
		}
	}
	return false
}

// Range is a closed interval [Min, Max]. It is encoded as [min, max] in JSON.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the closed interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{r.Min, r.Max})
}

func (r *Range) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("range must be [min, max]: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("range must have exactly 2 values, got %d", len(pair))
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

// SizeEntry is one named size and its measurement constraints.
// A code absent from Ranges is unconstrained for this size.
type SizeEntry struct {
	Name   string                    `json:"name"`
	Ranges map[MeasurementCode]Range `json:"ranges"`
}

// rangeFor returns the range for code, or nil when the size does not define it.
func (e SizeEntry) rangeFor(code MeasurementCode) *Range {
	r, ok := e.Ranges[code]
	if !ok {
		return nil
	}
	return &r
}

// SizeTable is ordered by display order.
type SizeTable []SizeEntry

// Names returns the size names in table order.
func (t SizeTable) Names() []string {
	names := make([]string, 0, len(t))
	for _, e := range t {
		names = append(names, e.Name)
	}
	return names
}

// LengthBand is a named leg-length band.
type LengthBand struct {
	Name  string `json:"name"`
	Range Range  `json:"range"`
}

// LengthTable holds the bands per media type, each ordered shortest first.
type LengthTable map[MediaType][]LengthBand

// MeasurementInput holds the user's measurements in centimetres.
// A nil field was not supplied.
type MeasurementInput struct {
	CB     *float64 `json:"cB,omitempty"`
	CC     *float64 `json:"cC,omitempty"`
	CD     *float64 `json:"cD,omitempty"`
	CG     *float64 `json:"cG,omitempty"`
	CF     *float64 `json:"cF,omitempty"`
	CE     *float64 `json:"cE,omitempty"`
	CB1    *float64 `json:"cB1,omitempty"`
	CY     *float64 `json:"cY,omitempty"`
	CA     *float64 `json:"cA,omitempty"`
	Length *float64 `json:"length,omitempty"`
}

// Value returns the input for a logical measurement code. Qualified thigh
// codes all read the single thigh measurement.
func (m MeasurementInput) Value(code MeasurementCode) *float64 {
	switch code {
	case CodeAnkle:
		return m.CB
	case CodeCalf:
		return m.CC
	case CodeBelowKnee:
		return m.CD
	case CodeThigh, CodeThighNormalBand, CodeThighWideBand, CodeThighPantyhose:
		return m.CG
	case CodeMidThigh:
		return m.CF
	case CodeAboveKnee:
		return m.CE
	case CodeAboveAnkle:
		return m.CB1
	case CodeInstep:
		return m.CY
	case CodeFoot:
		return m.CA
	}
	return nil
}

// ProductContext carries the product-side inputs of a calculation.
type ProductContext struct {
	Family        string    `json:"family"`
	MediaType     MediaType `json:"mediaType"`
	BandType      BandType  `json:"bandType,omitempty"`
	BandSensitive bool      `json:"bandSensitive"`
}

// Result is the recommendation derived from one snapshot of inputs.
// An empty RecommendedLength means no recommendation.
type Result struct {
	MatchingSizes     []string `json:"matchingSizes"`
	RecommendedLength string   `json:"recommendedLength,omitempty"`
	LengthOutOfRange  bool     `json:"lengthOutOfRange"`
	NeedsCustomFit    bool     `json:"needsCustomFit"`
}

// HasMultipleSizes reports whether more than one size qualified.
func (r Result) HasMultipleSizes() bool {
	return len(r.MatchingSizes) > 1
}

// NoSizeFound reports whether no size qualified.
func (r Result) NoSizeFound() bool {
	return len(r.MatchingSizes) == 0
}

// Float returns a pointer to v, for building inputs.
func Float(v float64) *float64 {
	return &v
}
