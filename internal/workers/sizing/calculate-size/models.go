// internal/workers/sizing/calculate-size/models.go
package calculatesize

import "sizing-workers/internal/sizing"

type Input struct {
	ProductSlug  string                  `json:"productSlug"`
	MediaType    sizing.MediaType        `json:"mediaType"`
	BandType     sizing.BandType         `json:"bandType,omitempty"`
	Measurements sizing.MeasurementInput `json:"measurements"`
}

// Output is written back as process variables. Empty strings mean no
// recommendation so that stale values from an earlier run are overwritten.
type Output struct {
	MatchingSizes     []string `json:"matchingSizes"`
	RecommendedSize   string   `json:"recommendedSize"`
	RecommendedLength string   `json:"recommendedLength"`
	LengthOutOfRange  bool     `json:"lengthOutOfRange"`
	NeedsCustomFit    bool     `json:"needsCustomFit"`
	HasMultipleSizes  bool     `json:"hasMultipleSizes"`
}

func newOutput(r sizing.Result) *Output {
	out := &Output{
		MatchingSizes:     r.MatchingSizes,
		RecommendedLength: r.RecommendedLength,
		LengthOutOfRange:  r.LengthOutOfRange,
		NeedsCustomFit:    r.NeedsCustomFit,
		HasMultipleSizes:  r.HasMultipleSizes(),
	}
	if len(r.MatchingSizes) > 0 {
		out.RecommendedSize = r.MatchingSizes[0]
	}
	return out
}
