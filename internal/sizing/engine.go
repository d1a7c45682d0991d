// internal/sizing/engine.go
package sizing

// refinementCodes are checked for every media type, in this order.
var refinementCodes = []MeasurementCode{
	CodeMidThigh, CodeAboveKnee, CodeAboveAnkle, CodeInstep, CodeFoot,
}

// Check reports whether value lies within r. A missing value or a missing
// range never disqualifies. A zero reading counts as not taken.
func Check(value *float64, r *Range) bool {
	if value == nil || *value == 0 || r == nil {
		return true
	}
	return r.Contains(*value)
}

// MatchSizes returns, in table order, every size whose applicable ranges all
// contain the supplied measurements.
func MatchSizes(table SizeTable, in MeasurementInput, pc ProductContext) []string {
	matches := make([]string, 0, len(table))
	for _, entry := range table {
		if sizeMatches(entry, in, pc) {
			matches = append(matches, entry.Name)
		}
	}
	return matches
}

func sizeMatches(entry SizeEntry, in MeasurementInput, pc ProductContext) bool {
	ok := Check(in.CB, entry.rangeFor(CodeAnkle))

	if pc.MediaType == MediaTypeAD {
		ok = Check(in.CC, entry.rangeFor(CodeCalf)) && ok
		ok = Check(in.CD, entry.rangeFor(CodeBelowKnee)) && ok
	} else {
		thigh := ResolveCode(CodeThigh, pc)
		ok = Check(in.CG, entry.rangeFor(thigh)) && ok
	}
	if !ok {
		return false
	}

	for _, code := range refinementCodes {
		if !Check(in.Value(code), entry.rangeFor(code)) {
			return false
		}
	}
	return true
}

// RecommendLength picks the length band for the measured leg length. When
// no band contains it, the nearest extreme band is proposed and outOfRange
// is set. Bands are assumed ascending.
func RecommendLength(table LengthTable, media MediaType, length *float64) (name string, outOfRange bool) {
	bands := table[media]
	if length == nil || len(bands) == 0 {
		return "", false
	}

	for _, b := range bands {
		if b.Range.Contains(*length) {
			return b.Name, false
		}
	}

	if *length < bands[0].Range.Min {
		return bands[0].Name, true
	}
	return bands[len(bands)-1].Name, true
}

// Calculate composes the size match and length recommendation for one
// snapshot of inputs.
func Calculate(sizes SizeTable, lengths LengthTable, in MeasurementInput, pc ProductContext) Result {
	matching := MatchSizes(sizes, in, pc)
	length, outOfRange := RecommendLength(lengths, pc.MediaType, in.Length)

	return Result{
		MatchingSizes:     matching,
		RecommendedLength: length,
		LengthOutOfRange:  outOfRange,
		NeedsCustomFit:    len(matching) == 0,
	}
}
