// internal/sizing/validate.go
package sizing

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

// ValidateSizeTable checks size names are unique and non-empty, every code is
// known and every range has Min <= Max.
func ValidateSizeTable(t SizeTable) error {
	var err error
	seen := make(map[string]bool, len(t))
	for i, e := range t {
		if e.Name == "" {
			err = multierr.Append(err, fmt.Errorf("size #%d has no name", i))
		} else if seen[e.Name] {
			err = multierr.Append(err, fmt.Errorf("size %q is defined more than once", e.Name))
		}
		seen[e.Name] = true

		for _, code := range sortedCodes(e.Ranges) {
			r := e.Ranges[code]
			if !code.Known() {
				err = multierr.Append(err, fmt.Errorf("size %q: unknown measurement code %q", e.Name, code))
			}
			if r.Min > r.Max {
				err = multierr.Append(err, fmt.Errorf("size %q: %s range [%g, %g] is inverted", e.Name, code, r.Min, r.Max))
			}
		}
	}
	return err
}

// ValidateLengthTable checks that each media type's bands are named, well
// formed, ascending and non-overlapping. The out-of-range fallback relies on
// this ordering.
func ValidateLengthTable(t LengthTable) error {
	var err error
	for _, media := range sortedMedia(t) {
		bands := t[media]
		if !media.Valid() {
			err = multierr.Append(err, fmt.Errorf("unknown media type %q", media))
		}
		for i, b := range bands {
			if b.Name == "" {
				err = multierr.Append(err, fmt.Errorf("%s: band #%d has no name", media, i))
			}
			if b.Range.Min > b.Range.Max {
				err = multierr.Append(err, fmt.Errorf("%s: band %q range [%g, %g] is inverted", media, b.Name, b.Range.Min, b.Range.Max))
			}
			if i == 0 {
				continue
			}
			prev := bands[i-1]
			if b.Range.Min < prev.Range.Max {
				err = multierr.Append(err, fmt.Errorf("%s: band %q starts at %g, before %q ends at %g", media, b.Name, b.Range.Min, prev.Name, prev.Range.Max))
			}
		}
	}
	return err
}

func sortedCodes(m map[MeasurementCode]Range) []MeasurementCode {
	codes := make([]MeasurementCode, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

func sortedMedia(t LengthTable) []MediaType {
	media := make([]MediaType, 0, len(t))
	for m := range t {
		media = append(media, m)
	}
	sort.Slice(media, func(i, j int) bool { return media[i] < media[j] })
	return media
}
