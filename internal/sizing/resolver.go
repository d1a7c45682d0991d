// internal/sizing/resolver.go
package sizing

// FamilySet is a set of product families. Membership is an exact match on
// the catalog slug.
type FamilySet map[string]struct{}

// DefaultBandSensitiveFamilies are the product lines whose size tables carry
// separate thigh columns per garment style and band width.
var DefaultBandSensitiveFamilies = NewFamilySet("elegance", "comfort", "cotton", "plus", "forte")

func NewFamilySet(families ...string) FamilySet {
	s := make(FamilySet, len(families))
	for _, f := range families {
		s[f] = struct{}{}
	}
	return s
}

func (s FamilySet) Contains(family string) bool {
	_, ok := s[family]
	return ok
}

// Context builds a ProductContext, flagging band sensitivity by membership.
func (s FamilySet) Context(family string, media MediaType, band BandType) ProductContext {
	return ProductContext{
		Family:        family,
		MediaType:     media,
		BandType:      band,
		BandSensitive: s.Contains(family),
	}
}

// ResolveCode maps a logical measurement to the size-table column that governs
// it for the given product context. Only thigh is ambiguous.
func ResolveCode(code MeasurementCode, pc ProductContext) MeasurementCode {
	if code != CodeThigh || !pc.BandSensitive {
		return code
	}
	switch pc.MediaType {
	case MediaTypeAT:
		return CodeThighPantyhose
	case MediaTypeAG:
		if pc.BandType == BandWide {
			return CodeThighWideBand
		}
		return CodeThighNormalBand
	}
	// AD never checks thigh.
	return CodeThigh
}
