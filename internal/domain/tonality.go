package domain

// Tonality is the selectable coaching style for an analysis. The free tier
// is restricted to TonalityNeutral.
type Tonality string

const (
	TonalityNeutral   Tonality = "neutral"
	TonalityAssertive Tonality = "assertive"
	TonalityComposed  Tonality = "composed"
)

// Tonalities lists every supported tonality, in presentation order.
var Tonalities = []Tonality{TonalityNeutral, TonalityAssertive, TonalityComposed}

// Valid reports whether t is a known tonality.
func (t Tonality) Valid() bool {
	switch t {
	case TonalityNeutral, TonalityAssertive, TonalityComposed:
		return true
	default:
		return false
	}
}

// ParseTonality validates a client-supplied tonality string.
func ParseTonality(s string) (Tonality, bool) {
	t := Tonality(s)
	return t, t.Valid()
}
