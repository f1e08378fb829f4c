package opt

// Tier represents a compiler optimization level.
type Tier string

const (
	// TierO0 is the unoptimized baseline. It is always measured but is
	// never a prediction label.
	TierO0 Tier = "O0"

	TierO1 Tier = "O1"
	TierO2 Tier = "O2"
	TierO3 Tier = "O3"
	TierOs Tier = "Os"
	TierOz Tier = "Oz"
)

// Candidates returns the candidate tiers in their fixed benchmark order.
// The order matters: best-tier ties resolve to the tier tested first.
func Candidates() []Tier {
	return []Tier{TierO1, TierO2, TierO3, TierOs, TierOz}
}

// Labels returns the set of valid prediction labels, in fixed order.
// Identical to Candidates; kept separate because prediction and
// benchmarking are distinct concerns that happen to share the set.
func Labels() []Tier {
	return []Tier{TierO1, TierO2, TierO3, TierOs, TierOz}
}

// IsLabel checks whether t is a valid prediction label.
func (t Tier) IsLabel() bool {
	switch t {
	case TierO1, TierO2, TierO3, TierOs, TierOz:
		return true
	}
	return false
}

// Flag returns the compiler command-line flag for the tier, e.g. "-O2".
func (t Tier) Flag() string {
	return "-" + string(t)
}

// String returns string representation.
func (t Tier) String() string {
	return string(t)
}
