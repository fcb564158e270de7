package constants

// ComplexityTier classifies an artifact's repair difficulty and fixes the
// iteration budget for a run. The tier is chosen once at run start and is
// immutable for the duration of the run.
type ComplexityTier string

// Complexity tier constants. Values use lowercase for flag and JSON
// serialization compatibility.
const (
	// TierSimple is for single-stage artifacts with a well-known toolchain.
	TierSimple ComplexityTier = "simple"

	// TierMedium is for multi-stage artifacts or artifacts with sidecar files.
	TierMedium ComplexityTier = "medium"

	// TierComplex is for artifacts with multiple services or unusual toolchains.
	TierComplex ComplexityTier = "complex"
)

// tierBudgets maps each tier to its maximum iteration count.
var tierBudgets = map[ComplexityTier]int{ //nolint:gochecknoglobals // Read-only lookup table
	TierSimple:  1,
	TierMedium:  3,
	TierComplex: 5,
}

// String returns the string representation of the tier.
func (t ComplexityTier) String() string {
	return string(t)
}

// MaxIterations returns the iteration budget for the tier.
// Unknown tiers fall back to the medium budget.
func (t ComplexityTier) MaxIterations() int {
	if budget, ok := tierBudgets[t]; ok {
		return budget
	}
	return tierBudgets[TierMedium]
}

// Budgets holds per-tier iteration budget overrides from configuration.
// A missing or zero entry keeps the built-in budget for that tier, so a nil
// Budgets is valid and means "all defaults".
type Budgets map[ComplexityTier]int

// For returns the iteration budget for tier, preferring a configured
// override over the built-in budget.
func (b Budgets) For(t ComplexityTier) int {
	if budget, ok := b[t]; ok && budget > 0 {
		return budget
	}
	return t.MaxIterations()
}

// ParseTier converts a string into a ComplexityTier.
// The second return value reports whether the input named a known tier.
func ParseTier(s string) (ComplexityTier, bool) {
	tier := ComplexityTier(s)
	_, ok := tierBudgets[tier]
	return tier, ok
}

// Tiers returns all known tiers in ascending budget order.
func Tiers() []ComplexityTier {
	return []ComplexityTier{TierSimple, TierMedium, TierComplex}
}
