package types

// Variant identifies which of the two dataset schemas is in use.
type Variant int

const (
	VariantLarge Variant = iota + 1
	VariantReduced
)

func (v Variant) String() string {
	switch v {
	case VariantLarge:
		return "large"
	case VariantReduced:
		return "reduced"
	}
	return "unknown"
}

// Valid reports whether v is one of the known variants.
func (v Variant) Valid() bool {
	return v == VariantLarge || v == VariantReduced
}
