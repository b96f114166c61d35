package enums

import "fmt"

// ShareUnit represents the unit of measure a buy's shares are sized in.
type ShareUnit string

const (
	ShareUnitMilligram  ShareUnit = "mg"
	ShareUnitMilliliter ShareUnit = "ml"
	ShareUnitGram       ShareUnit = "g"
	ShareUnitPiece      ShareUnit = "unit"
)

var validShareUnits = []ShareUnit{
	ShareUnitMilligram,
	ShareUnitMilliliter,
	ShareUnitGram,
	ShareUnitPiece,
}

// String implements fmt.Stringer.
func (u ShareUnit) String() string {
	return string(u)
}

// IsValid reports whether the unit is recognized.
func (u ShareUnit) IsValid() bool {
	for _, candidate := range validShareUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseShareUnit converts a raw string into a ShareUnit.
func ParseShareUnit(value string) (ShareUnit, error) {
	for _, candidate := range validShareUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid share unit %q", value)
}

// ShareUnits returns every recognized unit in display order.
func ShareUnits() []ShareUnit {
	out := make([]ShareUnit, len(validShareUnits))
	copy(out, validShareUnits)
	return out
}
