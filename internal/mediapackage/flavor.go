package mediapackage

import (
	"errors"
	"fmt"
	"strings"
)

// Wildcard matches any value on its side of a flavor.
const Wildcard = "*"

const flavorSeparator = "/"

// Flavor classifies an element as type/subtype, for example presenter/source.
type Flavor struct {
	Type    string
	Subtype string
}

// ParseFlavor parses the "<type>/<subtype>" text form.
func ParseFlavor(value string) (Flavor, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Flavor{}, errors.New("flavor is empty")
	}
	if strings.Count(trimmed, flavorSeparator) != 1 {
		return Flavor{}, fmt.Errorf("flavor %q must have the form type/subtype", value)
	}
	typ, sub, _ := strings.Cut(trimmed, flavorSeparator)
	typ = strings.TrimSpace(typ)
	sub = strings.TrimSpace(sub)
	if typ == "" || sub == "" {
		return Flavor{}, fmt.Errorf("flavor %q must have the form type/subtype", value)
	}
	return Flavor{Type: typ, Subtype: sub}, nil
}

// ParseFlavors parses a comma or whitespace separated list of flavors.
func ParseFlavors(value string) ([]Flavor, error) {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	flavors := make([]Flavor, 0, len(fields))
	for _, f := range fields {
		flavor, err := ParseFlavor(f)
		if err != nil {
			return nil, err
		}
		flavors = append(flavors, flavor)
	}
	return flavors, nil
}

// MustParseFlavor is ParseFlavor for literals known to be valid.
func MustParseFlavor(value string) Flavor {
	f, err := ParseFlavor(value)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Flavor) String() string {
	if f.IsZero() {
		return ""
	}
	return f.Type + flavorSeparator + f.Subtype
}

// IsZero reports whether the flavor is unset.
func (f Flavor) IsZero() bool {
	return f.Type == "" && f.Subtype == ""
}

// Matches compares two flavors side by side. A wildcard on either flavor
// matches any value on that side. Unset flavors never match.
func (f Flavor) Matches(other Flavor) bool {
	if f.IsZero() || other.IsZero() {
		return false
	}
	return matchPart(f.Type, other.Type) && matchPart(f.Subtype, other.Subtype)
}

func matchPart(a, b string) bool {
	return a == Wildcard || b == Wildcard || a == b
}

// HasWildcard reports whether either side is the wildcard marker.
func (f Flavor) HasWildcard() bool {
	return f.Type == Wildcard || f.Subtype == Wildcard
}

// Resolve replaces wildcard sides of f with the matching side of base.
func (f Flavor) Resolve(base Flavor) (Flavor, error) {
	if !f.HasWildcard() {
		return f, nil
	}
	if base.IsZero() {
		return Flavor{}, fmt.Errorf("cannot resolve flavor %s against an element without flavor", f)
	}
	resolved := f
	if resolved.Type == Wildcard {
		resolved.Type = base.Type
	}
	if resolved.Subtype == Wildcard {
		resolved.Subtype = base.Subtype
	}
	return resolved, nil
}

func (f Flavor) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Flavor) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*f = Flavor{}
		return nil
	}
	parsed, err := ParseFlavor(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
