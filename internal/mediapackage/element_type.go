package mediapackage

import (
	"fmt"
	"strings"
)

// ElementType enumerates the element kinds a package may hold.
type ElementType string

const (
	TypeAttachment  ElementType = "Attachment"
	TypeCatalog     ElementType = "Catalog"
	TypeManifest    ElementType = "Manifest"
	TypePublication ElementType = "Publication"
	TypeTimeline    ElementType = "Timeline"
	TypeTrack       ElementType = "Track"
	TypeOther       ElementType = "Other"
)

var elementTypes = []ElementType{
	TypeAttachment,
	TypeCatalog,
	TypeManifest,
	TypePublication,
	TypeTimeline,
	TypeTrack,
	TypeOther,
}

// ElementTypes returns the closed set of element kinds.
func ElementTypes() []ElementType {
	return append([]ElementType(nil), elementTypes...)
}

// ParseElementType matches value case-insensitively against the known kinds.
func ParseElementType(value string) (ElementType, error) {
	trimmed := strings.TrimSpace(value)
	for _, t := range elementTypes {
		if strings.EqualFold(trimmed, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown element type %q", value)
}

func (t ElementType) String() string { return string(t) }
