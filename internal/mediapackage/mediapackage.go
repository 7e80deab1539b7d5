package mediapackage

import (
	"errors"

	"github.com/google/uuid"
)

// MediaPackage groups the elements describing one media item.
type MediaPackage struct {
	ID       string     `json:"id"`
	Title    string     `json:"title,omitempty"`
	Elements []*Element `json:"elements"`
}

// New returns an empty package with a generated identifier.
func New(title string) *MediaPackage {
	return &MediaPackage{ID: uuid.NewString(), Title: title}
}

// ElementsByTags returns the elements carrying at least one of tags, in
// package order. An empty tag list returns every element.
func (mp *MediaPackage) ElementsByTags(tags []string) []*Element {
	if len(tags) == 0 {
		return append([]*Element(nil), mp.Elements...)
	}
	matched := make([]*Element, 0, len(mp.Elements))
	for _, element := range mp.Elements {
		if element.ContainsAnyTag(tags) {
			matched = append(matched, element)
		}
	}
	return matched
}

// Element returns the element with id, or nil.
func (mp *MediaPackage) Element(id string) *Element {
	for _, element := range mp.Elements {
		if element.ID == id {
			return element
		}
	}
	return nil
}

// Add appends element, assigning an identifier when it has none.
func (mp *MediaPackage) Add(element *Element) error {
	if element == nil {
		return errors.New("element is nil")
	}
	if element.ID == "" {
		element.ID = uuid.NewString()
	}
	if mp.Element(element.ID) != nil {
		return errors.New("element " + element.ID + " already in package")
	}
	mp.Elements = append(mp.Elements, element)
	return nil
}

// AddDerived adds derived to the package and records source as its origin.
func (mp *MediaPackage) AddDerived(derived, source *Element) error {
	if source == nil {
		return errors.New("source element is nil")
	}
	if mp.Element(source.ID) == nil {
		return errors.New("source element " + source.ID + " not in package")
	}
	if derived != nil {
		derived.DerivedFrom = source.ID
	}
	return mp.Add(derived)
}

// Clone returns a deep copy of the package.
func (mp *MediaPackage) Clone() *MediaPackage {
	if mp == nil {
		return nil
	}
	clone := &MediaPackage{ID: mp.ID, Title: mp.Title}
	if mp.Elements != nil {
		clone.Elements = make([]*Element, len(mp.Elements))
		for i, element := range mp.Elements {
			clone.Elements[i] = element.Clone()
		}
	}
	return clone
}
