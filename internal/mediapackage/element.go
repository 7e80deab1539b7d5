package mediapackage

import "slices"

// TrackInfo is the technical metadata carried by Track elements.
type TrackInfo struct {
	HasAudio        bool    `json:"audio"`
	HasVideo        bool    `json:"video"`
	HasSubtitle     bool    `json:"subtitle"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// Element is one item of a media package.
type Element struct {
	ID          string      `json:"id"`
	Type        ElementType `json:"type"`
	Flavor      Flavor      `json:"flavor,omitzero"`
	Tags        []string    `json:"tags,omitempty"`
	URI         string      `json:"uri,omitempty"`
	MimeType    string      `json:"mimetype,omitempty"`
	Size        int64       `json:"size,omitempty"`
	DerivedFrom string      `json:"derived_from,omitempty"`
	Track       *TrackInfo  `json:"track,omitempty"`
}

// IsTrack reports whether the element is of Track kind.
func (e *Element) IsTrack() bool {
	return e != nil && e.Type == TypeTrack
}

// HasTag reports whether the element carries tag.
func (e *Element) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// ContainsAnyTag reports whether the element carries at least one of tags.
func (e *Element) ContainsAnyTag(tags []string) bool {
	for _, tag := range tags {
		if e.HasTag(tag) {
			return true
		}
	}
	return false
}

// AddTag adds tag unless already present.
func (e *Element) AddTag(tag string) {
	if tag == "" || e.HasTag(tag) {
		return
	}
	e.Tags = append(e.Tags, tag)
}

// RemoveTag removes every occurrence of tag.
func (e *Element) RemoveTag(tag string) {
	e.Tags = slices.DeleteFunc(e.Tags, func(t string) bool { return t == tag })
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Tags = slices.Clone(e.Tags)
	if e.Track != nil {
		track := *e.Track
		clone.Track = &track
	}
	return &clone
}
