package executemany

import (
	"execmany/internal/mediapackage"
)

// Predicate decides whether an element is a candidate for execution.
// A zero Flavor disables the flavor filter; nil track requirements are not
// checked. Track requirements never disqualify non-track elements.
type Predicate struct {
	Flavor   mediapackage.Flavor
	Audio    *bool
	Video    *bool
	Subtitle *bool
}

// Match reports whether element satisfies p.
func (p Predicate) Match(element *mediapackage.Element) bool {
	if element == nil {
		return false
	}
	if !p.Flavor.IsZero() && !element.Flavor.Matches(p.Flavor) {
		return false
	}
	if !element.IsTrack() {
		return true
	}
	var info mediapackage.TrackInfo
	if element.Track != nil {
		info = *element.Track
	}
	return agrees(p.Audio, info.HasAudio) &&
		agrees(p.Video, info.HasVideo) &&
		agrees(p.Subtitle, info.HasSubtitle)
}

func agrees(required *bool, actual bool) bool {
	return required == nil || *required == actual
}
