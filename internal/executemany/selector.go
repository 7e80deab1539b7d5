package executemany

import (
	"execmany/internal/mediapackage"
)

// Select returns the elements of mp that carry at least one of tags (all
// elements when tags is empty) and match p. The result holds each element
// once, in package order.
func Select(mp *mediapackage.MediaPackage, tags []string, p Predicate) []*mediapackage.Element {
	if mp == nil {
		return nil
	}
	seen := make(map[*mediapackage.Element]struct{})
	var selected []*mediapackage.Element
	for _, element := range mp.ElementsByTags(tags) {
		if !p.Match(element) {
			continue
		}
		if _, dup := seen[element]; dup {
			continue
		}
		seen[element] = struct{}{}
		selected = append(selected, element)
	}
	return selected
}
