// Package mediapackage models the media package handled by workflow
// operations: its elements, their flavors and tags, and the JSON text form in
// which elements travel between the job services and the operation handlers.
//
// Elements form a closed set of kinds. Track elements additionally carry a
// TrackInfo describing which stream kinds they contain; every other kind
// leaves Track nil.
package mediapackage
