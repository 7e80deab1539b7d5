package executemany

import (
	"context"
	"os"

	"github.com/magiconair/properties"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"execmany/internal/services"
)

// PropertyMerger folds property files into one map. Later files win on
// key collisions.
type PropertyMerger struct {
	storage Storage
	values  map[string]string
}

// NewPropertyMerger returns an empty merger reading through storage.
func NewPropertyMerger(storage Storage) *PropertyMerger {
	return &PropertyMerger{storage: storage, values: make(map[string]string)}
}

// Merge loads the key=value file at uri into the merged set and deletes the
// staging file. It returns the number of properties read.
func (m *PropertyMerger) Merge(ctx context.Context, uri string) (int, error) {
	path, err := m.storage.Get(ctx, uri)
	if err != nil {
		return 0, err
	}
	props, err := readProperties(path)
	if err != nil {
		return 0, err
	}
	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		m.values[key] = value
	}
	if err := m.discard(ctx, uri); err != nil {
		return 0, err
	}
	return props.Len(), nil
}

// Values returns the merged properties.
func (m *PropertyMerger) Values() map[string]string {
	return m.values
}

func (m *PropertyMerger) discard(ctx context.Context, uri string) error {
	if err := m.storage.DeleteStaged(ctx, uri); err != nil {
		return services.Wrap(services.ErrStorage, "execute-many", "properties",
			"remove property file "+uri, err)
	}
	return nil
}

// readProperties parses a UTF-8 properties file, ignoring a leading byte
// order mark. Values are taken literally; ${key} references are not expanded.
func readProperties(path string) (*properties.Properties, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "execute-many", "properties", "read "+path, err)
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return nil, services.Wrap(services.ErrSerialization, "execute-many", "properties", "decode "+path, err)
	}
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	props, err := loader.LoadBytes(decoded)
	if err != nil {
		return nil, services.Wrap(services.ErrSerialization, "execute-many", "properties", "parse "+path, err)
	}
	return props, nil
}
