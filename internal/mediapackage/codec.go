package mediapackage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyPayload marks the blank serialized form, meaning "no element".
var ErrEmptyPayload = errors.New("empty element payload")

// MarshalElement serializes element to its text form.
func MarshalElement(element *Element) (string, error) {
	if element == nil {
		return "", nil
	}
	data, err := json.Marshal(element)
	if err != nil {
		return "", fmt.Errorf("marshal element: %w", err)
	}
	return string(data), nil
}

// ParseElement deserializes the text form produced by MarshalElement.
func ParseElement(payload string) (*Element, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, ErrEmptyPayload
	}
	var element Element
	if err := json.Unmarshal([]byte(payload), &element); err != nil {
		return nil, fmt.Errorf("parse element: %w", err)
	}
	if element.Type == "" {
		return nil, errors.New("parse element: missing type")
	}
	kind, err := ParseElementType(string(element.Type))
	if err != nil {
		return nil, fmt.Errorf("parse element: %w", err)
	}
	element.Type = kind
	if kind != TypeTrack {
		element.Track = nil
	} else if element.Track == nil {
		element.Track = &TrackInfo{}
	}
	return &element, nil
}

// Load reads a package from a JSON file.
func Load(path string) (*MediaPackage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mediapackage: %w", err)
	}
	var mp MediaPackage
	if err := json.Unmarshal(data, &mp); err != nil {
		return nil, fmt.Errorf("decode mediapackage %s: %w", path, err)
	}
	if strings.TrimSpace(mp.ID) == "" {
		return nil, fmt.Errorf("decode mediapackage %s: missing id", path)
	}
	for _, element := range mp.Elements {
		if element == nil {
			return nil, fmt.Errorf("decode mediapackage %s: null element", path)
		}
		kind, err := ParseElementType(string(element.Type))
		if err != nil {
			return nil, fmt.Errorf("decode mediapackage %s: element %s: %w", path, element.ID, err)
		}
		element.Type = kind
		if kind != TypeTrack {
			element.Track = nil
		}
	}
	return &mp, nil
}

// Save writes mp to path as indented JSON.
func Save(path string, mp *MediaPackage) error {
	data, err := json.MarshalIndent(mp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mediapackage: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create mediapackage directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write mediapackage: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write mediapackage: %w", err)
	}
	return nil
}
