package workflow

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"execmany/internal/services"
)

// LoadOperation reads an operation definition from a TOML file:
//
//	id = "execute-many-1"
//	template = "execute-many"
//
//	[configuration]
//	exec = "ffmpeg"
//	params = "-i #{in} #{out}"
func LoadOperation(path string) (*Operation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "read operation",
			fmt.Sprintf("Unable to read operation file %s", path), err)
	}
	return ParseOperation(data)
}

// ParseOperation decodes an operation definition, rejecting unknown keys.
func ParseOperation(data []byte) (*Operation, error) {
	var op Operation
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&op); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "parse operation",
			"Operation definition is not valid TOML", err)
	}
	op.ID = strings.TrimSpace(op.ID)
	op.Template = strings.TrimSpace(op.Template)
	if op.Configuration == nil {
		op.Configuration = map[string]string{}
	}
	if op.Name() == "" {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "parse operation",
			"Operation definition needs an id or template", nil)
	}
	return &op, nil
}
