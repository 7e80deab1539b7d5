package executemany

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"execmany/internal/logging"
	"execmany/internal/mediapackage"
	"execmany/internal/services"
	"execmany/internal/workflow"
)

// Operation configuration keys.
const (
	KeyExec                  = "exec"
	KeyParams                = "params"
	KeyLoad                  = "load"
	KeySourceFlavor          = "source-flavor"
	KeySourceFlavors         = "source-flavors"
	KeySourceTags            = "source-tags"
	KeySourceAudio           = "source-audio"
	KeySourceVideo           = "source-video"
	KeySourceSubtitle        = "source-subtitle"
	KeyTargetFlavor          = "target-flavor"
	KeyTargetFlavors         = "target-flavors"
	KeyTargetTags            = "target-tags"
	KeyOutputFilename        = "output-filename"
	KeyExpectedType          = "expected-type"
	KeySetWorkflowProperties = "set-workflow-properties"
)

const defaultLoad = 1.0

type options struct {
	command        string
	params         string
	load           float64
	sourceTags     []string
	predicate      Predicate
	targetFlavor   mediapackage.Flavor
	targetTags     []string
	outputFilename string
	expectedType   mediapackage.ElementType
	setProperties  bool
}

func parseOptions(op *workflow.Operation, logger *slog.Logger) (options, error) {
	opts := options{
		command:        op.Config(KeyExec),
		params:         op.Config(KeyParams),
		load:           defaultLoad,
		sourceTags:     op.ConfigList(KeySourceTags),
		targetTags:     op.ConfigList(KeyTargetTags),
		outputFilename: op.Config(KeyOutputFilename),
		setProperties:  strings.EqualFold(op.Config(KeySetWorkflowProperties), "true"),
	}
	if opts.command == "" {
		return options{}, configError(KeyExec + " is required")
	}

	if raw := op.Config(KeyLoad); raw != "" {
		load, err := strconv.ParseFloat(raw, 64)
		if err != nil || load < 0 || math.IsNaN(load) || math.IsInf(load, 0) {
			logging.WarnWithContext(logger, "ignoring invalid load value", "invalid_load",
				logging.String("load", raw),
				logging.String("description", strings.TrimSpace(op.Description)),
				logging.String(logging.FieldImpact, "job load defaults to 1.0"),
			)
		} else {
			opts.load = load
		}
	}

	sourceFlavor, err := firstFlavor(op, KeySourceFlavor, KeySourceFlavors)
	if err != nil {
		return options{}, err
	}
	opts.targetFlavor, err = firstFlavor(op, KeyTargetFlavor, KeyTargetFlavors)
	if err != nil {
		return options{}, err
	}
	opts.predicate = Predicate{
		Flavor:   sourceFlavor,
		Audio:    triState(op.Config(KeySourceAudio)),
		Video:    triState(op.Config(KeySourceVideo)),
		Subtitle: triState(op.Config(KeySourceSubtitle)),
	}

	if raw := op.Config(KeyExpectedType); raw != "" {
		typ, err := mediapackage.ParseElementType(raw)
		if err != nil {
			return options{}, configError(fmt.Sprintf("'%s' is not a valid element type", raw))
		}
		opts.expectedType = typ
	}
	return opts, nil
}

// firstFlavor returns the first flavor configured under any of keys, in key
// order. Later entries are ignored.
func firstFlavor(op *workflow.Operation, keys ...string) (mediapackage.Flavor, error) {
	for _, key := range keys {
		raw := op.Config(key)
		if raw == "" {
			continue
		}
		flavors, err := mediapackage.ParseFlavors(raw)
		if err != nil {
			return mediapackage.Flavor{}, services.Wrap(services.ErrConfiguration, "execute-many", "options", key, err)
		}
		if len(flavors) > 0 {
			return flavors[0], nil
		}
	}
	return mediapackage.Flavor{}, nil
}

// triState maps a blank value to nil and anything else to whether it reads
// "true", ignoring case.
func triState(raw string) *bool {
	if raw == "" {
		return nil
	}
	v := strings.EqualFold(raw, "true")
	return &v
}

func configError(message string) error {
	return services.Wrap(services.ErrConfiguration, "execute-many", "options", message, nil)
}
