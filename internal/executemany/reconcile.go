package executemany

import (
	"context"
	"fmt"
	"strings"

	"execmany/internal/logging"
	"execmany/internal/mediapackage"
	"execmany/internal/services"
)

// reconcile folds every result into the package or the property set and
// applies the target tags.
func (r *run) reconcile(ctx context.Context) error {
	for i, it := range r.items {
		if !it.passthrough() {
			var err error
			if r.opts.setProperties {
				err = r.mergeProperties(ctx, it)
			} else {
				err = r.attachDerived(ctx, it)
			}
			if err != nil {
				return err
			}
		}
		RewriteTags(it.result, r.opts.targetTags)
		r.logger.Debug("result reconciled",
			logging.Int("index", i),
			logging.String(logging.FieldElementID, it.result.ID),
			logging.Bool("passthrough", it.passthrough()),
		)
	}
	return nil
}

func (r *run) mergeProperties(ctx context.Context, it *item) error {
	count, err := r.properties.Merge(ctx, it.result.URI)
	if err != nil {
		return err
	}
	r.logger.Debug("workflow properties loaded",
		logging.Int("count", count),
		logging.String("uri", it.result.URI),
	)
	return nil
}

func (r *run) attachDerived(ctx context.Context, it *item) error {
	result := it.result
	if err := r.pkg.AddDerived(result, it.input); err != nil {
		return services.Wrap(services.ErrValidation, "execute-many", "reconcile",
			fmt.Sprintf("add derived element for %s", it.input.ID), err)
	}
	uri, err := r.deps.Storage.MoveTo(ctx, result.URI, r.pkg.ID, result.ID, r.opts.outputFilename)
	if err != nil {
		return err
	}
	result.URI = uri

	if r.opts.targetFlavor.IsZero() {
		return nil
	}
	flavor, err := r.opts.targetFlavor.Resolve(it.input.Flavor)
	if err != nil {
		return services.Wrap(services.ErrValidation, "execute-many", "reconcile",
			fmt.Sprintf("target flavor for element %s", it.input.ID), err)
	}
	result.Flavor = flavor
	return nil
}

// RewriteTags applies target tags to element. Tags starting with one or more
// dashes remove the tag named by the rest; others are added.
func RewriteTags(element *mediapackage.Element, tags []string) {
	if element == nil {
		return
	}
	for _, tag := range tags {
		if strings.HasPrefix(tag, "-") {
			element.RemoveTag(strings.TrimLeft(tag, "-"))
			continue
		}
		element.AddTag(tag)
	}
}
