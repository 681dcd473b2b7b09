package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

// closers releases resources in reverse order of acquisition.
type closers []closer

func (c *closers) add(name string, fn func(context.Context) error) {
	*c = append(*c, closer{name: name, fn: fn})
}

func (c *closers) closeAll(ctx context.Context, logger *slog.Logger) error {
	var errs []error
	for i := len(*c) - 1; i >= 0; i-- {
		cl := (*c)[i]
		if err := cl.fn(ctx); err != nil {
			logger.Error("close failed", slog.String("component", cl.name), slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("close %s: %w", cl.name, err))
		}
	}
	*c = nil
	return errors.Join(errs...)
}
