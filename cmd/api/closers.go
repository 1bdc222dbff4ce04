package main

import (
	"context"

	"github.com/rs/zerolog"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

// closers releases dependencies in the reverse order they were opened.
type closers []closer

func (c *closers) add(name string, fn func(context.Context) error) {
	*c = append(*c, closer{name: name, fn: fn})
}

// close runs every entry, newest first. A failing entry is logged and the
// rest still run.
func (c closers) close(ctx context.Context, log zerolog.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i].fn(ctx); err != nil {
			log.Error().Err(err).Str("dependency", c[i].name).Msg("close failed")
			continue
		}
		log.Debug().Str("dependency", c[i].name).Msg("closed")
	}
}
