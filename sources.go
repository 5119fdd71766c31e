package tally

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tally/pkg/ports"
	"golang.org/x/sync/errgroup"
)

func runSources(ctx context.Context, pub ports.Publisher, logger *slog.Logger, sources []ports.TriggerSource) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		g.Go(func() error {
			if err := src.Run(ctx, pub); err != nil {
				logger.Error("trigger source stopped", "source", fmt.Sprintf("%T", src), "err", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
