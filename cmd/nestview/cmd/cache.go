package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestingglobal/nestview/internal/cache"
)

func newCacheCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local catalog cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Describe the cached catalog record",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return g.withCache(func(c *cache.Cache) error {
					info, err := c.Inspect()
					if err != nil {
						return fmt.Errorf("inspect cache: %w", err)
					}
					out := cmd.OutOrStdout()
					fmt.Fprintf(out, "Backend:  %s (%s)\n", g.cfg.CacheBackend, g.cfg.CacheDir)
					if !info.Present {
						fmt.Fprintln(out, "Record:   none")
						return nil
					}
					status := "current"
					if info.Version != cache.RecordVersion {
						status = "stale, discarded on load"
					}
					fmt.Fprintf(out, "Record:   v%d (%s)\n", info.Version, status)
					fmt.Fprintf(out, "Saved:    %s\n", info.SavedAt.Local().Format("2006-01-02 15:04:05"))
					fmt.Fprintf(out, "Listings: %d\n", info.Count)
					fmt.Fprintf(out, "Size:     %d bytes\n", info.Bytes)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the cached catalog record",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return g.withCache(func(c *cache.Cache) error {
					if err := c.Clear(); err != nil {
						return fmt.Errorf("clear cache: %w", err)
					}
					g.logger.Info("cache cleared", "backend", g.cfg.CacheBackend)
					fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
					return nil
				})
			},
		},
	)
	return cmd
}

func (g *globals) withCache(fn func(*cache.Cache) error) (err error) {
	backend, err := cache.OpenBackend(g.cfg.CacheBackend, g.cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer func() {
		if cerr := backend.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close cache: %w", cerr)
		}
	}()
	return fn(cache.New(backend, cache.Options{Compress: g.cfg.CacheCompress, Logger: g.logger}))
}
