package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sketchtower/pkg/cache"
	"github.com/matzehuels/sketchtower/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the conversion cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatsCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached tree and artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.newCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := cache.Clear(cmd.Context(), store)
			if err != nil {
				return err
			}
			p := printer{cmd.ErrOrStderr()}
			p.success("Cleared %d cached entries", n)
			p.detail("Backend: %s", describeBackend(cfg, c.noCache))
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			dir, err := cacheDir(cfg)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

func (c *CLI) cacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the number and size of cached entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.newCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			p := printer{cmd.OutOrStdout()}
			p.keyValue("Backend", describeBackend(cfg, c.noCache))
			st, ok := store.(cache.Statter)
			if !ok {
				p.keyValue("Entries", "0")
				return nil
			}
			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}
			p.keyValue("Entries", fmt.Sprint(stats.Entries))
			p.keyValue("Size", formatBytes(stats.Bytes))
			return nil
		},
	}
}

func describeBackend(cfg *config.Config, noCache bool) string {
	switch {
	case noCache || cfg.Cache.Backend == config.CacheNone:
		return "disabled"
	case cfg.Cache.Backend == config.CacheRedis:
		return "redis " + cfg.Cache.RedisAddr
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return "disabled"
	}
	return "file " + dir
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
