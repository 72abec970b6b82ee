package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brewdeps/pkg/cache"
	"github.com/matzehuels/brewdeps/pkg/config"
	brewerrors "github.com/matzehuels/brewdeps/pkg/errors"
	"github.com/matzehuels/brewdeps/pkg/inventory"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cached Homebrew inventory",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove cached inventory snapshots",
		Long: `Remove cached inventory snapshots so the next run queries brew again.

With the file backend every entry in the cache directory is removed. With the
redis backend the snapshot of the configured brew executable is deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.Config.Cache.Backend {
			case config.BackendNone:
				printInfo("Caching is disabled")
				return nil
			case config.BackendRedis:
				store := c.newCache(cmd.Context(), false)
				defer store.Close()
				if _, ok := store.(*cache.RedisCache); !ok {
					return brewerrors.New(brewerrors.ErrCodeCache, "redis at %s is unavailable", c.Config.Cache.RedisAddr)
				}
				loader := inventory.NewLoader(inventory.NewBrewSource(c.Config.Brew.Path, c.Logger), store, c.Logger)
				if err := loader.Invalidate(cmd.Context()); err != nil {
					return brewerrors.Wrap(brewerrors.ErrCodeCache, err, "clear redis cache")
				}
				printSuccess("Cleared cached inventory")
				printDetail("Redis: %s (db %d)", c.Config.Cache.RedisAddr, c.Config.Cache.RedisDB)
				return nil
			}

			dir, err := c.Config.CacheDir()
			if err != nil {
				return brewerrors.Wrap(brewerrors.ErrCodeCache, err, "get cache dir")
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return brewerrors.Wrap(brewerrors.ErrCodeCache, err, "open cache dir")
			}
			count, err := fc.Clear()
			if err != nil {
				return brewerrors.Wrap(brewerrors.ErrCodeCache, err, "clear cache")
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the inventory is cached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.Config.Cache.Backend {
			case config.BackendNone:
				printInfo("Caching is disabled")
				return nil
			case config.BackendRedis:
				fmt.Fprintf(stdout, "redis://%s/%d\n", c.Config.Cache.RedisAddr, c.Config.Cache.RedisDB)
				return nil
			}
			dir, err := c.Config.CacheDir()
			if err != nil {
				return brewerrors.Wrap(brewerrors.ErrCodeCache, err, "get cache dir")
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}
