package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var pruneOlderThan time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the search and page caches",
	Long: `Search responses and fetched pages are cached under the cache directory so
repeated checks do not hit the network again. Entries never expire on their
own; use these commands to inspect and evict them.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache usage",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached query and page",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove cache entries older than a given age",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

func init() {
	cachePruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 30*24*time.Hour, "remove entries older than this age")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

// withCache opens an offline runtime with the persistent caches and runs fn.
func withCache(cmd *cobra.Command, fn func(rt *Runtime) error) (err error) {
	rt, err := openRuntime(cmd, RunOptions{Offline: true})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close runtime: %w", cerr)
		}
	}()
	if rt.Cache == nil {
		return fmt.Errorf("cache: %w", errRuntimeNotConfigured)
	}
	return fn(rt)
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	return withCache(cmd, func(rt *Runtime) error {
		stats, err := rt.Cache.Stats(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("cache stats: %w", err)
		}

		cmd.Println(titleStyle.Render("Cache"))
		cmd.Printf("  Queries:  %s\n", humanize.Comma(int64(stats.Queries)))
		cmd.Printf("  Pages:    %s (%s embedded)\n", humanize.Comma(int64(stats.Pages)), humanize.Comma(int64(stats.Embedded)))
		//nolint:gosec // G115: byte counts are never negative.
		cmd.Printf("  Content:  %s\n", humanize.Bytes(uint64(stats.ContentBytes)))
		return nil
	})
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	return withCache(cmd, func(rt *Runtime) error {
		if err := rt.Cache.Clear(commandContext(cmd)); err != nil {
			return fmt.Errorf("cache clear: %w", err)
		}
		cmd.Println(successStyle.Render("Cache cleared."))
		return nil
	})
}

func runCachePrune(cmd *cobra.Command, _ []string) error {
	return withCache(cmd, func(rt *Runtime) error {
		queries, pages, err := rt.Cache.Prune(commandContext(cmd), pruneOlderThan)
		if err != nil {
			return fmt.Errorf("cache prune: %w", err)
		}
		cutoff := humanize.Time(time.Now().Add(-pruneOlderThan))
		cmd.Printf("Removed %s queries and %s pages cached before %s.\n",
			humanize.Comma(int64(queries)), humanize.Comma(int64(pages)), cutoff)
		return nil
	})
}
