package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the GET response cache",
	}

	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCachePathCmd())
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached responses",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := responseCache(true)
			if err != nil {
				return err
			}
			defer closeStore()
			if store == nil {
				printIfNotQuiet(cmd, "Cache disabled (TL_NO_CACHE)\n")
				return nil
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			printIfNotQuiet(cmd, "Cache cleared: %s\n", cacheLocation())
			return nil
		}),
	}
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show where cached responses are stored",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cacheLocation())
			return nil
		}),
	}
}

func cacheLocation() string {
	if addr := settings.Cache.RedisAddr; addr != "" {
		return "redis://" + addr
	}
	dir, err := resolveCacheDir()
	if err != nil {
		return "(unknown)"
	}
	return dir
}
