package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the RDF download cache",
		Long: `Manage the file cache of RDF documents fetched from URLs.

The directory is --dir, else cache.dir from the config file, else
~/.cache/mizgra. Conversions only use it when --cache-dir or cache.dir is set.`,
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "cache directory")

	cmd.AddCommand(c.cacheClearCommand(&dir))
	cmd.AddCommand(c.cachePathCommand(&dir))

	return cmd
}

// resolveCacheDir picks the cache directory from the flag, the config file
// or the XDG default, in that order.
func resolveCacheDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := loadConfig("")
	if err != nil {
		return "", err
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand(dirFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached RDF documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveCacheDir(*dirFlag)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo(c.Stderr, "Cache is empty")
				return nil
			}

			count := 0
			err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err != nil || path == dir {
					return nil
				}
				if !d.IsDir() && filepath.Ext(path) == ".json" {
					if err := os.Remove(path); err == nil {
						count++
					}
				}
				return nil
			})
			if err != nil {
				return err
			}

			printSuccess(c.Stderr, "Cleared %d cached entries", count)
			printDetail(c.Stderr, "Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand(dirFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveCacheDir(*dirFlag)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.Stdout, dir)
			return nil
		},
	}
}
