package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZaguanLabs/gophrase/cache"
	"github.com/ZaguanLabs/gophrase/internal/config"
	"github.com/spf13/cobra"
)

func (c *cli) newTrimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trim",
		Short: "Remove expired entries from the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			removed, err := a.store.Trim(cmd.Context())
			if err != nil {
				return cacheExit(err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries (%d remaining)\n", removed, a.store.Size())
			return nil
		},
	}
}

type statsOutput struct {
	Backend    string `json:"backend"`
	Location   string `json:"location,omitempty"`
	Entries    int    `json:"entries"`
	Expiration string `json:"expiration"`
	Oldest     string `json:"oldest,omitempty"`
	Newest     string `json:"newest,omitempty"`
}

func (c *cli) newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			stats := statsOutput{
				Backend:    a.cfg.Cache.Backend,
				Location:   cacheLocation(a),
				Entries:    a.store.Size(),
				Expiration: a.store.Expiration().String(),
			}
			if entries := a.store.Entries(); len(entries) > 0 {
				oldest, newest := entries[0].CreatedAt(), entries[0].CreatedAt()
				for _, r := range entries[1:] {
					if created := r.CreatedAt(); created.Before(oldest) {
						oldest = created
					} else if created.After(newest) {
						newest = created
					}
				}
				stats.Oldest = oldest.UTC().Format(time.RFC3339)
				stats.Newest = newest.UTC().Format(time.RFC3339)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			_, _ = fmt.Fprintf(out, "Backend:    %s\n", stats.Backend)
			if stats.Location != "" {
				_, _ = fmt.Fprintf(out, "Location:   %s\n", stats.Location)
			}
			_, _ = fmt.Fprintf(out, "Entries:    %d\n", stats.Entries)
			_, _ = fmt.Fprintf(out, "Expiration: %s\n", stats.Expiration)
			if stats.Oldest != "" {
				_, _ = fmt.Fprintf(out, "Oldest:     %s\n", stats.Oldest)
				_, _ = fmt.Fprintf(out, "Newest:     %s\n", stats.Newest)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print statistics as JSON")
	return cmd
}

func (c *cli) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export cache entries as JSON (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			exporter := cache.NewExporter(a.store)
			meta := map[string]string{"backend": a.cfg.Cache.Backend}

			if len(args) == 0 {
				return exporter.Export(cmd.OutOrStdout(), meta)
			}
			if err := exporter.ExportToFile(args[0], meta); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d entries to %s\n", a.store.Size(), args[0])
			return nil
		},
	}
}

func (c *cli) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge cache entries from an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := cache.NewImporter(a.store).ImportFromFile(cmd.Context(), args[0])
			if err != nil {
				return cacheExit(err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (%d skipped)\n", result.Imported, result.Skipped)
			return nil
		},
	}
}

func cacheLocation(a *app) string {
	switch a.cfg.Cache.Backend {
	case config.BackendFile, config.BackendSQLite:
		return a.cfg.Cache.Path
	case config.BackendRedis:
		return a.cfg.Cache.RedisURL
	default:
		return ""
	}
}
