package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ZaguanLabs/gophrase"
	"github.com/spf13/cobra"
)

// cli holds the flag values shared by every command.
type cli struct {
	newProvider ProviderFactory

	configPath   string
	envFile      string
	cacheBackend string
	cachePath    string
	expiration   time.Duration
	logLevel     string
	providerName string
	model        string

	direction  string
	jsonOutput bool
}

func newCLI(newProvider ProviderFactory) *cli {
	return &cli{newProvider: newProvider}
}

func (c *cli) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gophrase [flags] <phrase>",
		Short: "Rewrite phrases between NT and ND communication styles",
		Long: `gophrase rewrites a phrase for a neurodivergent reader (nt->nd) or a
neurotypical reader (nd->nt). Answers are cached and served in both
directions until they expire.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       gophrase.FullVersion(),
		RunE:          c.runTranslate,
	}
	rootCmd.SetVersionTemplate("{{.Name}} version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "YAML configuration file (default: $GOPHRASE_CONFIG)")
	pf.StringVar(&c.envFile, "env-file", ".env", "dotenv file to load")
	pf.StringVar(&c.cacheBackend, "cache-backend", "", "cache backend: file, sqlite, redis, memory")
	pf.StringVar(&c.cachePath, "cache-path", "", "cache file or database path")
	pf.DurationVar(&c.expiration, "expiration", 0, "cache expiration window; entries older than this are ignored and trimmed (default 168h)")
	pf.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&c.providerName, "provider", "", "AI provider: openai, anthropic, mock")
	pf.StringVar(&c.model, "model", "", "model name")

	f := rootCmd.Flags()
	f.StringVarP(&c.direction, "direction", "d", string(gophrase.DefaultDirection), `rewrite direction: "nt->nd" or "nd->nt"`)
	f.BoolVar(&c.jsonOutput, "json", false, "print the result as JSON")

	rootCmd.AddCommand(
		c.newBatchCmd(),
		c.newTrimCmd(),
		c.newStatsCmd(),
		c.newExportCmd(),
		c.newImportCmd(),
		c.newServeCmd(),
		c.newVersionCmd(),
	)

	return rootCmd
}

type translateOutput struct {
	Phrase      string `json:"phrase"`
	Translation string `json:"translation"`
	Direction   string `json:"direction"`
	Source      string `json:"source"`
}

func (c *cli) runTranslate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return withCode(exitUsage, fmt.Errorf("a phrase is required (see --help)"))
	}
	phrase := strings.Join(args, " ")

	direction, err := gophrase.ParseDirection(c.direction)
	if err != nil {
		return withCode(exitUsage, err)
	}

	a, err := c.setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	translator, err := a.newTranslator(c.newProvider, nil)
	if err != nil {
		return withCode(exitUsage, err)
	}

	ctx := cmd.Context()
	if a.cfg.Provider.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Provider.Timeout)
		defer cancel()
	}

	result, err := translator.Translate(ctx, phrase, direction)
	if err != nil && !gophrase.IsCacheError(err) {
		return withCode(exitUsage, err)
	}
	if !result.Found() {
		return withCode(exitUnavailable, &gophrase.TranslationError{Message: "no translation available", Cause: result.Err})
	}

	out := cmd.OutOrStdout()
	if c.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(translateOutput{
			Phrase:      result.Phrase,
			Translation: result.Text,
			Direction:   result.Direction.String(),
			Source:      string(result.Source),
		}); encErr != nil {
			return encErr
		}
	} else {
		_, _ = fmt.Fprintln(out, result.Text)
	}

	if err != nil {
		return withCode(exitCacheWrite, err)
	}
	return nil
}
