package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ZaguanLabs/gophrase"
	"github.com/spf13/cobra"
)

func (c *cli) newBatchCmd() *cobra.Command {
	var (
		direction   string
		concurrency int
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Translate one phrase per line from a file or stdin",
		Long: `Translate every non-blank line of the input. Lines are read from the
named file, or from stdin when no file (or "-") is given. Results are
printed in input order; phrases without a translation are reported and
the command exits with status 2.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := gophrase.ParseDirection(direction)
			if err != nil {
				return withCode(exitUsage, err)
			}

			phrases, err := readPhrases(cmd, args)
			if err != nil {
				return withCode(exitUsage, err)
			}
			if len(phrases) == 0 {
				return withCode(exitUsage, fmt.Errorf("no phrases to translate"))
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
				ctx, cancel = context.WithTimeout(ctx, a.cfg.Provider.Timeout*batchTimeoutFactor(len(phrases), concurrency))
				defer cancel()
			}

			results, batchErr := translator.TranslateBatch(ctx, phrases, dir, concurrency)
			if batchErr != nil && !gophrase.IsCacheError(batchErr) {
				return withCode(exitUsage, batchErr)
			}

			missing, err := printBatch(cmd.OutOrStdout(), results, jsonOutput)
			if err != nil {
				return err
			}

			if batchErr != nil {
				return withCode(exitCacheWrite, batchErr)
			}
			if missing > 0 {
				return withCode(exitUnavailable, &gophrase.TranslationError{
					Message: fmt.Sprintf("no translation available for %d of %d phrases", missing, len(results)),
				})
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&direction, "direction", "d", string(gophrase.DefaultDirection), `rewrite direction: "nt->nd" or "nd->nt"`)
	f.IntVarP(&concurrency, "concurrency", "c", gophrase.DefaultBatchConcurrency, "maximum concurrent provider requests")
	f.BoolVar(&jsonOutput, "json", false, "print the results as a JSON array")

	return cmd
}

// readPhrases returns the trimmed, non-blank lines of the batch input.
func readPhrases(cmd *cobra.Command, args []string) ([]string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("opening batch input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var phrases []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			phrases = append(phrases, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading batch input: %w", err)
	}
	return phrases, nil
}

// batchTimeoutFactor scales the per-request timeout to the number of
// sequential rounds the batch needs.
func batchTimeoutFactor(n, concurrency int) time.Duration {
	if concurrency <= 0 {
		concurrency = gophrase.DefaultBatchConcurrency
	}
	return time.Duration((n + concurrency - 1) / concurrency)
}

func printBatch(out io.Writer, results []*gophrase.Result, jsonOutput bool) (int, error) {
	missing := 0
	rows := make([]translateOutput, 0, len(results))
	for _, r := range results {
		if !r.Found() {
			missing++
		}
		rows = append(rows, translateOutput{
			Phrase:      r.Phrase,
			Translation: r.Text,
			Direction:   r.Direction.String(),
			Source:      string(r.Source),
		})
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return missing, enc.Encode(rows)
	}

	for _, row := range rows {
		text := row.Translation
		if text == "" {
			text = "(no translation)"
		}
		if _, err := fmt.Fprintf(out, "%s\t%s\n", row.Phrase, text); err != nil {
			return missing, err
		}
	}
	return missing, nil
}
