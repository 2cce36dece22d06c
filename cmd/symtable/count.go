package main

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/indigo-web/symtable"
	"github.com/indigo-web/symtable/errors"
	"github.com/indigo-web/utils/uf"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type wordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

func newCountCommand(a *app) *cobra.Command {
	var (
		top    int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "count [files...]",
		Short: "Count word occurrences in files, or stdin if none given",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			factory := symtable.NewFactory(a.settings).Logger(a.logger)
			if err := factory.Instrument(reg); err != nil {
				return err
			}

			tbl, err := symtable.New[int](factory)
			if err != nil {
				return err
			}
			defer tbl.Free()

			if len(args) == 0 {
				if err = countWords(tbl, cmd.InOrStdin()); err != nil {
					return err
				}
			}

			for _, path := range args {
				if err = countFile(tbl, path); err != nil {
					return err
				}
			}

			a.logger.Debug(
				"counted",
				zap.Int("files", len(args)),
				zap.Int("words", tbl.Len()),
				zap.String("backend", string(a.settings.Backend)),
			)

			if err = logMetrics(a.logger, reg); err != nil {
				return err
			}

			counts := rank(tbl, top)
			if asJSON {
				return jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(cmd.OutOrStdout()).Encode(counts)
			}

			for _, c := range counts {
				if _, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", c.Word, c.Count); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", 0, "print only the n most frequent words (0 prints all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as a JSON array")

	return cmd
}

func countFile(tbl symtable.Table[int], path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return countWords(tbl, file)
}

// countWords reads whitespace-separated words and increments their counters.
func countWords(tbl symtable.Table[int], r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	for scanner.Scan() {
		word := scanner.Bytes()

		if n, found := tbl.GetBytes(word); found {
			tbl.Replace(uf.B2S(word), n+1)
			continue
		}

		if !tbl.PutBytes(word, 1) {
			return errors.Wrapf(errors.ErrNoMemory, "count %q", word)
		}
	}

	return scanner.Err()
}

// rank returns the counters, the most frequent first. Equally frequent words are ordered
// alphabetically.
func rank(tbl symtable.Table[int], top int) []wordCount {
	counts := make([]wordCount, 0, tbl.Len())
	for word, n := range tbl.All() {
		counts = append(counts, wordCount{Word: word, Count: n})
	}

	slices.SortFunc(counts, func(a, b wordCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}

		return cmp.Compare(a.Word, b.Word)
	})

	if top > 0 && top < len(counts) {
		counts = counts[:top]
	}

	return counts
}

// logMetrics reports every gathered counter and gauge. The registry is empty unless metrics
// are enabled.
func logMetrics(logger *zap.Logger, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}

	for _, family := range families {
		for _, m := range family.GetMetric() {
			logger.Info(
				"metric",
				zap.String("name", family.GetName()),
				zap.Float64("value", m.GetCounter().GetValue()+m.GetGauge().GetValue()),
			)
		}
	}

	return nil
}
