package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/symtable"
	"github.com/indigo-web/symtable/settings"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type benchResult struct {
	Backend          settings.Backend
	Put, Get, Remove time.Duration
	Err              error
}

func newBenchCommand(a *app) *cobra.Command {
	var (
		keys   int
		keyLen int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare backends by putting, getting and removing random keys",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := make([]string, keys)
			for i := range input {
				input[i] = uniuri.NewLen(keyLen)
			}

			results, err := benchmark(a.settings, a.logger, input)
			if err != nil {
				return err
			}

			for _, r := range results {
				if r.Err != nil {
					return r.Err
				}

				_, err = fmt.Fprintf(
					cmd.OutOrStdout(), "%-5s put=%s get=%s remove=%s\n",
					r.Backend, r.Put, r.Get, r.Remove,
				)
				if err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&keys, "keys", 10_000, "number of random keys")
	cmd.Flags().IntVar(&keyLen, "key-length", 16, "length of every random key")

	return cmd
}

// benchmark runs every backend in its own worker. Each worker owns its table, so no table
// is ever touched by more than a single goroutine.
func benchmark(s settings.Settings, logger *zap.Logger, keys []string) ([]benchResult, error) {
	backends := []settings.Backend{settings.Hash, settings.List}

	pool, err := ants.NewPool(len(backends))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	results := make([]benchResult, len(backends))

	for i, backend := range backends {
		wg.Add(1)

		bs := s
		bs.Backend = backend

		err = pool.Submit(func() {
			defer wg.Done()
			results[i] = runBench(bs, logger, keys)
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}

	wg.Wait()

	return results, nil
}

func runBench(s settings.Settings, logger *zap.Logger, keys []string) (r benchResult) {
	r.Backend = s.Backend

	tbl, err := symtable.New[int](symtable.NewFactory(s).Logger(logger))
	if err != nil {
		r.Err = err
		return r
	}
	defer tbl.Free()

	start := time.Now()
	for i, key := range keys {
		tbl.Put(key, i)
	}
	r.Put = time.Since(start)

	start = time.Now()
	for _, key := range keys {
		tbl.Get(key)
	}
	r.Get = time.Since(start)

	start = time.Now()
	for _, key := range keys {
		tbl.Remove(key)
	}
	r.Remove = time.Since(start)

	logger.Info(
		"bench",
		zap.String("backend", string(r.Backend)),
		zap.Int("keys", len(keys)),
		zap.Duration("put", r.Put),
		zap.Duration("get", r.Get),
		zap.Duration("remove", r.Remove),
	)

	return r
}
