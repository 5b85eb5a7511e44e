package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/benithors/domaincli/internal/fault"
	"github.com/benithors/domaincli/internal/rpc"
)

// availabilityChecker is the slice of the RPC client check needs.
type availabilityChecker interface {
	CheckAvailability(ctx context.Context, domain string) (rpc.Response, error)
}

// checkDomains fans out one check_availability call per domain with at most
// concurrency in flight. Results keep input order; per-domain failures are
// reported in the row rather than aborting the batch.
func checkDomains(ctx context.Context, c availabilityChecker, concurrency int, domains []string) []checkResult {
	if concurrency <= 0 {
		concurrency = 4
	}
	results := make([]checkResult, len(domains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, d := range domains {
		g.Go(func() error {
			r := &results[i]
			r.Domain = d
			resp, err := c.CheckAvailability(gctx, d)
			switch {
			case err != nil:
				r.Status = statusUnknown
				r.Error = fault.Message(err)
			case resp.Object == rpc.ObjectError:
				r.Status = statusUnknown
				r.Detail = resp.Message
			case resp.Available != nil && *resp.Available:
				r.Status = statusAvailable
			case resp.Available != nil:
				r.Status = statusTaken
			default:
				r.Status = statusUnknown
				r.Error = "malformed response"
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func newCheckCmd(cfg *cliConfig) *cobra.Command {
	var availableOnly bool
	var only string
	var sortBy string

	cmd := &cobra.Command{
		Use:   "check [domain...]",
		Short: "Check availability for explicit domains (args and/or stdin)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputDomains, err := readDomainsFromArgsAndStdin(args, os.Stdin)
			if err != nil {
				return &cliError{Code: 1, Err: fmt.Errorf("failed to read domains: %w", err), Cmd: cmd}
			}
			if len(inputDomains) == 0 {
				return &cliError{Code: 2, ShowUsage: true, Cmd: cmd}
			}

			onlyVal := strings.ToLower(strings.TrimSpace(only))
			if onlyVal == "" {
				onlyVal = "all"
			}
			if availableOnly {
				onlyVal = "available"
			}
			switch onlyVal {
			case "all", "available", "taken", "unknown":
			default:
				return &cliError{Code: 2, Err: fmt.Errorf("invalid --only %q (use all|available|taken|unknown)", only), ShowUsage: true, Cmd: cmd}
			}

			sortVal := strings.ToLower(strings.TrimSpace(sortBy))
			if sortVal == "" {
				sortVal = "input"
			}
			switch sortVal {
			case "input", "domain", "status", "length":
			default:
				return &cliError{Code: 2, Err: fmt.Errorf("invalid --sort %q (use input|domain|status|length)", sortBy), ShowUsage: true, Cmd: cmd}
			}

			results := checkDomains(cmd.Context(), cfg.client, cfg.Concurrency, inputDomains)

			strictFail := false
			if cfg.Strict {
				for _, r := range results {
					if r.Status == statusUnknown {
						strictFail = true
						break
					}
				}
			}

			results = filterResults(results, onlyVal)
			sortResults(results, sortVal)

			if err := writeResults(os.Stdout, cfg.outFormat, results); err != nil {
				return &cliError{Code: 1, Err: fmt.Errorf("failed to write output: %w", err), Cmd: cmd}
			}
			if strictFail {
				return &cliError{Code: 1}
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(usageErr)
	cmd.Flags().BoolVar(&availableOnly, "available-only", false, "Only output AVAILABLE results")
	cmd.Flags().StringVar(&only, "only", "all", "Filter output: all|available|taken|unknown")
	cmd.Flags().StringVar(&sortBy, "sort", "input", "Sort output: input|domain|status|length")

	return cmd
}

func filterResults(results []checkResult, only string) []checkResult {
	if only == "all" {
		return results
	}
	want := status(strings.ToUpper(only))
	filtered := results[:0]
	for _, r := range results {
		if r.Status == want {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func sortResults(results []checkResult, by string) {
	switch by {
	case "domain":
		sort.Slice(results, func(i, j int) bool { return results[i].Domain < results[j].Domain })
	case "status":
		order := map[status]int{
			statusAvailable: 0,
			statusTaken:     1,
			statusUnknown:   2,
		}
		sort.Slice(results, func(i, j int) bool {
			oi, oj := order[results[i].Status], order[results[j].Status]
			if oi != oj {
				return oi < oj
			}
			return results[i].Domain < results[j].Domain
		})
	case "length":
		sort.Slice(results, func(i, j int) bool {
			li := len(results[i].Domain)
			lj := len(results[j].Domain)
			if li != lj {
				return li < lj
			}
			return results[i].Domain < results[j].Domain
		})
	}
}
