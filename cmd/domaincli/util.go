package main

import (
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/benithors/domaincli/internal/domain"
)

func readDomainsFromArgsAndStdin(args []string, stdin *os.File) ([]string, error) {
	var out []string

	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		out = append(out, a)
	}

	if term.IsTerminal(int(stdin.Fd())) {
		// Nothing piped in.
		return out, nil
	}

	stdinDomains, err := domain.ReadLines(stdin)
	if err != nil {
		return nil, err
	}
	out = append(out, stdinDomains...)
	return out, nil
}

// splitCommaList accepts "a,b" and separate args alike, lower-cased and
// de-duplicated in order.
func splitCommaList(args ...string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, s := range args {
		for _, p := range strings.Split(s, ",") {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
