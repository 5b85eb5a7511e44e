package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/benithors/domaincli/internal/account"
	"github.com/benithors/domaincli/internal/domain"
)

type outputFormat int

const (
	formatTable outputFormat = iota
	formatNDJSON
	formatJSON
	formatPlain
)

type status string

const (
	statusAvailable status = "AVAILABLE"
	statusTaken     status = "TAKEN"
	statusUnknown   status = "UNKNOWN"
)

type checkResult struct {
	Domain string `json:"domain"`
	Status status `json:"status"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// actionResult is the outcome of a state-changing command.
type actionResult struct {
	Domain  string `json:"domain,omitempty"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

func resolveFormat(flagVal string, stdout *os.File) outputFormat {
	switch strings.ToLower(strings.TrimSpace(flagVal)) {
	case "table":
		return formatTable
	case "ndjson":
		return formatNDJSON
	case "json":
		return formatJSON
	case "plain":
		return formatPlain
	case "auto", "":
	default:
		// Unknown format: fall back to auto.
	}

	if term.IsTerminal(int(stdout.Fd())) {
		return formatTable
	}
	return formatNDJSON
}

func writeEncoded[T any](w io.Writer, format outputFormat, rows []T) (bool, error) {
	switch format {
	case formatNDJSON:
		enc := json.NewEncoder(w)
		for _, r := range rows {
			if err := enc.Encode(r); err != nil {
				return true, err
			}
		}
		return true, nil
	case formatJSON:
		return true, json.NewEncoder(w).Encode(rows)
	}
	return false, nil
}

func writeResults(w io.Writer, format outputFormat, results []checkResult) error {
	if done, err := writeEncoded(w, format, results); done {
		return err
	}
	if format == formatPlain {
		for _, r := range results {
			// Stable, line-oriented output for piping.
			if _, err := fmt.Fprintf(w, "%s\t%s\n", r.Domain, r.Status); err != nil {
				return err
			}
		}
		return nil
	}

	tw := domain.NewTabWriter(w)
	fmt.Fprintln(tw, "DOMAIN\tSTATUS\tDETAIL")
	for _, r := range results {
		detail := r.Detail
		if detail == "" && r.Error != "" {
			detail = r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Domain, r.Status, detail)
	}
	return tw.Flush()
}

func writeAction(w io.Writer, format outputFormat, r actionResult) error {
	if done, err := writeEncoded(w, format, []actionResult{r}); done {
		return err
	}
	if format == formatPlain {
		_, err := fmt.Fprintf(w, "%s\t%t\t%s\n", r.Domain, r.OK, r.Message)
		return err
	}
	_, err := fmt.Fprintln(w, r.Message)
	return err
}

func writeCard(w io.Writer, format outputFormat, card *account.CardInfo) error {
	if card == nil {
		if format == formatJSON || format == formatNDJSON {
			_, err := fmt.Fprintln(w, "null")
			return err
		}
		_, err := fmt.Fprintln(w, "No card on file. Add one with `domaincli card add <token>`.")
		return err
	}
	if done, err := writeEncoded(w, format, []account.CardInfo{*card}); done {
		return err
	}
	if format == formatPlain {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s/%d\n", card.Type, card.Last4, card.ExpMonth, card.ExpYear)
		return err
	}
	tw := domain.NewTabWriter(w)
	fmt.Fprintln(tw, "TYPE\tLAST4\tEXPIRES")
	fmt.Fprintf(tw, "%s\t%s\t%s/%d\n", card.Type, card.Last4, card.ExpMonth, card.ExpYear)
	return tw.Flush()
}
