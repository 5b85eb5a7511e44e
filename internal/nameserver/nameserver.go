// Package nameserver points a domain owned by an account at a new set of
// nameservers in a single registrar update.
package nameserver

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/benithors/domaincli/internal/account"
	"github.com/benithors/domaincli/internal/domain"
	"github.com/benithors/domaincli/internal/fault"
	"github.com/benithors/domaincli/internal/registrar"
	"github.com/benithors/domaincli/internal/translate"
)

// Result is reported to the caller as-is. OK=false carries the registrar's
// message, or the ownership remediation text.
type Result struct {
	OK      bool
	Message string
}

type Updater struct {
	registrar    registrar.Client
	accounts     account.Store
	supportEmail string
	log          *zap.Logger
}

func NewUpdater(reg registrar.Client, accounts account.Store, supportEmail string, logger *zap.Logger) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Updater{registrar: reg, accounts: accounts, supportEmail: supportEmail, log: logger}
}

func (u *Updater) Set(ctx context.Context, accountID, rawDomain, nameservers string) (Result, error) {
	d, err := domain.Normalize(rawDomain)
	if err != nil {
		return Result{}, fault.Wrap(err, fault.YourFault, "Sorry, %q is not a valid domain name.", rawDomain)
	}
	servers, err := domain.ParseNameservers(nameservers)
	if err != nil {
		return Result{}, fault.Wrap(err, fault.YourFault, "Please provide at least one valid nameserver (%v).", err)
	}

	acct, err := account.Resolve(ctx, u.accounts, accountID)
	if err != nil {
		return Result{}, err
	}
	if !acct.Owns(d) {
		return Result{OK: false, Message: fmt.Sprintf(
			"Sorry, you don't appear to own that domain. Feel free to contact us at %s if we're mistaken.", u.supportEmail)}, nil
	}

	res, err := u.registrar.SetNameservers(ctx, d, servers)
	if err != nil {
		return Result{}, fmt.Errorf("set nameservers for %s: %w", d, err)
	}
	ok, err := translate.SetNameservers(res.Status)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		msg := res.Message
		if msg == "" {
			msg = "The registrar rejected the nameserver update for " + d + "."
		}
		u.log.Info("nameserver update rejected", zap.String("domain", d), zap.String("registrar_message", msg))
		return Result{OK: false, Message: msg}, nil
	}
	return Result{OK: true, Message: "Set nameservers to " + strings.Join(servers, ", ")}, nil
}
