// Package memory is an in-process account.Store for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/benithors/domaincli/internal/account"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[string]account.Account
}

var _ account.Store = (*Store)(nil)

func New() *Store {
	return &Store{accounts: make(map[string]account.Account)}
}

func (s *Store) Get(_ context.Context, id string) (account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	a.Domains = slices.Clone(a.Domains)
	return a, nil
}

func (s *Store) Insert(_ context.Context, a account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; ok {
		return fmt.Errorf("account %s already exists", a.ID)
	}
	a.Domains = slices.Clone(a.Domains)
	s.accounts[a.ID] = a
	return nil
}

func (s *Store) AddDomain(_ context.Context, id, domain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	if !slices.Contains(a.Domains, domain) {
		a.Domains = append(a.Domains, domain)
	}
	s.accounts[id] = a
	return nil
}

func (s *Store) SetCustomer(_ context.Context, id, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	a.CustomerID = customerID
	s.accounts[id] = a
	return nil
}
