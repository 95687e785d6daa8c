package accounts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cleared-dev/ledgerbook/internal/model"
)

// ChartFile is the chart of accounts location relative to a book root.
const ChartFile = "accounts/chart-of-accounts.csv"

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	accounts []model.Account
	byID     map[int]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[int]model.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Service{accounts: accounts, byID: byID}
}

// Load reads chart-of-accounts.csv from a book root and returns a Service.
func Load(root string) (*Service, error) {
	path := filepath.Join(root, ChartFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	if err := Validate(accts); err != nil {
		return nil, err
	}
	return NewService(accts), nil
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id int) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// Active returns the accounts that have not been deactivated.
func (s *Service) Active() []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.IsActive {
			result = append(result, a)
		}
	}
	return result
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// BySubtype returns all accounts carrying the given subtype.
func (s *Service) BySubtype(subtype string) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Subtype == subtype {
			result = append(result, a)
		}
	}
	return result
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *Service) Save(root string) error {
	dir := filepath.Join(root, filepath.Dir(ChartFile))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(root, ChartFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}

// Validate checks the chart for duplicate ids or numbers and unknown
// type/normal-balance values.
func Validate(accounts []model.Account) error {
	ids := make(map[int]bool, len(accounts))
	numbers := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		if a.ID <= 0 {
			return fmt.Errorf("account %q: id must be positive", a.Name)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate account id %d", a.ID)
		}
		ids[a.ID] = true
		if a.Number != "" {
			if numbers[a.Number] {
				return fmt.Errorf("duplicate account number %q", a.Number)
			}
			numbers[a.Number] = true
		}
		if !a.Type.IsValid() {
			return fmt.Errorf("account %d: unknown type %q", a.ID, a.Type)
		}
		if !a.NormalBalance.IsValid() {
			return fmt.Errorf("account %d: unknown normal balance %q", a.ID, a.NormalBalance)
		}
	}
	return nil
}

// SortByNumber orders accounts by number, then id.
func SortByNumber(accounts []model.Account) {
	sort.SliceStable(accounts, func(i, j int) bool {
		if accounts[i].Number != accounts[j].Number {
			return accounts[i].Number < accounts[j].Number
		}
		return accounts[i].ID < accounts[j].ID
	})
}
