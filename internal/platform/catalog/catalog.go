package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the closed category -> ledger code mapping the account resolver
// consults, plus the fixed codes for the cash/bank and receivable legs. It is
// loaded once at startup and read-only afterwards.
type Catalog struct {
	expenseCodes       map[string]string
	defaultExpenseCode string
	cashCode           string
	bankLocalCode      string
	bankForeignCode    string
	receivableCode     string
}

// catalogFile is the YAML override shape. Absent fields keep their built-in
// defaults; expense_categories entries are merged over the defaults.
type catalogFile struct {
	ExpenseCategories  map[string]string `yaml:"expense_categories"`
	DefaultExpenseCode string            `yaml:"default_expense_code"`
	CashCode           string            `yaml:"cash_code"`
	BankLocalCode      string            `yaml:"bank_local_code"`
	BankForeignCode    string            `yaml:"bank_foreign_code"`
	ReceivableCode     string            `yaml:"receivable_code"`
}

// Default returns the built-in catalog. Codes follow the seeded chart of
// accounts in migrations.
func Default() *Catalog {
	return &Catalog{
		expenseCodes: map[string]string{
			"office_rent":         "5000",
			"salaries":            "5100",
			"utilities":           "5200",
			"travel":              "5300",
			"office_supplies":     "5400",
			"repairs_maintenance": "5500",
			"professional_fees":   "5600",
			"bank_charges":        "5700",
			"entertainment":       "5800",
		},
		defaultExpenseCode: "5999",
		cashCode:           "1000",
		bankLocalCode:      "1100",
		bankForeignCode:    "1105",
		receivableCode:     "1200",
	}
}

// Load builds the catalog from the built-in defaults, overlaying the YAML file
// at path when path is non-empty.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read account catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse account catalog YAML: %w", err)
	}

	for category, code := range file.ExpenseCategories {
		c.expenseCodes[NormalizeCategory(category)] = code
	}
	if file.DefaultExpenseCode != "" {
		c.defaultExpenseCode = file.DefaultExpenseCode
	}
	if file.CashCode != "" {
		c.cashCode = file.CashCode
	}
	if file.BankLocalCode != "" {
		c.bankLocalCode = file.BankLocalCode
	}
	if file.BankForeignCode != "" {
		c.bankForeignCode = file.BankForeignCode
	}
	if file.ReceivableCode != "" {
		c.receivableCode = file.ReceivableCode
	}

	return c, nil
}

// NormalizeCategory canonicalizes a user-entered category key: lowercased,
// trimmed, with spaces and hyphens collapsed to underscores, so "Office Rent"
// and "office-rent" hit the same entry.
func NormalizeCategory(category string) string {
	key := strings.ToLower(strings.TrimSpace(category))
	key = strings.ReplaceAll(key, "-", " ")
	return strings.Join(strings.Fields(key), "_")
}

// ExpenseCode maps a category to its expense account code. Unknown categories
// fall back to the default code; resolution never fails.
func (c *Catalog) ExpenseCode(category string) string {
	if code, ok := c.expenseCodes[NormalizeCategory(category)]; ok {
		return code
	}
	return c.defaultExpenseCode
}

// HasCategory reports whether the category maps to a dedicated code.
func (c *Catalog) HasCategory(category string) bool {
	_, ok := c.expenseCodes[NormalizeCategory(category)]
	return ok
}

// CashCode returns the ledger code for cash-settled legs.
func (c *Catalog) CashCode() string { return c.cashCode }

// BankLocalCode returns the ledger code for bank legs in the functional
// currency.
func (c *Catalog) BankLocalCode() string { return c.bankLocalCode }

// BankForeignCode returns the ledger code for bank legs held in another
// currency.
func (c *Catalog) BankForeignCode() string { return c.bankForeignCode }

// ReceivableCode returns the ledger code credited when a payment is received.
func (c *Catalog) ReceivableCode() string { return c.receivableCode }

// Codes returns every distinct account code the catalog can resolve to,
// useful for verifying the chart of accounts covers the catalog.
func (c *Catalog) Codes() []string {
	seen := map[string]struct{}{}
	codes := make([]string, 0, len(c.expenseCodes)+5)
	add := func(code string) {
		if _, dup := seen[code]; !dup && code != "" {
			seen[code] = struct{}{}
			codes = append(codes, code)
		}
	}
	for _, code := range c.expenseCodes {
		add(code)
	}
	add(c.defaultExpenseCode)
	add(c.cashCode)
	add(c.bankLocalCode)
	add(c.bankForeignCode)
	add(c.receivableCode)
	return codes
}
