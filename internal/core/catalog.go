package core

// Currency describes one supported currency as a symbol/name/code triple.
type Currency struct {
	Code   string `yaml:"code"`
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
}

// Catalog is the fixed configuration surface consumed by the domain:
// the expense-category and income-source enumerations, the supported
// currencies and the display default. It is provided by the config
// layer and never mutated by the core.
type Catalog struct {
	Categories      []string   `yaml:"categories"`
	Sources         []string   `yaml:"sources"`
	Currencies      []Currency `yaml:"currencies"`
	DefaultCurrency string     `yaml:"default_currency"`
}

// DefaultCatalog returns the bundled enumerations used when no catalog
// file overrides them.
func DefaultCatalog() Catalog {
	return Catalog{
		Categories: []string{
			"Food", "Transportation", "Entertainment", "Utilities",
			"Healthcare", "Shopping", "Education", "Other",
		},
		Sources: []string{
			"Salary", "Freelance", "Investment", "Business", "Gift", "Other",
		},
		Currencies: []Currency{
			{Code: "USD", Symbol: "$", Name: "US Dollar"},
			{Code: "EUR", Symbol: "€", Name: "Euro"},
			{Code: "GBP", Symbol: "£", Name: "British Pound"},
			{Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
			{Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
		},
		DefaultCurrency: "USD",
	}
}

// SymbolToCode maps each currency symbol to its code so callers may pass
// either representation interchangeably.
func (c Catalog) SymbolToCode() map[string]string {
	m := make(map[string]string, len(c.Currencies))
	for _, cur := range c.Currencies {
		m[cur.Symbol] = cur.Code
	}
	return m
}
