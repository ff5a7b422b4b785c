// Package extraction pulls accounting line-items out of financial statement PDFs.
package extraction

import (
	"fmt"
	"regexp"
)

// Category is a financial line-item identified by its printed label and
// 5-digit accounting code.
type Category struct {
	Label string `json:"label" mapstructure:"label"`
	Code  string `json:"code" mapstructure:"code"`
}

// defaultCategories is the income statement layout the extractor was built
// for. Labels are spelled exactly as the reports print them.
var defaultCategories = []Category{
	{Label: "INGRESOS OPERACIONALES", Code: "51000"},
	{Label: "COSTOS", Code: "41000"},
	{Label: "Gastos de Comercialización", Code: "42200"},
	{Label: "Gastos Administrativos", Code: "42100"},
	{Label: "Otros Ingresos", Code: "52200"},
	{Label: "Rendimiento por Inversiones", Code: "52100"},
	{Label: "Cargos por diferencia d ecambio", Code: "43300"},
	{Label: "Otros Egresos", Code: "43200"},
	{Label: "Ajuste por inflación y tenencia de bienes", Code: "43100"},
	{Label: "Ingresos de gestiones anteriores", Code: "53000"},
	{Label: "Gastos de gestiones anteriores", Code: "44000"},
	{Label: "Ingresos extraordianearios", Code: "54000"},
	{Label: "Gastos extraordianarios", Code: "45000"},
	{Label: "Gastos Financieros", Code: "46000"},
	{Label: "Impuesto a las Utilidades de las Empresas", Code: "47000"},
}

var codePattern = regexp.MustCompile(`^[0-9]{5}$`)

var defaultCatalog = mustCatalog(defaultCategories)

// Catalog is an immutable, ordered set of categories with their search
// patterns compiled once.
type Catalog struct {
	categories []Category
	patterns   []*regexp.Regexp
}

// DefaultCatalog returns the shared 15-entry income statement catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// NewCatalog builds a catalog from categories, preserving their order.
func NewCatalog(categories []Category) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one category")
	}

	c := &Catalog{
		categories: make([]Category, 0, len(categories)),
		patterns:   make([]*regexp.Regexp, 0, len(categories)),
	}
	seen := make(map[string]bool, len(categories))

	for i, cat := range categories {
		if cat.Label == "" {
			return nil, fmt.Errorf("category %d: label is required", i)
		}
		if !codePattern.MatchString(cat.Code) {
			return nil, fmt.Errorf("category %q: code %q is not a 5-digit code", cat.Label, cat.Code)
		}
		if seen[cat.Label] {
			return nil, fmt.Errorf("category %q: duplicate label", cat.Label)
		}
		seen[cat.Label] = true

		re, err := compileCategoryPattern(cat)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", cat.Label, err)
		}
		c.categories = append(c.categories, cat)
		c.patterns = append(c.patterns, re)
	}

	return c, nil
}

func mustCatalog(categories []Category) *Catalog {
	c, err := NewCatalog(categories)
	if err != nil {
		panic(err)
	}
	return c
}

// valueTerminator is any Unicode whitespace or the end of the line. PDF text
// frequently carries no-break spaces between a figure and the next column.
const valueTerminator = `(?:[\s\v\x1c-\x1f\x{85}\pZ]|$)`

// compileCategoryPattern builds: code, anything, label, anything, then a run
// of digits and thousands commas that ends at whitespace or end of line.
func compileCategoryPattern(cat Category) (*regexp.Regexp, error) {
	expr := regexp.QuoteMeta(cat.Code) +
		`.*?` + regexp.QuoteMeta(cat.Label) +
		`.*?([0-9,]+)` + valueTerminator
	return regexp.Compile(expr)
}

// Len returns the number of categories.
func (c *Catalog) Len() int {
	return len(c.categories)
}

// Labels returns the category labels in catalog order.
func (c *Catalog) Labels() []string {
	labels := make([]string, len(c.categories))
	for i, cat := range c.categories {
		labels[i] = cat.Label
	}
	return labels
}

// Categories returns a copy of the catalog entries.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}
