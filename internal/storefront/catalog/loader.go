package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dejobratic/tdsbot/internal/storefront/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// productsSheet is the worksheet read from spreadsheet catalogs.
const productsSheet = "Products"

type record struct {
	Key            string   `yaml:"key"`
	Name           string   `yaml:"name"`
	NormalPrice    string   `yaml:"normal_price"`
	NormalAmount   float64  `yaml:"normal_amount"`
	DiscountPrice  string   `yaml:"discount_price"`
	DiscountAmount float64  `yaml:"discount_amount"`
	DiscountLabel  string   `yaml:"discount_label"`
	Description    string   `yaml:"description"`
	Features       []string `yaml:"features"`
	PaymentHandle  string   `yaml:"payment_handle"`
	Rationale      string   `yaml:"rationale"`
}

type document struct {
	Products []record `yaml:"products"`
}

func (r record) product() domain.Product {
	return domain.Product{
		Key:           strings.ToLower(strings.TrimSpace(r.Key)),
		Name:          strings.TrimSpace(r.Name),
		NormalPrice:   domain.Price{Label: r.NormalPrice, Amount: decimal.NewFromFloat(r.NormalAmount)},
		DiscountPrice: domain.Price{Label: r.DiscountPrice, Amount: decimal.NewFromFloat(r.DiscountAmount)},
		DiscountLabel: r.DiscountLabel,
		Description:   r.Description,
		Features:      r.Features,
		PaymentHandle: strings.TrimSpace(r.PaymentHandle),
		Rationale:     r.Rationale,
	}
}

// LoadFile reads a catalog from a YAML (.yaml, .yml) or spreadsheet (.xlsx) file.
func LoadFile(path string) (*Catalog, error) {
	var (
		products []domain.Product
		err      error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		products, err = parseYAML(data)
	case ".xlsx":
		products, err = parseSpreadsheet(path)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}

	return New(products)
}

func parseYAML(data []byte) ([]domain.Product, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	products := make([]domain.Product, 0, len(doc.Products))
	for _, r := range doc.Products {
		products = append(products, r.product())
	}
	return products, nil
}

// parseSpreadsheet reads the Products sheet. The first row is a header; columns are
// key, name, normal price, normal amount, discount price, discount amount,
// discount label, description, features (semicolon separated), payment handle, rationale.
func parseSpreadsheet(path string) ([]domain.Product, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(productsSheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", productsSheet, err)
	}

	var products []domain.Product
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < 10 {
			return nil, fmt.Errorf("row %d: expected at least 10 columns, got %d", i+1, len(row))
		}

		normal, err := decimal.NewFromString(strings.TrimSpace(row[3]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid normal amount %q: %w", i+1, row[3], err)
		}
		discount, err := decimal.NewFromString(strings.TrimSpace(row[5]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid discount amount %q: %w", i+1, row[5], err)
		}

		var rationale string
		if len(row) > 10 {
			rationale = row[10]
		}

		products = append(products, domain.Product{
			Key:           strings.ToLower(strings.TrimSpace(row[0])),
			Name:          strings.TrimSpace(row[1]),
			NormalPrice:   domain.Price{Label: row[2], Amount: normal},
			DiscountPrice: domain.Price{Label: row[4], Amount: discount},
			DiscountLabel: row[6],
			Description:   row[7],
			Features:      splitFeatures(row[8]),
			PaymentHandle: strings.TrimSpace(row[9]),
			Rationale:     rationale,
		})
	}
	return products, nil
}

func splitFeatures(cell string) []string {
	var features []string
	for _, f := range strings.Split(cell, ";") {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	return features
}
