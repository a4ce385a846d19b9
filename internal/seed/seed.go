package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Catalog struct {
	Version  int              `yaml:"version"`
	Products []CatalogProduct `yaml:"products"`
}

type CatalogProduct struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
	Category    string `yaml:"category"`
	ImageURL    string `yaml:"image_url"`
}

// LoadCatalog reads the fixture at path, or the embedded one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	raw := defaultCatalog
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		raw = b
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, p := range c.Products {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("product %d: missing name", i)
		}
		if p.Stock < 0 {
			return nil, fmt.Errorf("product %q: negative stock", p.Name)
		}
		if _, err := p.price(); err != nil {
			return nil, fmt.Errorf("product %q: %w", p.Name, err)
		}
	}
	return &c, nil
}

func (p CatalogProduct) price() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(p.Price))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", p.Price)
	}
	if d.IsNegative() || d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("invalid price %q", p.Price)
	}
	return d, nil
}

// Apply inserts catalog products that do not exist yet, matched by exact name.
// Existing products are left alone so stock is never reset by a re-run.
func Apply(dbc dbctx.Context, log *logger.Logger, productRepo repos.ProductRepo, c *Catalog) (int, error) {
	created := 0
	for _, p := range c.Products {
		existing, err := productRepo.List(dbc, types.ProductFilter{Search: p.Name})
		if err != nil {
			return created, fmt.Errorf("look up %q: %w", p.Name, err)
		}
		if hasName(existing, p.Name) {
			continue
		}
		price, _ := p.price()
		if _, err := productRepo.Create(dbc, []*types.Product{{
			Name:        strings.TrimSpace(p.Name),
			Description: p.Description,
			Price:       price,
			Stock:       p.Stock,
			Category:    strings.TrimSpace(p.Category),
			ImageURL:    p.ImageURL,
		}}); err != nil {
			return created, fmt.Errorf("create %q: %w", p.Name, err)
		}
		created++
	}
	if log != nil {
		log.Info("Catalog seeded", "created", created, "total", len(c.Products))
	}
	return created, nil
}

func hasName(products []*types.Product, name string) bool {
	name = strings.TrimSpace(name)
	for _, p := range products {
		if p.Name == name {
			return true
		}
	}
	return false
}
