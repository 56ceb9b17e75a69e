// Package catalog хранит неизменяемый каталог витрины: товары, топпинги и настройки магазина.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Имена ресурсов каталога внутри каталога данных.
const (
	ProductsFile = "products.json"
	ToppingsFile = "toppings.json"
	StoreFile    = "store.json"
)

// Catalog — снимок каталога, загруженный один раз при старте.
type Catalog struct {
	products   []domain.Product
	toppings   []domain.Topping
	store      domain.StoreConfig
	productIdx map[string]int
	toppingIdx map[string]int
}

// New собирает каталог, проверяя инварианты и уникальность идентификаторов.
func New(products []domain.Product, toppings []domain.Topping, store domain.StoreConfig) (*Catalog, error) {
	c := &Catalog{
		products:   make([]domain.Product, len(products)),
		toppings:   make([]domain.Topping, len(toppings)),
		store:      store,
		productIdx: make(map[string]int, len(products)),
		toppingIdx: make(map[string]int, len(toppings)),
	}

	for i, t := range toppings {
		if errs := t.Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("topping %q: %w", t.ID, errors.Join(errs...))
		}
		if _, dup := c.toppingIdx[t.ID]; dup {
			return nil, fmt.Errorf("duplicate topping id %q", t.ID)
		}
		c.toppings[i] = t
		c.toppingIdx[t.ID] = i
	}

	for i, p := range products {
		if errs := p.Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("product %q: %w", p.ID, errors.Join(errs...))
		}
		if _, dup := c.productIdx[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		p.Toppings = append([]string(nil), p.Toppings...)
		c.products[i] = p
		c.productIdx[p.ID] = i
	}

	return c, nil
}

// Load читает три ресурса каталога из fsys. Ошибка любого ресурса
// возвращается как *domain.LoadFailure с именем ресурса.
func Load(ctx context.Context, fsys fs.FS) (*Catalog, error) {
	var (
		products []domain.Product
		toppings []domain.Topping
		store    domain.StoreConfig
	)

	resources := []struct {
		name string
		dst  any
	}{
		{ProductsFile, &products},
		{ToppingsFile, &toppings},
		{StoreFile, &store},
	}

	var errs []error
	for _, r := range resources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := readJSON(fsys, r.name, r.dst); err != nil {
			errs = append(errs, &domain.LoadFailure{Resource: r.name, Err: err})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	c, err := New(products, toppings, store)
	if err != nil {
		return nil, &domain.LoadFailure{Resource: "catalog", Err: err}
	}
	return c, nil
}

// LoadDir читает каталог из директории на диске.
func LoadDir(ctx context.Context, dir string) (*Catalog, error) {
	return Load(ctx, os.DirFS(dir))
}

func readJSON(fsys fs.FS, name string, dst any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// Products возвращает товары в порядке каталога.
func (c *Catalog) Products() []domain.Product {
	result := make([]domain.Product, len(c.products))
	copy(result, c.products)
	return result
}

// Toppings возвращает топпинги в порядке каталога.
func (c *Catalog) Toppings() []domain.Topping {
	result := make([]domain.Topping, len(c.toppings))
	copy(result, c.toppings)
	return result
}

// Store возвращает настройки магазина.
func (c *Catalog) Store() domain.StoreConfig {
	return c.store
}

// Product ищет товар по идентификатору.
func (c *Catalog) Product(id string) (domain.Product, bool) {
	i, ok := c.productIdx[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Topping ищет топпинг по идентификатору.
func (c *Catalog) Topping(id string) (domain.Topping, bool) {
	i, ok := c.toppingIdx[id]
	if !ok {
		return domain.Topping{}, false
	}
	return c.toppings[i], true
}

// EligibleToppings возвращает допустимые для товара топпинги в порядке каталога.
// Неизвестные идентификаторы из product.Toppings пропускаются.
func (c *Catalog) EligibleToppings(product domain.Product) []domain.Topping {
	result := make([]domain.Topping, 0, len(product.Toppings))
	for _, t := range c.toppings {
		if product.AllowsTopping(t.ID) {
			result = append(result, t)
		}
	}
	return result
}

// ResolveToppings превращает выбранные идентификаторы в снимки топпингов,
// сохраняя порядок выбора.
func (c *Catalog) ResolveToppings(product domain.Product, ids []string) ([]domain.Topping, error) {
	result := make([]domain.Topping, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		t, ok := c.Topping(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrToppingNotFound, id)
		}
		if !product.AllowsTopping(id) {
			return nil, fmt.Errorf("%w: %s", domain.ErrToppingNotEligible, id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateTopping, id)
		}
		seen[id] = struct{}{}
		result = append(result, t)
	}
	return result, nil
}

// Categories возвращает уникальные категории в порядке первого появления.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var result []string
	for _, p := range c.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		result = append(result, p.Category)
	}
	return result
}

var _ domain.ProductLookup = (*Catalog)(nil)
