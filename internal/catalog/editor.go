package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// DefaultMaxOrder подставляется новым товарам без явного лимита.
const DefaultMaxOrder = 5

// Editor редактирует JSON-файлы каталога. Не потокобезопасен:
// рассчитан на однопользовательскую утилиту.
type Editor struct {
	dir      string
	products []domain.Product
	toppings []domain.Topping
	store    domain.StoreConfig
	logger   *log.Entry
	newID    func() string
}

// OpenEditor читает каталог из dir. Отсутствующие или повреждённые файлы
// заменяются пустыми значениями, чтобы редактор мог их пересоздать.
func OpenEditor(dir string, logger *log.Entry) (*Editor, error) {
	if logger == nil {
		logger = log.WithField("component", "catalog-editor")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}

	e := &Editor{
		dir:    dir,
		logger: logger,
		newID:  uuid.NewString,
	}
	fsys := os.DirFS(dir)
	e.softLoad(fsys, ProductsFile, &e.products)
	e.softLoad(fsys, ToppingsFile, &e.toppings)
	e.softLoad(fsys, StoreFile, &e.store)
	if e.products == nil {
		e.products = []domain.Product{}
	}
	if e.toppings == nil {
		e.toppings = []domain.Topping{}
	}
	return e, nil
}

func (e *Editor) softLoad(fsys fs.FS, name string, dst any) {
	err := readJSON(fsys, name, dst)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		e.logger.WithField("file", name).Debug("catalog file missing, starting empty")
	default:
		e.logger.WithError(err).WithField("file", name).Warn("catalog file unreadable, starting empty")
	}
}

// Products возвращает текущий список товаров.
func (e *Editor) Products() []domain.Product {
	return append([]domain.Product(nil), e.products...)
}

// Toppings возвращает текущий список топпингов.
func (e *Editor) Toppings() []domain.Topping {
	return append([]domain.Topping(nil), e.toppings...)
}

// Store возвращает текущие настройки магазина.
func (e *Editor) Store() domain.StoreConfig {
	return e.store
}

// UpsertProduct создаёт товар (пустой ID) или заменяет существующий.
func (e *Editor) UpsertProduct(p domain.Product) (domain.Product, error) {
	if p.ID == "" {
		p.ID = e.newID()
		if p.MaxOrder == 0 {
			p.MaxOrder = DefaultMaxOrder
		}
	}
	if p.Toppings == nil {
		p.Toppings = []string{}
	}
	if errs := p.Validate(); len(errs) > 0 {
		return domain.Product{}, errors.Join(errs...)
	}
	for _, id := range p.Toppings {
		if e.toppingIndex(id) < 0 {
			return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrToppingNotFound, id)
		}
	}

	if i := e.productIndex(p.ID); i >= 0 {
		e.products[i] = p
	} else {
		e.products = append(e.products, p)
	}
	return p, nil
}

// DeleteProduct удаляет товар по идентификатору.
func (e *Editor) DeleteProduct(id string) error {
	i := e.productIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	e.products = append(e.products[:i], e.products[i+1:]...)
	return nil
}

// UpsertTopping создаёт топпинг (пустой ID) или заменяет существующий.
func (e *Editor) UpsertTopping(t domain.Topping) (domain.Topping, error) {
	if t.ID == "" {
		t.ID = e.newID()
	}
	if errs := t.Validate(); len(errs) > 0 {
		return domain.Topping{}, errors.Join(errs...)
	}

	if i := e.toppingIndex(t.ID); i >= 0 {
		e.toppings[i] = t
	} else {
		e.toppings = append(e.toppings, t)
	}
	return t, nil
}

// DeleteTopping удаляет топпинг и убирает его из списков допустимых у товаров.
func (e *Editor) DeleteTopping(id string) error {
	i := e.toppingIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrToppingNotFound, id)
	}
	e.toppings = append(e.toppings[:i], e.toppings[i+1:]...)

	for pi := range e.products {
		kept := e.products[pi].Toppings[:0]
		for _, tid := range e.products[pi].Toppings {
			if tid != id {
				kept = append(kept, tid)
			}
		}
		e.products[pi].Toppings = kept
	}
	return nil
}

// UpdateStore заменяет настройки магазина.
func (e *Editor) UpdateStore(cfg domain.StoreConfig) {
	e.store = cfg
}

// Catalog собирает неизменяемый снимок из текущего состояния редактора.
func (e *Editor) Catalog() (*Catalog, error) {
	return New(e.products, e.toppings, e.store)
}

// Save записывает все три файла с отступом в два пробела.
func (e *Editor) Save() error {
	if _, err := e.Catalog(); err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}

	files := []struct {
		name string
		v    any
	}{
		{ProductsFile, e.products},
		{ToppingsFile, e.toppings},
		{StoreFile, e.store},
	}
	for _, f := range files {
		data, err := json.MarshalIndent(f.v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := renameio.WriteFile(filepath.Join(e.dir, f.name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	e.logger.WithFields(log.Fields{
		"products": len(e.products),
		"toppings": len(e.toppings),
	}).Info("catalog saved")
	return nil
}

func (e *Editor) productIndex(id string) int {
	for i, p := range e.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) toppingIndex(id string) int {
	for i, t := range e.toppings {
		if t.ID == id {
			return i
		}
	}
	return -1
}
