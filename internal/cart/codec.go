package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// SnapshotVersion — текущая версия формата сохранённой корзины.
const SnapshotVersion = 1

var (
	// ErrUnsupportedVersion — снимок записан неизвестной версией формата.
	ErrUnsupportedVersion = errors.New("unsupported cart snapshot version")
	// ErrMalformedSnapshot — данные не похожи ни на один известный формат.
	ErrMalformedSnapshot = errors.New("malformed cart snapshot")
)

type snapshot struct {
	Version int                   `json:"version"`
	Items   []domain.CartLineItem `json:"items"`
}

// legacyItem — позиция из старого формата без версии: голый массив,
// числовой id и camelCase-поля.
type legacyItem struct {
	ID        json.RawMessage  `json:"id"`
	ProductID string           `json:"productId"`
	Name      string           `json:"name"`
	Price     int64            `json:"price"`
	Image     string           `json:"image"`
	Qty       int              `json:"qty"`
	Toppings  []domain.Topping `json:"toppings"`
}

// Encode сериализует корзину в версионированный конверт.
func Encode(cart domain.Cart) ([]byte, error) {
	items := cart.Items
	if items == nil {
		items = []domain.CartLineItem{}
	}
	data, err := json.Marshal(snapshot{Version: SnapshotVersion, Items: items})
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return data, nil
}

// Decode разбирает версионированный конверт или старый массив без версии
// и проверяет инварианты позиций. Совпавшие идентификаторы позиций
// получают суффиксы, корзина при этом не отбрасывается.
func Decode(data []byte) (domain.Cart, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return domain.Cart{}, ErrMalformedSnapshot
	}

	var cart domain.Cart
	switch trimmed[0] {
	case '{':
		var snap snapshot
		if err := json.Unmarshal(trimmed, &snap); err != nil {
			return domain.Cart{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		if snap.Version != SnapshotVersion {
			return domain.Cart{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
		}
		cart.Items = snap.Items
	case '[':
		items, err := decodeLegacy(trimmed)
		if err != nil {
			return domain.Cart{}, err
		}
		cart.Items = items
	default:
		return domain.Cart{}, ErrMalformedSnapshot
	}

	if cart.Items == nil {
		cart.Items = []domain.CartLineItem{}
	}
	rekeyDuplicates(cart.Items)
	if errs := cart.ValidateInvariants(); len(errs) > 0 {
		return domain.Cart{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, errors.Join(errs...))
	}
	return cart, nil
}

// rekeyDuplicates переименовывает повторы идентификаторов в id-1, id-2, ...
// Первое вхождение сохраняет исходный идентификатор.
func rekeyDuplicates(items []domain.CartLineItem) {
	taken := make(map[string]struct{}, len(items))
	for _, item := range items {
		taken[item.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(items))
	for i := range items {
		id := items[i].ID
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			for n := 1; ; n++ {
				candidate := fmt.Sprintf("%s-%d", id, n)
				if _, used := taken[candidate]; !used {
					id = candidate
					break
				}
			}
			items[i].ID = id
			taken[id] = struct{}{}
		}
		seen[id] = struct{}{}
	}
}

func decodeLegacy(data []byte) ([]domain.CartLineItem, error) {
	var legacy []legacyItem
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	items := make([]domain.CartLineItem, 0, len(legacy))
	for _, li := range legacy {
		id, err := legacyID(li.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.CartLineItem{
			ID:        id,
			ProductID: li.ProductID,
			Name:      li.Name,
			Price:     li.Price,
			Image:     li.Image,
			Qty:       li.Qty,
			Toppings:  li.Toppings,
		})
	}
	return items, nil
}

func legacyID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%w: line id missing", ErrMalformedSnapshot)
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return n.String(), nil
}
