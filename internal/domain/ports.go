package domain

import "context"

// CartStorage — долговременное key-value хранилище сериализованной корзины.
// Put обязан быть атомарным: частичная запись не должна быть наблюдаема.
type CartStorage interface {
	// Get возвращает сохранённые данные или ErrStorageKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put целиком перезаписывает значение по ключу.
	Put(ctx context.Context, key string, data []byte) error
	// Delete удаляет ключ; отсутствие ключа ошибкой не считается.
	Delete(ctx context.Context, key string) error
}

// ProductLookup отдаёт актуальную версию товара из каталога.
type ProductLookup interface {
	Product(id string) (Product, bool)
}

// OrderDispatcher передаёт заказ во внешний канал и возвращает URI передачи.
type OrderDispatcher interface {
	Dispatch(ctx context.Context, order Order) (string, error)
}

// OrderPublisher дублирует заказ во вспомогательные каналы (очереди, шины событий).
type OrderPublisher interface {
	PublishOrder(ctx context.Context, order Order) error
}

// CartEventPublisher публикует события изменения корзины.
type CartEventPublisher interface {
	PublishCartEvent(ctx context.Context, event CartEvent) error
}
