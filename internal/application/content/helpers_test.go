package content_test

import (
	"sync"
	"time"

	"github.com/YouSangSon/academy-backoffice/internal/application/collection"
	"github.com/YouSangSon/academy-backoffice/internal/domain/repository"
)

func collectionAccessor(store repository.DocumentStore, name string) *collection.Accessor {
	return collection.New(store, name)
}

// tickingClock은 호출할 때마다 1ms씩 앞으로 가는 시계입니다
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	}
}
