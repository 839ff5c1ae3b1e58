package auth

import (
	"sync"

	"github.com/YouSangSon/academy-backoffice/internal/domain/entity"
)

const subscriberBuffer = 16

// hub은 세션 변경 이벤트를 구독자에게 나눠줍니다. 느린 구독자의 이벤트는 버립니다
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan entity.SessionEvent
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan entity.SessionEvent)}
}

func (h *hub) subscribe() (<-chan entity.SessionEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan entity.SessionEvent, subscriberBuffer)
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (h *hub) publish(ev entity.SessionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
