package websocket

import (
	"bytes"
	"sync"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"

	"cryptoalpha/internal/models"
	"cryptoalpha/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Пул JSON-буферов: убирает аллокации при каждом Broadcast
var jsonBufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// Hub управляет всеми активными WebSocket соединениями.
//
// Центральный менеджер для broadcast сообщений всем подключенным клиентам
// дашборда: уведомления жизненного цикла позиций и обновления статистики
// доставляются без polling.
//
// Использование:
//  1. Создать hub: hub := NewHub()
//  2. Запустить в горутине: go hub.Run()
//  3. Отправлять сообщения: hub.BroadcastNotification(...)
type Hub struct {
	// Зарегистрированные клиенты
	clients map[*Client]bool

	// Broadcast канал для отправки сообщений всем клиентам
	broadcast chan []byte

	// Регистрация нового клиента
	register chan *Client

	// Отмена регистрации клиента
	unregister chan *Client

	// Остановка цикла Run
	done     chan struct{}
	stopOnce sync.Once

	// Счетчик сообщений, отброшенных при переполнении broadcast-канала
	dropped int64

	mu  sync.RWMutex
	log *utils.Logger
}

// NewHub создает новый Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        utils.L().WithComponent("websocket"),
	}
}

// Run запускает главный цикл Hub.
//
// Должен запускаться в отдельной горутине: go hub.Run()
//
// Рассылка идет без блокировки реестра: список клиентов копируется под
// коротким RLock, отстающие клиенты удаляются отдельно под Write Lock.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client connected", utils.Int("total", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client disconnected", utils.Int("total", total))

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var toRemove []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					// Клиент не успевает читать - отключаем
					toRemove = append(toRemove, client)
				}
			}

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				total := len(h.clients)
				h.mu.Unlock()
				h.log.Warn("slow clients removed",
					utils.Int("removed", len(toRemove)), utils.Int("total", total))
			}
		}
	}
}

// Broadcast сериализует сообщение и отправляет его всем клиентам
func (h *Hub) Broadcast(message interface{}) {
	buf := jsonBufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	if err := json.NewEncoder(buf).Encode(message); err != nil {
		h.log.Error("broadcast marshal failed", utils.Err(err))
		jsonBufferPool.Put(buf)
		return
	}

	// Encode добавляет завершающий перенос строки
	data := buf.Bytes()
	if len(data) > 0 && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
	}

	// Копируем данные: буфер вернется в пул
	msgCopy := make([]byte, len(data))
	copy(msgCopy, data)
	jsonBufferPool.Put(buf)

	// Неблокирующая отправка: переполненный канал не должен
	// останавливать торговый цикл
	select {
	case h.broadcast <- msgCopy:
	default:
		atomic.AddInt64(&h.dropped, 1)
	}
}

// Stop останавливает цикл Run. Повторный вызов безопасен.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// DroppedMessages возвращает число сообщений, отброшенных из-за
// переполнения broadcast-канала
func (h *Hub) DroppedMessages() int64 {
	return atomic.LoadInt64(&h.dropped)
}

// BroadcastNotification отправляет новое уведомление
func (h *Hub) BroadcastNotification(notif *models.Notification) {
	h.Broadcast(NewNotificationMessage(notif))
}

// BroadcastStatsUpdate отправляет обновление статистики
func (h *Hub) BroadcastStatsUpdate(stats *models.Stats) {
	h.Broadcast(NewStatsUpdateMessage(stats))
}

// BroadcastPositionUpdate отправляет изменение позиции
func (h *Hub) BroadcastPositionUpdate(position *models.Position) {
	h.Broadcast(NewPositionUpdateMessage(position))
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
