package ws

import (
	"encoding/json"
	"sync"

	"go-credit-inventory/internal/service"

	"github.com/gofiber/contrib/websocket"
	log "github.com/sirupsen/logrus"
)

// Conn is the part of a websocket connection the hub writes to
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Subscription registers a connection for the events of one profile
type Subscription struct {
	Conn    Conn
	Profile string
}

// Message is an encoded event. An empty Profile reaches every client.
type Message struct {
	Profile string
	Payload []byte
}

// broadcastBuffer bounds the events queued ahead of Run
const broadcastBuffer = 256

type Hub struct {
	Clients    map[Conn]string
	Register   chan Subscription
	Unregister chan Conn
	Broadcast  chan Message
	quit       chan struct{}
	stopOnce   sync.Once
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[Conn]string),
		Register:   make(chan Subscription),
		Unregister: make(chan Conn),
		Broadcast:  make(chan Message, broadcastBuffer),
		quit:       make(chan struct{}),
	}
}

// Subscribe adds conn for the events of profile. It reports false once the hub is stopped.
func (h *Hub) Subscribe(conn Conn, profile string) bool {
	select {
	case <-h.quit:
		return false
	default:
	}
	select {
	case h.Register <- Subscription{Conn: conn, Profile: profile}:
		return true
	case <-h.quit:
		return false
	}
}

// Unsubscribe removes and closes conn. After Stop it returns at once.
func (h *Hub) Unsubscribe(conn Conn) {
	select {
	case h.Unregister <- conn:
	case <-h.quit:
	}
}

func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.Register:
			h.mutex.Lock()
			h.Clients[sub.Conn] = sub.Profile
			h.mutex.Unlock()
			log.WithField("profile", sub.Profile).Debug("websocket client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn, profile := range h.Clients {
				if message.Profile != "" && message.Profile != profile {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, message.Payload); err != nil {
					log.WithError(err).Debug("dropping websocket client")
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()

		case <-h.quit:
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every client. Calling it again is a no-op.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// ClientCount reports how many clients are connected
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Publish encodes the event and queues it for Run. Events from one caller keep
// their order. When the queue is full the event is dropped rather than blocking.
func (h *Hub) Publish(event service.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).WithField("action", event.Action).Error("encode websocket event")
		return
	}
	select {
	case <-h.quit:
		return
	default:
	}
	select {
	case h.Broadcast <- Message{Profile: event.Profile, Payload: payload}:
	default:
		log.WithField("action", event.Action).Warn("websocket queue full, dropping event")
	}
}

var _ service.Publisher = (*Hub)(nil)
