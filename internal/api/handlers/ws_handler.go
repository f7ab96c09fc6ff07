package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/linskybing/regscan/internal/progress"
	"github.com/linskybing/regscan/pkg/response"
	"k8s.io/klog/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Messages queued per client before it is considered too slow and dropped.
	clientQueue = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ScanMessage is the wire form of one progress event.
type ScanMessage struct {
	Type           progress.Kind `json:"type"`
	RepositoryName string        `json:"repositoryName,omitempty"`
	Progress       *int          `json:"progress,omitempty"`
	Error          string        `json:"error,omitempty"`
}

func newScanMessage(ev progress.Event) ScanMessage {
	msg := ScanMessage{Type: ev.Kind, RepositoryName: ev.RepositoryName}
	if ev.Kind == progress.KindProgress {
		p := ev.Progress
		msg.Progress = &p
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	return msg
}

// ScanHub relays bus events to websocket clients. Publishing never blocks:
// a client whose queue is full is disconnected.
type ScanHub struct {
	bus  *progress.Bus
	subs []progress.Subscription

	mu      sync.RWMutex
	clients map[string]chan []byte
}

func NewScanHub(bus *progress.Bus) *ScanHub {
	h := &ScanHub{
		bus:     bus,
		clients: make(map[string]chan []byte),
	}
	h.subs = bus.SubscribeAll(h.publish)
	return h
}

func (h *ScanHub) publish(ev progress.Event) error {
	data, err := json.Marshal(newScanMessage(ev))
	if err != nil {
		return err
	}

	var slow []string
	h.mu.RLock()
	for id, ch := range h.clients {
		select {
		case ch <- data:
		default:
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range slow {
		klog.Warningf("Dropping slow websocket client %s", id)
		h.remove(id)
	}
	return nil
}

func (h *ScanHub) add() (string, <-chan []byte) {
	id := uuid.NewString()
	ch := make(chan []byte, clientQueue)

	h.mu.Lock()
	h.clients[id] = ch
	h.mu.Unlock()
	return id, ch
}

func (h *ScanHub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(ch)
	}
}

// Clients reports how many websocket clients are attached.
func (h *ScanHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close detaches from the bus and disconnects every client.
func (h *ScanHub) Close() {
	for _, sub := range h.subs {
		h.bus.Unsubscribe(sub)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.clients {
		delete(h.clients, id)
		close(ch)
	}
}

// ServeWS streams scan events to one client until either side goes away.
func (h *ScanHub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Error: "websocket upgrade failed: " + err.Error()})
		return
	}

	id, ch := h.add()
	klog.V(2).Infof("Websocket client %s connected", id)

	go h.writeLoop(conn, ch)

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(id)
	klog.V(2).Infof("Websocket client %s disconnected", id)
}

func (h *ScanHub) writeLoop(conn *websocket.Conn, ch <-chan []byte) {
	pingTicker := time.NewTicker(pingPeriod)
	defer func() {
		pingTicker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-pingTicker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
