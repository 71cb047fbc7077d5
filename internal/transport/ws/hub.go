package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/metaspex/interviews/internal/service"
)

// Hub fans out one JSON progress frame per Submit/Revise to every
// watcher connection of the campaign the interview belongs to. There is
// no client->server traffic beyond the initial upgrade.
type Hub struct {
	// campaignID -> connections watching it.
	watchers map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *broadcastMessage
}

// Connection is one watcher's WebSocket connection.
type Connection struct {
	CampaignID string
	Send       chan []byte
	Hub        *Hub
}

type broadcastMessage struct {
	CampaignID string
	Data       []byte
}

func NewHub() *Hub {
	h := &Hub{
		watchers:   make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *broadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.watchers[conn.CampaignID] == nil {
				h.watchers[conn.CampaignID] = make(map[*Connection]struct{})
			}
			h.watchers[conn.CampaignID][conn] = struct{}{}
			h.mu.Unlock()
			log.Printf("watcher connected to campaign %s", conn.CampaignID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.watchers[conn.CampaignID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
				}
			}
			h.mu.Unlock()
			log.Printf("watcher disconnected from campaign %s", conn.CampaignID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.watchers[msg.CampaignID] {
				select {
				case conn.Send <- msg.Data:
				default:
					// Drop the frame if the watcher's buffer is full;
					// the next Submit/Revise will bring it current.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) { h.register <- conn }

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) { h.unregister <- conn }

// BroadcastProgress implements service.Broadcaster.
func (h *Hub) BroadcastProgress(campaignID string, frame *service.ProgressFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	h.broadcast <- &broadcastMessage{CampaignID: campaignID, Data: data}
}

// DisconnectCampaign implements service.Broadcaster: it closes every
// watcher connection of campaignID, done once the campaign's window has
// closed and no further progress frames will ever be sent.
func (h *Hub) DisconnectCampaign(campaignID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.watchers[campaignID] {
		delete(h.watchers[campaignID], conn)
		close(conn.Send)
	}
	delete(h.watchers, campaignID)
}
