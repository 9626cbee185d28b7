package hub

import (
	"context"
	"encoding/json"

	"wisefido-vitals/internal/domain"

	"go.uber.org/zap"
)

// Event names pushed over the realtime channel.
const (
	EventVitalSignsUpdate = "vital_signs_update"
	EventNewVitalsRecord  = "new_vitals_record"
	EventHistoryUpdate    = "vitals_history_update"
)

// replayRecordCount is how many recent records a new subscriber receives.
const replayRecordCount = 10

// Envelope wraps every websocket message.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub maintains the set of connected viewer sessions and fans snapshot and
// record events out to all of them, best effort. A slow subscriber only
// loses its own messages; it never stalls the ingest path or its peers.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	// replay sources for new subscribers
	snapshotFn func() domain.VitalSnapshot
	recentFn   func(n int) []domain.MedicalRecord

	logger *zap.Logger
}

func NewHub(snapshotFn func() domain.VitalSnapshot, recentFn func(int) []domain.MedicalRecord, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		snapshotFn: snapshotFn,
		recentFn:   recentFn,
		logger:     logger,
	}
}

// Run owns the client set; it is the only goroutine that touches it.
// Blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("viewer connected", zap.String("remote", client.remoteAddr()))
			h.replay(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("viewer disconnected", zap.String("remote", client.remoteAddr()))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow or gone: drop the client, not the pipeline
					h.logger.Warn("viewer send buffer full, dropping client",
						zap.String("remote", client.remoteAddr()),
					)
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// replay sends the current snapshot plus the most recent records to one
// freshly connected client.
func (h *Hub) replay(client *Client) {
	if msg, ok := h.encode(EventVitalSignsUpdate, h.snapshotFn()); ok {
		select {
		case client.send <- msg:
		default:
		}
	}
	if msg, ok := h.encode(EventHistoryUpdate, h.recentFn(replayRecordCount)); ok {
		select {
		case client.send <- msg:
		default:
		}
	}
}

// PublishSnapshot fans the new live snapshot out to all viewers.
// Non-blocking: if the hub is saturated the update is dropped, the next
// one supersedes it anyway.
func (h *Hub) PublishSnapshot(snapshot domain.VitalSnapshot) {
	h.publish(EventVitalSignsUpdate, snapshot)
}

// PublishRecord fans a newly persisted medical record out to all viewers.
func (h *Hub) PublishRecord(record domain.MedicalRecord) {
	h.publish(EventNewVitalsRecord, record)
}

func (h *Hub) publish(event string, data any) {
	msg, ok := h.encode(event, data)
	if !ok {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast queue full, dropping event", zap.String("event", event))
	}
}

func (h *Hub) encode(event string, data any) ([]byte, bool) {
	msg, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.logger.Error("failed to marshal broadcast event", zap.String("event", event), zap.Error(err))
		return nil, false
	}
	return msg, true
}
