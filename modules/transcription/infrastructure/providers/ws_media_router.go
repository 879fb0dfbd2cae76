package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"sessioncore/server/modules/transcription/domain/services"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// outboundMessage is the structured envelope published on a topic within a
// room (spec §6: "structured data messages on named topics").
type outboundMessage struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// WSMediaRouter is a gorilla/websocket-backed realtime media router: one
// room per session, connections registered by a Gin handler and consumed by
// the Realtime Ingest Adapter through MediaSource, with MediaPublisher
// broadcasting structured messages back out on the same connections.
type WSMediaRouter struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

type room struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
	out   chan services.MediaFrame
}

// NewWSMediaRouter constructs an empty WSMediaRouter.
func NewWSMediaRouter() *WSMediaRouter {
	return &WSMediaRouter{rooms: make(map[string]*room)}
}

func (r *WSMediaRouter) roomFor(roomName string) *room {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomName]
	if !ok {
		rm = &room{conns: make(map[*websocket.Conn]bool), out: make(chan services.MediaFrame, 64)}
		r.rooms[roomName] = rm
	}
	return rm
}

// HandleConnection upgrades an incoming HTTP request to a websocket and
// registers it under roomName, reading raw PCM frames until the client
// disconnects.
func (r *WSMediaRouter) HandleConnection(c *gin.Context, roomName string, sampleRateHz int) error {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return fmt.Errorf("upgrade websocket: %w", err)
	}

	rm := r.roomFor(roomName)
	rm.mu.Lock()
	rm.conns[conn] = true
	rm.mu.Unlock()

	defer func() {
		rm.mu.Lock()
		delete(rm.conns, conn)
		rm.mu.Unlock()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil
		}
		samples := make([]int16, len(data)/2)
		for i := range samples {
			samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
		}
		rm.out <- services.MediaFrame{RoomName: roomName, SampleRateHz: sampleRateHz, PCM: samples}
	}
}

// Publish implements MediaPublisher by broadcasting a topic-tagged payload
// to every connection currently registered in roomName.
func (r *WSMediaRouter) Publish(roomName, topic string, payload []byte) error {
	r.mu.RLock()
	rm, ok := r.rooms[roomName]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	envelope, err := json.Marshal(outboundMessage{Topic: topic, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal outbound message: %w", err)
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	for conn := range rm.conns {
		if err := conn.WriteMessage(websocket.TextMessage, envelope); err != nil {
			delete(rm.conns, conn)
			conn.Close()
		}
	}
	return nil
}

// Frames implements MediaSource, returning the channel of inbound frames
// for roomName, closed when CloseRoom is called for that room.
func (r *WSMediaRouter) Frames(roomName string) (<-chan services.MediaFrame, error) {
	rm := r.roomFor(roomName)
	return rm.out, nil
}

// CloseRoom tears down a room's connections and output channel.
func (r *WSMediaRouter) CloseRoom(roomName string) {
	r.mu.Lock()
	rm, ok := r.rooms[roomName]
	delete(r.rooms, roomName)
	r.mu.Unlock()
	if !ok {
		return
	}
	rm.mu.Lock()
	for conn := range rm.conns {
		conn.Close()
	}
	rm.mu.Unlock()
	close(rm.out)
}

var (
	_ services.MediaPublisher = (*WSMediaRouter)(nil)
	_ services.MediaSource    = (*WSMediaRouter)(nil)
)
