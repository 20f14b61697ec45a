package netplay

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/websocket"
)

// RelayPeer addresses the relay itself. Envelopes sent to it are handed to
// Hub.OnSnapshot and not forwarded.
const RelayPeer = "relay"

// Hub is the relay: it groups connections by match and routes envelopes
// between them. It never looks inside payloads.
type Hub struct {
	Upgrader websocket.Upgrader

	// OnJoin runs after a peer is registered, before it receives anything
	// else. The relay uses it to push the stored snapshot.
	OnJoin func(matchID, peer string)
	// OnSnapshot runs for every snapshot envelope routed through the hub.
	OnSnapshot func(matchID string, env Envelope)

	mu    sync.RWMutex
	rooms map[string]map[string]*Connection
}

// NewHub returns an empty hub accepting any origin.
func NewHub() *Hub {
	return &Hub{
		Upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		rooms:    make(map[string]map[string]*Connection),
	}
}

// ServeWS upgrades the request and serves peer in matchID until the
// socket closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, matchID, peer string) {
	if matchID == "" || peer == "" || peer == RelayPeer {
		http.Error(w, "match and peer are required", http.StatusBadRequest)
		return
	}
	if h.has(matchID, peer) {
		http.Error(w, "peer already connected", http.StatusConflict)
		return
	}
	ws, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("relay: upgrade %s/%s: %v", matchID, peer, err)
		return
	}
	conn := newConnection(ws)
	if !h.add(matchID, peer, conn) {
		conn.Close()
		ws.Close()
		return
	}
	go conn.writePump()
	log.Printf("relay: %s joined %s", peer, matchID)

	if h.OnJoin != nil {
		h.OnJoin(matchID, peer)
	}
	if env, err := NewEnvelope(TypePeerJoined, RelayPeer, peer); err == nil {
		h.route(matchID, peer, env)
	}

	conn.readPump(func(msg []byte) {
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			log.Printf("relay: bad envelope from %s/%s: %v", matchID, peer, err)
			return
		}
		env.From = peer
		h.route(matchID, peer, env)
	})

	h.remove(matchID, peer, conn)
	log.Printf("relay: %s left %s", peer, matchID)
	if env, err := NewEnvelope(TypePeerLeft, RelayPeer, peer); err == nil {
		h.route(matchID, peer, env)
	}
}

// SendTo delivers env to one peer of a match.
func (h *Hub) SendTo(matchID, peer string, env Envelope) error {
	h.mu.RLock()
	conn := h.rooms[matchID][peer]
	h.mu.RUnlock()
	if conn == nil {
		return ErrClosed
	}
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return conn.enqueue(b)
}

// Peers lists the peers connected to a match, sorted.
func (h *Hub) Peers(matchID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	peers := make([]string, 0, len(h.rooms[matchID]))
	for p := range h.rooms[matchID] {
		peers = append(peers, p)
	}
	sort.Strings(peers)
	return peers
}

// route sends env to env.To, or to every peer except the sender.
func (h *Hub) route(matchID, sender string, env Envelope) {
	if env.Type == TypeSnapshot && h.OnSnapshot != nil {
		h.OnSnapshot(matchID, env)
	}
	if env.To == RelayPeer {
		return
	}
	b, err := json.Marshal(env)
	if err != nil {
		log.Printf("relay: encode %s: %v", env.Type, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, conn := range h.rooms[matchID] {
		if id == sender || (env.To != "" && id != env.To) {
			continue
		}
		if err := conn.enqueue(b); err != nil {
			log.Printf("relay: send %s to %s/%s: %v", env.Type, matchID, id, err)
		}
	}
}

func (h *Hub) has(matchID, peer string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[matchID][peer]
	return ok
}

func (h *Hub) add(matchID, peer string, conn *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[matchID]
	if room == nil {
		room = make(map[string]*Connection)
		h.rooms[matchID] = room
	}
	if _, dup := room[peer]; dup {
		return false
	}
	room[peer] = conn
	return true
}

func (h *Hub) remove(matchID, peer string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[matchID]
	if room[peer] == conn {
		delete(room, peer)
	}
	if len(room) == 0 {
		delete(h.rooms, matchID)
	}
}
