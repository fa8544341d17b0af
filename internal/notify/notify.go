package notify

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"
)

const (
	RegisterMessageType     = "register"
	GameApprovedMessageType = "game_approved"
)

// RegisterMessage is what a floor display sends once over UDP to start
// receiving approval pings.
type RegisterMessage struct {
	Type      string `json:"type"`
	DisplayID string `json:"display_id"`
}

// GameApprovedMessage is pushed to every registered display when a
// reviewer approves a game.
type GameApprovedMessage struct {
	Type     string `json:"type"`
	GameID   string `json:"game_id"`
	Name     string `json:"name"`
	VenueID  string `json:"venue_id,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

type Client struct {
	DisplayID string
	Addr      *net.UDPAddr
}

type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(displayID string, addr *net.UDPAddr) {
	if displayID == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[displayID] = Client{DisplayID: displayID, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(displayID string) {
	r.mu.Lock()
	delete(r.clients, displayID)
	r.mu.Unlock()
}

func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

type Server struct {
	addr     string
	registry *Registry
	logger   *log.Logger

	mu   sync.Mutex
	conn *net.UDPConn
}

func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, registry: registry, logger: logger}
}

func (s *Server) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	s.logger.Printf("UDP notify server listening on %s", s.addr)

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		msg, err := parseRegisterMessage(buffer[:n])
		if err != nil {
			s.logger.Printf("invalid UDP message from %s: %v", addr, err)
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.DisplayID, addr)
		s.logger.Printf("registered display %s (%s)", msg.DisplayID, addr)
	}
}

// Close stops the receive loop; Run returns nil afterwards.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Server) current() *net.UDPConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// BroadcastApproval pushes an approval ping to every registered display.
func (s *Server) BroadcastApproval(gameID, name, venueID, parentID string) {
	conn := s.current()
	if conn == nil {
		s.logger.Printf("UDP notify server not running")
		return
	}
	payload, err := json.Marshal(GameApprovedMessage{
		Type:     GameApprovedMessageType,
		GameID:   gameID,
		Name:     name,
		VenueID:  venueID,
		ParentID: parentID,
	})
	if err != nil {
		s.logger.Printf("failed to marshal broadcast: %v", err)
		return
	}

	clients := s.registry.Snapshot()
	for _, client := range clients {
		s.sendWithRetry(conn, client, payload)
	}
}

func (s *Server) sendWithRetry(conn *net.UDPConn, client Client, payload []byte) {
	if err := sendOnce(conn, client, payload); err == nil {
		return
	}
	if err := sendOnce(conn, client, payload); err != nil {
		s.logger.Printf("failed to notify display %s at %s: %v", client.DisplayID, client.Addr, err)
		s.registry.Remove(client.DisplayID)
	}
}

func sendOnce(conn *net.UDPConn, client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	_, err := conn.WriteToUDP(payload, client.Addr)
	return err
}

func parseRegisterMessage(data []byte) (RegisterMessage, error) {
	var msg RegisterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.DisplayID == "" || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}
