package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

// Manager fans notification events out to the connected clients of a user.
// The stream is push-only; the only inbound message clients send is ping.
type Manager struct {
	clients        map[string]*Client
	userIndex      map[string]map[string]bool
	clientsMutex   sync.RWMutex
	Register       chan *Client
	Unregister     chan *Client
	HandleMessage  chan *ClientMessage
	maxConnPerUser int
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
}

func NewManager(maxConnPerUser int, writeWait, pongWait, pingPeriod time.Duration) *Manager {
	return &Manager{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]bool),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		HandleMessage:  make(chan *ClientMessage),
		maxConnPerUser: maxConnPerUser,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pingPeriod,
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)

		case clientMsg := <-m.HandleMessage:
			m.processMessage(clientMsg)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.userIndex[client.UserID] == nil {
		m.userIndex[client.UserID] = make(map[string]bool)
	}

	if len(m.userIndex[client.UserID]) >= m.maxConnPerUser {
		log.Printf("max connections reached for user %s", client.UserID)
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.userIndex[client.UserID][client.ID] = true

	log.Printf("client registered: %s (user: %s)", client.ID, client.UserID)
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		delete(m.userIndex[client.UserID], client.ID)

		if len(m.userIndex[client.UserID]) == 0 {
			delete(m.userIndex, client.UserID)
		}

		close(client.Send)
		log.Printf("client unregistered: %s", client.ID)
	}
}

func (m *Manager) processMessage(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		log.Printf("error unmarshaling message: %v", err)
		return
	}

	if msg.Type == EventPing {
		pong, err := NewMessage(EventPong, nil)
		if err != nil {
			return
		}
		pongBytes, _ := json.Marshal(pong)
		select {
		case clientMsg.Client.Send <- pongBytes:
		default:
		}
	}
}

// NotifyUser pushes an event to every connection of a single user.
func (m *Manager) NotifyUser(userID string, eventType EventType, payload interface{}) {
	m.NotifyUsers([]string{userID}, eventType, payload)
}

// NotifyUsers pushes an event to every connection of each listed user.
// Users without open connections are skipped silently.
func (m *Manager) NotifyUsers(userIDs []string, eventType EventType, payload interface{}) {
	message, err := NewMessage(eventType, payload)
	if err != nil {
		log.Printf("error building %s event: %v", eventType, err)
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("error marshaling %s event: %v", eventType, err)
		return
	}

	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	for _, userID := range userIDs {
		clientIDs, exists := m.userIndex[userID]
		if !exists {
			continue
		}

		for clientID := range clientIDs {
			client := m.clients[clientID]
			select {
			case client.Send <- messageBytes:
			default:
				log.Printf("client %s send buffer full, dropping event", clientID)
			}
		}
	}
}

func (m *Manager) GetUserConnections(userID string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	if clients, exists := m.userIndex[userID]; exists {
		return len(clients)
	}
	return 0
}
