package api

import (
	"encoding/json"
	"log"
)

// Hub maintains the set of connected clients, keyed by user email, and routes
// chat events to the participants of a thread. A user may hold several
// connections at once (one per device). Clients register only after their
// token handshake succeeds, so every connection in the map is authenticated.
type Hub struct {
	clients map[string][]*Client

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Outbound events addressed to thread participants.
	send chan OutgoingEvent
}

func NewHub() *Hub {
	return &Hub{
		send:       make(chan OutgoingEvent),
		Register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
	}
}

// remove drops a single connection for an email, closing its send channel and
// deleting the key once the last connection is gone.
func (h *Hub) remove(email string, client *Client) {
	conns, ok := h.clients[email]
	if !ok {
		return
	}
	for i, c := range conns {
		if c == client {
			length := len(conns) - 1
			conns[i] = conns[length]
			conns[length] = nil
			h.clients[email] = conns[:length]
			close(client.send)
			break
		}
	}
	if len(h.clients[email]) == 0 {
		delete(h.clients, email)
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client.email] = append(h.clients[client.email], client)

		case client := <-h.unregister:
			h.remove(client.email, client)

		case outgoingEvent := <-h.send:
			currentClient := outgoingEvent.Client
			outgoingEvent.Client = nil

			message, err := json.Marshal(outgoingEvent)
			if err != nil {
				log.Printf("Could not process outgoing message: %v", err)
				continue
			}

			// Deliver to every connection of every participant except the one
			// that produced the event.
			for _, email := range outgoingEvent.Participants {
				for _, client := range h.clients[email] {
					if client == currentClient {
						continue
					}
					select {
					case client.send <- message:
					default:
						h.remove(email, client)
					}
				}
			}
		}
	}
}
