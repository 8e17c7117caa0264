// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Time allowed for the peer to present a valid token after connecting.
	authWait = 30 * time.Second
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Event request types carried by IncomingEvent / OutgoingEvent.
const (
	SendMessage  = 1
	MarkRead     = 2
	Authenticate = 3
)

// TokenVerifier checks an identity-provider token and returns the lowercased
// email it belongs to.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, idToken string) (string, error)
}

// Client is a middleman between the ws connection and the Hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	// Connection id, for logs only.
	connId string

	// Email of the user, from the connect query; trusted only once the
	// matching token has been verified.
	email string

	chatService ChatService
	userService UserService
	verifier    TokenVerifier

	// Whether the Client has sent over a valid auth token.
	isAuthenticated bool
}

func NewClient(hub *Hub, conn *websocket.Conn, send chan []byte, email string, chatService ChatService, userService UserService, verifier TokenVerifier) *Client {
	return &Client{
		Hub:             hub,
		conn:            conn,
		send:            send,
		connId:          uuid.NewString(),
		email:           email,
		chatService:     chatService,
		userService:     userService,
		verifier:        verifier,
		isAuthenticated: false,
	}
}

// ReadPump pumps messages from the ws connection to the Hub.
//
// The application runs ReadPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) ReadPump() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.Hub.unregister <- c
		if err := c.conn.Close(); err != nil {
			log.Printf("Could not close network connection: %v", err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Unable to set read deadline: %v", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Disconnect clients that do not authenticate within the allotted time.
	disconnectTimer := time.AfterFunc(authWait, func() {
		errMessage, _ := json.Marshal("Did not authenticate within 30 seconds")
		c.send <- errMessage
		_ = c.conn.Close()
	})
	defer disconnectTimer.Stop()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			return
		}
		message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))

		var incomingEvent IncomingEvent
		if err := json.Unmarshal(message, &incomingEvent); err != nil {
			log.Printf("Could not process message: %v", err)
			continue
		}

		if c.isAuthenticated {
			switch incomingEvent.RequestType {
			case SendMessage:
				c.handleSendMessage(ctx, incomingEvent)
			case MarkRead:
				if err := c.chatService.MarkThreadRead(ctx, incomingEvent.ThreadId, c.email); err != nil {
					log.Printf("Could not mark thread %s as read: %v", incomingEvent.ThreadId, err)
				}
			}
		} else if incomingEvent.RequestType == Authenticate {
			email, err := c.verifier.VerifyToken(ctx, incomingEvent.Token)
			if err != nil {
				errMessage, _ := json.Marshal("Token not valid.")
				c.send <- errMessage
				return
			}
			if email != c.email {
				errMessage, _ := json.Marshal("Token does not match client email")
				c.send <- errMessage
				return
			}
			c.isAuthenticated = true
			disconnectTimer.Stop()
			c.Hub.Register <- c

			// Once identified, follow the profile document. If it disappears
			// the session is revoked and the connection must drop.
			go c.watchRevocation(ctx)
		}
	}
}

func (c *Client) handleSendMessage(ctx context.Context, incomingEvent IncomingEvent) {
	profile, err := c.userService.GetProfile(ctx, c.email)
	if err != nil {
		log.Printf("Could not load sender profile %s: %v", c.email, err)
		return
	}
	sender := UserSummary{Email: profile.Email, Name: profile.DisplayName, ImageUrl: profile.PhotoURL}

	message, err := c.chatService.SendMessage(ctx, incomingEvent.ThreadId, sender, incomingEvent.Text)
	if err != nil {
		log.Printf("Could not send message to thread %s: %v", incomingEvent.ThreadId, err)
		return
	}

	thread, err := c.chatService.GetThread(ctx, incomingEvent.ThreadId)
	if err != nil {
		log.Printf("Could not load thread %s: %v", incomingEvent.ThreadId, err)
		return
	}

	c.Hub.send <- OutgoingEvent{
		ThreadId:     incomingEvent.ThreadId,
		RequestType:  SendMessage,
		Message:      &message,
		Participants: thread.UserIds,
		Client:       c,
	}
}

// watchRevocation closes the connection when the user's profile document is
// deleted, which signs the client out everywhere.
func (c *Client) watchRevocation(ctx context.Context) {
	feed, err := c.userService.WatchProfile(ctx, c.email)
	if err != nil {
		log.Printf("Could not watch profile %s: %v", c.email, err)
		return
	}
	defer feed.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-feed.C:
			if !ok {
				return
			}
			if event.Revoked {
				log.Printf("Session revoked for %s (conn %s)", c.email, c.connId)
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session revoked"),
					time.Now().Add(writeWait))
				_ = c.conn.Close()
				return
			}
		}
	}
}

// WritePump pumps messages from the Hub to the ws connection.
//
// A goroutine running WritePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			// Add queued chat messages to the current ws message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write(newline)
				_, _ = w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
