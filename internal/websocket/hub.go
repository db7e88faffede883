package websocket

import "github.com/rs/zerolog/log"

// Hub maintains the set of active clients and broadcasts activity messages
// to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound messages for global broadcast.
	broadcast chan []byte

	// Inbound messages for a single post's subscribers.
	targeted chan postMessage

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of post IDs to the set of clients subscribed to that post's feed.
	// Owned by the Run loop; all delivery goes through the channels above so
	// no other goroutine ever touches the maps.
	subscriptions map[string]map[*Client]bool
}

// postMessage is a broadcast addressed to one post's subscribers.
type postMessage struct {
	postID  string
	message []byte
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:     make(chan []byte),
		targeted:      make(chan postMessage),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
			// A client arriving on a post feed is subscribed right away.
			if client.PostID != "" {
				h.addSubscription(client, client.PostID)
			}
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeSubscription(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
					h.removeSubscription(client)
				}
			}
		case pm := <-h.targeted:
			for client := range h.subscriptions[pm.postID] {
				select {
				case client.Send <- pm.message:
				default:
					close(client.Send)
					delete(h.clients, client)
					delete(h.subscriptions[pm.postID], client)
				}
			}
		}
	}
}

// BroadcastGlobal sends a message to every connected client.
func (h *Hub) BroadcastGlobal(message []byte) {
	h.broadcast <- message
}

// BroadcastTo sends a message to all clients subscribed to a specific post.
// Delivery happens on the Run loop, like every other map access.
func (h *Hub) BroadcastTo(postID string, message []byte) {
	h.targeted <- postMessage{postID: postID, message: message}
}

func (h *Hub) addSubscription(client *Client, postID string) {
	if h.subscriptions[postID] == nil {
		h.subscriptions[postID] = make(map[*Client]bool)
	}
	h.subscriptions[postID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for postID, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, postID)
			}
		}
	}
}
