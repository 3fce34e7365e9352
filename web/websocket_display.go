package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
)

var upgrader = websocket.Upgrader{} // use default options

// KeyEvent is the message browsers send on the display socket.
// Code is a KeyboardEvent.code such as "KeyQ".
type KeyEvent struct {
	Code    string `json:"code"`
	Pressed bool   `json:"pressed"`
}

// client holds the latest frame not yet written to one socket
type client struct {
	frames chan []byte
}

// Boot implements chip8.Display.
func (server *Server) Boot() error {
	return nil
}

// Render implements chip8.Display.
// Slow sockets skip frames instead of blocking the console.
func (server *Server) Render(screen chip8.Screen) error {
	frame := server.config.Theme.RGBA(screen)

	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	server.last = frame
	for c := range server.clients {
		select {
		case <-c.frames:
		default:
		}
		c.frames <- frame
	}

	return nil
}

func (server *Server) addClient() *client {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	c := &client{frames: make(chan []byte, 1)}
	if server.last != nil {
		c.frames <- server.last
	}
	server.clients[c] = struct{}{}

	return c
}

func (server *Server) removeClient(c *client) {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	delete(server.clients, c)
}

func (server *Server) clientCount() int {
	server.wsMutex.RLock()
	defer server.wsMutex.RUnlock()

	return len(server.clients)
}

func (server *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Error upgrading to websocket", slog.Any("error", err))
		return
	}
	defer conn.Close()

	slog.Info("Connecting to display", slog.String("remote", r.RemoteAddr))
	c := server.addClient()
	defer server.removeClient(c)

	done := make(chan struct{})
	go server.readKeys(conn, done)

	for {
		select {
		case frame := <-c.frames:
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				slog.Info("Disconnecting from display", slog.Any("reason", err))
				return
			}

		case <-done:
			slog.Info("Disconnecting from display")
			return
		}
	}
}

// readKeys forwards key events until the socket fails, then closes done.
// Messages that are not key events are skipped.
func (server *Server) readKeys(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var event KeyEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			slog.Warn("Ignoring malformed key event", slog.Any("error", err))
			continue
		}

		key, ok := chip8.KeyByCode(event.Code)
		if !ok {
			continue
		}
		if err := server.console.SetKey(key, event.Pressed); err != nil {
			slog.Debug("Key dropped", slog.String("code", event.Code), slog.Any("error", err))
		}
	}
}
