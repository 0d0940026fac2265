package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	log "github.com/echocat/slf4g"
	"github.com/gorilla/websocket"

	"github.com/blaubaer/voice-recorder/pkg/analysis"
	"github.com/blaubaer/voice-recorder/pkg/session"
)

const (
	clientQueueSize = 64
	writeTimeout    = 5 * time.Second
)

// Hub fans messages out to all connected live clients. Broadcasting never
// blocks: a client which cannot keep up loses messages.
type Hub struct {
	mutex   sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (this *client) close() {
	this.once.Do(func() {
		close(this.done)
		_ = this.conn.Close()
	})
}

func (this *Hub) Len() int {
	this.mutex.RLock()
	defer this.mutex.RUnlock()
	return len(this.clients)
}

// OnEvent is a session.Listener.
func (this *Hub) OnEvent(e session.Event) {
	this.broadcast(messageOf(e))
}

func (this *Hub) broadcast(m message) {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	if len(this.clients) == 0 {
		return
	}
	b, err := json.Marshal(m)
	if err != nil {
		log.WithError(err).
			With("kind", m.Kind).
			Warn("Cannot encode live message.")
		return
	}
	for c := range this.clients {
		select {
		case c.send <- b:
		default:
			log.With("kind", m.Kind).
				Debug("Live client too slow. Message dropped.")
		}
	}
}

func (this *Hub) serve(conn *websocket.Conn, greeting message) {
	c := &client{
		conn: conn,
		send: make(chan []byte, clientQueueSize),
		done: make(chan struct{}),
	}
	if b, err := json.Marshal(greeting); err == nil {
		c.send <- b
	}

	this.mutex.Lock()
	if this.clients == nil {
		this.clients = make(map[*client]struct{})
	}
	this.clients[c] = struct{}{}
	this.mutex.Unlock()

	defer func() {
		this.mutex.Lock()
		delete(this.clients, c)
		this.mutex.Unlock()
		c.close()
	}()

	go this.read(c)

	for {
		select {
		case <-c.done:
			return
		case b := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				log.WithError(err).
					Debug("Cannot write to live client.")
				return
			}
		}
	}
}

// read only exists to notice when the client goes away.
func (this *Hub) read(c *client) {
	defer c.close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).
					Debug("Live client gone.")
			}
			return
		}
	}
}

// PushFrames sends an analysis frame of tap every interval to all clients
// until ctx is done.
func (this *Hub) PushFrames(ctx context.Context, tap *analysis.Tap, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if this.Len() == 0 {
			continue
		}
		frame, ok := analysis.Capture(tap.Current())
		if !ok {
			continue
		}
		this.broadcast(message{Kind: kindAnalysis, Frame: &frame})
	}
}

func (this *Hub) Close() {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	for c := range this.clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(time.Second))
		c.close()
	}
}
