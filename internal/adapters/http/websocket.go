package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/fleetspot/internal/adapters/nats"
	"github.com/samirrijal/fleetspot/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// wsMessage is sent by clients to narrow or widen the relayed drivers.
type wsMessage struct {
	Action   string `json:"action"`   // "subscribe" | "unsubscribe"
	DriverID string `json:"driverId"` // empty means every driver
}

func wsSubject(driverID string) string {
	if driverID == "" {
		return natsadapter.LocationSubjects
	}
	return natsadapter.LocationSubject(driverID)
}

// liveFeed is one client's set of NATS subscriptions. Writes to the socket
// are serialised because NATS callbacks and the ping loop run concurrently.
type liveFeed struct {
	nc   *nats.Conn
	conn *websocket.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

func (f *liveFeed) write(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conn.WriteMessage(messageType, data)
}

func (f *liveFeed) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return f.write(websocket.TextMessage, data)
}

func (f *liveFeed) subscribe(subject string) error {
	if _, ok := f.subs[subject]; ok {
		return f.writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
	}
	sub, err := f.nc.Subscribe(subject, func(msg *nats.Msg) {
		_ = f.write(websocket.TextMessage, msg.Data)
	})
	if err != nil {
		return f.writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
	}
	f.subs[subject] = sub
	return f.writeJSON(map[string]string{"status": "subscribed", "subject": subject})
}

func (f *liveFeed) unsubscribe(subject string) error {
	sub, ok := f.subs[subject]
	if !ok {
		return f.writeJSON(map[string]string{"error": "not subscribed to " + subject})
	}
	_ = sub.Unsubscribe()
	delete(f.subs, subject)
	return f.writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
}

func (f *liveFeed) close() {
	for _, sub := range f.subs {
		_ = sub.Unsubscribe()
	}
}

func (f *liveFeed) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := f.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// trackConnection counts a live client until the returned func is called.
func trackConnection() (release func()) {
	metrics.ActiveWebSockets.Inc()
	var once sync.Once
	return func() {
		once.Do(metrics.ActiveWebSockets.Dec)
	}
}

// WebSocketHandler relays location events from NATS to the client.
// Every driver is relayed on connect. Clients send
// {"action":"subscribe","driverId":"..."} to follow one driver and
// {"action":"unsubscribe"} to drop the all-drivers feed.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		if nc == nil {
			_ = c.WriteJSON(map[string]string{"error": "live feed unavailable"})
			return
		}

		remote := c.RemoteAddr().String()
		feed := &liveFeed{nc: nc, conn: c, subs: make(map[string]*nats.Subscription)}
		defer feed.close()

		if err := feed.subscribe(natsadapter.LocationSubjects); err != nil {
			slog.Warn("ws initial subscribe failed", "remote", remote, "error", err)
			return
		}
		slog.Info("ws client connected", "remote", remote)
		defer trackConnection()()

		done := make(chan struct{})
		defer close(done)
		go feed.keepAlive(done)

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = feed.writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "subscribe":
				err = feed.subscribe(wsSubject(m.DriverID))
			case "unsubscribe":
				err = feed.unsubscribe(wsSubject(m.DriverID))
			default:
				err = feed.writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
			if err != nil {
				break
			}
		}

		slog.Info("ws client disconnected", "remote", remote)
	}
}
