// Package debug streams request logs and heartbeats to a developer
// dashboard over a websocket. Everything is a no-op until Enable is called.
package debug

import (
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

var (
	mu  sync.RWMutex
	hub *Hub
)

// Enable starts the shared hub. Later calls are no-ops.
func Enable() {
	mu.Lock()
	defer mu.Unlock()
	if hub != nil {
		return
	}
	hub = NewHub()
	go hub.Run()
	log.Println("🐛 Debug dashboard enabled")
}

// Disable stops the shared hub.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	if hub != nil {
		hub.Stop()
		hub = nil
	}
}

// IsEnabled reports whether the dashboard is running.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return hub != nil
}

func current() *Hub {
	mu.RLock()
	defer mu.RUnlock()
	return hub
}

// HandleWebSocket serves one dashboard connection.
func HandleWebSocket(conn *websocket.Conn) {
	if h := current(); h != nil {
		h.Handle(conn)
	}
}

// SendLog publishes a log line when the dashboard is enabled.
func SendLog(source, level, message string, metadata map[string]any) {
	h := current()
	if h == nil {
		return
	}
	data, err := encodeLog(source, level, message, metadata)
	if err != nil {
		log.Printf("dashboard encode failed: %v", err)
		return
	}
	h.Publish(data)
}

// LogError publishes a server-side failure.
func LogError(message string, metadata map[string]any) {
	SendLog("backend", "error", message, metadata)
}

// Heartbeat publishes goroutine and heap figures every interval until stop
// is closed.
func Heartbeat(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !IsEnabled() {
				continue
			}
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			SendLog("backend", "debug", "heartbeat", map[string]any{
				"goroutines": runtime.NumGoroutine(),
				"heap_mb":    m.HeapAlloc / (1024 * 1024),
			})
		case <-stop:
			return
		}
	}
}
