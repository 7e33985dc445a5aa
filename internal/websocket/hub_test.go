package websocket

import (
	"sync"
	"testing"
	"time"

	"cryptoalpha/internal/models"
	"cryptoalpha/internal/service"
)

// Hub должен подходить сервисам как broadcaster
var _ service.WebSocketBroadcaster = (*Hub)(nil)
var _ service.StatsBroadcaster = (*Hub)(nil)

// ============================================================
// Unit Tests
// ============================================================

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub returned nil")
	}

	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}

	if hub.DroppedMessages() != 0 {
		t.Errorf("expected 0 dropped messages, got %d", hub.DroppedMessages())
	}
}

func TestOriginChecker_Check(t *testing.T) {
	checker := &OriginChecker{
		allowedOrigins: map[string]struct{}{
			"http://localhost:3000": {},
			"https://example.com":   {},
		},
		allowAll: false,
	}

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},                       // empty origin allowed
		{"http://localhost:3000", true},  // allowed
		{"https://example.com", true},    // allowed
		{"http://evil.com", false},       // not allowed
		{"http://localhost:8080", false}, // not in list
	}

	for _, tt := range tests {
		got := checker.Check(tt.origin)
		if got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestOriginChecker_AllowAll(t *testing.T) {
	checker := &OriginChecker{
		allowAll: true,
	}

	origins := []string{
		"http://localhost:3000",
		"https://evil.com",
		"http://anything.example.org",
	}

	for _, origin := range origins {
		if !checker.Check(origin) {
			t.Errorf("allowAll=true but Check(%q) = false", origin)
		}
	}
}

func TestHub_BroadcastNonBlocking(t *testing.T) {
	// Run не запущен: канал заполнится и лишние сообщения должны
	// отбрасываться без блокировки
	hub := NewHub()

	for i := 0; i < 1000; i++ {
		hub.Broadcast(map[string]int{"i": i})
	}

	if hub.DroppedMessages() == 0 {
		t.Error("expected dropped messages when broadcast channel is full")
	}
}

func TestHub_Stop(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	hub.Stop()
	hub.Stop() // повторный вызов безопасен

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Error("Hub.Run() did not exit after Stop()")
	}
}

func TestHub_DeliversToClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		hub:  hub,
		send: make(chan []byte, clientSendBufferSize),
	}
	hub.register <- client

	deadline := time.After(1 * time.Second)
	for hub.ClientCount() != 1 {
		select {
		case <-deadline:
			t.Fatal("client was not registered")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	hub.BroadcastNotification(&models.Notification{
		ID:       7,
		Type:     models.NotificationTypeTP,
		Severity: models.SeverityInfo,
		Asset:    "ETH",
		Message:  "Тейк-профит",
	})

	select {
	case msg := <-client.send:
		if len(msg) == 0 {
			t.Error("expected non-empty message")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("message was not delivered to client")
	}

	hub.unregister <- client
}

// ============================================================
// Тесты фабрик сообщений
// ============================================================

func TestNewNotificationMessage(t *testing.T) {
	notif := &models.Notification{
		ID:        42,
		Type:      models.NotificationTypeSL,
		Severity:  models.SeverityWarn,
		Asset:     "SOL",
		Message:   "Стоп-лосс",
		Meta:      map[string]interface{}{"position_id": 3},
		Timestamp: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}

	msg := NewNotificationMessage(notif)

	if msg.Type != MessageTypeNotification {
		t.Errorf("expected type %q, got %q", MessageTypeNotification, msg.Type)
	}
	if msg.Data.ID != 42 || msg.Data.Asset != "SOL" {
		t.Errorf("unexpected notification data: %+v", msg.Data)
	}
	if msg.Data.Timestamp != notif.Timestamp {
		t.Error("notification timestamp must be preserved")
	}
}

func TestNewStatsUpdateMessage(t *testing.T) {
	stats := &models.Stats{TotalTrades: 10, TotalPnl: 15.5}

	msg := NewStatsUpdateMessage(stats)

	if msg.Type != MessageTypeStatsUpdate {
		t.Errorf("expected type %q, got %q", MessageTypeStatsUpdate, msg.Type)
	}
	if msg.Data.TotalTrades != 10 {
		t.Errorf("expected 10 total trades, got %d", msg.Data.TotalTrades)
	}
}

// ============================================================
// Benchmarks
// ============================================================

func BenchmarkHub_Broadcast(b *testing.B) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	notif := &models.Notification{
		ID:       1,
		Type:     models.NotificationTypeOpen,
		Severity: models.SeverityInfo,
		Asset:    "ETH",
		Message:  "benchmark message",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hub.BroadcastNotification(notif)
	}
}

func BenchmarkOriginChecker_Check(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		originChecker.Check("http://localhost:3000")
	}
}

// ============================================================
// Parallel Stress Test
// ============================================================

func TestHub_ConcurrentOperations(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	var wg sync.WaitGroup
	const goroutines = 10
	const operations = 1000

	// Concurrent broadcasts
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operations; j++ {
				hub.Broadcast(map[string]int{"goroutine": id, "op": j})
			}
		}(i)
	}

	// Concurrent ClientCount reads
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < operations; j++ {
				_ = hub.ClientCount()
			}
		}()
	}

	wg.Wait()
}
