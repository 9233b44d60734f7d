package websocketPkg

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// IOperatorBridge is a client connection to the human-operator console. When a
// conversation escalates, the turn is pushed so an operator can pick it up
// live. Pushes are best-effort: a dead console never fails a chat turn.
type IOperatorBridge interface {
	PushEscalation(payload OperatorPayload) error
	IsConnected() bool
	Reconnect() error
	Close()
}

type OperatorPayload struct {
	ConversationID string  `json:"conversation_id"`
	VisitorID      string  `json:"visitor_id"`
	Message        string  `json:"message"`
	BotDraft       string  `json:"bot_draft"`
	Intent         string  `json:"intent"`
	Score          float64 `json:"score"`
	Reason         string  `json:"reason"`
}

type operatorBridge struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	writeTimeout time.Duration
}

func NewOperatorBridge() IOperatorBridge {
	bridge := &operatorBridge{
		writeTimeout: 5 * time.Second,
	}

	go func() {
		if err := bridge.Reconnect(); err != nil {
			log.Printf("Initial connection to operator console failed: %v. Will retry on demand.", err)
		} else {
			log.Printf("Connected to operator console")
		}
	}()

	return bridge
}

func (b *operatorBridge) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

func (b *operatorBridge) Reconnect() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}

	url := os.Getenv("OPERATOR_CONSOLE_WS_URL")
	if url == "" {
		return fmt.Errorf("OPERATOR_CONSOLE_WS_URL not configured")
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial operator console: %w", err)
	}

	b.conn = conn
	return nil
}

func (b *operatorBridge) PushEscalation(payload OperatorPayload) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()

	if conn == nil {
		if err := b.Reconnect(); err != nil {
			return err
		}
		b.mu.Lock()
		conn = b.conn
		b.mu.Unlock()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal operator payload: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		return fmt.Errorf("operator console not connected")
	}

	b.conn.SetWriteDeadline(time.Now().Add(b.writeTimeout))
	if err := b.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		// drop the connection so the next push redials
		b.conn.Close()
		b.conn = nil
		return fmt.Errorf("failed to push escalation: %w", err)
	}

	return nil
}

func (b *operatorBridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}
