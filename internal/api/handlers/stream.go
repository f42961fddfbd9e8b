package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/hunter/internal/screener"
	"github.com/wonny/hunter/pkg/logger"
)

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	progressBuffer = 64
)

// StreamMessage is sent to websocket clients
type StreamMessage struct {
	Type      string               `json:"type"` // progress, report, error
	Completed int                  `json:"completed,omitempty"`
	Total     int                  `json:"total,omitempty"`
	Report    *screener.ScanReport `json:"report,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// StreamHandler runs scans over a websocket, streaming progress
// ⭐ SSOT: 웹소켓 연결당 스캔 1회 (요청 1개 → progress* → report|error → close)
type StreamHandler struct {
	scanner  Scanner
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(scanner Scanner, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		scanner: scanner,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// ServeScan upgrades the connection and runs one scan
// GET /ws/scan
func (h *StreamHandler) ServeScan(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	var body ScanRequest
	if err := conn.ReadJSON(&body); err != nil {
		h.writeFinal(conn, StreamMessage{Type: "error", Error: "invalid scan request"})
		return
	}

	req, err := body.toScreener()
	if err == nil {
		err = h.scanner.Validate(req)
	}
	if err != nil {
		h.writeFinal(conn, StreamMessage{Type: "error", Error: err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 클라이언트 종료 감지 → 스캔 취소
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	progress := make(chan StreamMessage, progressBuffer)
	req.OnProgress = func(completed, total int) {
		select {
		case progress <- StreamMessage{Type: "progress", Completed: completed, Total: total}:
		default: // slow client, skip
		}
	}

	type outcome struct {
		report *screener.ScanReport
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := h.scanner.Scan(ctx, req)
		done <- outcome{report: report, err: err}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-progress:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.WithError(err).Debug("Progress write failed")
				cancel()
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				cancel()
			}
		case out := <-done:
			h.drain(conn, progress)
			if out.err != nil {
				h.writeFinal(conn, StreamMessage{Type: "error", Error: out.err.Error()})
				return
			}
			h.writeFinal(conn, StreamMessage{Type: "report", Report: out.report})
			return
		}
	}
}

// drain flushes queued progress so it precedes the report
func (h *StreamHandler) drain(conn *websocket.Conn, progress <-chan StreamMessage) {
	for {
		select {
		case msg := <-progress:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (h *StreamHandler) writeFinal(conn *websocket.Conn, msg StreamMessage) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.WithError(err).Debug("Final write failed")
		return
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "scan finished"))
}
