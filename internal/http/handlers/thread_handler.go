// Package handlers – thread and message endpoints.
//
// Routes covered here:
//
//	POST /characters/:id/threads       start a thread with a character
//	GET  /characters/:id/threads       list a character's threads
//	GET  /me/threads                   list the caller's threads
//	GET  /threads/:id                  fetch one thread
//	GET  /threads/:id/messages         list messages, oldest first
//	POST /threads/:id/messages         append one message
//	GET  /threads/:id/messages/stream  WebSocket stream of new messages
//
// The stream endpoint upgrades to a WebSocket and forwards every message
// inserted on the thread as one JSON frame, bridging the in-process realtime
// hub to the client.
package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/calliope-hq/go-social-backend/internal/domain"
	"github.com/calliope-hq/go-social-backend/internal/http/middleware"
	"github.com/calliope-hq/go-social-backend/internal/services"
)

// ThreadHandler exposes ThreadService over HTTP.
type ThreadHandler struct {
	Svc *services.ThreadService
}

// NewThreadHandler wires the handler to its service.
func NewThreadHandler(svc *services.ThreadService) *ThreadHandler {
	return &ThreadHandler{Svc: svc}
}

// upgrader performs the WebSocket handshake for the message stream. Origin
// policy is enforced by the CORS middleware before the request reaches the
// handler.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type startThreadRequest struct {
	Title string `json:"title"`
}

type appendMessageRequest struct {
	SenderType string `json:"sender_type"`
	Content    string `json:"content"`
}

// Start creates a thread between the caller and a character.
func (h *ThreadHandler) Start(c *gin.Context) {
	var req startThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	created, err := h.Svc.Start(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// ListForCharacter returns a character's threads, newest first.
func (h *ThreadHandler) ListForCharacter(c *gin.Context) {
	out, err := h.Svc.ListForCharacter(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// ListMine returns the caller's threads, newest first.
func (h *ThreadHandler) ListMine(c *gin.Context) {
	out, err := h.Svc.ListMine(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// Get fetches one thread by id.
func (h *ThreadHandler) Get(c *gin.Context) {
	out, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// Messages lists a thread's messages oldest first.
func (h *ThreadHandler) Messages(c *gin.Context) {
	out, err := h.Svc.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// Append adds one message to a thread.
func (h *ThreadHandler) Append(c *gin.Context) {
	var req appendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	created, err := h.Svc.Append(c.Request.Context(), c.Param("id"), req.SenderType, req.Content)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// Stream upgrades the request to a WebSocket and forwards every new message
// on the thread as a JSON frame until the client disconnects.
func (h *ThreadHandler) Stream(c *gin.Context) {
	threadID := c.Param("id")
	if _, err := h.Svc.Get(c.Request.Context(), threadID); err != nil {
		failService(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the handshake error response.
		return
	}
	lg := middleware.LoggerFrom(c)

	// Writes come from the subscription's delivery goroutine, reads from this
	// one; gorilla permits one concurrent reader and one writer.
	var closeOnce sync.Once
	closeConn := func() { closeOnce.Do(func() { _ = conn.Close() }) }

	sub := h.Svc.Watch(threadID, func(m *domain.Message) {
		if err := conn.WriteJSON(m); err != nil {
			closeConn()
		}
	})
	defer sub.Close()

	// Block on the read side; an error means the peer went away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	closeConn()
	lg.Debug().Str("thread_id", threadID).Msg("message stream closed")
}
