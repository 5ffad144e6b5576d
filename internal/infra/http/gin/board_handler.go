package ginserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"hoteldesk/internal/app/notices"
	"hoteldesk/internal/app/transition"
	"hoteldesk/internal/domain/room"
)

type BoardHandler struct {
	Queue        *transition.Queue
	NoticeCenter *notices.Center
}

type boardColumnResponse struct {
	Status string         `json:"status"`
	Rooms  []roomResponse `json:"rooms"`
}

type operationResponse struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	Previous   string    `json:"previous_status"`
	Next       string    `json:"new_status"`
	CreatedAt  time.Time `json:"created_at"`
	State      string    `json:"state"`
}

func toOperationResponse(op transition.Operation) operationResponse {
	return operationResponse{
		ID:         op.ID,
		RoomID:     op.RoomID,
		RoomNumber: op.RoomNumber,
		Previous:   string(op.Previous),
		Next:       string(op.Next),
		CreatedAt:  op.CreatedAt,
		State:      string(op.State),
	}
}

// Board returns the status columns (rooms placed by effective status) plus
// the outstanding operations.
func (h BoardHandler) Board(c *gin.Context) {
	includeDeleted, _ := strconv.ParseBool(c.Query("include_deleted"))
	filter := room.Filter{Query: c.Query("filter"), IncludeDeleted: includeDeleted}
	columns, err := h.Queue.Board(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	out := make([]boardColumnResponse, 0, len(columns))
	for _, col := range columns {
		roomsOut := make([]roomResponse, 0, len(col.Rooms))
		for _, r := range col.Rooms {
			roomsOut = append(roomsOut, toRoomResponse(r))
		}
		out = append(out, boardColumnResponse{Status: string(col.Status), Rooms: roomsOut})
	}

	pending := h.Queue.PendingOperations()
	ops := make([]operationResponse, 0, len(pending))
	for _, op := range pending {
		ops = append(ops, toOperationResponse(op))
	}
	c.JSON(http.StatusOK, gin.H{"columns": out, "pending_operations": ops})
}

type proposeRequest struct {
	Status string `json:"status"`
}

// ProposeStatus queues an optimistic transition. 202 when queued, 200 when
// the drop was a same-status no-op, 409 when the queue is full.
func (h BoardHandler) ProposeStatus(c *gin.Context) {
	var req proposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := room.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	op, accepted, err := h.Queue.Propose(c.Request.Context(), c.Param("id"), status)
	switch {
	case errors.Is(err, transition.ErrTooManyPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, room.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case !accepted:
		c.JSON(http.StatusOK, gin.H{"no_op": true})
	default:
		c.JSON(http.StatusAccepted, gin.H{"operation": toOperationResponse(op)})
	}
}

func (h BoardHandler) Notices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notices": h.NoticeCenter.Recent()})
}

var _ BoardHTTP = BoardHandler{}
