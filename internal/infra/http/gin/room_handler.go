package ginserver

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hoteldesk/internal/app/rooms"
	"hoteldesk/internal/domain/room"
	"hoteldesk/internal/infra/storage/s3"
)

type RoomHandler struct {
	Rooms    *rooms.Service
	Uploader s3.Uploader
}

type roomResponse struct {
	ID           string `json:"id"`
	Number       string `json:"number"`
	Floor        string `json:"floor"`
	Capacity     int    `json:"capacity"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	Status       string `json:"status"`
	Deleted      bool   `json:"deleted,omitempty"`
}

func toRoomResponse(r room.Room) roomResponse {
	return roomResponse{
		ID:           r.ID,
		Number:       r.Number,
		Floor:        r.Floor,
		Capacity:     r.Capacity,
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName,
		PhotoURL:     r.PhotoURL,
		Status:       string(r.Status),
		Deleted:      r.Deleted,
	}
}

func (h RoomHandler) List(c *gin.Context) {
	includeDeleted, _ := strconv.ParseBool(c.Query("include_deleted"))
	filter := room.Filter{Query: c.Query("filter"), IncludeDeleted: includeDeleted}
	list, err := h.Rooms.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	out := make([]roomResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toRoomResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"rooms": out})
}

// UploadPhoto stores a room photo in object storage and returns its public
// URL; the room record picks it up through the edit form.
func (h RoomHandler) UploadPhoto(c *gin.Context) {
	roomID := c.Param("id")
	if _, err := h.Rooms.ByID(c.Request.Context(), roomID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := fmt.Sprintf("rooms/%s/%s%s", roomID, uuid.NewString(), ext)
	url, err := h.Uploader.Upload(c.Request.Context(), key, file, header.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

var _ RoomHTTP = RoomHandler{}
