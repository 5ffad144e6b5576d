package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"hoteldesk/internal/app/stocks"
	"hoteldesk/internal/domain/calendar"
	"hoteldesk/internal/domain/stock"
)

type CalendarHandler struct {
	Stocks *stocks.Service
}

type stockEntryResponse struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name,omitempty"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
}

type calendarDayResponse struct {
	Date           string               `json:"date"`
	InCurrentMonth bool                 `json:"in_current_month"`
	Entries        []stockEntryResponse `json:"entries"`
}

type calendarPageResponse struct {
	Anchor     string                `json:"anchor"`
	View       string                `json:"view"`
	Period     string                `json:"period"`
	NextAnchor string                `json:"next_anchor"`
	PrevAnchor string                `json:"prev_anchor"`
	Days       []calendarDayResponse `json:"days"`
}

const dateLayout = "2006-01-02"

func (h CalendarHandler) Page(c *gin.Context) {
	mode, err := calendar.ParseViewMode(c.Query("view"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	anchor := time.Now().UTC()
	if raw := c.Query("anchor"); raw != "" {
		anchor, err = parseDateParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	page, err := h.Stocks.CalendarPage(c.Request.Context(), anchor, mode, c.Query("category_id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	days := make([]calendarDayResponse, 0, len(page.Days))
	for _, day := range page.Days {
		days = append(days, calendarDayResponse{
			Date:           day.Date.Format(dateLayout),
			InCurrentMonth: day.InCurrentMonth,
			Entries:        entriesResponse(day.Entries),
		})
	}
	c.JSON(http.StatusOK, calendarPageResponse{
		Anchor:     page.Anchor.Format(dateLayout),
		View:       string(page.View),
		Period:     page.Period,
		NextAnchor: page.NextAnchor.Format(dateLayout),
		PrevAnchor: page.PrevAnchor.Format(dateLayout),
		Days:       days,
	})
}

func entriesResponse(entries []stock.Entry) []stockEntryResponse {
	out := make([]stockEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, stockEntryResponse{
			CategoryID:   e.CategoryID,
			CategoryName: e.CategoryName,
			From:         e.Span.From.Format(dateLayout),
			To:           e.Span.To.Format(dateLayout),
			Price:        e.Price,
			Quantity:     e.Quantity,
		})
	}
	return out
}

func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

var _ CalendarHTTP = CalendarHandler{}
