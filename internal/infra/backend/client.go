package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"hoteldesk/internal/domain/dayspan"
	"hoteldesk/internal/domain/room"
	"hoteldesk/internal/domain/stock"
)

// Client talks to the authoritative hotel backend over HTTP. It implements
// both boundary ports; the in-memory and Mongo backends are drop-in
// replacements behind the same interfaces.
type Client struct {
	http   *resty.Client
	creds  CredentialsProvider
	logger *slog.Logger
}

type Options struct {
	BaseURL     string
	Credentials CredentialsProvider
	Timeout     time.Duration
	Logger      *slog.Logger
}

func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("backend: base URL is required")
	}
	creds := opts.Credentials
	if creds == nil {
		creds = AnonymousCredentials{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &Client{http: rc, creds: creds, logger: logger}, nil
}

type apiError struct {
	Message string `json:"error"`
}

type stockEntryPayload struct {
	CategoryID   string  `json:"category_id"`
	CategoryName string  `json:"category_name"`
	FromDate     string  `json:"from_date"`
	ToDate       string  `json:"to_date"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
}

type stockListResponse struct {
	Entries []stockEntryPayload `json:"entries"`
}

type stockMutationPayload struct {
	CategoryID string  `json:"category_id"`
	FromDate   string  `json:"from_date"`
	ToDate     string  `json:"to_date"`
	Price      float64 `json:"price,omitempty"`
	Quantity   int     `json:"quantity,omitempty"`
}

type roomPayload struct {
	ID           string `json:"id"`
	Number       string `json:"number"`
	Floor        string `json:"floor"`
	Capacity     int    `json:"capacity"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	PhotoURL     string `json:"photo_url"`
	Status       string `json:"status"`
	Deleted      bool   `json:"deleted"`
}

type roomListResponse struct {
	Rooms []roomPayload `json:"rooms"`
}

// request builds a resty request with the resolved bearer token attached.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	req := c.http.R().SetContext(ctx)
	token, err := c.creds.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req, nil
}

// remoteErr surfaces the backend's error text untouched so callers can parse
// contract substrings like "Current stock: <n>" out of it.
func remoteErr(op string, resp *resty.Response) error {
	msg := ""
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr != nil {
		msg = apiErr.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(resp.Body()))
	}
	if msg == "" {
		msg = resp.Status()
	}
	return fmt.Errorf("backend: %s: %s", op, msg)
}

// ByRange implements stock.Inventory.
func (c *Client) ByRange(ctx context.Context, span dayspan.Span, categoryID string) ([]stock.Entry, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	result := new(stockListResponse)
	req.SetResult(result).SetError(&apiError{}).
		SetQueryParam("from", span.From.Format(time.RFC3339)).
		SetQueryParam("to", span.To.Format(time.RFC3339))
	if categoryID != "" {
		req.SetQueryParam("category_id", categoryID)
	}
	resp, err := req.Get("/api/v1/stocks")
	if err != nil {
		return nil, fmt.Errorf("backend: fetch stocks: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, remoteErr("fetch stocks", resp)
	}

	entries := make([]stock.Entry, 0, len(result.Entries))
	for _, p := range result.Entries {
		entry, err := p.toEntry()
		if err != nil {
			c.logger.Warn("skipping malformed stock entry", "category_id", p.CategoryID, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (p stockEntryPayload) toEntry() (stock.Entry, error) {
	from, err := parseAPIDate(p.FromDate)
	if err != nil {
		return stock.Entry{}, err
	}
	to, err := parseAPIDate(p.ToDate)
	if err != nil {
		return stock.Entry{}, err
	}
	return stock.Entry{
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Span:         dayspan.Span{From: dayspan.Day(from), To: dayspan.Day(to)},
		Price:        p.Price,
		Quantity:     p.Quantity,
	}, nil
}

// BulkCreate implements stock.Inventory.
func (c *Client) BulkCreate(ctx context.Context, params stock.MutationParams) (int, error) {
	return c.mutate(ctx, http.MethodPost, "/api/v1/stocks/bulk", "bulk create", params, "created_count")
}

// UpdatePrice implements stock.Inventory.
func (c *Client) UpdatePrice(ctx context.Context, params stock.MutationParams) (int, error) {
	return c.mutate(ctx, http.MethodPatch, "/api/v1/stocks/price", "price update", params, "updated_count")
}

// Delete implements stock.Inventory.
func (c *Client) Delete(ctx context.Context, params stock.MutationParams) (int, error) {
	return c.mutate(ctx, http.MethodDelete, "/api/v1/stocks", "delete", params, "deleted_count")
}

func (c *Client) mutate(ctx context.Context, method, path, op string, params stock.MutationParams, countField string) (int, error) {
	req, err := c.request(ctx)
	if err != nil {
		return 0, err
	}
	result := map[string]int{}
	req.SetBody(stockMutationPayload{
		CategoryID: params.CategoryID,
		FromDate:   dayspan.Day(params.From).Format(time.RFC3339),
		ToDate:     dayspan.Day(params.To).Format(time.RFC3339),
		Price:      params.Price,
		Quantity:   params.Quantity,
	}).SetResult(&result).SetError(&apiError{})

	resp, err := req.Execute(method, path)
	if err != nil {
		return 0, fmt.Errorf("backend: %s: %w", op, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return 0, remoteErr(op, resp)
	}
	return result[countField], nil
}

// List implements room.Directory.
func (c *Client) List(ctx context.Context, filter room.Filter) ([]room.Room, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	result := new(roomListResponse)
	req.SetResult(result).SetError(&apiError{}).
		SetQueryParam("filter", filter.Query).
		SetQueryParam("include_deleted", strconv.FormatBool(filter.IncludeDeleted))
	resp, err := req.Get("/api/v1/rooms")
	if err != nil {
		return nil, fmt.Errorf("backend: fetch rooms: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, remoteErr("fetch rooms", resp)
	}

	out := make([]room.Room, 0, len(result.Rooms))
	for _, p := range result.Rooms {
		r, err := p.toRoom()
		if err != nil {
			c.logger.Warn("skipping malformed room", "room_id", p.ID, "error", err)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (p roomPayload) toRoom() (room.Room, error) {
	status, err := room.StatusFromWire(p.Status)
	if err != nil {
		return room.Room{}, err
	}
	return room.Room{
		ID:           p.ID,
		Number:       p.Number,
		Floor:        p.Floor,
		Capacity:     p.Capacity,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		PhotoURL:     p.PhotoURL,
		Status:       status,
		Deleted:      p.Deleted,
	}, nil
}

// ByID implements room.Directory.
func (c *Client) ByID(ctx context.Context, id string) (room.Room, error) {
	req, err := c.request(ctx)
	if err != nil {
		return room.Room{}, err
	}
	result := new(roomPayload)
	req.SetResult(result).SetError(&apiError{})
	resp, err := req.Get("/api/v1/rooms/" + id)
	if err != nil {
		return room.Room{}, fmt.Errorf("backend: fetch room: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return room.Room{}, room.ErrNotFound
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return room.Room{}, remoteErr("fetch room", resp)
	}
	return result.toRoom()
}

// UpdateStatus implements room.Directory, translating the status to its wire
// code.
func (c *Client) UpdateStatus(ctx context.Context, id string, status room.Status) error {
	code, err := status.WireCode()
	if err != nil {
		return err
	}
	req, err := c.request(ctx)
	if err != nil {
		return err
	}
	req.SetBody(map[string]string{"status": code}).SetError(&apiError{})
	resp, err := req.Patch("/api/v1/rooms/" + id + "/status")
	if err != nil {
		return fmt.Errorf("backend: status update: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return room.ErrNotFound
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return remoteErr("status update", resp)
	}
	return nil
}

func parseAPIDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("backend: unparseable date %q", raw)
}

var (
	_ stock.Inventory = (*Client)(nil)
	_ room.Directory  = (*Client)(nil)
)
