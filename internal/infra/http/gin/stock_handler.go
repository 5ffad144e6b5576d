package ginserver

import (
	"context"
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hoteldesk/internal/app/stocks"
	"hoteldesk/internal/domain/dayspan"
	"hoteldesk/internal/domain/stock"
)

type StockHandler struct {
	Stocks *stocks.Service
}

func (h StockHandler) List(c *gin.Context) {
	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}
	entries, err := h.Stocks.Entries(c.Request.Context(), from, to, c.Query("category_id"))
	if err != nil {
		status := http.StatusBadGateway
		if isValidationErr(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entriesResponse(entries)})
}

type stockMutationRequest struct {
	CategoryID string  `json:"category_id"`
	From       string  `json:"from_date"`
	To         string  `json:"to_date"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

func (r stockMutationRequest) params() (stock.MutationParams, error) {
	params := stock.MutationParams{
		CategoryID: r.CategoryID,
		Price:      r.Price,
		Quantity:   r.Quantity,
	}
	if r.From != "" {
		from, err := parseDateParam(r.From)
		if err != nil {
			return stock.MutationParams{}, err
		}
		params.From = from
	}
	if r.To != "" {
		to, err := parseDateParam(r.To)
		if err != nil {
			return stock.MutationParams{}, err
		}
		params.To = to
	}
	return params, nil
}

func (h StockHandler) BulkCreate(c *gin.Context) {
	h.mutate(c, h.Stocks.BulkCreate, "created_count")
}

func (h StockHandler) UpdatePrice(c *gin.Context) {
	h.mutate(c, h.Stocks.UpdatePrice, "updated_count")
}

func (h StockHandler) Delete(c *gin.Context) {
	h.mutate(c, h.Stocks.Delete, "deleted_count")
}

func (h StockHandler) mutate(c *gin.Context, op func(ctx context.Context, params stock.MutationParams) (int, error), countField string) {
	var req stockMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params, err := req.params()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := op(c.Request.Context(), params)
	if err != nil {
		var capErr *stocks.CapacityError
		switch {
		case errors.As(err, &capErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":     capErr.Error(),
				"current":   capErr.Current,
				"total":     capErr.Total,
				"remaining": capErr.Remaining(),
			})
		case isValidationErr(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{countField: count})
}

func isValidationErr(err error) bool {
	for _, target := range []error{
		dayspan.ErrInvalidSpan,
		stock.ErrCategoryRequired,
		stock.ErrDatesRequired,
		stock.ErrInvalidSpan,
		stock.ErrNonPositivePrice,
		stock.ErrNonPositiveQty,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var _ StockHTTP = StockHandler{}
