package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"hoteldesk/internal/infra/config"
	"hoteldesk/internal/infra/obs"
)

type CalendarHTTP interface {
	Page(c *gin.Context)
}

type StockHTTP interface {
	List(c *gin.Context)
	BulkCreate(c *gin.Context)
	UpdatePrice(c *gin.Context)
	Delete(c *gin.Context)
}

type RoomHTTP interface {
	List(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type BoardHTTP interface {
	Board(c *gin.Context)
	ProposeStatus(c *gin.Context)
	Notices(c *gin.Context)
}

type Handlers struct {
	Calendar CalendarHTTP
	Stocks   StockHTTP
	Rooms    RoomHTTP
	Board    BoardHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Calendar != nil {
		api.GET("/calendar", h.Calendar.Page)
	}
	if h.Stocks != nil {
		api.GET("/stocks", h.Stocks.List)
		api.POST("/stocks/bulk", h.Stocks.BulkCreate)
		api.PATCH("/stocks/price", h.Stocks.UpdatePrice)
		api.DELETE("/stocks", h.Stocks.Delete)
	}
	if h.Rooms != nil {
		api.GET("/rooms", h.Rooms.List)
		api.POST("/rooms/:id/photo", h.Rooms.UploadPhoto)
	}
	if h.Board != nil {
		api.GET("/board", h.Board.Board)
		api.POST("/rooms/:id/status", h.Board.ProposeStatus)
		api.GET("/notices", h.Board.Notices)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
