package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tutor-booking/internal/handler/api"
	"tutor-booking/internal/handler/middleware"
	"tutor-booking/internal/pkg/config"
	"tutor-booking/internal/pkg/jwt"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Availability *api.AvailabilityHandler
	Reservation  *api.ReservationHandler
	Booking      *api.BookingHandler
	Webhook      *api.WebhookHandler
	Slot         *api.SlotHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *slog.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, h, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	studentOnly := authMiddleware.RequireRole(jwt.RoleStudent)

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/providers/:providerId/availability", Handler: h.Availability.List},
			{Method: http.MethodPost, Path: "/webhooks/omise", Handler: h.Webhook.Omise},
		})

		reservations := apiGroup.Group("/reservations")
		{
			// lease tokens identify the holder, no login needed
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "/reserve", Handler: h.Reservation.Reserve},
				{Method: http.MethodPost, Path: "/lease/extend", Handler: h.Reservation.ExtendLease},
				{Method: http.MethodPost, Path: "/lease/release", Handler: h.Reservation.ReleaseLease},
			})

			authRequired := reservations.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/checkout", Handler: h.Reservation.Checkout, Mw: []gin.HandlerFunc{studentOnly}},
				{Method: http.MethodPost, Path: "/confirm", Handler: h.Reservation.Confirm, Mw: []gin.HandlerFunc{studentOnly}},
				{Method: http.MethodGet, Path: "/checkouts/:intentId", Handler: h.Reservation.GetCheckout},
			})
		}

		bookings := apiGroup.Group("/bookings")
		bookings.Use(authMiddleware.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodGet, Path: "", Handler: h.Booking.List, Mw: []gin.HandlerFunc{studentOnly}},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Booking.Get},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Booking.Cancel, Mw: []gin.HandlerFunc{studentOnly}},
			})
		}

		internal := apiGroup.Group("/internal")
		internal.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(jwt.RoleService, jwt.RoleTutor))
		{
			addRoutes(internal, []route{
				{Method: http.MethodPost, Path: "/slots", Handler: h.Slot.Publish},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
