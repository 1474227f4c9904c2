package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/ds124wfegd/railway-reservation/config"
	"github.com/ds124wfegd/railway-reservation/internal/transport/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthCheck reports on a dependency the API can run without, such as the
// event feed.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func InitRoutes(
	cfg *config.ServerConfig,
	log logrus.FieldLogger,
	trainHandler *TrainHandler,
	bookingHandler *BookingHandler,
	checks ...HealthCheck,
) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.AllowOrigins))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	// API routes
	api := router.Group("/api/v1")
	{
		// Train routes
		trains := api.Group("/trains")
		{
			trains.POST("", trainHandler.AddTrain)
			trains.GET("", trainHandler.ListTrains)
			trains.GET("/:number", trainHandler.GetTrain)
		}

		// Booking routes
		bookings := api.Group("/bookings")
		{
			bookings.POST("", bookingHandler.BookTicket)
			bookings.GET("", bookingHandler.ListBookings)
			bookings.POST("/cancel", bookingHandler.CancelByPassenger)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.DELETE("/:id", bookingHandler.CancelBooking)
		}

		// Admin routes
		admin := api.Group("/admin")
		{
			admin.GET("/audit", bookingHandler.AuditInventory)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		components := gin.H{}
		for _, check := range checks {
			if err := check.Check(c.Request.Context()); err != nil {
				components[check.Name] = err.Error()
				continue
			}
			components[check.Name] = "ok"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"version":    cfg.AppVersion,
			"time":       time.Now().Format(time.RFC3339),
			"components": components,
		})
	})

	return router
}
