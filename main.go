package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go-hotel-dashboard/config"
	"go-hotel-dashboard/controllers"
	"go-hotel-dashboard/database"
	"go-hotel-dashboard/detector"
	"go-hotel-dashboard/events"
	"go-hotel-dashboard/helpers"
	"go-hotel-dashboard/logger"
	"go-hotel-dashboard/middleware"
	"go-hotel-dashboard/notification"
	"go-hotel-dashboard/routes"
	"go-hotel-dashboard/session"
	"go-hotel-dashboard/views"
	"go-hotel-dashboard/workflow"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "hotel-dashboard")
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := database.DBinstance(ctx, cfg.Mongo.URL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	db := client.Database(cfg.Mongo.Database)
	store := database.NewStore(db, zapLogger)

	hub := controllers.NewHub(zapLogger)
	sink := notification.NewSink(hub, hub, cfg.ErrorAlertWindow, zapLogger)

	det := detector.New(func(a detector.Arrival) {
		sink.Notify("New arrival", arrivalMessage(a))
	})
	onFeedError := func(q database.Query, err error) {
		sink.ReportError("Live updates failed", err.Error())
	}
	aggregator := views.New(store, views.Collections{
		Rooms:           cfg.Collections.Rooms,
		ServiceRequests: cfg.Collections.ServiceRequests,
		FoodOrders:      cfg.Collections.FoodOrders,
	}, det, onFeedError, zapLogger)
	aggregator.OnChange(hub.PublishView)

	sessions := session.NewManager()
	sessions.OnChange(func(identity string) {
		if err := aggregator.SetIdentity(identity); err != nil {
			zapLogger.Error("Failed to bind dashboard", zap.String("identity", identity), zap.Error(err))
			sink.ReportError("Dashboard unavailable", err.Error())
		}
	})

	var publisher workflow.Publisher
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" && cfg.Redis.Stream != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		publisher = events.NewPublisher(redisClient, cfg.Redis.Stream)
	}

	flow := workflow.New(store, aggregator, sessions, publisher, workflow.Collections{
		ServiceRequests: cfg.Collections.ServiceRequests,
		FoodOrders:      cfg.Collections.FoodOrders,
		OrderTracking:   cfg.Collections.OrderTracking,
		GuestOrders:     cfg.Collections.GuestOrders,
	}, zapLogger)
	sessions.OnChange(flow.IdentityChanged)

	tokens := helpers.NewTokenMaker(cfg.SecretKey, 24*time.Hour)
	ctl := &controllers.Controller{
		Views:           aggregator,
		Workflow:        flow,
		Sessions:        sessions,
		Tokens:          tokens,
		Admins:          controllers.NewAdminStore(database.OpenCollection(client, cfg.Mongo.Database, cfg.Collections.Admins)),
		Rooms:           store,
		RoomsCollection: cfg.Collections.Rooms,
		Hub:             hub,
		Logger:          zapLogger,
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"POST", "GET", "PATCH", "DELETE", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Page not found"})
	})

	// API routes
	routes.UserRoutes(router, ctl)
	router.Use(middleware.Authentication(tokens, sessions))
	routes.SessionRoutes(router, ctl)
	routes.DashboardRoutes(router, ctl)
	routes.AcceptRoutes(router, ctl)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("HTTP server failed", zap.Error(err))
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	aggregator.Close()
	sink.Wait()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	_ = client.Disconnect(shutdownCtx)
	zapLogger.Info("Shutdown complete")
}

// arrivalMessage lists the grown views with their new sizes, e.g.
// "foodOrders: 3, serviceRequests: 2".
func arrivalMessage(a detector.Arrival) string {
	parts := make([]string, 0, len(a.Grown))
	for _, view := range a.Grown {
		parts = append(parts, fmt.Sprintf("%s: %d", view, a.Counts[view]))
	}
	return strings.Join(parts, ", ")
}
