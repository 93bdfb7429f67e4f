package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/moviematch/matchroom/internal/catalog"
	"github.com/moviematch/matchroom/internal/config"
	"github.com/moviematch/matchroom/internal/database"
	"github.com/moviematch/matchroom/internal/handler"
	"github.com/moviematch/matchroom/internal/janitor"
	"github.com/moviematch/matchroom/internal/middleware"
	"github.com/moviematch/matchroom/internal/queue"
	"github.com/moviematch/matchroom/internal/repository"
	"github.com/moviematch/matchroom/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env vars directly
	cfg := config.Load()

	if err := database.Migrate(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, "migrations"); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; callers degrade

	// Repositories
	roomRepo := repository.NewRoomRepo(db)
	swipeRepo := repository.NewSwipeRepo(db)
	settingsRepo := repository.NewDeckSettingsRepo(db)
	promptRepo := repository.NewWatchPromptRepo(db)

	// Catalog: HTTP provider behind the Redis + bounded page caches.
	catalogCfg := config.LoadCatalogCacheConfig()
	provider := catalog.NewCachedProvider(
		catalog.NewHTTPProvider(cfg.CatalogBaseURL, cfg.CatalogAPIKey, catalogCfg.RequestTimeout),
		rdb, catalogCfg)
	queues := catalog.NewQueueBuilder(provider, roomRepo, swipeRepo, settingsRepo, rdb)

	// Retention janitor: background ticker plus the maintenance endpoint.
	jan := janitor.New(
		roomRepo, swipeRepo, promptRepo, queues,
		janitor.NewRedisSessionPurger(rdb, "session"),
		time.Duration(cfg.RoomRetentionDays)*24*time.Hour,
		time.Duration(cfg.PromptRetentionDays)*24*time.Hour,
	)
	janCtx, janCancel := context.WithCancel(context.Background())
	defer janCancel()
	go jan.Run(janCtx, time.Hour)

	// Background consumer logging match.found events.
	go func() {
		if err := queue.StartMatchConsumer(); err != nil {
			log.Printf("match consumer stopped: %v", err)
		}
	}()

	// Handlers
	roomTTL := time.Duration(cfg.RoomTTLHours) * time.Hour
	roomHandler := handler.NewRoomHandler(roomRepo, queues, roomTTL, cfg.BcryptCost)
	queueHandler := handler.NewQueueHandler(queues)
	swipeHandler := handler.NewSwipeHandler(roomRepo, swipeRepo, promptRepo, queues)
	settingsHandler := handler.NewSettingsHandler(settingsRepo)
	promptHandler := handler.NewPromptHandler(promptRepo, settingsRepo)
	maintenanceHandler := handler.NewMaintenanceHandler(jan, cfg.JanitorSecret)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterRoutes(e)
	router.RegisterRooms(e, roomHandler, queueHandler, swipeHandler, cfg.JWTSecret)
	router.RegisterPersonal(e, settingsHandler, promptHandler, cfg.JWTSecret)
	router.RegisterMaintenance(e, maintenanceHandler)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
