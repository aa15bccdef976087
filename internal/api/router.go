package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ferialibre/listings-api/internal/api/handlers"
	"github.com/ferialibre/listings-api/internal/api/middleware"
	"github.com/ferialibre/listings-api/internal/cache"
	"github.com/ferialibre/listings-api/internal/catalog"
	"github.com/ferialibre/listings-api/internal/category"
	"github.com/ferialibre/listings-api/internal/config"
	"github.com/ferialibre/listings-api/internal/ledger"
	"github.com/ferialibre/listings-api/internal/listing"
	"github.com/ferialibre/listings-api/internal/moderation"
	"github.com/ferialibre/listings-api/internal/queue"
	"github.com/ferialibre/listings-api/internal/storage"
)

type Router struct {
	mux    *chi.Mux
	db     *pgxpool.Pool
	redis  *redis.Client
	cfg    *config.Config
	engine *moderation.Engine
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, engine *moderation.Engine) *Router {
	return &Router{
		mux:    chi.NewRouter(),
		db:     db,
		redis:  rdb,
		cfg:    cfg,
		engine: engine,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.CORSOrigins))

	rl := middleware.NewRateLimiter(float64(rt.cfg.Server.RateLimitRPS), rt.cfg.Server.RateLimitBurst)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	store := storage.NewCloudinaryStorage(rt.cfg.Cloudinary.CloudName, rt.cfg.Cloudinary.APIKey, rt.cfg.Cloudinary.APISecret)
	catalogClient := catalog.NewClient(rt.cfg.Catalog.BaseURL, time.Duration(rt.cfg.Catalog.TimeoutMS)*time.Millisecond)
	queueClient := queue.NewClient(rt.cfg.Redis)
	ledgerSvc := ledger.NewService(rt.db)
	listingSvc := listing.NewService(rt.db, rt.engine, ledgerSvc, store, catalogClient, cache.NewCache(rt.redis))
	categorySvc := category.NewService(rt.db)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		listingH := handlers.NewListingHandler(listingSvc)
		moderationH := handlers.NewModerationHandler(listingSvc, rt.engine)

		r.Route("/listings", func(r chi.Router) {
			r.Post("/", listingH.Create)
			r.Get("/", listingH.List)
			r.Get("/{id}", listingH.Get)
			r.Put("/{id}", listingH.Update)
			r.Delete("/{id}", listingH.Delete)
			r.Delete("/{id}/force", listingH.ForceDelete)
			r.Patch("/{id}/status", listingH.ChangeStatus)
			r.Post("/{id}/media", listingH.AddMedia)
			r.Get("/{id}/moderation", moderationH.History)
			r.Post("/{id}/moderation", moderationH.Manual)
		})

		r.Delete("/media/{id}", listingH.RemoveMedia)

		r.Post("/moderation/check", moderationH.Check)

		adminH := handlers.NewAdminHandler(queueClient)
		r.Post("/admin/purge", adminH.Purge)

		categoryH := handlers.NewCategoryHandler(categorySvc)
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categoryH.Create)
			r.Get("/", categoryH.List)
			r.Get("/{id}", categoryH.Get)
			r.Put("/{id}", categoryH.Update)
			r.Delete("/{id}", categoryH.Delete)
		})
	})

	return r
}
