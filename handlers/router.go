package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"github.com/showlog/showlogbackend/bandnames"
	"github.com/showlog/showlogbackend/config"
	"github.com/showlog/showlogbackend/realtime"
	"github.com/showlog/showlogbackend/repository"
)

// NewRouter wires the JSON API onto db. Mutating routes sit behind AuthMiddleware. When
// hub is non-nil, committed changes are pushed to clients connected at /ws.
func NewRouter(cfg config.Config, db *gorm.DB, normalizer *bandnames.Normalizer, hub *realtime.Hub) (http.Handler, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	var events EventPublisher
	if hub != nil {
		events = hub
	}

	groupRepo := repository.NewAliasGroupRepository(db)
	bandHandler := &BandHandler{DB: sqlDB, Bands: repository.NewBandRepository(db), Groups: groupRepo, Events: events}
	groupHandler := NewGroupHandler(groupRepo, events)
	showHandler := &ShowHandler{DB: sqlDB, Shows: repository.NewShowRepository(db), Events: events}
	statsHandler := &StatsHandler{DB: sqlDB, TopLimit: cfg.TopLimit}
	requireAuth := AuthMiddleware(cfg.AdminUsername, cfg.AdminPasswordHash)

	r := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)

	if hub != nil {
		r.Get("/ws", hub.ServeWS)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/shows", func(r chi.Router) {
			r.Get("/", showHandler.ListShows)
			r.Get("/years", showHandler.ListYears)
			r.With(requireAuth).Post("/", showHandler.CreateShow)
			r.Route("/{show_id}", func(r chi.Router) {
				r.Use(requireAuth)
				r.Put("/", showHandler.UpdateShow)
				r.Delete("/", showHandler.DeleteShow)
			})
		})

		r.Route("/bands", func(r chi.Router) {
			r.Get("/", bandHandler.ListBands)
			r.Get("/standalone", bandHandler.ListStandalone)
			r.Get("/duplicates", bandHandler.ListDuplicates)
			r.Route("/{band_id}", func(r chi.Router) {
				r.Get("/", bandHandler.GetBand)
				r.Get("/shows", bandHandler.ListBandShows)
				r.With(requireAuth).Put("/", bandHandler.RenameBand)
			})
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", groupHandler.ListGroups)
			r.With(requireAuth).Post("/", groupHandler.CreateGroup)
			r.Route("/{primary_id}", func(r chi.Router) {
				r.Use(requireAuth)
				r.Delete("/", groupHandler.DisbandGroup)
				r.Post("/aliases", groupHandler.AddAlias)
			})
		})

		r.With(requireAuth).Delete("/aliases/{alias_id}", groupHandler.RemoveAlias)

		r.Route("/stats", func(r chi.Router) {
			r.Get("/overview", statsHandler.Overview)
			r.Get("/years", statsHandler.Years)
			r.Get("/venues", statsHandler.Venues)
			r.Get("/events", statsHandler.Events)
			r.Get("/letters", statsHandler.Letters)
		})

		r.Get("/normalize", NormalizeHandler(normalizer))
	})

	return r, nil
}
