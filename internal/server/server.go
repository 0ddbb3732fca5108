package server

import (
	"github.com/Serge13790/Site-Marcheurs/internal/auth"
	"github.com/Serge13790/Site-Marcheurs/internal/config"
	"github.com/Serge13790/Site-Marcheurs/internal/hike"
	"github.com/Serge13790/Site-Marcheurs/internal/live"
	"github.com/Serge13790/Site-Marcheurs/internal/mailer"
	"github.com/Serge13790/Site-Marcheurs/internal/notify"
	"github.com/Serge13790/Site-Marcheurs/internal/photo"
	"github.com/Serge13790/Site-Marcheurs/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Store  storage.ObjectStore
	Sender mailer.Sender
	Feed   *live.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, store storage.ObjectStore, sender mailer.Sender) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Store:  store,
		Sender: sender,
		Feed:   live.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	authSvc := auth.NewService(s.Cfg.JWTSecret, s.DB, s.Redis, s.Sender, s.Cfg.SiteURL)
	member := authSvc.RequireMember()
	editor := authSvc.RequireRole(auth.RoleAdmin, auth.RoleEditor)
	admin := authSvc.RequireRole(auth.RoleAdmin)

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc, jwtMiddleware)
	hike.RegisterRoutes(s.App.Group("/hikes"),
		hike.NewService(s.DB, s.Store, s.Cfg.TracksBucket),
		jwtMiddleware, member, editor, admin)
	photo.RegisterRoutes(s.App.Group("/photos"),
		photo.NewService(s.DB, s.Store, s.Cfg.PhotosBucket),
		jwtMiddleware, member)
	notify.RegisterRoutes(s.App.Group("/hooks"),
		notify.NewService(s.DB, s.Sender, s.Feed,
			s.Cfg.AdminEmail, s.Cfg.SenderEmail, s.Cfg.SiteURL, s.Cfg.AuthBaseURL))
	live.RegisterRoutes(s.App.Group("/live"), s.Feed, jwtMiddleware, admin)
}
