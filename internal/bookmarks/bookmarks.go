// Package bookmarks is the authoritative store side of the system: MongoDB
// persistence, Redis change stream, CEL access policy and the HTTP/WebSocket
// surface.
package bookmarks

import (
	httpadapter "bookmark-sync/internal/bookmarks/adapter/http"
	redispersistence "bookmark-sync/internal/bookmarks/adapter/persistence"
	mongodbpersistence "bookmark-sync/internal/bookmarks/adapter/persistence/mongodb"
	"bookmark-sync/internal/bookmarks/config"
	"bookmark-sync/internal/bookmarks/domain/repository"
	"bookmark-sync/internal/bookmarks/security"
	"bookmark-sync/internal/bookmarks/usecase"
	"bookmark-sync/internal/shared/logger"

	authhttp "bookmark-sync/internal/auth/adapter/http"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Module bundles the bookmarks components.
type Module struct {
	Config       *config.Config
	Repo         repository.BookmarkRepository
	ChangeStream *redispersistence.RedisChangeStream
	Rules        *security.RulesEngine
	Usecase      usecase.BookmarkUsecase
	Logger       logger.Logger
}

// NewModule creates and initializes the bookmarks module.
func NewModule(
	cfg *config.Config,
	db *mongo.Database,
	redisClient *redis.Client,
	log logger.Logger,
) (*Module, error) {
	log = log.WithComponent("bookmarks")

	repo, err := mongodbpersistence.NewBookmarkRepository(db, log)
	if err != nil {
		return nil, err
	}

	changeStream := redispersistence.NewRedisChangeStream(redisClient, cfg.ChannelPrefix+":", log)

	rules, err := security.NewRulesEngine(security.DefaultRules, log)
	if err != nil {
		return nil, err
	}

	uc := usecase.NewBookmarkUsecase(repo, changeStream, rules, log)

	return &Module{
		Config:       cfg,
		Repo:         repo,
		ChangeStream: changeStream,
		Rules:        rules,
		Usecase:      uc,
		Logger:       log,
	}, nil
}

// RegisterRoutes registers the REST and WebSocket endpoints behind the auth
// middleware.
func (m *Module) RegisterRoutes(router fiber.Router, authMiddleware *authhttp.AuthMiddleware) {
	api := router.Group("/api/v1", authMiddleware.Protect())
	httpadapter.NewBookmarkHandler(m.Usecase, m.Logger).RegisterRoutes(api)

	feed := router.Group("/", authMiddleware.Protect())
	httpadapter.NewFeedHandler(m.ChangeStream, m.Logger).RegisterRoutes(feed)

	m.Logger.Info("Bookmark HTTP routes and feed WebSocket handler registered")
}
