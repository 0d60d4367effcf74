// Package di wires the application modules together with proper lifecycle
// management.
package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"bookmark-sync/internal/auth"
	authconfig "bookmark-sync/internal/auth/config"
	"bookmark-sync/internal/bookmarks"
	bookmarksconfig "bookmark-sync/internal/bookmarks/config"
	"bookmark-sync/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container represents a dependency injection container with proper lifecycle
// management.
type Container struct {
	mu        sync.RWMutex
	services  map[reflect.Type]interface{}
	factories map[reflect.Type]func() (interface{}, error)

	// Module instances
	AuthModule      *auth.Module
	BookmarksModule *bookmarks.Module

	// Connections
	MongoDB     *mongo.Database
	RedisClient *redis.Client

	// Logger
	Logger logger.Logger
}

// NewContainer creates a new DI container.
func NewContainer(log logger.Logger) *Container {
	return &Container{
		services:  make(map[reflect.Type]interface{}),
		factories: make(map[reflect.Type]func() (interface{}, error)),
		Logger:    log,
	}
}

// InitializeAuth initializes the authentication module.
func (c *Container) InitializeAuth(cfg *authconfig.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Logger == nil {
		c.Logger = logger.NewLogger()
	}

	authModule, err := auth.NewModule(cfg, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}

	c.AuthModule = authModule
	return nil
}

// InitializeBookmarks initializes the bookmarks module. The auth module must
// be initialized first: the bookmark routes sit behind its middleware.
func (c *Container) InitializeBookmarks(cfg *bookmarksconfig.Config, mongoDB *mongo.Database, redisClient *redis.Client) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.AuthModule == nil {
		return fmt.Errorf("auth module must be initialized before bookmarks module")
	}
	if mongoDB == nil {
		return fmt.Errorf("MongoDB must be connected before bookmarks module")
	}
	if redisClient == nil {
		return fmt.Errorf("Redis must be connected before bookmarks module")
	}

	c.MongoDB = mongoDB
	c.RedisClient = redisClient

	bookmarksModule, err := bookmarks.NewModule(cfg, mongoDB, redisClient, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create bookmarks module: %w", err)
	}

	c.BookmarksModule = bookmarksModule
	return nil
}

// Register registers a service instance.
func (c *Container) Register(service interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	serviceType := reflect.TypeOf(service)
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}

	c.services[serviceType] = service
	return nil
}

// RegisterFactory registers a factory function for a service.
func (c *Container) RegisterFactory(serviceType reflect.Type, factory func() (interface{}, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories[serviceType] = factory
	return nil
}

// Resolve resolves a service by type.
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	c.mu.RLock()

	if service, exists := c.services[serviceType]; exists {
		c.mu.RUnlock()
		return service, nil
	}

	if factory, exists := c.factories[serviceType]; exists {
		c.mu.RUnlock()

		service, err := factory()
		if err != nil {
			return nil, fmt.Errorf("failed to create service: %w", err)
		}

		c.mu.Lock()
		c.services[serviceType] = service
		c.mu.Unlock()

		return service, nil
	}

	c.mu.RUnlock()
	return nil, fmt.Errorf("service of type %v not registered", serviceType)
}

// GetService is a generic helper for resolving services.
func GetService[T any](c *Container) (T, error) {
	var zero T
	serviceType := reflect.TypeOf(zero)

	service, err := c.Resolve(serviceType)
	if err != nil {
		return zero, err
	}

	if typedService, ok := service.(T); ok {
		return typedService, nil
	}

	return zero, fmt.Errorf("service is not of expected type %T", zero)
}

// GetAuthModule returns the auth module instance.
func (c *Container) GetAuthModule() *auth.Module {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AuthModule
}

// GetBookmarksModule returns the bookmarks module instance.
func (c *Container) GetBookmarksModule() *bookmarks.Module {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BookmarksModule
}

// HealthCheck pings the backing connections.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}

	return nil
}

// Cleanup shuts down registered services in reverse order of initialization.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	c.BookmarksModule = nil
	c.AuthModule = nil

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis client: %w", err))
		}
		c.RedisClient = nil
	}

	for _, service := range c.services {
		if cleaner, ok := service.(interface{ Cleanup(context.Context) error }); ok {
			if err := cleaner.Cleanup(ctx); err != nil {
				errs = append(errs, fmt.Errorf("failed to cleanup service: %w", err))
			}
		}
	}

	c.services = make(map[reflect.Type]interface{})
	c.factories = make(map[reflect.Type]func() (interface{}, error))

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}

	return nil
}

// Close gracefully shuts down all services in the container with a timeout.
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		if c.Logger != nil {
			c.Logger.Warnf("Cleanup errors occurred: %v", err)
		}
	}

	return nil
}
