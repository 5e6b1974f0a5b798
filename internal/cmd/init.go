package cmd

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/cleardocs/backend/core/cache"
	"github.com/cleardocs/backend/core/config"
	"github.com/cleardocs/backend/internal/dao"
)

// InitAll initializes all components of the application
func init() {
	ctx := context.Background()

	// Validate configuration before initializing components
	g.Log().Info(ctx, "Validating application configuration...")
	err := config.ValidateConfiguration(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "Configuration validation failed:\n%v", err)
	}

	// Initialize database
	err = dao.InitDB()
	if err != nil {
		g.Log().Fatalf(ctx, "Database connection initialization failed: %v", err)
	}

	// Seed built-in plans
	err = dao.Plan.SeedDefaults(ctx)
	if err != nil {
		g.Log().Fatalf(ctx, "Plan seeding failed: %v", err)
	}

	// Initialize plan catalog cache (optional)
	err = cache.InitRedis(ctx)
	if err != nil {
		g.Log().Warningf(ctx, "Redis initialization failed, continuing without cache: %v", err)
	}

	g.Log().Info(ctx, "✓ All components initialized successfully")
}
