// Package infrastructure contains infrastructure layer components
package infrastructure

import (
	"go.uber.org/fx"

	"github.com/groupwarden/groupwarden/internal/infrastructure/database"
	"github.com/groupwarden/groupwarden/internal/infrastructure/logger"
)

// Module provides all infrastructure components for fx dependency injection
var Module = fx.Module("infrastructure",
	logger.Module,
	database.Module,
)
