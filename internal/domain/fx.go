// Package domain contains all domain modules
package domain

import (
	"go.uber.org/fx"

	"github.com/groupwarden/groupwarden/internal/domain/guard"
)

// Module aggregates all domain modules for fx dependency injection
var Module = fx.Module("domain",
	guard.Module,
)
