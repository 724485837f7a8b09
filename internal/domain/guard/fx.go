// Package guard contains the moderation and scheduling domain module
package guard

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/groupwarden/groupwarden/config"
	"github.com/groupwarden/groupwarden/internal/domain/guard/deps"
	"github.com/groupwarden/groupwarden/internal/domain/guard/repository/postgres"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/antidelete"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/greeting"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/groupinfo"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/moderation"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/polls"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/schedule"
	"github.com/groupwarden/groupwarden/internal/domain/guard/usecase/viewonce"
	"github.com/groupwarden/groupwarden/internal/domain/guard/workers"
)

// repoResult provides every repository under its interface type. The
// anti-delete and view-once repositories share one implementation, so they
// need named provision rather than plain constructors.
type repoResult struct {
	fx.Out

	Settings   deps.SettingsRepository
	Warnings   deps.WarningRepository
	Cache      deps.MessageCacheRepository
	AntiDelete deps.ScopedToggleRepository `name:"antidelete"`
	ViewOnce   deps.ScopedToggleRepository `name:"viewonce"`
	Perms      deps.PermissionRepository
	Schedules  deps.ScheduleRepository
	Polls      deps.PollRepository
	Commands   deps.CustomCommandRepository
}

// Module provides the guard domain components for fx dependency injection
var Module = fx.Module("guard",
	// Repositories
	fx.Provide(provideRepositories),

	// Use cases
	fx.Provide(
		groupinfo.NewService,
		moderation.NewEngine,
		provideAntiDelete,
		provideViewOnce,
		schedule.NewRegistry,
		providePolls,
		greeting.NewService,
	),

	// Retention sweeps
	workers.Module,
)

func provideRepositories(db *gorm.DB) repoResult {
	return repoResult{
		Settings:   postgres.NewSettingsRepository(db),
		Warnings:   postgres.NewWarningRepository(db),
		Cache:      postgres.NewMessageCacheRepository(db),
		AntiDelete: postgres.NewAntiDeleteRepository(db),
		ViewOnce:   postgres.NewViewOnceRepository(db),
		Perms:      postgres.NewPermissionRepository(db),
		Schedules:  postgres.NewScheduleRepository(db),
		Polls:      postgres.NewPollRepository(db),
		Commands:   postgres.NewCustomCommandRepository(db),
	}
}

type antiDeleteParams struct {
	fx.In

	Scopes deps.ScopedToggleRepository `name:"antidelete"`
	Cache  deps.MessageCacheRepository
	Logger zerolog.Logger
}

func provideAntiDelete(p antiDeleteParams) *antidelete.Service {
	return antidelete.NewService(p.Scopes, p.Cache, p.Logger.With().Str("component", "antidelete").Logger())
}

type viewOnceParams struct {
	fx.In

	Scopes deps.ScopedToggleRepository `name:"viewonce"`
	Logger zerolog.Logger
}

func provideViewOnce(p viewOnceParams) *viewonce.Service {
	return viewonce.NewService(p.Scopes, p.Logger.With().Str("component", "viewonce").Logger())
}

func providePolls(store deps.PollRepository, bot *config.BotConfig, logger zerolog.Logger) *polls.Service {
	return polls.NewService(store, bot.OwnerID, logger.With().Str("component", "polls").Logger())
}
