// Package di wires the application together. The injector lives in
// wire.go; wire_gen.go is produced by `wire ./infrastructure/di`.
package di

import (
	"go.uber.org/zap"

	"github.com/hoangngo-sudo/the-morytale/application/ports"
	"github.com/hoangngo-sudo/the-morytale/application/services"
	domainconfig "github.com/hoangngo-sudo/the-morytale/domain/config"
	"github.com/hoangngo-sudo/the-morytale/infrastructure/config"
	"github.com/hoangngo-sudo/the-morytale/pkg/auth"
	pkgerrors "github.com/hoangngo-sudo/the-morytale/pkg/errors"
)

// Container holds all application dependencies
type Container struct {
	Config            *config.Config
	DomainConfig      *domainconfig.DomainConfig
	Logger            *zap.Logger
	ItemRepo          ports.ItemRepository
	NodeRepo          ports.NodeRepository
	TrackRepo         ports.TrackRepository
	ObjectStore       ports.ObjectStore
	StoryGenerator    ports.StoryGenerator
	EventPublisher    ports.EventPublisher
	QuotaService      *services.QuotaService
	ConclusionEngine  *services.ConclusionEngine
	TrackService      *services.TrackService
	SubmissionService *services.SubmissionService
	JWTValidator      *auth.JWTValidator
	ErrorHandler      *pkgerrors.ErrorHandler
}

// Close flushes buffered log entries. Call on shutdown.
func (c *Container) Close() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
