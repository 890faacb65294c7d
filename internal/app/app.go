package app

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/newsroomhq/rundown/internal/api"
	"github.com/newsroomhq/rundown/internal/config"
	"github.com/newsroomhq/rundown/internal/database"
	"github.com/newsroomhq/rundown/internal/services"
)

type Application struct {
	cfg          *config.Config
	repo         *database.Repository
	server       *api.Server
	trashService *services.TrashService
}

func NewApplication(cfg *config.Config) (*Application, error) {
	repo, err := database.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	timingService := services.NewTimingService(repo)
	bulletinService := services.NewBulletinService(repo, timingService, cfg.TrashRetention)
	rundownService := services.NewRundownService(repo, timingService, cfg.TrashRetention)
	templateService := services.NewTemplateService(repo, timingService)
	segmentService := services.NewSegmentService(repo)
	poolService := services.NewPoolService(repo, timingService)
	trashService := services.NewTrashService(repo, cfg.TrashRetention)
	auditService := services.NewAuditService(repo)
	userService := services.NewUserService(repo)

	server := api.NewServer(
		bulletinService,
		rundownService,
		timingService,
		templateService,
		segmentService,
		poolService,
		trashService,
		auditService,
		userService,
	)

	return &Application{
		cfg:          cfg,
		repo:         repo,
		server:       server,
		trashService: trashService,
	}, nil
}

func (a *Application) Start() error {
	go a.startBackgroundServices()

	return a.server.Start(":" + strconv.Itoa(a.cfg.HTTPPort))
}

// startBackgroundServices empties expired trash on a timer so soft-deleted
// bulletins and rows do not pile up past the retention window.
func (a *Application) startBackgroundServices() {
	ticker := time.NewTicker(a.cfg.PurgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		purged, err := a.trashService.PurgeExpired(context.Background())
		if err != nil {
			log.Printf("Failed to purge trash: %v", err)
			continue
		}
		if purged > 0 {
			log.Printf("Purged %d expired items from trash", purged)
		}
	}
}

func (a *Application) Stop(ctx context.Context) error {
	log.Println("Shutting down server...")
	return a.repo.Close()
}
