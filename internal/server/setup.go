package server

import (
	"log/slog"
	"runtime"

	"github.com/danielledeleo/wikilite/internal/renderqueue"
	"github.com/danielledeleo/wikilite/internal/storage"
	"github.com/danielledeleo/wikilite/render"
	"github.com/danielledeleo/wikilite/wiki"
	"github.com/danielledeleo/wikilite/wiki/service"
	"github.com/jmoiron/sqlx"
)

// Setup initializes the application on an open, migrated database and returns
// the App instance along with the render queue (which must be shut down when
// the server stops).
func Setup(config *wiki.Config, db *sqlx.DB) (*App, *renderqueue.Queue, error) {
	database, err := storage.Init(db)
	if err != nil {
		return nil, nil, err
	}

	pipeline := render.NewPipeline(nil)

	workerCount := config.RenderWorkers
	if workerCount == 0 {
		workerCount = runtime.NumCPU()
	}
	renderQueue := renderqueue.New(workerCount, pipeline.Transform)
	slog.Info("render queue initialized", "category", "render", "workers", renderQueue.Workers())

	renderingService := service.NewRenderingService(pipeline, renderQueue, config.MaxContentBytes)

	return &App{
		Pages:     service.NewPageService(database, database, database, database, renderingService),
		Files:     service.NewFileService(database),
		Search:    service.NewSearchService(database),
		Rendering: renderingService,
		Config:    config,
	}, renderQueue, nil
}
