// Package testutil provides test utilities for wikilite integration tests.
package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielledeleo/wikilite/internal/server"
	"github.com/danielledeleo/wikilite/internal/storage"
	"github.com/danielledeleo/wikilite/render"
	"github.com/danielledeleo/wikilite/wiki"
	"github.com/danielledeleo/wikilite/wiki/service"
	"github.com/jmoiron/sqlx"
)

// TestApp wraps the full application for integration tests.
type TestApp struct {
	*server.App
	Router http.Handler
	DB     *sqlx.DB
}

// SetupTestDB creates an in-memory SQLite database with migrations applied.
func SetupTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	conn, err := storage.Open(storage.MemoryDatabase)
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	if err := storage.RunMigrations(conn); err != nil {
		conn.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanup := func() {
		conn.Close()
	}

	return conn, cleanup
}

// TestConfig returns the configuration used by SetupTestApp.
func TestConfig() *wiki.Config {
	return &wiki.Config{
		DatabaseFile:    storage.MemoryDatabase,
		Host:            "localhost:8776",
		StaticDir:       "",
		LogFormat:       "text",
		LogLevel:        "error",
		MaxUploadBytes:  1 << 20,
		MaxContentBytes: 64 << 10,
	}
}

// SetupTestApp creates a full application instance for integration tests.
// Rendering runs synchronously, without a render queue.
func SetupTestApp(t *testing.T) (*TestApp, func()) {
	t.Helper()
	return SetupTestAppWithConfig(t, TestConfig())
}

// SetupTestAppWithConfig is SetupTestApp with a caller-supplied configuration.
func SetupTestAppWithConfig(t *testing.T, config *wiki.Config) (*TestApp, func()) {
	t.Helper()

	db, dbCleanup := SetupTestDB(t)

	store, err := storage.Init(db)
	if err != nil {
		dbCleanup()
		t.Fatalf("failed to initialize storage: %v", err)
	}

	renderingService := service.NewRenderingService(render.NewPipeline(nil), nil, config.MaxContentBytes)

	app := &server.App{
		Pages:     service.NewPageService(store, store, store, store, renderingService),
		Files:     service.NewFileService(store),
		Search:    service.NewSearchService(store),
		Rendering: renderingService,
		Config:    config,
	}

	cleanup := func() {
		store.Close()
		dbCleanup()
	}

	return &TestApp{
		App:    app,
		Router: server.NewRouter(app),
		DB:     db,
	}, cleanup
}

// CreateTestPage creates a page through the page service and returns it.
func CreateTestPage(t *testing.T, app *TestApp, name, content string, uploads ...*wiki.Upload) *wiki.Page {
	t.Helper()

	page, err := app.Pages.AddPage(context.Background(), name, content, uploads)
	if err != nil {
		t.Fatalf("failed to create test page %q: %v", name, err)
	}
	return page
}
