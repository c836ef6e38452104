package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/pokedex/internal/api"
	"github.com/dom/pokedex/internal/api/storeapi"
	"github.com/dom/pokedex/internal/config"
	"github.com/dom/pokedex/internal/repository"
	"github.com/dom/pokedex/internal/repository/firebase"
	"github.com/dom/pokedex/internal/repository/pokeapi"
	repoPostgres "github.com/dom/pokedex/internal/repository/postgres"
	"github.com/dom/pokedex/internal/service"
	"github.com/dom/pokedex/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_pokedex"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range []string{"pokemons"} {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:           "0", // Random port
		Environment:    "test",
		LogLevel:       "debug",
		HTTPTimeout:    5 * time.Second,
		PageSize:       3,
		CacheStaleTime: time.Minute,
		CacheGCTime:    5 * time.Minute,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Catalog  *FakeCatalog
	Store    *FakeStore
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Config   *config.Config
}

// NewTestServer wires the view API against fake catalog and store upstreams
// reached over real HTTP clients.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	catalog := NewFakeCatalog(t, 20)
	store := NewFakeStore(t)

	cfg := TestConfig()
	cfg.CatalogBaseURL = catalog.URL()
	cfg.StoreBaseURL = store.URL()

	repos := &repository.Repositories{
		Catalog: pokeapi.NewClient(cfg.CatalogBaseURL, cfg.HTTPTimeout),
		Store:   firebase.NewClient(cfg.StoreBaseURL, cfg.HTTPTimeout),
	}

	log := zap.NewNop()
	hub := websocket.NewHub(log)
	go hub.Run()

	services := service.NewServices(repos, cfg, hub, log)
	router := api.NewRouter(services, hub, log)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Catalog:  catalog,
		Store:    store,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Config:   cfg,
	}

	t.Cleanup(func() {
		services.Mutations.Wait()
		hub.Stop()
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the event stream URL
func (ts *TestServer) WebSocketURL() string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return wsURL + "/api/v1/ws"
}

// StoreServer is the postgres-backed store server on a real container
type StoreServer struct {
	Server *httptest.Server
	DB     *TestDB
}

func NewStoreServer(t *testing.T) *StoreServer {
	t.Helper()

	testDB := NewTestDB(t)
	router := storeapi.NewRouter(repoPostgres.NewDocumentRepository(testDB.DB), zap.NewNop())
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &StoreServer{Server: server, DB: testDB}
}

func (s *StoreServer) URL() string {
	return s.Server.URL
}
