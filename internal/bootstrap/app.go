package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"cv-builder-backend/internal/auth"
	"cv-builder-backend/internal/cvs"
	"cv-builder-backend/internal/export"
	sharedauth "cv-builder-backend/internal/shared/auth"
	"cv-builder-backend/internal/shared/config"
	"cv-builder-backend/internal/shared/server"
	"cv-builder-backend/internal/shared/storage/db"
	"cv-builder-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	Tokens *sharedauth.TokenManager

	UsersRepo users.Repo
	CVRepo    cvs.Repo

	UsersService *users.Service
	CVService    *cvs.Service

	AuthHandler *auth.Handler
	CVHandler   *cvs.Handler
}

// Build prepares shared dependencies and the router. Without a database it
// falls back to in-memory repositories in dev-like environments.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := sharedauth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Tokens: tokens,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:      app.Config,
		Tokens:      app.Tokens,
		AuthHandler: app.AuthHandler,
		CVHandler:   app.CVHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.CVRepo = &cvs.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.CVRepo = cvs.NewMemoryRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.CVService = cvs.NewService(app.CVRepo)

	app.AuthHandler = auth.NewHandler(app.UsersService, app.Tokens, app.Config.CookieSecure)
	app.CVHandler = cvs.NewHandler(app.CVService, export.NewRenderer())
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
