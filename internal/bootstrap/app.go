package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/assistant"
	"resume-builder/internal/llm"
	"resume-builder/internal/llm/gemini"
	"resume-builder/internal/llm/openai"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/users"
)

// devJWTSecret is only used when ENV is dev/local and JWT_SECRET is unset.
const devJWTSecret = "dev-secret-change-me"

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	UsersRepo      users.Repo
	ResumesRepo    resumes.Repo
	UsersService   *users.Service
	ResumesService *resumes.Service
	Assistant      *assistant.Service
	LLM            llm.Client
	Verifier       *auth.Verifier
}

// Build prepares dependencies and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}
	if sqlDB != nil {
		app.UsersRepo = &users.PGRepo{DB: sqlDB}
		app.ResumesRepo = &resumes.PGRepo{DB: sqlDB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.ResumesService = resumes.NewService(app.ResumesRepo, app.UsersService)
	if cfg.DefaultTitle != "" {
		app.ResumesService.DefaultTitle = cfg.DefaultTitle
	}
	if cfg.DuplicateSuffix != "" {
		app.ResumesService.DuplicateSuffix = cfg.DuplicateSuffix
	}
	app.ResumesService.MaxDataBytes = cfg.MaxResumeBytes

	app.LLM, err = buildLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Assistant = assistant.NewService(app.LLM)

	app.Verifier, err = buildVerifier(cfg)
	if err != nil {
		return nil, err
	}

	deps := server.RouterDeps{
		Config:           cfg,
		DB:               sqlDB,
		Users:            app.UsersService,
		RateLimiter:      middleware.NewRateLimiter(nil),
		UserHandler:      users.NewHandler(app.UsersService, app.ResumesService),
		ResumeHandler:    resumes.NewHandler(app.ResumesService),
		AssistantHandler: assistant.NewHandler(app.Assistant),
	}
	if app.Verifier != nil {
		deps.Verifier = app.Verifier
	}
	app.Router = server.NewRouter(deps)

	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_fallback", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, db.ErrNoDatabaseURL
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_fallback", map[string]any{"reason": "database unavailable", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

// buildLLM picks the provider. Without an API key the mock provider answers
// so the AI endpoints stay usable locally.
func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			break
		}
		c, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		telemetry.Info("bootstrap.llm", map[string]any{"provider": "openai", "model": cfg.LLMModel})
		return llm.WithRetry(c, "openai"), nil
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			break
		}
		g, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		telemetry.Info("bootstrap.llm", map[string]any{"provider": "gemini", "model": g.Model()})
		return llm.WithRetry(g, "gemini"), nil
	}
	telemetry.Warn("bootstrap.llm", map[string]any{"provider": "mock", "reason": "no API key configured"})
	return llm.MockClient{}, nil
}

func buildVerifier(cfg config.Config) (*auth.Verifier, error) {
	secret := strings.TrimSpace(cfg.JWTSecret)
	if secret == "" {
		if !config.IsDevLike(cfg.Env) {
			if cfg.AuthRequired {
				return nil, fmt.Errorf("JWT_SECRET is required when AUTH_REQUIRED is set")
			}
			return nil, nil
		}
		secret = devJWTSecret
	}
	return auth.NewVerifier(secret)
}
