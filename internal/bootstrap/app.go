package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/analyses"
	googleauth "resume-ats/internal/auth"
	"resume-ats/internal/queue"
	"resume-ats/internal/resumes"
	"resume-ats/internal/scoring"
	scoringopenai "resume-ats/internal/scoring/openai"
	"resume-ats/internal/shared/cache"
	"resume-ats/internal/shared/config"
	"resume-ats/internal/shared/server"
	"resume-ats/internal/shared/storage/db"
	"resume-ats/internal/shared/storage/object"
	localstore "resume-ats/internal/shared/storage/object/local"
	s3store "resume-ats/internal/shared/storage/object/s3"
	"resume-ats/internal/users"
)

const pollWindow = time.Second

// App holds shared dependencies for the API and worker entrypoints.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Queue           queue.Client
	PollLimiter     cache.Limiter
	ResumesRepo     resumes.Repo
	AnalysesRepo    analyses.Repo
	UsersRepo       users.Repo
	ResumesService  *resumes.Service
	AnalysesService *analyses.Service
	UsersService    *users.Service
	ResumesHandler  *resumes.Handler
	AnalysesHandler *analyses.Handler
	UsersHandler    *users.Handler
	GoogleAuth      *googleauth.GoogleService
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	limiter := buildPollLimiter(ctx, cfg)

	app := &App{
		Config:      cfg,
		DB:          sqlDB,
		Store:       store,
		Queue:       queueClient,
		PollLimiter: limiter,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		ResumesHandler:  app.ResumesHandler,
		AnalysesHandler: app.AnalysesHandler,
		UsersHandler:    app.UsersHandler,
		GoogleAuth:      app.GoogleAuth,
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
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.SQSQueueURL)
}

func buildPollLimiter(ctx context.Context, cfg config.Config) cache.Limiter {
	if strings.TrimSpace(cfg.RedisURL) != "" {
		limiter, err := cache.NewRedisLimiter(ctx, cfg.RedisURL, pollWindow)
		if err == nil {
			return limiter
		}
		log.Printf("bootstrap: redis connect failed; using in-memory poll limiter: %v", err)
	}
	return cache.NewMemoryLimiter(pollWindow, nil)
}

func buildProvider(cfg config.Config) (scoring.Provider, string, error) {
	if cfg.ScoringProvider == "openai" {
		client, err := scoringopenai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel)
		if err != nil {
			return nil, "", err
		}
		return client, "openai", nil
	}
	return scoring.NewMockProvider(), "mock", nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var resumeRepo resumes.Repo
	var analysisRepo analyses.Repo
	var userRepo users.Repo

	if app.DB != nil {
		resumeRepo = &resumes.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		resumeRepo = resumes.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	provider, providerName, err := buildProvider(app.Config)
	if err != nil {
		return err
	}

	resumeSvc := &resumes.Service{Repo: resumeRepo, Store: app.Store}
	analysisSvc := &analyses.Service{
		Repo:         analysisRepo,
		ResumeRepo:   resumeRepo,
		Store:        app.Store,
		Provider:     provider,
		Queue:        app.Queue,
		ProviderName: providerName,
	}
	userSvc := users.NewService(userRepo)

	resumeHandler := resumes.NewHandler(resumeSvc)
	resumeHandler.PollLimiter = app.PollLimiter

	app.ResumesRepo = resumeRepo
	app.AnalysesRepo = analysisRepo
	app.UsersRepo = userRepo
	app.ResumesService = resumeSvc
	app.AnalysesService = analysisSvc
	app.UsersService = userSvc
	app.ResumesHandler = resumeHandler
	app.AnalysesHandler = analyses.NewHandler(analysisSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	return nil
}
