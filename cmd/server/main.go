package main

import (
	"context"
	"log"
	"runtime"
	"time"

	"github.com/fadilmartias/job-board/internal/classifier"
	"github.com/fadilmartias/job-board/internal/config"
	"github.com/fadilmartias/job-board/internal/domain/fiber/handler"
	"github.com/fadilmartias/job-board/internal/embedding"
	"github.com/fadilmartias/job-board/internal/middleware"
	"github.com/fadilmartias/job-board/internal/model"
	"github.com/fadilmartias/job-board/internal/repository"
	"github.com/fadilmartias/job-board/internal/service"
	"github.com/fadilmartias/job-board/internal/usecase"
	"github.com/fadilmartias/job-board/internal/view"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()

	// Models are loaded once and shared read-only by every request.
	vectorizer, clf := loadModels(ctx, service.NewArtifactService())

	store, closeStore := openStore()
	defer closeStore()

	engine := view.NewEngine()
	app := fiber.New(fiber.Config{
		AppName:      appConfig.Name,
		Views:        engine,
		ErrorHandler: handler.ErrorHandler,
	})
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	uc := usecase.NewJobUsecase(vectorizer, clf, store, engine)
	jobHandler := handler.NewJobHandler(uc, config.LoadStoreConfig().LatestCount)
	jobHandler.RegisterRoutes(app)

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			log.Printf("Active goroutines: %d", runtime.NumGoroutine())
		}
	}()

	log.Println("Server running on ", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		log.Fatal(err)
	}
}

// loadModels reads the embedding table, classifier and labels. Any problem
// with the artifacts is fatal.
func loadModels(ctx context.Context, artifacts service.ArtifactServiceInterface) (*embedding.Vectorizer, *classifier.Classifier) {
	modelConfig := config.LoadModelConfig()

	if err := artifacts.Ensure(ctx, modelConfig.EmbeddingsPath, modelConfig.EmbeddingsURL); err != nil {
		log.Fatalf("Embeddings unavailable: %v", err)
	}

	table, err := embedding.LoadFile(modelConfig.EmbeddingsPath, modelConfig.EmbeddingsFormat)
	if err != nil {
		log.Fatalf("Could not load embeddings: %v", err)
	}
	lr, err := classifier.LoadLogisticRegression(modelConfig.ClassifierPath)
	if err != nil {
		log.Fatalf("Could not load classifier: %v", err)
	}
	categories, err := classifier.LoadCategorySet(modelConfig.LabelsPath)
	if err != nil {
		log.Fatalf("Could not load category names: %v", err)
	}
	clf, err := classifier.New(lr, categories, table.Dim())
	if err != nil {
		log.Fatalf("Classifier does not match its artifacts: %v", err)
	}
	log.Printf("Classifier ready: %d categories, %d features", categories.Len(), lr.NumFeatures())
	return embedding.NewVectorizer(table), clf
}

func openStore() (repository.JobStore, func()) {
	storeConfig := config.LoadStoreConfig()
	switch storeConfig.Backend {
	case config.StoreBackendFile:
		store, err := repository.NewFileJobStore(storeConfig.JobsDir)
		if err != nil {
			log.Fatal(err)
		}
		return store, func() {}
	case config.StoreBackendSQLite:
		store, err := repository.OpenSQLiteJobStore(storeConfig.SQLitePath)
		if err != nil {
			log.Fatal(err)
		}
		return store, func() { store.Close() }
	case config.StoreBackendPostgres:
		db := ConnectDB()
		return repository.NewJobRepository(db), func() {
			if pgDB, err := db.DB(); err == nil {
				pgDB.Close()
			}
		}
	default:
		log.Fatalf("Unknown STORE_BACKEND %q", storeConfig.Backend)
		return nil, nil
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		log.Fatalf("Could not get database instance: %v", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		log.Fatal("could not enable pgvector: ", err)
	}
	err = db.AutoMigrate(&model.JobPosting{})
	if err != nil {
		log.Fatal("migration failed: ", err)
	}
	return db
}
