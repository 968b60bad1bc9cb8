package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/abenov/accounts-server/internal/api/http/router"
	"github.com/abenov/accounts-server/internal/config"
	"github.com/abenov/accounts-server/internal/hash"
	"github.com/abenov/accounts-server/internal/logger"
	"github.com/abenov/accounts-server/internal/model"
	"github.com/abenov/accounts-server/internal/notify"
	"github.com/abenov/accounts-server/internal/otp"
	"github.com/abenov/accounts-server/internal/repository/postgres"
	"github.com/abenov/accounts-server/internal/server"
	"github.com/abenov/accounts-server/internal/service"
	"github.com/abenov/accounts-server/internal/storage"
	localstore "github.com/abenov/accounts-server/internal/storage/local"
	miniostore "github.com/abenov/accounts-server/internal/storage/minio"
	remotestore "github.com/abenov/accounts-server/internal/storage/remote"
	"github.com/abenov/accounts-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	websiteRepo := postgres.NewWebsiteRepository(db)

	tokens := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)
	hasher := hash.NewBcrypt(hash.DefaultCost)
	codes := otp.NewGenerator()
	notifier := notify.NewSMTP(cfg.SMTP)

	localStore := localstore.NewStore(cfg.Assets.LocalDir)
	assets, err := newAssetStore(ctx, cfg.Assets, localStore)
	if err != nil {
		logger.Fatal("failed to initialize asset store", "error", err)
	}
	resolver := storage.NewResolver(localStore, cfg.Assets.Remote.BaseURL, cfg.Assets.Remote.Token, cfg.Assets.Remote.Timeout)

	identityService := service.NewIdentity(userRepo, assets, resolver, notifier, tokens, hasher, codes, logger)
	websiteService := service.NewWebsite(websiteRepo, logger)

	r := router.New(identityService, websiteService, tokens, tokens, logger)
	httpServer := server.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl server.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting server on", "address", httpServer.Address())
		if err := httpServer.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// newAssetStore selects the write backend. Reads are unaffected: the
// resolver dispatches on the stored locator's shape either way.
func newAssetStore(ctx context.Context, cfg config.Assets, localStore *localstore.Store) (model.AssetStore, error) {
	switch cfg.Backend {
	case "local":
		return localStore, nil
	case "remote":
		return remotestore.NewStore(cfg.Remote), nil
	case "s3":
		minioClient, err := minio.New(cfg.S3.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
			Secure: cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		return miniostore.NewStore(ctx, minioClient, cfg.S3.Bucket)
	default:
		return nil, fmt.Errorf("unknown asset backend: %s", cfg.Backend)
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
