package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"countyconnect/internal/db"
	"countyconnect/internal/directory"
	"countyconnect/internal/identity"
	"countyconnect/internal/seed"
	"countyconnect/internal/server"
	"countyconnect/internal/storage"
	"countyconnect/internal/store"
	"countyconnect/internal/store/memory"
	"countyconnect/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "in-memory",
			Usage: "Keep all data in process memory, seeded with demo data. Nothing survives a restart.",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}
	logger := newLogger(config)

	stores, closeStores, err := openStores(ctx, config, logger, cCtx.Bool("in-memory"))
	if err != nil {
		return err
	}
	defer closeStores()

	var (
		profiles directory.ProfileLookup
		uploader server.Uploader
	)

	if config.CognitoUserPoolID != "" || config.S3BucketName != "" {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}

		if config.CognitoUserPoolID != "" {
			profiles = identity.NewCognito(cognitoidentityprovider.NewFromConfig(awsConfig), config.CognitoUserPoolID)
		}
		if config.S3BucketName != "" {
			uploader = storage.NewS3Storage(s3.NewFromConfig(awsConfig), config.S3BucketName, config.S3PublicBaseURL)
		}
	}

	var verifier server.TokenVerifier = rejectTokens{}
	if config.CognitoIssuerURL != "" {
		verifier, err = server.NewJWKSVerifier(ctx, config.CognitoIssuerURL, config.CognitoClientID)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("COGNITO_ISSUER_URL is not set, only anonymous requests will be served")
	}

	dir := directory.New(logger, stores, profiles, nil)

	srv, err := server.New(config, logger, dir, verifier, uploader)
	if err != nil {
		return err
	}

	refresh := func() {
		if err := dir.RefreshModerationStats(ctx); err != nil {
			logger.WithError(err).Error("failed to refresh moderation stats")
		}
	}
	refresh()

	cr := cron.New()
	if err := cr.AddFunc(config.ModerationStatsSchedule, refresh); err != nil {
		return fmt.Errorf("invalid MODERATION_STATS_SCHEDULE %q: %w", config.ModerationStatsSchedule, err)
	}
	cr.Start()
	defer cr.Stop()

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func openStores(ctx context.Context, config *types.Config, logger *logrus.Logger, inMemory bool) (directory.Stores, func(), error) {
	if inMemory {
		mem := memory.New()
		summary, err := seed.Run(ctx, mem, mem, mem, true)
		if err != nil {
			return directory.Stores{}, nil, fmt.Errorf("failed to seed in-memory store: %w", err)
		}
		logger.WithField("towns", summary.Towns).
			WithField("listings", summary.Listings).
			Warn("serving from memory, nothing will be persisted")

		return directory.Stores{
			Listings:    mem,
			Towns:       mem,
			Users:       mem,
			Claims:      mem,
			Transitions: mem,
		}, func() {}, nil
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return directory.Stores{}, nil, err
	}

	return directory.Stores{
		Listings:    store.NewListingRepository(pool),
		Towns:       store.NewTownRepository(pool),
		Users:       store.NewUserRepository(pool),
		Claims:      store.NewClaimRepository(pool),
		Transitions: store.NewTransitionRepository(pool),
	}, pool.Close, nil
}

type rejectTokens struct{}

func (rejectTokens) Verify(context.Context, string) (*server.Identity, error) {
	return nil, errors.New("token verification is not configured")
}
