package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/typeform-survey/survey-client/config"
	"github.com/typeform-survey/survey-client/internal/catalog"
	"github.com/typeform-survey/survey-client/internal/services"
	"github.com/typeform-survey/survey-client/internal/session"
	"github.com/typeform-survey/survey-client/pkg/google"
	"github.com/typeform-survey/survey-client/pkg/httpclient"
	"github.com/typeform-survey/survey-client/pkg/logger"
	"github.com/typeform-survey/survey-client/pkg/retry"
	"github.com/typeform-survey/survey-client/pkg/surveyapi"
	"github.com/typeform-survey/survey-client/pkg/tracing"
	"go.uber.org/zap"
)

func main() {
	var (
		dashboard  bool
		credential string
		signOut    bool
	)
	flag.BoolVar(&dashboard, "dashboard", false, "Serve the results dashboard instead of the survey")
	flag.StringVar(&credential, "credential", "", "Google ID token to sign in with (skips the device flow)")
	flag.BoolVar(&signOut, "signout", false, "Discard the stored session and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Logging.AppEnv,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting survey client",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Logging.AppEnv),
		zap.Bool("dashboard", dashboard),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceVersion,
		cfg.Logging.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := surveyapi.NewClient(cfg.Backend.URL, httpclient.NewStandardClient(
		cfg.HTTPTimeout(),
		httpclient.UserAgent(cfg.Observability.ServiceName, cfg.Observability.ServiceVersion),
	))

	if dashboard {
		if err := cfg.ValidateDashboard(); err != nil {
			logger.Fatal("Invalid dashboard configuration", zap.Error(err))
		}
		if err := runDashboard(ctx, cfg, api); err != nil {
			logger.Fatal("Dashboard server failed", zap.Error(err))
		}
		return
	}

	if err := runSurveyClient(ctx, cfg, api, credential, signOut); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		logger.Sync()
		os.Exit(1)
	}
}

func runSurveyClient(ctx context.Context, cfg *config.Config, api *surveyapi.Client, credential string, signOut bool) error {
	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	auth := services.NewAuthService(store, api, authConfig(cfg))

	if signOut {
		if err := auth.SignOut(ctx); err != nil {
			return fmt.Errorf("sign out: %w", err)
		}
		fmt.Println("Signed out.")
		return nil
	}

	term := newTerminal(os.Stdin, os.Stdout)

	status, err := auth.ResumeSession(ctx)
	if err != nil {
		return fmt.Errorf("resume session: %w", err)
	}
	if status == nil {
		if credential == "" {
			if err := cfg.ValidateSignIn(); err != nil {
				return err
			}
			flow := google.NewDeviceFlow(cfg.Google.ClientID, cfg.Google.ClientSecret)
			credential, err = flow.Credential(ctx, term.showDeviceCode)
			if err != nil {
				return fmt.Errorf("google sign-in: %w", err)
			}
		}
		status, err = auth.SignIn(ctx, credential)
		if err != nil {
			return err
		}
	}

	submitter := services.NewSubmissionService(api, auth, cfg.Submission.MaxAttachmentBytes)
	engine := services.NewSurveyEngine(catalog.Default(), submitter)
	auth.RegisterResetter(engine)

	return term.run(ctx, auth, engine, status)
}

func authConfig(cfg *config.Config) services.AuthConfig {
	authCfg := services.DefaultAuthConfig()
	authCfg.VerifyOnResume = cfg.Auth.VerifyOnResume
	authCfg.Retry = retry.IdentityExchangeConfig(nil)
	authCfg.Retry.MaxRetries = cfg.Auth.MaxRetries
	if delay := cfg.RetryInitialDelay(); delay > 0 {
		authCfg.Retry.InitialDelay = delay
	}
	return authCfg
}

// newSessionStore opens the configured session backend and returns its closer
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	if cfg.Session.Store == config.SessionStoreRedis {
		client, err := session.NewRedisClient(ctx, cfg.Session.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}
		return session.NewRedisStore(client, cfg.Session.Profile), closeFn, nil
	}

	path := cfg.Session.File
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, nil, fmt.Errorf("locate config dir: %w", err)
		}
		path = filepath.Join(dir, "survey-client", "session-"+cfg.Session.Profile+".json")
	}
	logger.Debug("Using file session store", zap.String("path", path))
	return session.NewFileStore(path), func() {}, nil
}
