package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	adapthttp "usergate/internal/adapter/http"
	"usergate/internal/app"
	"usergate/internal/config"
	"usergate/internal/i18n"
	"usergate/internal/logging"

	"github.com/spf13/cobra"
)

const janitorInterval = 10 * time.Minute

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	f.StringVar(&cfg.WebDir, "web-dir", cfg.WebDir, "directory holding index.html and assets/")
	f.StringVar(&cfg.AuthMode, "auth-mode", cfg.AuthMode, "authentication mode: mock or password")
	f.DurationVar(&cfg.LoginDelay, "login-delay", cfg.LoginDelay, "latency simulated by the mock authenticator")
	f.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "session lifetime")
	f.StringVar(&cfg.DefaultLocale, "default-locale", cfg.DefaultLocale, "locale for navigations that name none")
	f.BoolVar(&cfg.SecureCookies, "secure-cookies", cfg.SecureCookies, "mark cookies Secure (serve behind HTTPS)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	h, authSvc, err := newHandler(ctx, cfg, st, logger)
	if err != nil {
		return err
	}

	go runJanitor(ctx, authSvc, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "auth_mode", cfg.AuthMode, "sso", cfg.OIDC.Enabled(), "postgres", cfg.DatabaseURL != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newHandler wires the services behind the HTTP adapter. The configured
// default locale is both the navigation default and the catalog fallback.
func newHandler(ctx context.Context, cfg *config.Config, st *stores, logger *slog.Logger) (http.Handler, *app.AuthService, error) {
	var auth app.Authenticator
	switch cfg.AuthMode {
	case config.AuthModePassword:
		auth = app.NewPasswordAuthenticator(st.users)
	default:
		auth = app.NewMockAuthenticator(cfg.LoginDelay)
	}
	authSvc := app.NewAuthService(auth, st.users, st.sessions).WithSessionTTL(cfg.SessionTTL)

	bundle, err := i18n.New(cfg.DefaultLocale)
	if err != nil {
		return nil, nil, err
	}
	nav := app.NewNavigator(bundle, cfg.DefaultLocale)

	oidcConfig, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDC)
	if err != nil {
		return nil, nil, err
	}

	h := adapthttp.New(authSvc, nav, bundle, logger, adapthttp.Options{
		WebDir:        cfg.WebDir,
		AuthMode:      cfg.AuthMode,
		SecureCookies: cfg.SecureCookies,
		OIDC:          oidcConfig,
	}).Handler()
	return h, authSvc, nil
}

func runJanitor(ctx context.Context, authSvc *app.AuthService, logger *slog.Logger) {
	t := time.NewTicker(janitorInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := authSvc.CleanupExpired(ctx); err != nil {
				logger.Error("session cleanup failed", "error", err)
			}
		}
	}
}
