package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcoPoloResearchLab/linkden/internal/analytics"
	"github.com/MarcoPoloResearchLab/linkden/internal/auth"
	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/config"
	"github.com/MarcoPoloResearchLab/linkden/internal/contact"
	"github.com/MarcoPoloResearchLab/linkden/internal/database"
	"github.com/MarcoPoloResearchLab/linkden/internal/ids"
	"github.com/MarcoPoloResearchLab/linkden/internal/logging"
	"github.com/MarcoPoloResearchLab/linkden/internal/render"
	"github.com/MarcoPoloResearchLab/linkden/internal/server"
	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
	"github.com/MarcoPoloResearchLab/linkden/internal/social"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	cfgFile string
	envFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "linkden",
		Short:         "LinkDen link-in-bio server and admin tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(newServeCommand(), newTokenCommand(), newAdminCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "linkden:", err)
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to configuration file")
	flags.StringVar(&envFile, "env-file", ".env", "Path to a .env file loaded before configuration")
	flags.String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	flags.String("log-encoding", defaults.GetString("log.encoding"), "Log encoding (json, console)")

	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.encoding", "log-encoding")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	lookup := cmd.PersistentFlags().Lookup(flag)
	if lookup == nil {
		lookup = cmd.Flags().Lookup(flag)
	}
	if err := viper.BindPFlag(key, lookup); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the LinkDen HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
	defaults := config.NewViper()
	flags := cmd.Flags()
	flags.String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	flags.StringSlice("allowed-origins", nil, "Origins allowed to call the admin API")
	flags.String("database-driver", defaults.GetString("database.driver"), "Database driver (sqlite, postgres)")
	flags.String("database-path", defaults.GetString("database.path"), "SQLite database path")
	flags.String("database-dsn", "", "Postgres DSN")
	flags.String("owner", "", "User id allowed to use the admin API")
	flags.String("signing-secret", "", "Session signing secret (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "http.allowed_origins", "allowed-origins")
	bindFlag(cmd, "database.driver", "database-driver")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "database.dsn", "database-dsn")
	bindFlag(cmd, "owner.user_id", "owner")
	bindFlag(cmd, "auth.signing_secret", "signing-secret")
	return cmd
}

func newTokenCommand() *cobra.Command {
	var userID string
	var displayName string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
				SigningSecret: []byte(appConfig.SigningSecret),
				Issuer:        appConfig.Issuer,
				TokenTTL:      appConfig.TokenTTL,
			})
			if err != nil {
				return err
			}
			if userID == "" {
				userID = appConfig.OwnerUserID
			}
			token, expiresAt, err := issuer.IssueSessionToken(auth.Identity{UserID: userID, DisplayName: displayName})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id to embed (defaults to the configured owner)")
	cmd.Flags().StringVar(&displayName, "name", "", "Display name to embed")
	return cmd
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogEncoding)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.Open(database.Options{
		Driver: appConfig.DatabaseDriver,
		Path:   appConfig.DatabasePath,
		DSN:    appConfig.DatabaseDSN,
	}, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	idProvider := ids.NewUUIDProvider()
	blockService, err := blocks.NewService(blocks.ServiceConfig{Database: db, Clock: time.Now, Logger: logger})
	if err != nil {
		return err
	}
	settingsService, err := settings.NewService(settings.ServiceConfig{Database: db, Logger: logger})
	if err != nil {
		return err
	}
	socialService, err := social.NewService(social.ServiceConfig{Database: db, IDProvider: idProvider, Logger: logger})
	if err != nil {
		return err
	}
	analyticsService, err := analytics.NewService(analytics.ServiceConfig{Database: db, IDProvider: idProvider, Logger: logger})
	if err != nil {
		return err
	}
	mailer, err := newMailer(appConfig, logger)
	if err != nil {
		return err
	}
	contactService, err := contact.NewService(contact.ServiceConfig{
		Database:   db,
		Settings:   settingsService,
		Mailer:     mailer,
		IDProvider: idProvider,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	sessionValidator, err := auth.NewSessionValidator(auth.SessionValidatorConfig{
		SigningSecret: []byte(appConfig.SigningSecret),
		Issuer:        appConfig.Issuer,
		CookieName:    appConfig.CookieName,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Sessions:       sessionValidator,
		OwnerID:        appConfig.OwnerUserID,
		Blocks:         blockService,
		Settings:       settingsService,
		Social:         socialService,
		Analytics:      analyticsService,
		Contact:        contactService,
		Renderer:       render.NewRenderer(logger),
		Realtime:       server.NewRealtimeDispatcher(),
		AllowedOrigins: appConfig.AllowedOrigins,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              appConfig.HTTPAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return signalCtx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("address", appConfig.HTTPAddress),
			zap.String("database_driver", appConfig.DatabaseDriver),
		)
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func newMailer(appConfig config.AppConfig, logger *zap.Logger) (contact.Mailer, error) {
	if appConfig.ResendAPIKey == "" {
		logger.Warn("mail.resend_api_key not set, contact emails will only be logged")
		return contact.LogMailer{Logger: logger}, nil
	}
	return contact.NewResendMailer(contact.ResendConfig{
		APIKey: appConfig.ResendAPIKey,
		From:   appConfig.MailFrom,
		APIURL: appConfig.MailAPIURL,
		Logger: logger,
	})
}
