// Package server initializes and runs the chat relay. It opens the database,
// applies migrations, loads the TLS certificate whose RSA key also decrypts
// login credentials, and serves one handler goroutine per accepted
// connection alongside the operator console.
package server

import (
	"context"
	"crypto/rsa"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Hashith00/tlschat/internal/logging"
	"github.com/Hashith00/tlschat/internal/server/chat"
	"github.com/Hashith00/tlschat/internal/server/config"
	"github.com/Hashith00/tlschat/internal/server/metrics"
	"github.com/Hashith00/tlschat/internal/server/repositories/repomanager"
	"github.com/Hashith00/tlschat/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repoManager repomanager.RepositoryManager
	userService *services.UserService
	registry    *chat.Registry
	privKey     *rsa.PrivateKey
	tlsConfig   *tls.Config
}

func NewApp(c *config.Config) (*App, error) {

	s := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(s).With("module", "server")

	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("certificate load error: %w", err)
	}
	privKey, ok := cert.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("certificate key is not RSA; credential decryption needs an RSA key")
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	us := services.NewUserService(db, m, c)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repoManager: m,
		userService: us,
		registry:    chat.NewRegistry(),
		privKey:     privKey,
		tlsConfig:   &tls.Config{Certificates: []tls.Certificate{cert}},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// acceptLoop accepts until the listener is closed. Every connection gets its
// own handler goroutine; the handler owns the connection from here on.
func (app *App) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			app.logger.Warn(ctx, "accept error", "error", err)
			continue
		}

		app.logger.Info(ctx, "connection accepted", "remote", conn.RemoteAddr().String())
		h := chat.NewHandler(conn, app.privKey, app.userService, app.registry, app.config.StalenessWindow, app.logger)
		go h.Serve(ctx)
	}
}

func (app *App) startMetricsServer(ctx context.Context) *http.Server {
	if app.config.MetricsAddr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "metrics server error", "error", err)
		}
	}()
	return srv
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.repoManager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	ln, err := tls.Listen("tcp", app.config.Addr, app.tlsConfig)
	if err != nil {
		return fmt.Errorf("listen error: %w", err)
	}
	app.logger.Info(ctx, "Listening", "addr", app.config.Addr)

	metricsSrv := app.startMetricsServer(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.acceptLoop(ctx, ln)
	}()

	go app.runConsole(ctx, os.Stdin, os.Stdout)

	<-ctx.Done()

	ln.Close()
	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		metricsSrv.Shutdown(shutdownCtx)
	}
	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "Stopped")
	return nil
}
