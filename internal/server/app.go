// Package server initializes and runs the governance bot: it wires the
// storage backend, session store, handshake service, dialog wizards and the
// HTTP surface, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/logging"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/proof"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/bot"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/config"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/dialog"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/gate"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/handshake"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/httpapi"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/linktoken"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/oracle"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/repositories/repomanager"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/sessions"
	"github.com/Degen-Frat-House/Frat-Gov-Bot/internal/server/wizards"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	store   sessions.Store
	handler http.Handler
	closers []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	app := &App{config: c, logger: logger}

	repos, err := newRepositoryManager(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.repos = repos
	app.closers = append(app.closers, repos.Close)

	store, replay, err := newSessionStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("session store init error: %w", err)
	}
	app.store = store

	verifier := proof.NewVerifier(c.FreshnessWindow, replay, logger)

	issuer, err := linktoken.NewIssuer([]byte(c.LinkTokenSecret), c.LinkTokenValidity)
	if err != nil {
		return nil, fmt.Errorf("link token init error: %w", err)
	}

	messenger := bot.NewTelegramClient(c.BotToken, nil)

	hs, err := handshake.NewService(store, verifier, repos.Users(), &handshake.LogSubmitter{Logger: logger}, c.SessionTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("handshake init error: %w", err)
	}

	balances := oracle.NewRPCClient(c.SolanaRPCURL, c.TokenMintAddress, nil)
	g := gate.New(balances, logger)

	var announcer wizards.Announcer = wizards.NopAnnouncer{}
	if c.GroupChatID != "" {
		announcer = &bot.GroupAnnouncer{Messenger: messenger, ChatID: c.GroupChatID}
	}

	engine := dialog.NewEngine(logger)
	engine.Register(wizards.NewCreateProposal(repos.Users(), repos.Proposals(), g, announcer, logger))
	engine.Register(wizards.NewVote(repos.Users(), repos.Proposals(), repos.Votes(), g, logger))

	router := bot.NewRouter(bot.RouterParams{
		Engine:      engine,
		Users:       repos.Users(),
		Proposals:   repos.Proposals(),
		Votes:       repos.Votes(),
		Sessions:    store,
		Issuer:      issuer,
		LinkBaseURL: c.BotDomain,
		Messenger:   messenger,
		Logger:      logger,
	})

	app.handler = httpapi.NewRouter(httpapi.Params{
		Handshake: hs,
		Gate:      g,
		Bot:       router,
		Issuer:    issuer,
		Messenger: messenger,
		Logger:    logger,
	})

	return app, nil
}

func newRepositoryManager(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.StoreBackend {
	case config.StorePostgres:
		return repomanager.NewPostgresRepositoryManager(ctx, c.DatabaseDSN)
	case config.StoreSQLite:
		return repomanager.NewSQLiteRepositoryManager(ctx, c.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
}

func newSessionStore(ctx context.Context, c *config.Config) (sessions.Store, proof.ReplayCache, error) {
	switch c.SessionBackend {
	case config.SessionsRedis:
		rs, err := sessions.NewRedisStore(ctx, c.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return rs, sessions.NewReplayCache(rs.Client()), nil
	case config.SessionsMemory:
		return sessions.NewMemoryStore(time.Minute), proof.NewMemoryReplayCache(), nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.HTTPAddr, "store", app.config.StoreBackend)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error(ctx, "http server error", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err.Error())
	}

	wg.Wait()

	for _, closeFn := range app.closers {
		if err := closeFn(); err != nil {
			app.logger.Error(ctx, "close error", "error", err.Error())
		}
	}

	app.logger.Info(ctx, "App stopped")
}
