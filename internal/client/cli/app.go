package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/client"
	"github.com/dmitrijs2005/shopkeeper/internal/client/config"
	"github.com/dmitrijs2005/shopkeeper/internal/client/credentials"
	"github.com/dmitrijs2005/shopkeeper/internal/client/exporter"
	"github.com/dmitrijs2005/shopkeeper/internal/client/services"
	"github.com/dmitrijs2005/shopkeeper/internal/cryptox"
	"github.com/dmitrijs2005/shopkeeper/internal/filex"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config       *config.Config
	authService  services.AuthService
	auditService services.AuditService
	db           *sql.DB
	log          logging.Logger
	reader       *bufio.Reader
	out          io.Writer

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the session database for the configured API origin and wires
// the gateway and services on top of it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel)

	dbPath, err := c.DatabasePath()
	if err != nil {
		return nil, err
	}
	if _, err := filex.EnsureDir(filepath.Dir(dbPath)); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store, err := openStore(c, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	gateway, err := client.NewGateway(c.APIBaseURL, store,
		client.WithHTTPClient(&http.Client{Timeout: c.RequestTimeout}),
		client.WithLogger(log),
		client.WithRateLimit(c.RateLimit),
		client.WithEndpoints(c.LoginPath, c.RefreshPath),
		client.WithRefreshTimeout(c.RefreshTimeout),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sink, err := newSink(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:       c,
		authService:  services.NewAuthService(gateway, store, log),
		auditService: services.NewAuditService(gateway, sink, log),
		db:           db,
		log:          log,
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}, nil
}

func openStore(c *config.Config, db *sql.DB) (credentials.Store, error) {
	secretPath, err := c.SecretPath()
	if err != nil {
		return nil, err
	}
	secret, err := filex.ReadOrCreateSecret(secretPath, cryptox.KeySize)
	if err != nil {
		return nil, err
	}
	return credentials.NewSQLiteStore(db, secret)
}

// newSink selects S3 when a bucket is configured, the export dir otherwise.
func newSink(ctx context.Context, c *config.Config) (exporter.Sink, error) {
	if c.ExportBucket == "" {
		return exporter.NewFileSink(c.ExportDir), nil
	}
	return exporter.NewS3Sink(ctx, exporter.S3Config{
		Bucket:    c.ExportBucket,
		Prefix:    c.ExportPrefix,
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	})
}

// Run starts the connectivity watcher and the REPL. It blocks until the user
// exits or input ends, then closes the database.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn("Welcome to shopkeeper CLI (type 'help' for commands)")

	a.probe(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.PingInterval)

	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, bufio.NewScanner(a.reader))
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	st, err := a.authService.Status(ctx)
	return err == nil && st.Authenticated
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

// getStatus renders the prompt status, e.g. "(admin online)".
func (a *App) getStatus(ctx context.Context) string {
	s := ""
	if st, err := a.authService.Status(ctx); err == nil && st.Authenticated {
		if st.User != nil {
			s = st.User.Username + " "
		} else {
			s = "authenticated "
		}
	}
	s += string(a.getMode())
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher pings the API every interval and updates the
// connectivity mode shown in the prompt. It returns when ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}
