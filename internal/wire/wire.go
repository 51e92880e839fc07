// Package wire provides dependency injection for notehub.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/notehub/internal/adapters/cli"
	"github.com/example/notehub/internal/adapters/memory"
	"github.com/example/notehub/internal/adapters/notehubapi"
	"github.com/example/notehub/internal/adapters/sqlite"
	"github.com/example/notehub/internal/app"
	"github.com/example/notehub/internal/config"
	"github.com/example/notehub/internal/db"
	"github.com/example/notehub/internal/logging"
	"github.com/example/notehub/internal/ports/secondary"
	"github.com/example/notehub/internal/querycache"
)

// Options configures the container. Call Configure before the first accessor.
type Options struct {
	ConfigPath string
	Verbose    bool
	Out        io.Writer
	Stderr     io.Writer
	// Notifier replaces the coloured stdout notifier, e.g. with TUI toasts.
	Notifier secondary.Notifier
}

// Services groups the application services.
type Services struct {
	Notes  *app.NoteServiceImpl
	Drafts *app.DraftServiceImpl
	Form   *app.FormServiceImpl
	Cache  *querycache.Cache
}

var (
	mu   sync.Mutex
	opts Options

	baseOnce sync.Once
	baseErr  error
	cfg      *config.Config
	logger   *zap.Logger
	closeLog func() error

	svcOnce  sync.Once
	svcErr   error
	services *Services
	database *sql.DB
)

// Configure sets the options used by the lazy initializers.
func Configure(o Options) {
	mu.Lock()
	defer mu.Unlock()
	opts = o
}

// UseNotifier replaces the notifier. It must be called before App.
func UseNotifier(n secondary.Notifier) {
	mu.Lock()
	defer mu.Unlock()
	opts.Notifier = n
}

func options() Options {
	mu.Lock()
	defer mu.Unlock()
	o := opts
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return o
}

// Config returns the loaded configuration.
func Config() (*config.Config, error) {
	baseOnce.Do(initBase)
	return cfg, baseErr
}

// Logger returns the application logger, or a no-op logger before
// configuration has loaded successfully.
func Logger() *zap.Logger {
	baseOnce.Do(initBase)
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func initBase() {
	o := options()

	c, err := config.Load(o.ConfigPath)
	if err != nil {
		baseErr = err
		return
	}

	l, closeFn, err := logging.New(logging.Options{
		Level:   c.Log.Level,
		File:    c.Log.File,
		Format:  c.Log.Format,
		Verbose: o.Verbose,
		Stderr:  o.Stderr,
	})
	if err != nil {
		baseErr = err
		return
	}

	cfg, logger, closeLog = c, l, closeFn
}

// App returns the singleton services.
func App() (*Services, error) {
	svcOnce.Do(initServices)
	return services, svcErr
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	c, err := Config()
	if err != nil {
		svcErr = err
		return
	}
	log := Logger()
	o := options()

	// Create secondary adapters
	gateway, err := notehubapi.New(c.API.BaseURL, c.API.Token,
		notehubapi.WithTimeout(c.API.Timeout),
		notehubapi.WithRateLimit(c.API.RateLimit),
		notehubapi.WithLogger(log.Named("api")),
	)
	if err != nil {
		svcErr = fmt.Errorf("failed to create API client: %w", err)
		return
	}

	draftRepo, err := draftRepository(c.Draft.Path, log)
	if err != nil {
		svcErr = err
		return
	}

	retries := c.Cache.Retries
	if retries == 0 {
		retries = -1
	}
	cache, err := querycache.New(querycache.Options{
		StaleTime:   c.Cache.StaleTime,
		Size:        c.Cache.Size,
		Retries:     retries,
		ShouldRetry: notehubapi.Retryable,
		Logger:      log.Named("cache"),
	})
	if err != nil {
		svcErr = err
		return
	}

	notifier := o.Notifier
	if notifier == nil {
		notifier = cliadapter.NewColorNotifier(o.Out)
	}

	// Create services (primary ports implementation)
	drafts := app.NewDraftService(draftRepo)
	notes := app.NewNoteService(gateway, cache, notifier, log.Named("notes"))
	executor := app.NewEffectExecutor(cache, drafts, notifier, log.Named("effects"))
	form := app.NewFormService(notes, drafts, executor)

	services = &Services{
		Notes:  notes,
		Drafts: drafts,
		Form:   form,
		Cache:  cache,
	}
}

// draftRepository opens the sqlite draft store. An empty path keeps the
// draft in memory for the life of the process.
func draftRepository(path string, log *zap.Logger) (secondary.DraftRepository, error) {
	if path == "" {
		return memory.NewDraftRepository(), nil
	}
	conn, err := db.Open(path, log.Named("db"))
	if err != nil {
		return nil, err
	}
	database = conn
	return sqlite.NewDraftRepository(conn), nil
}

// NoteAdapter returns a new NoteAdapter writing to the configured output.
// Each call creates a new adapter (adapters are stateless translators).
func NoteAdapter() (*cliadapter.NoteAdapter, error) {
	return NoteAdapterWithOutput(options().Out)
}

// NoteAdapterWithOutput returns a new NoteAdapter writing to the given output.
func NoteAdapterWithOutput(out io.Writer) (*cliadapter.NoteAdapter, error) {
	s, err := App()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewNoteAdapter(s.Notes, s.Drafts, s.Form, out), nil
}

// Close releases the database and flushes the log.
func Close() error {
	var errs []error
	if database != nil {
		errs = append(errs, database.Close())
		database = nil
	}
	if closeLog != nil {
		errs = append(errs, closeLog())
		closeLog = nil
	}
	return errors.Join(errs...)
}

// Reset closes resources and discards all singletons so the next accessor
// initializes from a fresh configuration.
func Reset() {
	_ = Close()
	mu.Lock()
	opts = Options{}
	mu.Unlock()
	baseOnce, svcOnce = sync.Once{}, sync.Once{}
	baseErr, svcErr = nil, nil
	cfg, logger, closeLog = nil, nil, nil
	services, database = nil, nil
}
