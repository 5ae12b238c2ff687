// Package wire provides dependency injection for patchrun.
// It creates services lazily, once per container.
package wire

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/patchrun/internal/adapters/cli"
	"github.com/example/patchrun/internal/adapters/filesystem"
	gitadapter "github.com/example/patchrun/internal/adapters/git"
	"github.com/example/patchrun/internal/adapters/sqlite"
	"github.com/example/patchrun/internal/app"
	"github.com/example/patchrun/internal/config"
	"github.com/example/patchrun/internal/db"
	"github.com/example/patchrun/internal/ports/primary"
	"github.com/example/patchrun/internal/ports/secondary"
)

// ErrHistoryDisabled is returned when history is queried but switched off in config.
var ErrHistoryDisabled = errors.New("run history is disabled (disable_history: true)")

// Settings carries everything the container needs from the command line.
type Settings struct {
	Root   string // working tree root, absolute
	Config *config.Config
	Logger *zap.Logger // nil means no debug logging
	Out    io.Writer   // nil means os.Stdout
	ErrOut io.Writer   // nil means os.Stderr
}

// Container owns the services for one invocation.
type Container struct {
	settings Settings

	patchService   primary.PatchService
	historyService primary.HistoryService
	database       *sql.DB
	once           sync.Once
}

// NewContainer creates a container. Nothing is opened until a service is requested.
func NewContainer(settings Settings) *Container {
	if settings.Config == nil {
		settings.Config = config.Default()
	}
	if settings.Logger == nil {
		settings.Logger = zap.NewNop()
	}
	if settings.Out == nil {
		settings.Out = os.Stdout
	}
	if settings.ErrOut == nil {
		settings.ErrOut = os.Stderr
	}
	return &Container{settings: settings}
}

// PatchAdapter returns a new PatchAdapter writing to the container's output.
// Each call creates a new adapter (adapters are stateless translators).
func (c *Container) PatchAdapter() *cliadapter.PatchAdapter {
	c.once.Do(c.initServices)
	return cliadapter.NewPatchAdapter(c.patchService, c.settings.Out)
}

// HistoryAdapter returns a new HistoryAdapter writing to the container's output.
func (c *Container) HistoryAdapter() (*cliadapter.HistoryAdapter, error) {
	c.once.Do(c.initServices)
	if c.historyService == nil {
		if c.settings.Config.DisableHistory {
			return nil, ErrHistoryDisabled
		}
		return nil, errors.New("run history is unavailable")
	}
	return cliadapter.NewHistoryAdapter(c.historyService, c.settings.Out), nil
}

// Close releases the history database, if one was opened.
func (c *Container) Close() error {
	if c.database == nil {
		return nil
	}
	return c.database.Close()
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func (c *Container) initServices() {
	s := c.settings
	cfg := s.Config
	reporter := cliadapter.NewConsoleReporter(s.Out, s.ErrOut)

	// Secondary adapters
	workspace := filesystem.NewWorkspaceAdapter(s.Root, cfg.PatchDirPath(s.Root), cfg.IgnoreFilePath(s.Root))
	applier := gitadapter.NewApplier(cfg.GitBinary, s.Root, s.Logger)
	patchLog := filesystem.NewPatchLogFile(cfg.LogFilePath(s.Root))

	// History is optional; a database that cannot be opened only costs the record.
	var history secondary.HistoryRepository
	if repo, err := c.openHistory(); err != nil {
		reporter.Warn(fmt.Sprintf("Run history unavailable: %v", err))
		s.Logger.Warn("history database unavailable", zap.Error(err))
	} else if repo != nil {
		history = repo
		c.historyService = app.NewHistoryService(repo)
	}

	c.patchService = app.NewPatchService(workspace, applier, patchLog, history, reporter, s.Logger)
}

func (c *Container) openHistory() (*sqlite.HistoryRepository, error) {
	path, err := c.settings.Config.HistoryDBPath(c.settings.Root)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	c.database = database
	return sqlite.NewHistoryRepository(database), nil
}
