package container

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"modelbench/adapters/api"
	"modelbench/internal"
	"modelbench/internal/config"
	"modelbench/internal/controller"
	"modelbench/internal/download"
	"modelbench/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	Client *api.Client
	Saver  *download.LocalSaver

	Controller *controller.Controller

	logFile io.Closer
}

// New creates a new dependency injection container and its logger
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{Config: cfg}
	if err := c.initLogger(os.Stderr); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return c, nil
}

// NewWithLogger creates a container that logs through an existing logger
func NewWithLogger(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	return &Container{Config: cfg, Logger: logger}, nil
}

// initLogger honours LOG_FILE; without one the log goes to fallback
func (c *Container) initLogger(fallback io.Writer) error {
	logging := c.Config.Logging
	out := fallback
	if logging.File != "" {
		f, err := os.OpenFile(logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", logging.File, err)
		}
		out = f
		c.logFile = f
	}
	c.Logger = internal.NewLoggerTo(out, internal.ParseLogLevel(logging.Level), strings.EqualFold(logging.Format, "json"))
	return nil
}

// Init wires the client, the saver and the controller against page
func (c *Container) Init(page ports.Page) error {
	if page == nil {
		return fmt.Errorf("page cannot be nil")
	}

	if err := c.initClient(); err != nil {
		return fmt.Errorf("failed to initialize training server client: %w", err)
	}
	if err := c.initSaver(); err != nil {
		return fmt.Errorf("failed to initialize model saver: %w", err)
	}

	ctrl, err := controller.New(c.Client, page, c.Saver, controller.OptionsFromConfig(c.Config, c.Logger))
	if err != nil {
		return fmt.Errorf("failed to initialize controller: %w", err)
	}
	c.Controller = ctrl

	c.Logger.Info("container initialized against %s", c.Config.Client.ServerURL)
	return nil
}

func (c *Container) initClient() error {
	client, err := api.NewClient(api.Config{
		BaseURL: c.Config.Client.ServerURL,
		Timeout: c.Config.Client.Timeout,
	}, c.Logger)
	if err != nil {
		return err
	}
	c.Client = client
	return nil
}

func (c *Container) initSaver() error {
	saver, err := download.NewLocalSaver(c.Config.Paths.DownloadDir)
	if err != nil {
		return err
	}
	c.Saver = saver
	return nil
}

// Shutdown releases the log file, if one was opened
func (c *Container) Shutdown(ctx context.Context) error {
	if c.logFile != nil {
		err := c.logFile.Close()
		c.logFile = nil
		return err
	}
	return nil
}
