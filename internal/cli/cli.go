// Package cli implements the logicview command-line interface.
//
// # Commands
//
//   - run: replay a scenario script and summarize the resulting circuit
//   - edit: open the terminal editor, optionally starting from a scenario
//   - serve: replay a scenario and expose the scene over HTTP
//   - cache: inspect or clear the rendered diagram cache
//   - completion: generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Every
// invocation gets a session id that is attached to each log line, and the
// logger travels through context.Context to the command implementations.
//
// # Configuration
//
// --config points at a TOML file; without it the default path under the
// user config directory is read when present. LOGICVIEW_* environment
// variables override both.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/logicview/internal/config"
	"github.com/matzehuels/logicview/pkg/buildinfo"
	"github.com/matzehuels/logicview/pkg/view"
)

const appName = "logicview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger  *log.Logger
	Session string

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a CLI whose logger writes to w and tags every line with a
// fresh session id.
func New(w io.Writer, level log.Level) *CLI {
	session := uuid.NewString()[:8]
	return &CLI{
		Logger:  newLogger(w, level).With("session", session),
		Session: session,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Logicview edits and inspects hierarchical logic circuits",
		Long: `Logicview is a view-graph model for logic circuit editing. It places gates and
composite elements on a canvas, wires them together, and answers the spatial
queries an editor or renderer needs.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: user config dir/logicview/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration and attaches the logger to the command's
// context. --verbose wins over the configured level.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	c.Logger.Debug("config loaded", "path", c.configPath, "level", level)
	return nil
}

// settings returns the loaded configuration, falling back to defaults when a
// command runs without the root's pre-run hook (as in tests).
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// newScene builds an empty scene using the configured layout.
func (c *CLI) newScene() *view.Scene {
	return view.NewScene(view.WithLayout(c.settings().ViewLayout()))
}
