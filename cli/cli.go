// Package cli implements the weightsync command-line interface.
//
// Every command works on a scene file (--scene). Opening a scene reloads its
// linked library objects and, when weight syncing is active, re-applies the
// stored weights to them before the command runs.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/spaghettifunk/weightsync/engine"
	"github.com/spaghettifunk/weightsync/engine/core"
	"github.com/spaghettifunk/weightsync/engine/mesh"
	"github.com/spaghettifunk/weightsync/engine/operators"
)

const (
	appName          = "weightsync"
	defaultSceneFile = "scene.toml"
	settleTimeout    = time.Minute
)

// Version is set at build time.
var Version = "dev"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer

	scenePath  string
	configPath string
	objectName string
	verbose    bool
}

// New creates a new CLI writing command output to out and logs to logs.
func New(out, logs io.Writer, level log.Level) *CLI {
	core.SetLogOutput(logs)
	return &CLI{
		Out: out,
		Logger: log.NewWithOptions(logs, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
			Prefix:          appName,
		}),
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Save and restore vertex group weights of mesh objects",
		Long: `weightsync saves the vertex group weights of a mesh object to a JSON file and
restores them later, re-applying them automatically to linked library objects
whenever their scene is opened.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.Logger.SetLevel(log.DebugLevel)
				core.SetLogLevel(core.DebugLevel)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.scenePath, "scene", "s", defaultSceneFile, "scene file to operate on")
	flags.StringVar(&c.configPath, "config", engine.DefaultConfigFile, "engine config file")
	flags.StringVarP(&c.objectName, "object", "o", "", "object to operate on (default: the active object)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.openCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.saveCommand())
	root.AddCommand(c.loadCommand())
	root.AddCommand(c.resyncCommand())
	root.AddCommand(c.clearCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.watchCommand())

	return root
}

// loadConfig reads the engine config, forcing watch mode when asked.
func (c *CLI) loadConfig(watch bool) (*engine.Config, error) {
	cfg, err := engine.LoadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	cfg.Watch = watch
	if c.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// withScene starts an engine, opens the scene and lets the post-load resync finish
// before calling fn.
func (c *CLI) withScene(ctx context.Context, fn func(e *engine.Engine) error) error {
	cfg, err := c.loadConfig(false)
	if err != nil {
		return err
	}
	e, err := engine.New(cfg)
	if err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := e.Shutdown(); err != nil {
			c.Logger.Warn("shutdown", "err", err)
		}
	}()

	if _, err := e.Open(c.scenePath); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()
	if err := e.WaitReady(ctx); err != nil {
		return err
	}
	if err := e.Settle(ctx); err != nil {
		return err
	}
	for _, r := range e.Operators().Reports() {
		c.logReport(r)
	}
	return fn(e)
}

// target picks the object named by --object, or the active object.
func (c *CLI) target(e *engine.Engine) (*mesh.Object, error) {
	if c.objectName != "" {
		return e.Scene().Object(c.objectName)
	}
	return e.ActiveObject(), nil
}

func (c *CLI) logReport(r operators.Report) {
	if r.Failed() {
		c.Logger.Error(r.Message, "op", r.Operator)
		return
	}
	c.Logger.Info(r.Message, "op", r.Operator)
}

// finish logs r and turns a failed report into an error.
func (c *CLI) finish(r operators.Report) error {
	c.logReport(r)
	if r.Failed() {
		return fmt.Errorf("%s failed: %w", r.Operator, r.Err)
	}
	return nil
}
