package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spaghettifunk/weightsync/engine"
	"github.com/spaghettifunk/weightsync/engine/resources"
	"github.com/spaghettifunk/weightsync/engine/weights"
	"github.com/spaghettifunk/weightsync/testbed"
)

func (c *CLI) initCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a sample scene with a linked library object",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := testbed.WriteSample(dir)
			if err != nil {
				return err
			}
			c.Logger.Info("sample scene written", "path", path)
			return nil
		},
	}
}

func (c *CLI) openCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open the scene, resync linked objects and print its status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withScene(cmd.Context(), func(e *engine.Engine) error {
				for _, o := range e.Scene().Objects() {
					kind := "local"
					if o.IsLinked() {
						kind = "linked from " + o.LibraryName()
					}
					fmt.Fprintf(c.Out, "%-16s %-9s %s\n", o.Name, o.Type, kind)
				}
				return nil
			})
		},
	}
}

func (c *CLI) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the weight sync panel for the target object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withScene(cmd.Context(), func(e *engine.Engine) error {
				obj, err := c.target(e)
				if err != nil {
					return err
				}
				printStatus(c.Out, e.Operators().Settings(), obj)
				return nil
			})
		},
	}
}

func (c *CLI) saveCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the target object's weights and make the file active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withScene(cmd.Context(), func(e *engine.Engine) error {
				obj, err := c.target(e)
				if err != nil {
					return err
				}
				if err := c.finish(e.Operators().Save(obj, file)); err != nil {
					return err
				}
				return e.Scene().Save(c.scenePath)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "weight file (default: the active file, else weights.json)")
	return cmd
}

func (c *CLI) loadCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Replace the target object's vertex groups with a weight file",
		Long: `Replace the target object's vertex groups with the ones stored in a weight file.

Every existing vertex group of the object is removed first, including groups the
file does not mention.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withScene(cmd.Context(), func(e *engine.Engine) error {
				obj, err := c.target(e)
				if err != nil {
					return err
				}
				if err := c.finish(e.Operators().Load(obj, file)); err != nil {
					return err
				}
				return e.Scene().Save(c.scenePath)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "weight file (default: the active file, else weights.json)")
	return cmd
}

func (c *CLI) resyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resync",
		Short: "Re-apply the active weight file to the target object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withScene(cmd.Context(), func(e *engine.Engine) error {
				obj, err := c.target(e)
				if err != nil {
					return err
				}
				if err := c.finish(e.Operators().Resync(obj)); err != nil {
					return err
				}
				return e.Scene().Save(c.scenePath)
			})
		},
	}
}

func (c *CLI) clearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the active weight file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withScene(cmd.Context(), func(e *engine.Engine) error {
				if err := c.finish(e.Operators().Clear()); err != nil {
					return err
				}
				return e.Scene().Save(c.scenePath)
			})
		},
	}
}

func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <weights.json>",
		Short: "Print the validation summary of a weight file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			defer e.Shutdown()

			res, err := e.Resources().Load(args[0], resources.ResourceTypeWeights, nil)
			if err != nil {
				return err
			}
			doc, ok := res.Data.(*weights.Document)
			if !ok {
				return fmt.Errorf("%s is not a weight file", args[0])
			}
			printDocument(c.Out, filepath.Base(args[0]), doc)
			return nil
		},
	}
}

func (c *CLI) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep the scene open and resync whenever a library or the weight file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(true)
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
			defer e.Shutdown()

			if _, err := e.Open(c.scenePath); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			c.Logger.Info("watching scene, press Ctrl+C to stop", "scene", c.scenePath)
			return e.Run(ctx)
		},
	}
}

// Execute runs the CLI with process arguments and standard streams.
func Execute(ctx context.Context) error {
	c := New(os.Stdout, os.Stderr, LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}
