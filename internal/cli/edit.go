package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/logicview/pkg/sim"
)

// editCommand creates the edit command, the interactive terminal editor.
func (c *CLI) editCommand() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "edit [scenario.toml]",
		Short: "Edit a circuit in the terminal",
		Long: `Edit a circuit in the terminal.

Starts from an empty canvas, or from the circuit a scenario builds. Place
gates at the cursor, rotate them with ctrl+left/right, wire gates, step into
composites with i and back out with u. Press ? for the key list.

The editor owns the terminal, so logs go to --log-file when given and are
discarded otherwise.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeScenario,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.edit(cmd.Context(), cmd.OutOrStdout(), path, logFile)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the editor runs")
	return cmd
}

func (c *CLI) edit(ctx context.Context, w io.Writer, path, logFile string) error {
	logger, closeLog, err := c.sessionLogger(logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	ctx = withLogger(ctx, logger)

	scene, err := c.loadScene(ctx, path)
	if err != nil {
		return err
	}

	rec := &sim.Recorder{}
	model := newEditor(scene, rec, c.settings().Editor, logger)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return err
	}

	logger.Info("editor closed",
		"elements", rec.Count(sim.EventAddElement),
		"wires", rec.Count(sim.EventConnect))
	printSuccess(w, "placed %d elements, wired %d gates", rec.Count(sim.EventAddElement), rec.Count(sim.EventConnect))
	return nil
}

var _ tea.Model = (*editor)(nil)
