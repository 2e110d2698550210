// Package app implements the rpi-eeprom-ab command tree.
package app

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-eepromab/eepromab"
	"github.com/moffa90/go-eepromab/internal/log"
)

const (
	commandName = "rpi-eeprom-ab"
	commandDesc = `rpi-eeprom-ab provides a command line interface to update the Raspberry Pi
AB EEPROM partitions through the VideoCore firmware mailbox.`
)

// env is the per invocation state shared by the subcommands.
type env struct {
	opts   *Options
	out    io.Writer
	logger log.Logger
}

// NewCommand returns the root command writing its results to out.
func NewCommand(out io.Writer) *cobra.Command {
	return newCommand(NewOptions(), out)
}

func newCommand(opts *Options, out io.Writer) *cobra.Command {
	e := &env{opts: opts, out: out, logger: log.NewNopLogger()}

	cmd := &cobra.Command{
		Use:           commandName + " <command> [args]",
		Short:         "Update the Raspberry Pi AB EEPROM partitions",
		Long:          commandDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	opts.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newUpdateCommand(e),
		newReadCommand(e),
		newDumpCommand(e),
		newUpdateStatusCommand(e),
		newCancelUpdateCommand(e),
		newSPICheckCommand(e),
		newPartitionCommand(e),
		newMarkPartitionValidCommand(e),
		newRevertToCommittedCommand(e),
		newTrybootCommand(e),
		newCommittedCommand(e),
		newCommitCommand(e),
		newForceCommitOppositeCommand(e),
		newPartitionStatusCommand(e),
		newStatusAtBootCommand(e),
		newHashCommand(e),
	)

	return cmd
}

// client resolves the configuration for cmd and returns a ready client.
func (e *env) client(cmd *cobra.Command, extra ...eepromab.Option) (*eepromab.Client, error) {
	cfg, err := e.opts.Config(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := log.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	e.logger = logger

	return e.opts.newClient(cfg, logger, extra...), nil
}

// sync flushes the logger once a command has finished.
func (e *env) sync() {
	_ = e.logger.Sync()
}
