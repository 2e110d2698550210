package app

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-eepromab/eepromab"
	"github.com/moffa90/go-eepromab/image"
	"github.com/moffa90/go-eepromab/protocol"
)

func newUpdateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "update <update.bin>",
		Short: "Update the opposite partition of the EEPROM with the contents of the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := image.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "file_size: %d (%s)\n", len(img.Data), humanize.IBytes(uint64(len(img.Data))))

			client, err := e.client(cmd, eepromab.WithProgressCallback(e.printUpdateProgress))
			if err != nil {
				return err
			}
			defer e.sync()

			if err := client.WriteUpdate(cmd.Context(), img.Data); err != nil {
				switch {
				case errors.Is(err, protocol.ErrBusy):
					return fmt.Errorf("failed to write update. EEPROM is busy: %w", err)
				case errors.Is(err, protocol.ErrUncommitted):
					return fmt.Errorf("failed to write update. Cannot write from an uncommitted partition: %w", err)
				default:
					return fmt.Errorf("failed to write update: %w", err)
				}
			}

			fmt.Fprintln(e.out, "Waiting for write to EEPROM to complete")
			if err := client.WaitForUpdate(cmd.Context()); err != nil {
				fmt.Fprintln(e.out)
				return fmt.Errorf("failed to wait for write to EEPROM to complete: %w", err)
			}
			fmt.Fprintln(e.out, "\nCompleted")
			fmt.Fprintln(e.out, "Write to EEPROM completed")
			return nil
		},
	}
}

// printUpdateProgress prints a dot for every busy status query.
func (e *env) printUpdateProgress(p eepromab.Progress) {
	switch p.Phase {
	case eepromab.PhaseWriting:
		if p.BytesTransferred == p.TotalBytes {
			fmt.Fprintf(e.out, "Staged %s of update data\n", humanize.IBytes(uint64(p.TotalBytes)))
		}
	case eepromab.PhaseWaiting:
		if p.Attempt > 1 {
			fmt.Fprint(e.out, ".")
		}
	}
}

func newReadCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "read <out.bin>",
		Short: "Read the current AB partition and write the contents to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			data := make([]byte, protocol.PartitionSize)
			p, err := client.ReadCurrentPartition(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("failed to read from EEPROM: %w", err)
			}
			if err := image.SaveDump(args[0], data); err != nil {
				return err
			}

			fmt.Fprintf(e.out, "EEPROM partition read completed (%s, %s)\n", p, humanize.IBytes(uint64(len(data))))
			return nil
		},
	}
}

func newDumpCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <out.bin>",
		Short: "Read the entire EEPROM and write the contents to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			data := make([]byte, protocol.Capacity)
			if err := client.ReadEEPROM(cmd.Context(), data); err != nil {
				return fmt.Errorf("failed to read from EEPROM: %w", err)
			}
			if err := image.SaveDump(args[0], data); err != nil {
				return err
			}

			fmt.Fprintf(e.out, "EEPROM dump completed (%s)\n", humanize.IBytes(uint64(len(data))))
			return nil
		},
	}
}

func newUpdateStatusCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "update-status",
		Short: "Get the status of the EEPROM update and any error codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			info, err := client.UpdateStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get EEPROM update status: %w", err)
			}

			table := uitable.New()
			table.AddRow("EEPROM update status:", info.Status)
			if info.FirmwareError != protocol.ErrNone {
				table.AddRow("EEPROM update firmware error:", info.FirmwareError.Error())
			}
			fmt.Fprintln(e.out, table)
			return nil
		},
	}
}

func newCancelUpdateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-update",
		Short: "Cancel a staged or running EEPROM update",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			if err := client.CancelUpdate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to cancel EEPROM update: %w", err)
			}
			fmt.Fprintln(e.out, "EEPROM update canceled")
			return nil
		},
	}
}

func newSPICheckCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "spi-check",
		Short: "Check that the firmware can access the SPI EEPROM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			ok, err := client.SPICheck(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get SPI check: %w", err)
			}
			if !ok {
				return errors.New("SPI check: Failed")
			}
			fmt.Fprintln(e.out, "SPI check: OK")
			return nil
		},
	}
}

func newPartitionCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "partition",
		Short: "Get the current AB partition select of the EEPROM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			p, err := client.CurrentPartition(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get EEPROM AB partition: %w", err)
			}
			fmt.Fprintln(e.out, p)
			return nil
		},
	}
}

func newMarkPartitionValidCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-partition-valid <hash>",
		Short: "Mark the AB partition that is not committed as valid if hash matches its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := image.ParseHash(args[0])
			if err != nil {
				return err
			}

			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			if err := client.MarkValid(cmd.Context(), protocol.Opposite, hash); err != nil {
				return fmt.Errorf("failed to set EEPROM AB partition: %w", err)
			}
			fmt.Fprintln(e.out, "Next EEPROM AB partition marked valid")
			return nil
		},
	}
}

func newRevertToCommittedCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "revert-to-committed <hash>",
		Short: "Mark the committed AB partition as valid again so tryboot does not use the uncommitted one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := image.ParseHash(args[0])
			if err != nil {
				return err
			}

			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			rel, err := client.RevertToCommitted(cmd.Context(), hash)
			if err != nil {
				return fmt.Errorf("failed to set EEPROM AB partition: %w", err)
			}
			fmt.Fprintf(e.out, "Reverted to committed partition (%s)\n", rel)
			return nil
		},
	}
}

func newTrybootCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tryboot [0|1]",
		Short: "Get the current value of tryboot, or set it to 0 or 1",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value int
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || (v != 0 && v != 1) {
					return fmt.Errorf("invalid tryboot value %q: must be 0 or 1", args[0])
				}
				value = v
			}

			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			if len(args) == 0 {
				tryboot, err := client.Tryboot(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get EEPROM tryboot: %w", err)
				}
				fmt.Fprintln(e.out, boolInt(tryboot))
				return nil
			}

			if err := client.SetTryboot(cmd.Context(), value == 1); err != nil {
				return fmt.Errorf("failed to set EEPROM tryboot: %w", err)
			}
			fmt.Fprintf(e.out, "EEPROM tryboot set to: %d\n", value)
			return nil
		},
	}
}

func newCommittedCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "committed",
		Short: "Get whether the current AB partition is committed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			committed, err := client.Committed(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get EEPROM AB committed: %w", err)
			}
			fmt.Fprintln(e.out, boolInt(committed))
			return nil
		},
	}
}

func newCommitCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Commit the current AB partition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			if err := client.CommitCurrent(cmd.Context()); err != nil {
				return fmt.Errorf("failed to commit EEPROM update: %w", err)
			}
			fmt.Fprintln(e.out, "Committed current EEPROM partition")
			return nil
		},
	}
}

func newForceCommitOppositeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "force-commit-opposite",
		Short: "Force commit the opposite partition (use with caution)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			if err := client.ForceCommitOpposite(cmd.Context()); err != nil {
				return fmt.Errorf("failed to commit EEPROM update: %w", err)
			}
			fmt.Fprintln(e.out, "Force committed opposite EEPROM partition")
			return nil
		},
	}
}

func newPartitionStatusCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "partition-status",
		Short: "Get the committed and valid partition selections and their hashes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			pv, err := client.PartitionValidity(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get partition status: %w", err)
			}

			table := uitable.New()
			table.AddRow("EEPROM committed partition:", pv.CommittedPartition)
			table.AddRow("EEPROM valid partition:", pv.ValidPartition)
			table.AddRow("EEPROM committed partition hash:", pv.CommittedHash)
			table.AddRow("EEPROM valid partition hash:", pv.ValidHash)
			fmt.Fprintln(e.out, table)
			return nil
		},
	}
}

func newStatusAtBootCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status-at-boot",
		Short: "Get the partition used at boot and the committed status at boot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client(cmd)
			if err != nil {
				return err
			}
			defer e.sync()

			p, committed, err := client.BootStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get EEPROM status at boot: %w", err)
			}

			table := uitable.New()
			table.AddRow("EEPROM partition used at boot:", p)
			table.AddRow("EEPROM committed status at boot:", boolInt(committed))
			fmt.Fprintln(e.out, table)
			return nil
		},
	}
}

func newHashCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <update.bin>",
		Short: "Print the SHA-256 hash of an update file for mark-partition-valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := image.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, img.Hash)
			return nil
		},
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
