package eepromab

import (
	"context"

	"github.com/moffa90/go-eepromab/protocol"
)

// ABParams queries the current partition, its committed state, the tryboot
// flag and the boot snapshot in one round trip.
func (c *Client) ABParams(ctx context.Context) (*protocol.ABParams, error) {
	const op = "get ab params"

	msg := protocol.BuildGetABParamsCmd()
	if err := c.roundTrip(ctx, op, msg); err != nil {
		return nil, err
	}
	params, err := protocol.ParseABParamsResponse(msg)
	if err != nil {
		return nil, c.fail(op, err)
	}
	return params, nil
}

// CurrentPartition returns the partition the firmware is running from.
func (c *Client) CurrentPartition(ctx context.Context) (protocol.Partition, error) {
	params, err := c.ABParams(ctx)
	if err != nil {
		return 0, err
	}
	return params.CurrentPartition, nil
}

// Committed reports whether the current partition is committed.
func (c *Client) Committed(ctx context.Context) (bool, error) {
	params, err := c.ABParams(ctx)
	if err != nil {
		return false, err
	}
	return params.Committed, nil
}

// Tryboot returns the one-shot tryboot flag.
func (c *Client) Tryboot(ctx context.Context) (bool, error) {
	params, err := c.ABParams(ctx)
	if err != nil {
		return false, err
	}
	return params.Tryboot, nil
}

// BootStatus returns the partition the bootloader started from and whether
// it was committed at that time.
func (c *Client) BootStatus(ctx context.Context) (protocol.Partition, bool, error) {
	params, err := c.ABParams(ctx)
	if err != nil {
		return 0, false, err
	}
	return params.PartitionAtBoot, params.CommittedAtBoot, nil
}

// PartitionValidity queries the committed and valid partitions and the
// hashes journaled against them.
func (c *Client) PartitionValidity(ctx context.Context) (*protocol.PartitionValidity, error) {
	const op = "get partition"

	msg := protocol.BuildGetPartitionCmd()
	if err := c.roundTrip(ctx, op, msg); err != nil {
		return nil, err
	}
	pv, err := protocol.ParsePartitionResponse(msg)
	if err != nil {
		return nil, c.fail(op, err)
	}
	return pv, nil
}

// MarkValid marks the partition opposite to the running one valid, so that
// a tryboot starts from it.
//
// Only protocol.Opposite may be marked valid; any other value fails with
// protocol.ErrInvalidArg without contacting the firmware. The current
// partition must be committed: otherwise MarkValid fails with
// protocol.ErrUncommitted and no set partition request is sent. The
// firmware rejects a hash that does not match the partition content with
// protocol.ErrHashMismatch.
func (c *Client) MarkValid(ctx context.Context, rel protocol.RelativePartition, hash protocol.Hash) error {
	const op = "mark partition valid"

	if rel != protocol.Opposite {
		return c.reject(op, protocol.ErrInvalidArg, "only the %s partition can be marked valid, got %s", protocol.Opposite, rel)
	}

	committed, err := c.Committed(ctx)
	if err != nil {
		return err
	}
	if !committed {
		return c.reject(op, protocol.ErrUncommitted, "can't mark a partition as valid from an uncommitted partition")
	}

	if err := c.setPartition(ctx, op, rel, hash); err != nil {
		return err
	}
	c.logInfo("partition marked valid", "partition", rel.String(), "hash", hash.String())
	return nil
}

// RevertToCommitted marks the committed partition valid again, withdrawing
// a previous MarkValid so that tryboot does not start the uncommitted
// partition. hash must match the committed partition content.
//
// The committed partition is the current one when it is committed and the
// opposite one otherwise. RevertToCommitted returns the partition it
// targeted.
func (c *Client) RevertToCommitted(ctx context.Context, hash protocol.Hash) (protocol.RelativePartition, error) {
	const op = "revert to committed"

	committed, err := c.Committed(ctx)
	if err != nil {
		return 0, err
	}

	rel := protocol.Opposite
	if committed {
		rel = protocol.Current
	}

	if err := c.setPartition(ctx, op, rel, hash); err != nil {
		return rel, err
	}
	c.logInfo("reverted to committed partition", "partition", rel.String())
	return rel, nil
}

// CommitCurrent commits the running partition so it boots by default.
func (c *Client) CommitCurrent(ctx context.Context) error {
	return c.setABParam(ctx, "commit current partition", protocol.ParamCommit, uint32(protocol.Current))
}

// ForceCommitOpposite commits the partition opposite to the running one
// without it having been booted.
//
// Use with caution: if the opposite partition does not hold a working
// bootloader the device will no longer boot.
func (c *Client) ForceCommitOpposite(ctx context.Context) error {
	c.logInfo("force committing opposite partition")
	return c.setABParam(ctx, "force commit opposite partition", protocol.ParamCommit, uint32(protocol.Opposite))
}

// SetTryboot sets the one-shot tryboot flag.
func (c *Client) SetTryboot(ctx context.Context, enabled bool) error {
	var value uint32
	if enabled {
		value = 1
	}
	return c.setABParam(ctx, "set tryboot", protocol.ParamTryboot, value)
}

func (c *Client) setPartition(ctx context.Context, op string, rel protocol.RelativePartition, hash protocol.Hash) error {
	return c.ack(ctx, op, protocol.BuildSetPartitionCmd(rel, hash), protocol.TagSetPartition)
}

func (c *Client) setABParam(ctx context.Context, op string, param protocol.ABParam, value uint32) error {
	return c.ack(ctx, op, protocol.BuildSetABParamCmd(param, value), protocol.TagSetABParams)
}
