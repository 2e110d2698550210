package eepromab

import (
	"context"
	"time"

	"github.com/moffa90/go-eepromab/protocol"
)

// WriteUpdate stages data in the firmware and starts the EEPROM write.
//
// data must be exactly protocol.PartitionSize bytes. It is sent in packets of
// at most the configured packet size at image relative offsets, in
// ascending order, followed by the start write command. The firmware writes
// the partition opposite to the running one; use WaitForUpdate to follow
// the asynchronous write.
//
// The first failing packet aborts the transfer with its code. Nothing is
// retried. The context is checked before every packet.
func (c *Client) WriteUpdate(ctx context.Context, data []byte) error {
	const op = "write update"

	if len(data) == 0 {
		return c.reject(op, protocol.ErrInvalidArg, "update data is empty")
	}
	if len(data) != protocol.PartitionSize {
		return c.reject(op, protocol.ErrLength, "update is %d bytes, want %d", len(data), protocol.PartitionSize)
	}

	startTime := time.Now()
	total := len(data)

	c.reportProgress(Progress{Phase: PhaseWriting, TotalBytes: total})

	for offset := 0; offset < total; {
		n := min(c.config.PacketSize, total-offset)

		msg := protocol.BuildSetPacketCmd(uint32(offset), data[offset:offset+n])
		if err := c.ack(ctx, "set packet", msg, protocol.TagSetPacket); err != nil {
			c.logError("update packet failed", "offset", offset, "length", n, "error", err)
			return err
		}
		offset += n

		c.reportProgress(Progress{
			Phase:            PhaseWriting,
			BytesTransferred: offset,
			TotalBytes:       total,
			Percentage:       float64(offset) / float64(total) * 100,
			ElapsedTime:      time.Since(startTime),
		})
	}

	if err := c.command(ctx, "start write", protocol.CommandStartWrite); err != nil {
		return err
	}

	c.logInfo("update staged", "bytes", total, "elapsed", time.Since(startTime).String())
	return nil
}

// ReadEEPROM reads the whole EEPROM into dst, which must be exactly
// protocol.Capacity bytes.
func (c *Client) ReadEEPROM(ctx context.Context, dst []byte) error {
	const op = "read eeprom"

	if len(dst) != protocol.Capacity {
		return c.reject(op, protocol.ErrLength, "destination is %d bytes, want %d", len(dst), protocol.Capacity)
	}
	return c.readRange(ctx, 0, dst)
}

// ReadPartition reads partition p into dst, which must be exactly
// protocol.PartitionSize bytes.
func (c *Client) ReadPartition(ctx context.Context, p protocol.Partition, dst []byte) error {
	const op = "read partition"

	if !p.Valid() {
		return c.reject(op, protocol.ErrInvalidPartition, "unknown partition %d", uint32(p))
	}
	if len(dst) != protocol.PartitionSize {
		return c.reject(op, protocol.ErrLength, "destination is %d bytes, want %d", len(dst), protocol.PartitionSize)
	}
	return c.readRange(ctx, uint32(p.Start()), dst)
}

// ReadCurrentPartition queries the running partition and reads it into
// dst. It returns the partition that was read.
func (c *Client) ReadCurrentPartition(ctx context.Context, dst []byte) (protocol.Partition, error) {
	const op = "read partition"

	if len(dst) != protocol.PartitionSize {
		return 0, c.reject(op, protocol.ErrLength, "destination is %d bytes, want %d", len(dst), protocol.PartitionSize)
	}

	p, err := c.CurrentPartition(ctx)
	if err != nil {
		return 0, err
	}
	return p, c.ReadPartition(ctx, p, dst)
}

// readRange reads len(dst) bytes starting at the absolute EEPROM address.
func (c *Client) readRange(ctx context.Context, address uint32, dst []byte) error {
	startTime := time.Now()
	total := len(dst)

	for offset := 0; offset < total; {
		n := min(c.config.PacketSize, total-offset)

		msg := protocol.BuildGetPacketCmd(address+uint32(offset), uint32(n))
		if err := c.roundTrip(ctx, "get packet", msg); err != nil {
			return err
		}
		data, err := protocol.ParseGetPacketResponse(msg, n)
		if err != nil {
			c.logError("read packet failed", "address", address+uint32(offset), "length", n, "error", err)
			return c.fail("get packet", err)
		}
		copy(dst[offset:], data)
		offset += n

		c.reportProgress(Progress{
			Phase:            PhaseReading,
			BytesTransferred: offset,
			TotalBytes:       total,
			Percentage:       float64(offset) / float64(total) * 100,
			ElapsedTime:      time.Since(startTime),
		})
	}

	c.logDebug("eeprom read", "address", address, "bytes", total, "elapsed", time.Since(startTime).String())
	return nil
}

// command sends an update command.
func (c *Client) command(ctx context.Context, op string, cmd protocol.UpdateCommand) error {
	return c.ack(ctx, op, protocol.BuildUpdateCommandCmd(cmd), protocol.TagSetUpdateStatus)
}
