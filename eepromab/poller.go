package eepromab

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/moffa90/go-eepromab/protocol"
)

// errBusy marks a status query that found the write still in progress.
var errBusy = errors.New("update busy")

// UpdateStatus queries the state of the asynchronous EEPROM write.
func (c *Client) UpdateStatus(ctx context.Context) (*protocol.UpdateStatusInfo, error) {
	const op = "get update status"

	msg := protocol.BuildGetUpdateStatusCmd()
	if err := c.roundTrip(ctx, op, msg); err != nil {
		return nil, err
	}
	info, err := protocol.ParseUpdateStatusResponse(msg)
	if err != nil {
		return nil, c.fail(op, err)
	}
	return info, nil
}

// SPICheck reports whether the firmware can drive the SPI EEPROM GPIOs.
func (c *Client) SPICheck(ctx context.Context) (bool, error) {
	info, err := c.UpdateStatus(ctx)
	if err != nil {
		return false, err
	}
	return info.SPIGPIOCheck == 1, nil
}

// CancelUpdate cancels a staged or running update.
func (c *Client) CancelUpdate(ctx context.Context) error {
	return c.command(ctx, "cancel update", protocol.CommandCancel)
}

// WaitForUpdate polls the update status until the firmware has finished
// writing the EEPROM.
//
// At most PollAttempts queries are made, PollInterval apart. Busy keeps
// polling and success returns nil. Any other status ends the wait with an
// *UpdateError carrying the firmware's error code. A failing status query
// ends the wait with its own error. When every query reports busy the
// result is an *UpdateTimeoutError with code protocol.ErrBusy.
func (c *Client) WaitForUpdate(ctx context.Context) error {
	const op = "wait for update"

	startTime := time.Now()
	attempts := 0

	operation := func() error {
		attempts++
		c.reportProgress(Progress{
			Phase:       PhaseWaiting,
			Attempt:     attempts,
			MaxAttempts: c.config.PollAttempts,
			Percentage:  float64(attempts-1) / float64(c.config.PollAttempts) * 100,
			ElapsedTime: time.Since(startTime),
		})

		info, err := c.UpdateStatus(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}

		switch info.Status {
		case protocol.StatusSuccess:
			return nil
		case protocol.StatusBusy:
			return errBusy
		default:
			uerr := &UpdateError{Status: info.Status, FirmwareError: info.FirmwareError}
			return backoff.Permanent(&protocol.ProtocolError{Operation: op, Code: uerr.Code(), Err: uerr})
		}
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.config.PollInterval), uint64(c.config.PollAttempts-1)),
		ctx,
	)

	err := backoff.RetryNotify(operation, bo, func(err error, next time.Duration) {
		c.logDebug("eeprom update busy", "attempt", attempts, "next_poll", next.String())
	})

	switch {
	case err == nil:
		c.logInfo("eeprom update complete", "attempts", attempts, "elapsed", time.Since(startTime).String())
		return nil
	case errors.Is(err, errBusy):
		terr := &UpdateTimeoutError{Attempts: attempts, Interval: c.config.PollInterval}
		c.logError("eeprom update timed out", "attempts", attempts)
		return &protocol.ProtocolError{Operation: op, Code: protocol.ErrBusy, Err: terr}
	case protocol.IsProtocolError(err):
		return err
	default:
		// context cancelled while waiting between queries
		return &protocol.ProtocolError{Operation: op, Code: protocol.ErrFailed, Err: err}
	}
}

// Update writes data to the partition opposite to the running one and
// waits for the firmware to finish. It combines WriteUpdate and
// WaitForUpdate.
//
// Example:
//
//	img, _ := image.Load("pieeprom.upd")
//	err := client.Update(context.Background(), img.Data)
func (c *Client) Update(ctx context.Context, data []byte) error {
	startTime := time.Now()

	if err := c.WriteUpdate(ctx, data); err != nil {
		return err
	}
	if err := c.WaitForUpdate(ctx); err != nil {
		return err
	}

	c.reportProgress(Progress{
		Phase:            PhaseComplete,
		BytesTransferred: len(data),
		TotalBytes:       len(data),
		Percentage:       100,
		ElapsedTime:      time.Since(startTime),
	})
	return nil
}
