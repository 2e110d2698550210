package eepromab

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"

	"github.com/moffa90/go-eepromab/emulator"
	"github.com/moffa90/go-eepromab/image"
	"github.com/moffa90/go-eepromab/protocol"
)

// respondABParams answers a get AB params request.
func respondABParams(p protocol.ABParams) func([]byte) error {
	return func(msg []byte) error {
		protocol.RespondABParams(msg, p)
		return nil
	}
}

func TestOverlayCodesOnEveryOperation(t *testing.T) {
	operations := []struct {
		name string
		tag  protocol.Tag
		call func(ctx context.Context, c *Client) error
	}{
		{"ABParams", protocol.TagGetABParams, func(ctx context.Context, c *Client) error {
			_, err := c.ABParams(ctx)
			return err
		}},
		{"CurrentPartition", protocol.TagGetABParams, func(ctx context.Context, c *Client) error {
			_, err := c.CurrentPartition(ctx)
			return err
		}},
		{"Committed", protocol.TagGetABParams, func(ctx context.Context, c *Client) error {
			_, err := c.Committed(ctx)
			return err
		}},
		{"Tryboot", protocol.TagGetABParams, func(ctx context.Context, c *Client) error {
			_, err := c.Tryboot(ctx)
			return err
		}},
		{"BootStatus", protocol.TagGetABParams, func(ctx context.Context, c *Client) error {
			_, _, err := c.BootStatus(ctx)
			return err
		}},
		{"PartitionValidity", protocol.TagGetPartition, func(ctx context.Context, c *Client) error {
			_, err := c.PartitionValidity(ctx)
			return err
		}},
		{"MarkValid", protocol.TagSetPartition, func(ctx context.Context, c *Client) error {
			return c.MarkValid(ctx, protocol.Opposite, protocol.Hash{})
		}},
		{"RevertToCommitted", protocol.TagSetPartition, func(ctx context.Context, c *Client) error {
			_, err := c.RevertToCommitted(ctx, protocol.Hash{})
			return err
		}},
		{"CommitCurrent", protocol.TagSetABParams, func(ctx context.Context, c *Client) error {
			return c.CommitCurrent(ctx)
		}},
		{"ForceCommitOpposite", protocol.TagSetABParams, func(ctx context.Context, c *Client) error {
			return c.ForceCommitOpposite(ctx)
		}},
		{"SetTryboot", protocol.TagSetABParams, func(ctx context.Context, c *Client) error {
			return c.SetTryboot(ctx, true)
		}},
		{"UpdateStatus", protocol.TagGetUpdateStatus, func(ctx context.Context, c *Client) error {
			_, err := c.UpdateStatus(ctx)
			return err
		}},
		{"SPICheck", protocol.TagGetUpdateStatus, func(ctx context.Context, c *Client) error {
			_, err := c.SPICheck(ctx)
			return err
		}},
		{"WaitForUpdate", protocol.TagGetUpdateStatus, func(ctx context.Context, c *Client) error {
			return c.WaitForUpdate(ctx)
		}},
		{"CancelUpdate", protocol.TagSetUpdateStatus, func(ctx context.Context, c *Client) error {
			return c.CancelUpdate(ctx)
		}},
		{"WriteUpdate", protocol.TagSetPacket, func(ctx context.Context, c *Client) error {
			return c.WriteUpdate(ctx, make([]byte, protocol.PartitionSize))
		}},
		{"ReadEEPROM", protocol.TagGetPacket, func(ctx context.Context, c *Client) error {
			return c.ReadEEPROM(ctx, make([]byte, protocol.Capacity))
		}},
		{"ReadPartition", protocol.TagGetPacket, func(ctx context.Context, c *Client) error {
			return c.ReadPartition(ctx, protocol.PartitionB, make([]byte, protocol.PartitionSize))
		}},
		{"ReadCurrentPartition", protocol.TagGetPacket, func(ctx context.Context, c *Client) error {
			_, err := c.ReadCurrentPartition(ctx, make([]byte, protocol.PartitionSize))
			return err
		}},
	}

	for _, op := range operations {
		for _, code := range protocol.ErrorCodes {
			t.Run(fmt.Sprintf("%s/code_%d", op.name, code), func(t *testing.T) {
				c, emu := newTestClient()
				emu.Fail(op.tag, code)

				err := op.call(context.Background(), c)
				if !errors.Is(err, code) {
					t.Errorf("error = %v, want %v", err, code)
				}
				if got := protocol.CodeOf(err); got != code {
					t.Errorf("CodeOf() = %d, want %d", got, code)
				}
			})
		}
	}
}

func TestABParamsQueries(t *testing.T) {
	ctx := context.Background()
	want := protocol.ABParams{
		CurrentPartition: protocol.PartitionB,
		Committed:        false,
		Tryboot:          true,
		PartitionAtBoot:  protocol.PartitionB,
		CommittedAtBoot:  false,
	}

	m := newStrictTransport(t)
	m.EXPECT().Exchange(gomock.Any()).DoAndReturn(respondABParams(want)).Times(5)
	c := New(m)

	got, err := c.ABParams(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("ABParams() mismatch (-want +got):\n%s", diff)
	}

	if p, _ := c.CurrentPartition(ctx); p != protocol.PartitionB {
		t.Errorf("CurrentPartition() = %v, want B", p)
	}
	if committed, _ := c.Committed(ctx); committed {
		t.Error("Committed() = true, want false")
	}
	if tryboot, _ := c.Tryboot(ctx); !tryboot {
		t.Error("Tryboot() = false, want true")
	}
	p, committed, err := c.BootStatus(ctx)
	if err != nil || p != protocol.PartitionB || committed {
		t.Errorf("BootStatus() = %v, %v, %v", p, committed, err)
	}
}

func TestQueriesAreNotCached(t *testing.T) {
	ctx := context.Background()
	c, emu := newTestClient()

	for i := 0; i < 3; i++ {
		if _, err := c.Committed(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if n := emu.CallCount(protocol.TagGetABParams); n != 3 {
		t.Errorf("get ab params exchanges = %d, want 3", n)
	}
}

func TestMarkValidPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("current partition rejected locally", func(t *testing.T) {
		c := New(newStrictTransport(t))
		err := c.MarkValid(ctx, protocol.Current, protocol.Hash{})
		if !errors.Is(err, protocol.ErrInvalidArg) {
			t.Errorf("error = %v, want %v", err, protocol.ErrInvalidArg)
		}
	})

	t.Run("unknown relative partition rejected locally", func(t *testing.T) {
		c := New(newStrictTransport(t))
		err := c.MarkValid(ctx, protocol.RelativePartition(7), protocol.Hash{})
		if !errors.Is(err, protocol.ErrInvalidArg) {
			t.Errorf("error = %v, want %v", err, protocol.ErrInvalidArg)
		}
	})

	t.Run("uncommitted sends no set partition", func(t *testing.T) {
		m := newStrictTransport(t)
		m.EXPECT().Exchange(gomock.Any()).DoAndReturn(respondABParams(protocol.ABParams{
			CurrentPartition: protocol.PartitionB,
		})).Times(1)

		err := New(m).MarkValid(ctx, protocol.Opposite, protocol.Hash{})
		if !errors.Is(err, protocol.ErrUncommitted) {
			t.Errorf("error = %v, want %v", err, protocol.ErrUncommitted)
		}
	})

	t.Run("uncommitted against firmware", func(t *testing.T) {
		c, emu := newTestClient()
		if err := c.ForceCommitOpposite(ctx); err != nil {
			t.Fatal(err)
		}
		err := c.MarkValid(ctx, protocol.Opposite, emu.Hash(protocol.PartitionB))
		if !errors.Is(err, protocol.ErrUncommitted) {
			t.Errorf("error = %v, want %v", err, protocol.ErrUncommitted)
		}
		if n := emu.CallCount(protocol.TagSetPartition); n != 0 {
			t.Errorf("set partition exchanges = %d, want 0", n)
		}
	})

	t.Run("hash mismatch", func(t *testing.T) {
		c, _ := newTestClient()
		err := c.MarkValid(ctx, protocol.Opposite, image.Sum([]byte("not the partition")))
		if !errors.Is(err, protocol.ErrHashMismatch) {
			t.Errorf("error = %v, want %v", err, protocol.ErrHashMismatch)
		}
	})
}

func TestRevertTarget(t *testing.T) {
	tests := []struct {
		name      string
		committed bool
		want      protocol.RelativePartition
	}{
		{name: "from committed partition", committed: true, want: protocol.Current},
		{name: "from uncommitted partition", committed: false, want: protocol.Opposite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sent protocol.RelativePartition = 99
			hash := image.Sum([]byte(tt.name))

			m := newStrictTransport(t)
			gomock.InOrder(
				m.EXPECT().Exchange(gomock.Any()).DoAndReturn(respondABParams(protocol.ABParams{
					CurrentPartition: protocol.PartitionA,
					Committed:        tt.committed,
				})),
				m.EXPECT().Exchange(gomock.Any()).DoAndReturn(func(msg []byte) error {
					req, err := protocol.ParseRequest(msg)
					if err != nil {
						return err
					}
					if req.Tag != protocol.TagSetPartition || req.Hash != hash {
						t.Errorf("request = %v hash %s", req.Tag, req.Hash)
					}
					sent = req.Relative
					protocol.RespondAck(msg)
					return nil
				}),
			)

			got, err := New(m).RevertToCommitted(context.Background(), hash)
			if err != nil {
				t.Fatalf("RevertToCommitted() error: %v", err)
			}
			if got != tt.want || sent != tt.want {
				t.Errorf("target = %v (sent %v), want %v", got, sent, tt.want)
			}
		})
	}
}

func TestSetABParamValues(t *testing.T) {
	tests := []struct {
		name      string
		call      func(*Client, context.Context) error
		wantParam protocol.ABParam
		wantValue uint32
	}{
		{"CommitCurrent", (*Client).CommitCurrent, protocol.ParamCommit, uint32(protocol.Current)},
		{"ForceCommitOpposite", (*Client).ForceCommitOpposite, protocol.ParamCommit, uint32(protocol.Opposite)},
		{"SetTryboot on", func(c *Client, ctx context.Context) error { return c.SetTryboot(ctx, true) }, protocol.ParamTryboot, 1},
		{"SetTryboot off", func(c *Client, ctx context.Context) error { return c.SetTryboot(ctx, false) }, protocol.ParamTryboot, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *protocol.Request

			m := newStrictTransport(t)
			m.EXPECT().Exchange(gomock.Any()).DoAndReturn(func(msg []byte) error {
				req, err := protocol.ParseRequest(msg)
				if err != nil {
					return err
				}
				got = req
				protocol.RespondAck(msg)
				return nil
			})

			if err := tt.call(New(m), context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Tag != protocol.TagSetABParams || got.Param != tt.wantParam || got.Value != tt.wantValue {
				t.Errorf("request = %v param %d value %d, want param %d value %d",
					got.Tag, got.Param, got.Value, tt.wantParam, tt.wantValue)
			}
		})
	}
}

func TestABUpdateCycle(t *testing.T) {
	ctx := context.Background()
	emu := emulator.New(emulator.WithBusyPolls(2))
	logger := &MockLogger{}
	c := New(emu, WithPollInterval(0), WithLogger(logger))
	img := patternImage(0x5A)
	hash := image.Sum(img)

	if err := c.Update(ctx, img); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if err := c.MarkValid(ctx, protocol.Opposite, hash); err != nil {
		t.Fatalf("MarkValid() error: %v", err)
	}

	pv, err := c.PartitionValidity(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if pv.CommittedPartition != protocol.PartitionA || pv.ValidPartition != protocol.PartitionB || pv.ValidHash != hash {
		t.Errorf("validity = %+v", pv)
	}

	if err := c.SetTryboot(ctx, true); err != nil {
		t.Fatal(err)
	}
	emu.Reboot()

	p, committed, err := c.BootStatus(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if p != protocol.PartitionB || committed {
		t.Errorf("BootStatus() = %v, %v, want B, false", p, committed)
	}

	if err := c.CommitCurrent(ctx); err != nil {
		t.Fatalf("CommitCurrent() error: %v", err)
	}
	if committed, _ := c.Committed(ctx); !committed {
		t.Error("current partition should be committed")
	}
	if err := c.CommitCurrent(ctx); !errors.Is(err, protocol.ErrAlreadyCommitted) {
		t.Errorf("second commit error = %v, want %v", err, protocol.ErrAlreadyCommitted)
	}
	if len(logger.infoMsgs) == 0 {
		t.Error("expected info logs")
	}
}
