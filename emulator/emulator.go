package emulator

import (
	"sync"

	"github.com/looplab/fsm"

	"github.com/moffa90/go-eepromab/image"
	"github.com/moffa90/go-eepromab/protocol"
)

// Logger receives emulator debug output.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Emulator is an in-memory A/B EEPROM firmware implementing
// mailbox.Transport.
//
// Emulator is safe for concurrent use.
type Emulator struct {
	mu sync.Mutex

	eeprom  []byte
	staging []byte
	staged  bool

	current   protocol.Partition
	lifecycle map[protocol.Partition]*fsm.FSM

	committedPartition protocol.Partition
	validPartition     protocol.Partition
	committedHash      protocol.Hash
	validHash          protocol.Hash

	tryboot         bool
	partitionAtBoot protocol.Partition
	committedAtBoot bool

	status        protocol.UpdateStatus
	firmwareError protocol.ErrorCode
	busyRemaining int
	nextFailure   protocol.ErrorCode

	config Config

	faults       map[protocol.Tag]protocol.ErrorCode
	transportErr error
	unprocessed  bool
	calls        []protocol.Tag
}

// New creates an emulator booted from a committed partition A whose
// content is the fill pattern of WithFill (0xFF by default). Partition B
// is unset.
func New(opts ...Option) *Emulator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Emulator{
		eeprom:  make([]byte, protocol.Capacity),
		staging: make([]byte, protocol.PartitionSize),
		config:  cfg,
		faults:  make(map[protocol.Tag]protocol.ErrorCode),
	}
	for i := range e.eeprom {
		e.eeprom[i] = cfg.Fill
	}

	e.current = protocol.PartitionA
	e.lifecycle = map[protocol.Partition]*fsm.FSM{
		protocol.PartitionA: newLifecycle(protocol.PartitionA, StateCommitted, cfg.Logger),
		protocol.PartitionB: newLifecycle(protocol.PartitionB, StateUnset, cfg.Logger),
	}
	e.committedPartition = protocol.PartitionA
	e.validPartition = protocol.PartitionA
	e.committedHash = image.Sum(e.partition(protocol.PartitionA))
	e.validHash = e.committedHash
	e.partitionAtBoot = protocol.PartitionA
	e.committedAtBoot = true

	return e
}

// Exchange decodes msg as a firmware request and writes the response in
// place.
func (e *Emulator) Exchange(msg []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.transportErr != nil {
		return e.transportErr
	}

	req, err := protocol.ParseRequest(msg)
	if err != nil {
		e.logError("malformed request", "error", err)
		return err
	}
	e.calls = append(e.calls, req.Tag)
	e.logDebug("request", "tag", req.Tag.String())

	if e.unprocessed {
		return nil
	}
	if code, ok := e.faults[req.Tag]; ok {
		protocol.RespondError(msg, code)
		return nil
	}

	if code := e.handle(msg, req); code != protocol.ErrNone {
		e.logDebug("request failed", "tag", req.Tag.String(), "code", uint32(code))
		protocol.RespondError(msg, code)
	}
	return nil
}

func (e *Emulator) handle(msg []byte, req *protocol.Request) protocol.ErrorCode {
	switch req.Tag {
	case protocol.TagGetPacket:
		return e.getPacket(msg, req)
	case protocol.TagSetPacket:
		return e.setPacket(msg, req)
	case protocol.TagGetUpdateStatus:
		e.pollUpdate()
		protocol.RespondUpdateStatus(msg, protocol.UpdateStatusInfo{
			Status:            e.status,
			FirmwareError:     e.firmwareError,
			SPIGPIOCheck:      e.config.SPIGPIOCheck,
			UsingPartitioning: e.config.UsingPartitioning,
		})
	case protocol.TagSetUpdateStatus:
		return e.updateCommand(msg, req.Command)
	case protocol.TagGetPartition:
		protocol.RespondPartition(msg, protocol.PartitionValidity{
			CommittedPartition: e.committedPartition,
			ValidPartition:     e.validPartition,
			CommittedHash:      e.committedHash,
			ValidHash:          e.validHash,
		})
	case protocol.TagSetPartition:
		return e.setPartition(msg, req.Relative, req.Hash)
	case protocol.TagGetABParams:
		protocol.RespondABParams(msg, e.abParams())
	case protocol.TagSetABParams:
		return e.setABParam(msg, req.Param, req.Value)
	}
	return protocol.ErrNone
}

func (e *Emulator) getPacket(msg []byte, req *protocol.Request) protocol.ErrorCode {
	end := uint64(req.Address) + uint64(req.Length)
	if end > protocol.Capacity {
		return protocol.ErrLength
	}
	protocol.RespondPacket(msg, e.eeprom[req.Address:end])
	return protocol.ErrNone
}

func (e *Emulator) setPacket(msg []byte, req *protocol.Request) protocol.ErrorCode {
	if e.status == protocol.StatusBusy {
		return protocol.ErrBusy
	}
	end := uint64(req.Address) + uint64(req.Length)
	if end > protocol.PartitionSize {
		return protocol.ErrLength
	}
	copy(e.staging[req.Address:end], req.Data)
	e.staged = true
	protocol.RespondAck(msg)
	return protocol.ErrNone
}

func (e *Emulator) updateCommand(msg []byte, cmd protocol.UpdateCommand) protocol.ErrorCode {
	switch cmd {
	case protocol.CommandStartWrite:
		if e.status == protocol.StatusBusy {
			return protocol.ErrBusy
		}
		if e.state(e.current) != StateCommitted {
			return protocol.ErrUncommitted
		}
		if !e.staged {
			return protocol.ErrInvalidArg
		}
		e.status = protocol.StatusBusy
		e.firmwareError = protocol.ErrNone
		e.busyRemaining = e.config.BusyPolls
	case protocol.CommandCancel:
		e.status = protocol.StatusCanceled
		e.firmwareError = protocol.ErrNone
		e.staged = false
	default:
		return protocol.ErrInvalidArg
	}
	protocol.RespondAck(msg)
	return protocol.ErrNone
}

// pollUpdate advances a busy write by one status query. The write lands in
// the opposite partition once BusyPolls queries have reported busy.
func (e *Emulator) pollUpdate() {
	if e.status != protocol.StatusBusy {
		return
	}
	if e.busyRemaining > 0 {
		e.busyRemaining--
		return
	}

	if e.nextFailure != protocol.ErrNone {
		e.status = protocol.StatusNoUpdate
		e.firmwareError = e.nextFailure
		e.nextFailure = protocol.ErrNone
		e.staged = false
		return
	}

	target := e.current.Opposite()
	copy(e.partition(target), e.staging)
	e.staged = false
	if err := e.transition(target, eventErase); err != nil {
		e.logError("erase transition", "partition", target.String(), "error", err)
	}
	if e.validPartition == target {
		e.validPartition = e.committedPartition
		e.validHash = e.committedHash
	}
	e.status = protocol.StatusSuccess
	e.firmwareError = protocol.ErrNone
	e.logInfo("update written", "partition", target.String())
}

func (e *Emulator) resolve(rel protocol.RelativePartition) (protocol.Partition, bool) {
	switch rel {
	case protocol.Current:
		return e.current, true
	case protocol.Opposite:
		return e.current.Opposite(), true
	default:
		return 0, false
	}
}

func (e *Emulator) setPartition(msg []byte, rel protocol.RelativePartition, hash protocol.Hash) protocol.ErrorCode {
	target, ok := e.resolve(rel)
	if !ok {
		return protocol.ErrInvalidPartition
	}
	if image.Sum(e.partition(target)) != hash {
		return protocol.ErrHashMismatch
	}

	if target == e.committedPartition {
		// Revert: the committed partition becomes the valid one again.
		other := target.Opposite()
		if e.state(other) == StateValid {
			if err := e.transition(other, eventInvalidate); err != nil {
				return protocol.ErrFailed
			}
		}
	} else {
		if e.state(e.current) != StateCommitted {
			return protocol.ErrUncommitted
		}
		if err := e.transition(target, eventValidate); err != nil {
			return protocol.ErrFailed
		}
	}

	e.validPartition = target
	e.validHash = hash
	protocol.RespondAck(msg)
	return protocol.ErrNone
}

func (e *Emulator) setABParam(msg []byte, param protocol.ABParam, value uint32) protocol.ErrorCode {
	switch param {
	case protocol.ParamCommit:
		target, ok := e.resolve(protocol.RelativePartition(value))
		if !ok {
			return protocol.ErrInvalidArg
		}
		if e.state(target) == StateCommitted {
			return protocol.ErrAlreadyCommitted
		}
		previous := e.committedPartition
		if err := e.transition(target, eventCommit); err != nil {
			return protocol.ErrFailed
		}
		if err := e.transition(previous, eventDemote); err != nil {
			return protocol.ErrFailed
		}
		e.committedPartition = target
		e.committedHash = image.Sum(e.partition(target))
		if e.validPartition == target {
			e.validHash = e.committedHash
		}
	case protocol.ParamTryboot:
		e.tryboot = value != 0
	default:
		return protocol.ErrInvalidArg
	}
	protocol.RespondAck(msg)
	return protocol.ErrNone
}

func (e *Emulator) abParams() protocol.ABParams {
	return protocol.ABParams{
		CurrentPartition: e.current,
		Committed:        e.state(e.current) == StateCommitted,
		Tryboot:          e.tryboot,
		PartitionAtBoot:  e.partitionAtBoot,
		CommittedAtBoot:  e.committedAtBoot,
	}
}

// partition returns the live EEPROM slice of p.
func (e *Emulator) partition(p protocol.Partition) []byte {
	start := p.Start()
	return e.eeprom[start : start+protocol.PartitionSize]
}

func (e *Emulator) logDebug(msg string, keysAndValues ...interface{}) {
	if e.config.Logger != nil {
		e.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (e *Emulator) logInfo(msg string, keysAndValues ...interface{}) {
	if e.config.Logger != nil {
		e.config.Logger.Info(msg, keysAndValues...)
	}
}

func (e *Emulator) logError(msg string, keysAndValues ...interface{}) {
	if e.config.Logger != nil {
		e.config.Logger.Error(msg, keysAndValues...)
	}
}
