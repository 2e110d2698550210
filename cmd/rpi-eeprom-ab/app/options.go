package app

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/moffa90/go-eepromab/eepromab"
	"github.com/moffa90/go-eepromab/emulator"
	"github.com/moffa90/go-eepromab/internal/config"
	"github.com/moffa90/go-eepromab/internal/log"
	"github.com/moffa90/go-eepromab/mailbox"
)

// Options holds the global command line options.
type Options struct {
	ConfigFile   string
	Device       string
	Emulate      bool
	PacketSize   int
	PollAttempts int
	PollInterval time.Duration
	Log          *log.Options

	// transport replaces the device and emulator when set
	transport mailbox.Transport
}

// NewOptions returns Options holding the built-in defaults.
func NewOptions() *Options {
	def := config.Default()
	return &Options{
		Device:       def.Device,
		PacketSize:   def.PacketSize,
		PollAttempts: def.Poll.Attempts,
		PollInterval: def.Poll.Interval,
		Log:          log.NewOptions(),
	}
}

// AddFlags binds the options to fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFile, "config", "c", o.ConfigFile, "Path to a YAML configuration file.")
	fs.StringVar(&o.Device, "device", o.Device, "The VideoCore mailbox device.")
	fs.BoolVar(&o.Emulate, "emulate", o.Emulate, "Run against an in-memory EEPROM emulator instead of the device.")
	fs.IntVar(&o.PacketSize, "packet-size", o.PacketSize, "Payload bytes per packet exchange.")
	fs.IntVar(&o.PollAttempts, "poll-attempts", o.PollAttempts, "Update status queries before giving up.")
	fs.DurationVar(&o.PollInterval, "poll-interval", o.PollInterval, "Delay between update status queries.")
	o.Log.AddFlags(fs)
}

// Config loads the configuration file and applies the flags set on fs over it.
func (o *Options) Config(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, err
	}

	if fs.Changed("device") {
		cfg.Device = o.Device
	}
	if fs.Changed("packet-size") {
		cfg.PacketSize = o.PacketSize
	}
	if fs.Changed("poll-attempts") {
		cfg.Poll.Attempts = o.PollAttempts
	}
	if fs.Changed("poll-interval") {
		cfg.Poll.Interval = o.PollInterval
	}
	if fs.Changed("log.level") {
		cfg.Log.Level = o.Log.Level
	}
	if fs.Changed("log.format") {
		cfg.Log.Format = o.Log.Format
	}
	if fs.Changed("log.enable-color") {
		cfg.Log.EnableColor = o.Log.EnableColor
	}
	if fs.Changed("log.disable-caller") {
		cfg.Log.DisableCaller = o.Log.DisableCaller
	}
	if fs.Changed("log.output-paths") {
		cfg.Log.OutputPaths = o.Log.OutputPaths
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newTransport returns the mailbox the client talks to.
func (o *Options) newTransport(cfg *config.Config, logger log.Logger) mailbox.Transport {
	switch {
	case o.transport != nil:
		return o.transport
	case o.Emulate:
		return emulator.New(emulator.WithLogger(logger.WithName("emulator")))
	default:
		return mailbox.NewDevice(cfg.Device, logger.WithName("mailbox"))
	}
}

// newClient builds a client from cfg.
func (o *Options) newClient(cfg *config.Config, logger log.Logger, extra ...eepromab.Option) *eepromab.Client {
	opts := append(cfg.ClientOptions(), eepromab.WithLogger(logger.WithName("eepromab")))
	opts = append(opts, extra...)
	return eepromab.New(o.newTransport(cfg, logger), opts...)
}
