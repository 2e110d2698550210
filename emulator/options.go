package emulator

// Config holds the emulator configuration.
type Config struct {
	// Logger receives request and lifecycle debug output (optional)
	Logger Logger

	// BusyPolls is the number of status queries answered with busy after a
	// write starts. The next query completes the write.
	BusyPolls int

	// Fill is the initial value of every EEPROM byte
	Fill byte

	// SPIGPIOCheck is reported by the update status tag
	SPIGPIOCheck uint32

	// UsingPartitioning is reported by the update status tag
	UsingPartitioning bool
}

func defaultConfig() Config {
	return Config{
		BusyPolls:         2,
		Fill:              0xFF,
		SPIGPIOCheck:      1,
		UsingPartitioning: true,
	}
}

// Option is a functional option for configuring the Emulator.
type Option func(*Config)

// WithLogger sets a logger for emulator activity.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithBusyPolls sets how many status queries report busy before a write
// completes.
func WithBusyPolls(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.BusyPolls = n
		}
	}
}

// WithFill sets the initial EEPROM content.
func WithFill(b byte) Option {
	return func(c *Config) {
		c.Fill = b
	}
}

// WithSPIGPIOCheck sets the SPI GPIO check value reported by the firmware.
// Any value other than 1 means the firmware cannot drive the EEPROM.
func WithSPIGPIOCheck(v uint32) Option {
	return func(c *Config) {
		c.SPIGPIOCheck = v
	}
}

// WithPartitioning sets whether the firmware reports A/B partitioning.
func WithPartitioning(enabled bool) Option {
	return func(c *Config) {
		c.UsingPartitioning = enabled
	}
}
