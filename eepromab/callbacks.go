package eepromab

import "time"

// Progress phases.
const (
	PhaseReading  = "reading"
	PhaseWriting  = "writing"
	PhaseWaiting  = "waiting"
	PhaseComplete = "complete"
)

// Progress contains information about a running transfer or update.
// Passed to ProgressCallback.
type Progress struct {
	// Phase describes the current operation phase:
	//   "reading"  - Reading EEPROM packets
	//   "writing"  - Staging update packets
	//   "waiting"  - Polling the firmware while it writes the EEPROM
	//   "complete" - Operation completed successfully
	Phase string

	// BytesTransferred is the number of bytes read or staged so far
	BytesTransferred int

	// TotalBytes is the size of the transfer
	TotalBytes int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// Attempt is the current update status query (waiting phase only)
	Attempt int

	// MaxAttempts is the poll bound (waiting phase only)
	MaxAttempts int

	// ElapsedTime is the time elapsed since the operation started
	ElapsedTime time.Duration
}

// ProgressCallback is called during transfers to report progress.
// Implementations should return quickly to avoid stalling the transfer.
//
// Example:
//
//	client := eepromab.New(transport,
//	    eepromab.WithProgressCallback(func(p eepromab.Progress) {
//	        fmt.Printf("[%s] %.1f%% - %d/%d bytes\n",
//	            p.Phase, p.Percentage, p.BytesTransferred, p.TotalBytes)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the client.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	client := eepromab.New(transport, eepromab.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
