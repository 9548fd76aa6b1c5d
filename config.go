package gecs

import (
	"runtime"
	"time"
)

// Config controls the scheduler attached to a World.
type Config struct {
	// Workers is the number of goroutines executing systems and deferred
	// tasks. Zero means runtime.NumCPU.
	Workers int

	// TickRate is the target number of scheduler ticks per second. Zero
	// means DefaultTickRate.
	TickRate int

	// TaskQueueSize bounds the number of pending deferred tasks. Zero
	// means DefaultTaskQueueSize.
	TaskQueueSize int
}

const (
	// DefaultTickRate is the scheduler frequency used when none is set.
	DefaultTickRate = 60

	// DefaultTaskQueueSize is the deferred task buffer used when none is
	// set.
	DefaultTaskQueueSize = 256
)

func defaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.TickRate <= 0 {
		c.TickRate = DefaultTickRate
	}
	if c.TaskQueueSize <= 0 {
		c.TaskQueueSize = DefaultTaskQueueSize
	}
	return c
}

// tickInterval converts the tick rate into a ticker duration.
func (c Config) tickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}
