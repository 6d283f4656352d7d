package collision

import (
	"fmt"
	"time"
)

// Config is the engine's configuration contract, the Go analogue of
// GridJobStealingCollisionSpi's bean properties. The yaml tags mirror the
// keys of internal/config's collision section; internal/config parses into
// its own struct and projects the values into this one (converting
// msg_expire_time_ms to a Duration) rather than unmarshalling into it.
type Config struct {
	ActiveJobsThreshold int               `yaml:"active_jobs_threshold"`
	WaitJobsThreshold   int               `yaml:"wait_jobs_threshold"`
	MsgExpireTime       time.Duration     `yaml:"msg_expire_time_ms"`
	MaxStealingAttempts int               `yaml:"max_stealing_attempts"`
	StealingEnabled     bool              `yaml:"stealing_enabled"`
	StealingAttributes  map[string]string `yaml:"stealing_attributes"`
}

// Validate enforces the range constraint each threshold carries. A
// configuration that fails validation must not start the engine.
func (c Config) Validate() error {
	if c.ActiveJobsThreshold < 0 {
		return fmt.Errorf("%w: active_jobs_threshold must be >= 0, got %d", ErrConfigInvalid, c.ActiveJobsThreshold)
	}
	if c.WaitJobsThreshold < 0 {
		return fmt.Errorf("%w: wait_jobs_threshold must be >= 0, got %d", ErrConfigInvalid, c.WaitJobsThreshold)
	}
	if c.MsgExpireTime <= 0 {
		return fmt.Errorf("%w: msg_expire_time must be > 0, got %s", ErrConfigInvalid, c.MsgExpireTime)
	}
	if c.MaxStealingAttempts <= 0 {
		return fmt.Errorf("%w: max_stealing_attempts must be > 0, got %d", ErrConfigInvalid, c.MaxStealingAttempts)
	}
	return nil
}

// PublishedAttributes returns the peer attributes this node advertises for
// discovery.
func (c Config) PublishedAttributes() map[string]string {
	return map[string]string{
		WaitJobsThresholdNodeAttr:   fmt.Sprintf("%d", c.WaitJobsThreshold),
		ActiveJobsThresholdNodeAttr: fmt.Sprintf("%d", c.ActiveJobsThreshold),
		MaxStealingAttemptNodeAttr:  fmt.Sprintf("%d", c.MaxStealingAttempts),
		MsgExpireTimeNodeAttr:       fmt.Sprintf("%d", c.MsgExpireTime.Milliseconds()),
	}
}
