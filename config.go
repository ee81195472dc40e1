package plateauth

import (
	"errors"
	"time"
)

// Config defines a public type used by plateauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session   SessionConfig
	Challenge ChallengeConfig
	Password  PasswordConfig
	Metrics   MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by plateauth APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
	TokenTTL    time.Duration
}

/*
====================================
CHALLENGE CONFIG
====================================
*/

// ChallengeConfig defines a public type used by plateauth APIs.
//
// ChallengeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ChallengeConfig struct {
	RedisPrefix string
	TTL         time.Duration
	OTPDigits   int
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by plateauth APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	// MinLength is the minimum accepted password length, in bytes.
	MinLength int
}

// MetricsConfig defines a public type used by plateauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RedisPrefix: "pt",
			TokenTTL:    24 * time.Hour,
		},
		Challenge: ChallengeConfig{
			RedisPrefix: "pc",
			TTL:         10 * time.Minute,
			OTPDigits:   6,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   8,
		},
		Metrics: MetricsConfig{Enabled: false},
	}
}

func cloneConfig(cfg Config) Config {
	// No reference fields yet; a shallow copy is a deep copy.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Session.TokenTTL <= 0 {
		return errors.New("session token TTL must be positive")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("session redis prefix required")
	}
	if c.Challenge.TTL <= 0 {
		return errors.New("challenge TTL must be positive")
	}
	if c.Challenge.RedisPrefix == "" {
		return errors.New("challenge redis prefix required")
	}
	if c.Challenge.OTPDigits < 6 || c.Challenge.OTPDigits > 10 {
		return errors.New("challenge OTP digits must be between 6 and 10")
	}
	if c.Password.MinLength < 8 {
		return errors.New("password minimum length must be at least 8")
	}
	return nil
}
