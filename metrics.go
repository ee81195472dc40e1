package plateauth

import internalmetrics "github.com/platekit/plateauth/internal/metrics"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess is an exported constant or variable used by the account engine.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure is an exported constant or variable used by the account engine.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLoginChallengeIssued is an exported constant or variable used by the account engine.
	MetricLoginChallengeIssued = internalmetrics.MetricLoginChallengeIssued
	// MetricTokenIssued is an exported constant or variable used by the account engine.
	MetricTokenIssued = internalmetrics.MetricTokenIssued
	// MetricTokenRevoked is an exported constant or variable used by the account engine.
	MetricTokenRevoked = internalmetrics.MetricTokenRevoked
	// MetricTokenRefreshed is an exported constant or variable used by the account engine.
	MetricTokenRefreshed = internalmetrics.MetricTokenRefreshed
	// MetricChallengeIssued is an exported constant or variable used by the account engine.
	MetricChallengeIssued = internalmetrics.MetricChallengeIssued
	// MetricChallengeConsumed is an exported constant or variable used by the account engine.
	MetricChallengeConsumed = internalmetrics.MetricChallengeConsumed
	// MetricMailSent is an exported constant or variable used by the account engine.
	MetricMailSent = internalmetrics.MetricMailSent
	// MetricMailFailure is an exported constant or variable used by the account engine.
	MetricMailFailure = internalmetrics.MetricMailFailure
	// MetricAccountCreated is an exported constant or variable used by the account engine.
	MetricAccountCreated = internalmetrics.MetricAccountCreated
)

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot
