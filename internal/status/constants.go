// internal/status/constants.go
package status

// Topic suffixes and payloads of the bridge's own state.
// These values are an external contract and MUST NOT be configurable.

// ---- TOPICS ----

// TopicReading carries the bridge liveness (ON / OFF), retained, QoS 1.
const TopicReading = "reading"

// TopicHealth carries the JSON health snapshot, retained.
const TopicHealth = "health"

// ReadingQoS is the QoS of the liveness topic and the last will.
const ReadingQoS byte = 1

// ---- PAYLOADS ----

const PayloadOn = "ON"
const PayloadOff = "OFF"

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state (no burst completed yet).
const HealthUnknown = "unknown"

// HealthOK: every range of the last burst was read.
const HealthOK = "ok"

// HealthError: at least one range of the last burst failed.
const HealthError = "error"

// ---- LIMITS ----

// SecondsInErrorMax caps the error duration counter.
const SecondsInErrorMax = 65535
