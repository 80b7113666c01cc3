// Package failsafe implements the battery voltage alarm state machine.
//
// The machine has two states, NORMAL and CRITICAL, separated by a
// hysteresis band: it enters CRITICAL when voltage drops below the
// critical threshold and returns to NORMAL only once voltage reaches
// threshold plus RecoveryMargin. An alert is raised exactly once per
// NORMAL to CRITICAL transition, so a vehicle hovering around the
// threshold cannot flood downstream sinks with duplicate alerts.
package failsafe
