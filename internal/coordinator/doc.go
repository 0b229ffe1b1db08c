// Package coordinator runs the single control loop of the access point.
//
// One goroutine owns the alarm state, the actuator cadence and every client
// session. Each tick it advances the actuator, drains pending network events
// without blocking, expires idle sessions and publishes a status snapshot,
// then waits at most one tick interval for the next event. Other goroutines
// only read snapshots and request shutdown.
package coordinator
