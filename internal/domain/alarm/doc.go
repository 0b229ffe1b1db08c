// Package alarm contains core domain types of the alarm controller.
//
// State is the single device-wide alarm state shared by the HTTP control
// path and the actuator cadence. Command and DisplayText are the side-channel
// outputs consumed by hardware drivers. Actor identifies who asked the
// controller to stop, and Snapshot is the read-only view published each tick.
package alarm
