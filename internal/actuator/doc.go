// Package actuator drives the blink-and-beep cadence of the alarm.
//
// Machine.Advance is called once per controller tick. It never waits: it
// reads the clock value it is given, updates the timing fields of the shared
// alarm state and returns the commands to apply together with the text the
// display should show.
package actuator
