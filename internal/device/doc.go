// Package device contains the output drivers of the controller: the
// indicator that switches the light and the buzzer, and the two-line
// status display.
//
// The log drivers only write to the application log. The serial indicator
// forwards commands as JSON lines to a microcontroller bridge. The console
// display draws the status panel on the terminal.
package device
