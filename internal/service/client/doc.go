// Package client implements the alarm-ap-ctl commands.
//
// The commands connect to the operator endpoint of a running controller,
// print its status or ask it to shut down.
package client
