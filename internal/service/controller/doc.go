// Package controller assembles and runs the access point controller: output
// drivers, the network runtime, the control loop, the operator endpoint and
// the captive helpers.
package controller
