// Package transport is the network runtime the controller loop consumes.
//
// The runtime never calls into controller code. It turns socket activity
// into Events on a channel: accepted clients, received bytes, delivery
// acknowledgements, closes and errors. The controller drains that channel
// from its own loop and answers through Endpoint methods, none of which block.
//
// Listen starts a single gnet event loop on the given address.
package transport
