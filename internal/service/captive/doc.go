// Package captive makes the control page easy to reach from a phone that
// joined the access point: a DNS responder that resolves every name to the
// gateway, and an mDNS advertisement of the page.
package captive
