// Package value defines the small, validated identifier and address types
// shared across the deployer: environment names, instance names, and
// host/port addresses. None of them carry secrets.
package value
