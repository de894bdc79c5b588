// Package sshkey models the SSH credentials used to reach a
// provisioned instance: a private/public key pair, a username, and a
// port. Cryptographic validation that the two key files actually form
// a pair is deferred until the first call to Validate, since reading
// and parsing both files on every config load would be wasted work for
// handlers (like show or list) that never open a connection.
package sshkey
