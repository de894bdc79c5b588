/*
Package handler implements the twelve command workflows that
transition an environment between lifecycle states: create, provision,
configure, release, run, test, destroy, purge, render, show, list, and
validate.

Every state-mutating handler follows the same protocol: acquire the
environment's lock (pkg/store), load the record and check its current
state against the handler's precondition table (pkg/envstate),
transition to an intermediate state and persist it, run the workflow's
steps while emitting progress.Events, then persist either the target
state or a Failed record and release the lock. Handlers never hold
state in memory across calls; all of it is read back from the store on
every invocation.
*/
package handler
