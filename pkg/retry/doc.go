/*
Package retry wraps github.com/cenkalti/backoff/v4 into the one
bounded-retry shape every handler's readiness polling loop needs: a
capped exponential backoff (initial 1s, cap 10s) against a total
deadline, cancellable via context.Context and reporting a
deployerr.Timeout when the deadline is exhausted instead of backoff's
own sentinel.
*/
package retry
