/*
Package deployerr defines the layered SystemError variant tree shared by
every handler. Each error carries a Kind (Validation, InvalidState,
Busy, NotFound, Io, Render, Driver, Timeout, Corrupt, Cancelled),
a human-readable message narrating what the system was trying to do,
structured Details, and an optional wrapped cause reachable via
errors.Unwrap/errors.As.

Details are redacted defensively: constructors run string-valued fields
through Redact before storing them, and any *secret.Value placed in
Details renders through its own redacted String(). A SystemError must
never carry a raw credential.
*/
package deployerr
