/*
Package store persists one record per environment under data/<name>/,
enforcing single-writer discipline with an advisory file lock.

A record is a (config, state, created_at, updated_at, data_dir,
build_dir) tuple, serialized as human-readable, key-preserving YAML
with a schema_version field at the root; unknown keys are rejected on
load. Secret fields in the config never hit disk in plaintext: Save
seals each one into an opaque, base64-encoded envelope (pkg/secret)
under a per-environment key file, and Load reverses the process so the
caller always sees a live *secret.Value.

WithLock wraps one handler's read-modify-write cycle in an exclusive,
gofrs/flock-backed advisory lock on data/<name>/.lock, with a
configurable acquisition timeout (default 30s) mapped to
deployerr.Busy on expiry.
*/
package store
