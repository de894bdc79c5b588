/*
Package secret wraps credential material (API tokens, passwords, SSH
private keys) so it cannot be printed, logged, or serialized by
accident.

A Value's String, GoString, and MarshalYAML/MarshalJSON forms are
always redacted; the only way to reach the contained bytes is Expose,
which callers invoke at the last possible moment before handing the
value to a subprocess or an HTTP request. Two Values are Equal only if
they are the same wrapper instance, never by comparing contents.

Values are never serialized in plaintext. When a Value must be
persisted (inside an environment record), the store encrypts it first
through a Sealer into an Envelope and decrypts it back through Open;
nothing in between ever touches encoding/json or yaml.v3 directly on
the raw bytes.
*/
package secret
