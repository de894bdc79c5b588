/*
Package render is the deterministic artifact-tree renderer: given a
validated environment configuration and an instance address, it
produces the concrete files the external tool drivers consume.

The renderer reads its template tree from an embedded filesystem
(embed.FS), evaluates every template exactly once against a single
Context derived from the config, and writes an artifact tree with up
to eight sibling subdirectories: opentofu/, ansible/, docker-compose/,
tracker/, prometheus/, grafana/, caddy/ (only when the config declares
TLS), and backup/ (only when the config declares a backup schedule).
Every other conditional fragment inside a template (MySQL vs. sqlite3,
HTTP API present or not) is a plain {{if}} keyed off a field computed
once in Context, so the renderer itself never branches on anything but
its two inputs.

Render is pure and repeatable: the same Context renders to the same
byte sequence every time, with map-valued template data walked through
a sorted-keys helper so key order never perturbs output. Overwrite mode
clears the target directory before writing; non-overwrite mode refuses
to touch an existing, non-empty output directory.
*/
package render
