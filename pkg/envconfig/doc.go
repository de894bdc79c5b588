/*
Package envconfig models a validated, normalized description of one
desired environment: its name, SSH credentials, provider, tracker
services, and optional monitoring/dashboards/backup/TLS sections.

Config is parsed from a self-describing YAML document (top-level
keys: environment, ssh_credentials, provider, tracker, prometheus,
grafana, backup, https) via gopkg.in/yaml.v3,
strictly: unknown keys at any depth are rejected. Validate then checks
the cross-field invariants that parsing alone cannot express (Grafana
requires Prometheus, TLS-declaring services require the https section,
database driver shape, strictly-positive intervals).
*/
package envconfig
