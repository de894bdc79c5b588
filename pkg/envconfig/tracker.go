package envconfig

import (
	"github.com/cuemby/tracker-deployer/pkg/deployerr"
	"github.com/cuemby/tracker-deployer/pkg/secret"
)

// DatabaseDriver discriminates the core tracker's storage engine.
type DatabaseDriver string

const (
	DriverSqlite3 DatabaseDriver = "sqlite3"
	DriverMysql   DatabaseDriver = "mysql"
)

// DatabaseConfig describes the tracker's database. Sqlite3 is embedded
// and file-backed, so the network fields must be absent; mysql is
// networked, so they're all required.
type DatabaseConfig struct {
	Driver   DatabaseDriver `yaml:"driver"`
	Host     string         `yaml:"host,omitempty"`
	Port     int            `yaml:"port,omitempty"`
	User     string         `yaml:"user,omitempty"`
	Password *secret.Value  `yaml:"password,omitempty"`
}

func (d DatabaseConfig) validate() error {
	switch d.Driver {
	case DriverSqlite3:
		if d.Host != "" || d.Port != 0 || d.User != "" || d.Password != nil {
			return deployerr.Validation("tracker.database", "sqlite3 driver must not declare host, port, user, or password")
		}
		return nil

	case DriverMysql:
		if d.Host == "" {
			return deployerr.Validation("tracker.database.host", "is required for the mysql driver")
		}
		if d.Port == 0 {
			return deployerr.Validation("tracker.database.port", "is required for the mysql driver")
		}
		if d.User == "" {
			return deployerr.Validation("tracker.database.user", "is required for the mysql driver")
		}
		if d.Password == nil {
			return deployerr.Validation("tracker.database.password", "is required for the mysql driver")
		}
		return nil

	default:
		return deployerr.Validation("tracker.database.driver", "must be \"sqlite3\" or \"mysql\"")
	}
}

// HTTPAPIConfig configures the tracker's admin HTTP API. It is rendered
// into the tracker's config.toml, the compose .env file and the
// Prometheus scrape targets; the run/test handlers do not probe it.
type HTTPAPIConfig struct {
	BindAddress string        `yaml:"bind_address"`
	AdminToken  *secret.Value `yaml:"admin_token"`
	TLS         bool          `yaml:"tls"`
}

// HealthCheckAPIConfig configures the tracker's unauthenticated health
// endpoint, polled by the run handler after starting the services and
// probed by the test handler.
type HealthCheckAPIConfig struct {
	BindAddress string `yaml:"bind_address"`
}

// TrackerConfig describes the core BitTorrent tracker service.
type TrackerConfig struct {
	Database       DatabaseConfig        `yaml:"database"`
	UDPTrackers    []string              `yaml:"udp_trackers"`
	HTTPTrackers   []string              `yaml:"http_trackers"`
	HTTPAPI        *HTTPAPIConfig        `yaml:"http_api,omitempty"`
	HealthCheckAPI *HealthCheckAPIConfig `yaml:"health_check_api,omitempty"`
}

func (t TrackerConfig) validate() error {
	if err := t.Database.validate(); err != nil {
		return err
	}
	if len(t.UDPTrackers) == 0 && len(t.HTTPTrackers) == 0 {
		return deployerr.Validation("tracker", "at least one udp or http tracker bind address is required")
	}
	if t.HTTPAPI != nil && t.HTTPAPI.BindAddress == "" {
		return deployerr.Validation("tracker.http_api.bind_address", "is required when http_api is present")
	}
	if t.HTTPAPI != nil && t.HTTPAPI.AdminToken == nil {
		return deployerr.Validation("tracker.http_api.admin_token", "is required when http_api is present")
	}
	if t.HealthCheckAPI != nil && t.HealthCheckAPI.BindAddress == "" {
		return deployerr.Validation("tracker.health_check_api.bind_address", "is required when health_check_api is present")
	}
	return nil
}

func (t TrackerConfig) declaresTLS() bool {
	return t.HTTPAPI != nil && t.HTTPAPI.TLS
}
