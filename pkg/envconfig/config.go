package envconfig

import (
	"github.com/cuemby/tracker-deployer/pkg/secret"
	"github.com/cuemby/tracker-deployer/pkg/sshkey"
	"github.com/cuemby/tracker-deployer/pkg/value"
)

// PrometheusConfig enables metrics scraping of the tracker and its
// sidecars.
type PrometheusConfig struct {
	ScrapeIntervalSecs int `yaml:"scrape_interval_secs"`
}

// GrafanaConfig enables a dashboard instance, wired to Prometheus.
type GrafanaConfig struct {
	AdminUser     string        `yaml:"admin_user"`
	AdminPassword *secret.Value `yaml:"admin_password"`
	TLS           bool          `yaml:"tls"`
}

// BackupConfig enables periodic database backups.
type BackupConfig struct {
	CronSchedule  string `yaml:"cron_schedule"`
	RetentionDays int    `yaml:"retention_days"`
}

// TLSConfig enables a Caddy reverse proxy terminating TLS in front of
// any service that declares tls: true.
type TLSConfig struct {
	AdminEmail string `yaml:"admin_email"`
}

// EnvironmentConfig is the fully validated, in-memory description of
// one desired environment, as parsed from its YAML config document.
type EnvironmentConfig struct {
	Name         value.EnvironmentName
	InstanceName *value.InstanceName
	Description  string
	SSH          *sshkey.Credentials
	Provider     Provider
	Tracker      TrackerConfig
	Prometheus   *PrometheusConfig
	Grafana      *GrafanaConfig
	Backup       *BackupConfig
	TLS          *TLSConfig
	Labels       map[string]string
}

// declaresTLS reports whether any service section requests TLS
// termination, which in turn requires the TLS section to be present.
func (c *EnvironmentConfig) declaresTLS() bool {
	if c.Tracker.declaresTLS() {
		return true
	}
	if c.Grafana != nil && c.Grafana.TLS {
		return true
	}
	return false
}
