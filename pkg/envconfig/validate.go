package envconfig

import "github.com/cuemby/tracker-deployer/pkg/deployerr"

// Validate checks the cross-field invariants that parsing alone
// cannot express.
func Validate(cfg *EnvironmentConfig) error {
	if err := cfg.Provider.validate(); err != nil {
		return err
	}
	if err := cfg.Tracker.validate(); err != nil {
		return err
	}

	if cfg.Grafana != nil && cfg.Prometheus == nil {
		return deployerr.Validation("grafana", "requires the prometheus section to be present")
	}

	if cfg.Prometheus != nil && cfg.Prometheus.ScrapeIntervalSecs <= 0 {
		return deployerr.Validation("prometheus.scrape_interval_secs", "must be strictly positive")
	}

	if cfg.Backup != nil {
		if cfg.Backup.CronSchedule == "" {
			return deployerr.Validation("backup.cron_schedule", "is required when backup is present")
		}
		if cfg.Backup.RetentionDays <= 0 {
			return deployerr.Validation("backup.retention_days", "must be strictly positive")
		}
	}

	if cfg.declaresTLS() && cfg.TLS == nil {
		return deployerr.Validation("https", "is required because a service declares tls: true")
	}
	if cfg.TLS != nil && cfg.TLS.AdminEmail == "" {
		return deployerr.Validation("https.admin_email", "is required when https is present")
	}

	return nil
}
