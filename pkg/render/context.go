package render

import (
	"sort"

	"github.com/cuemby/tracker-deployer/pkg/envconfig"
)

// Context is the single evaluation input handed to every template.
// It is built once per render call and never mutated afterward.
type Context struct {
	Environment  string
	InstanceName string
	Description  string
	InstanceIP   string

	SSHUsername   string
	SSHPort       int
	SSHPrivateKey string
	SSHPublicKey  string

	ProviderKind string
	Lxd          *lxdContext
	Hetzner      *hetznerContext

	Tracker    trackerContext
	Prometheus *prometheusContext
	Grafana    *grafanaContext
	Backup     *backupContext
	TLS        *tlsContext

	Labels []label
}

type label struct {
	Key   string
	Value string
}

type lxdContext struct {
	ProfileName string
}

// hetznerContext deliberately omits the API token: provider
// credentials reach the provisioner through its process environment,
// never through a rendered artifact.
type hetznerContext struct {
	Location   string
	ServerType string
	Image      string
}

type databaseContext struct {
	Driver   string
	IsSqlite bool
	IsMysql  bool
	Host     string
	Port     int
	User     string
	Password string
}

type httpAPIContext struct {
	BindAddress string
	AdminToken  string
	TLS         bool
}

type healthCheckAPIContext struct {
	BindAddress string
}

type trackerContext struct {
	Database       databaseContext
	UDPTrackers    []string
	HTTPTrackers   []string
	HTTPAPI        *httpAPIContext
	HealthCheckAPI *healthCheckAPIContext
}

type prometheusContext struct {
	ScrapeIntervalSecs int
}

type grafanaContext struct {
	AdminUser     string
	AdminPassword string
	TLS           bool
}

type backupContext struct {
	CronSchedule  string
	RetentionDays int
}

type tlsContext struct {
	AdminEmail string
	Domains    []string
}

// NewContext flattens a validated EnvironmentConfig and an instance
// address into the template-facing Context. Secrets are exposed in
// plaintext here deliberately: this value is consumed only in memory,
// by text/template, to produce artifacts that the provisioning target
// itself needs the plaintext for (e.g. a database password in a
// compose .env file).
func NewContext(cfg *envconfig.EnvironmentConfig, instanceIP string) Context {
	c := Context{
		Environment:  cfg.Name.String(),
		Description:  cfg.Description,
		InstanceIP:   instanceIP,
		ProviderKind: string(cfg.Provider.Kind),
	}
	if cfg.InstanceName != nil {
		c.InstanceName = cfg.InstanceName.String()
	}
	if cfg.SSH != nil {
		c.SSHUsername = cfg.SSH.Username
		c.SSHPort = cfg.SSH.Port
		c.SSHPrivateKey = cfg.SSH.PrivateKeyPath
		c.SSHPublicKey = cfg.SSH.PublicKeyPath
	}

	if cfg.Provider.Lxd != nil {
		c.Lxd = &lxdContext{ProfileName: cfg.Provider.Lxd.ProfileName}
	}
	if cfg.Provider.Hetzner != nil {
		c.Hetzner = &hetznerContext{
			Location:   cfg.Provider.Hetzner.Location,
			ServerType: cfg.Provider.Hetzner.ServerType,
			Image:      cfg.Provider.Hetzner.Image,
		}
	}

	db := databaseContext{
		Driver:   string(cfg.Tracker.Database.Driver),
		IsSqlite: cfg.Tracker.Database.Driver == envconfig.DriverSqlite3,
		IsMysql:  cfg.Tracker.Database.Driver == envconfig.DriverMysql,
		Host:     cfg.Tracker.Database.Host,
		Port:     cfg.Tracker.Database.Port,
		User:     cfg.Tracker.Database.User,
	}
	if cfg.Tracker.Database.Password != nil {
		db.Password = cfg.Tracker.Database.Password.ExposeString()
	}
	c.Tracker = trackerContext{
		Database:     db,
		UDPTrackers:  cfg.Tracker.UDPTrackers,
		HTTPTrackers: cfg.Tracker.HTTPTrackers,
	}
	if cfg.Tracker.HTTPAPI != nil {
		h := &httpAPIContext{
			BindAddress: cfg.Tracker.HTTPAPI.BindAddress,
			TLS:         cfg.Tracker.HTTPAPI.TLS,
		}
		if cfg.Tracker.HTTPAPI.AdminToken != nil {
			h.AdminToken = cfg.Tracker.HTTPAPI.AdminToken.ExposeString()
		}
		c.Tracker.HTTPAPI = h
	}
	if cfg.Tracker.HealthCheckAPI != nil {
		c.Tracker.HealthCheckAPI = &healthCheckAPIContext{BindAddress: cfg.Tracker.HealthCheckAPI.BindAddress}
	}

	if cfg.Prometheus != nil {
		c.Prometheus = &prometheusContext{ScrapeIntervalSecs: cfg.Prometheus.ScrapeIntervalSecs}
	}
	if cfg.Grafana != nil {
		g := &grafanaContext{AdminUser: cfg.Grafana.AdminUser, TLS: cfg.Grafana.TLS}
		if cfg.Grafana.AdminPassword != nil {
			g.AdminPassword = cfg.Grafana.AdminPassword.ExposeString()
		}
		c.Grafana = g
	}
	if cfg.Backup != nil {
		c.Backup = &backupContext{CronSchedule: cfg.Backup.CronSchedule, RetentionDays: cfg.Backup.RetentionDays}
	}
	if cfg.TLS != nil {
		var domains []string
		if c.Tracker.HTTPAPI != nil && c.Tracker.HTTPAPI.TLS {
			domains = append(domains, c.Environment+"-api")
		}
		if c.Grafana != nil && c.Grafana.TLS {
			domains = append(domains, c.Environment+"-grafana")
		}
		c.TLS = &tlsContext{AdminEmail: cfg.TLS.AdminEmail, Domains: domains}
	}

	c.Labels = sortedLabels(cfg.Labels)
	return c
}

// WantsCaddy reports whether any service requests TLS termination.
func (c Context) WantsCaddy() bool { return c.TLS != nil }

// WantsBackup reports whether a backup schedule was configured.
func (c Context) WantsBackup() bool { return c.Backup != nil }

func sortedLabels(m map[string]string) []label {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]label, 0, len(keys))
	for _, k := range keys {
		out = append(out, label{Key: k, Value: m[k]})
	}
	return out
}
