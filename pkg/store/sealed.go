package store

import (
	"github.com/cuemby/tracker-deployer/pkg/envconfig"
	"github.com/cuemby/tracker-deployer/pkg/secret"
	"github.com/cuemby/tracker-deployer/pkg/sshkey"
	"github.com/cuemby/tracker-deployer/pkg/value"
)

// The disk* types mirror envconfig's shape field-for-field, except
// every *secret.Value is replaced with a *secret.Envelope. Sealing and
// unsealing a record is purely mechanical: everything but the four
// secret fields is copied across unchanged.

type diskHetznerOptions struct {
	APIToken   *secret.Envelope `yaml:"api_token,omitempty"`
	Location   string           `yaml:"location"`
	ServerType string           `yaml:"server_type"`
	Image      string           `yaml:"image"`
}

type diskProvider struct {
	Kind    envconfig.ProviderKind `yaml:"kind"`
	Lxd     *envconfig.LxdOptions  `yaml:"lxd,omitempty"`
	Hetzner *diskHetznerOptions    `yaml:"hetzner,omitempty"`
}

type diskDatabaseConfig struct {
	Driver   envconfig.DatabaseDriver `yaml:"driver"`
	Host     string                   `yaml:"host,omitempty"`
	Port     int                      `yaml:"port,omitempty"`
	User     string                   `yaml:"user,omitempty"`
	Password *secret.Envelope         `yaml:"password,omitempty"`
}

type diskHTTPAPIConfig struct {
	BindAddress string           `yaml:"bind_address"`
	AdminToken  *secret.Envelope `yaml:"admin_token,omitempty"`
	TLS         bool             `yaml:"tls"`
}

type diskTrackerConfig struct {
	Database       diskDatabaseConfig              `yaml:"database"`
	UDPTrackers    []string                        `yaml:"udp_trackers"`
	HTTPTrackers   []string                        `yaml:"http_trackers"`
	HTTPAPI        *diskHTTPAPIConfig              `yaml:"http_api,omitempty"`
	HealthCheckAPI *envconfig.HealthCheckAPIConfig `yaml:"health_check_api,omitempty"`
}

type diskGrafanaConfig struct {
	AdminUser     string           `yaml:"admin_user"`
	AdminPassword *secret.Envelope `yaml:"admin_password,omitempty"`
	TLS           bool             `yaml:"tls"`
}

type diskConfig struct {
	Name         string                      `yaml:"environment"`
	InstanceName string                      `yaml:"instance_name,omitempty"`
	Description  string                      `yaml:"description,omitempty"`
	SSH          *sshkey.Credentials         `yaml:"ssh_credentials"`
	Provider     diskProvider                `yaml:"provider"`
	Tracker      diskTrackerConfig           `yaml:"tracker"`
	Prometheus   *envconfig.PrometheusConfig `yaml:"prometheus,omitempty"`
	Grafana      *diskGrafanaConfig          `yaml:"grafana,omitempty"`
	Backup       *envconfig.BackupConfig     `yaml:"backup,omitempty"`
	TLS          *envconfig.TLSConfig        `yaml:"https,omitempty"`
	Labels       map[string]string           `yaml:"labels,omitempty"`
}

func sealValue(sealer *secret.Sealer, v *secret.Value) (*secret.Envelope, error) {
	if v == nil {
		return nil, nil
	}
	env, err := sealer.Seal(v)
	if err != nil {
		return nil, err
	}
	return &env, nil
}

func openValue(sealer *secret.Sealer, env *secret.Envelope) (*secret.Value, error) {
	if env == nil {
		return nil, nil
	}
	return sealer.Open(*env)
}

func sealConfig(cfg *envconfig.EnvironmentConfig, sealer *secret.Sealer) (diskConfig, error) {
	var doc diskConfig
	doc.Name = cfg.Name.String()
	if cfg.InstanceName != nil {
		doc.InstanceName = cfg.InstanceName.String()
	}
	doc.Description = cfg.Description
	doc.SSH = cfg.SSH

	doc.Provider.Kind = cfg.Provider.Kind
	doc.Provider.Lxd = cfg.Provider.Lxd
	if cfg.Provider.Hetzner != nil {
		tok, err := sealValue(sealer, cfg.Provider.Hetzner.APIToken)
		if err != nil {
			return diskConfig{}, err
		}
		doc.Provider.Hetzner = &diskHetznerOptions{
			APIToken:   tok,
			Location:   cfg.Provider.Hetzner.Location,
			ServerType: cfg.Provider.Hetzner.ServerType,
			Image:      cfg.Provider.Hetzner.Image,
		}
	}

	pw, err := sealValue(sealer, cfg.Tracker.Database.Password)
	if err != nil {
		return diskConfig{}, err
	}
	doc.Tracker.Database = diskDatabaseConfig{
		Driver:   cfg.Tracker.Database.Driver,
		Host:     cfg.Tracker.Database.Host,
		Port:     cfg.Tracker.Database.Port,
		User:     cfg.Tracker.Database.User,
		Password: pw,
	}
	doc.Tracker.UDPTrackers = cfg.Tracker.UDPTrackers
	doc.Tracker.HTTPTrackers = cfg.Tracker.HTTPTrackers
	doc.Tracker.HealthCheckAPI = cfg.Tracker.HealthCheckAPI
	if cfg.Tracker.HTTPAPI != nil {
		tok, err := sealValue(sealer, cfg.Tracker.HTTPAPI.AdminToken)
		if err != nil {
			return diskConfig{}, err
		}
		doc.Tracker.HTTPAPI = &diskHTTPAPIConfig{
			BindAddress: cfg.Tracker.HTTPAPI.BindAddress,
			AdminToken:  tok,
			TLS:         cfg.Tracker.HTTPAPI.TLS,
		}
	}

	doc.Prometheus = cfg.Prometheus
	if cfg.Grafana != nil {
		pw, err := sealValue(sealer, cfg.Grafana.AdminPassword)
		if err != nil {
			return diskConfig{}, err
		}
		doc.Grafana = &diskGrafanaConfig{
			AdminUser:     cfg.Grafana.AdminUser,
			AdminPassword: pw,
			TLS:           cfg.Grafana.TLS,
		}
	}
	doc.Backup = cfg.Backup
	doc.TLS = cfg.TLS
	doc.Labels = cfg.Labels

	return doc, nil
}

func unsealConfig(doc diskConfig, sealer *secret.Sealer) (*envconfig.EnvironmentConfig, error) {
	name, err := value.NewEnvironmentName(doc.Name)
	if err != nil {
		return nil, err
	}

	var instanceName *value.InstanceName
	if doc.InstanceName != "" {
		in, err := value.NewInstanceName(doc.InstanceName)
		if err != nil {
			return nil, err
		}
		instanceName = &in
	}

	cfg := &envconfig.EnvironmentConfig{
		Name:         name,
		InstanceName: instanceName,
		Description:  doc.Description,
		SSH:          doc.SSH,
		Provider: envconfig.Provider{
			Kind: doc.Provider.Kind,
			Lxd:  doc.Provider.Lxd,
		},
		Prometheus: doc.Prometheus,
		Backup:     doc.Backup,
		TLS:        doc.TLS,
		Labels:     doc.Labels,
	}

	if doc.Provider.Hetzner != nil {
		tok, err := openValue(sealer, doc.Provider.Hetzner.APIToken)
		if err != nil {
			return nil, err
		}
		cfg.Provider.Hetzner = &envconfig.HetznerOptions{
			APIToken:   tok,
			Location:   doc.Provider.Hetzner.Location,
			ServerType: doc.Provider.Hetzner.ServerType,
			Image:      doc.Provider.Hetzner.Image,
		}
	}

	pw, err := openValue(sealer, doc.Tracker.Database.Password)
	if err != nil {
		return nil, err
	}
	cfg.Tracker = envconfig.TrackerConfig{
		Database: envconfig.DatabaseConfig{
			Driver:   doc.Tracker.Database.Driver,
			Host:     doc.Tracker.Database.Host,
			Port:     doc.Tracker.Database.Port,
			User:     doc.Tracker.Database.User,
			Password: pw,
		},
		UDPTrackers:    doc.Tracker.UDPTrackers,
		HTTPTrackers:   doc.Tracker.HTTPTrackers,
		HealthCheckAPI: doc.Tracker.HealthCheckAPI,
	}
	if doc.Tracker.HTTPAPI != nil {
		tok, err := openValue(sealer, doc.Tracker.HTTPAPI.AdminToken)
		if err != nil {
			return nil, err
		}
		cfg.Tracker.HTTPAPI = &envconfig.HTTPAPIConfig{
			BindAddress: doc.Tracker.HTTPAPI.BindAddress,
			AdminToken:  tok,
			TLS:         doc.Tracker.HTTPAPI.TLS,
		}
	}

	if doc.Grafana != nil {
		pw, err := openValue(sealer, doc.Grafana.AdminPassword)
		if err != nil {
			return nil, err
		}
		cfg.Grafana = &envconfig.GrafanaConfig{
			AdminUser:     doc.Grafana.AdminUser,
			AdminPassword: pw,
			TLS:           doc.Grafana.TLS,
		}
	}

	return cfg, nil
}
