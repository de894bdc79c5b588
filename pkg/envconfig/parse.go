package envconfig

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
	"github.com/cuemby/tracker-deployer/pkg/secret"
	"github.com/cuemby/tracker-deployer/pkg/sshkey"
	"github.com/cuemby/tracker-deployer/pkg/value"
)

// document mirrors the config file's top-level YAML shape. It
// exists only as a decode target; Parse converts it into a validated
// EnvironmentConfig.
type document struct {
	Environment    string              `yaml:"environment"`
	InstanceName   string              `yaml:"instance_name"`
	Description    string              `yaml:"description"`
	SSHCredentials rawSSHCredentials   `yaml:"ssh_credentials"`
	Provider       Provider            `yaml:"provider"`
	Tracker        TrackerConfig       `yaml:"tracker"`
	Prometheus     *PrometheusConfig   `yaml:"prometheus"`
	Grafana        *GrafanaConfig      `yaml:"grafana"`
	Backup         *BackupConfig       `yaml:"backup"`
	TLS            *TLSConfig          `yaml:"https"`
	Labels         map[string]string   `yaml:"labels"`
}

// rawSSHCredentials decodes the ssh_credentials section before it is
// handed to sshkey.New, which performs the path existence checks that
// a bare struct decode would skip.
type rawSSHCredentials struct {
	PrivateKeyPath string `yaml:"private_key_path"`
	PublicKeyPath  string `yaml:"public_key_path"`
	Username       string `yaml:"username"`
	Port           int    `yaml:"port"`
}

// Parse strictly decodes a YAML document into a validated
// EnvironmentConfig. Unknown keys at any depth are rejected.
func Parse(r io.Reader) (*EnvironmentConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, deployerr.Corrupt("environment config", err.Error())
	}

	name, err := value.NewEnvironmentName(doc.Environment)
	if err != nil {
		return nil, deployerr.Validation("environment", err.Error())
	}

	var instanceName *value.InstanceName
	if doc.InstanceName != "" {
		in, err := value.NewInstanceName(doc.InstanceName)
		if err != nil {
			return nil, deployerr.Validation("instance_name", err.Error())
		}
		instanceName = &in
	}

	creds, err := sshkey.New(doc.SSHCredentials.PrivateKeyPath, doc.SSHCredentials.PublicKeyPath, doc.SSHCredentials.Username, doc.SSHCredentials.Port)
	if err != nil {
		return nil, deployerr.Validation("ssh_credentials", err.Error())
	}

	if doc.Provider.Kind == ProviderHetzner && doc.Provider.Hetzner != nil {
		doc.Provider.Hetzner.APIToken = doc.Provider.Hetzner.APIToken.WithKind(secret.KindAPIToken)
	}
	if doc.Tracker.Database.Password != nil {
		doc.Tracker.Database.Password = doc.Tracker.Database.Password.WithKind(secret.KindPassword)
	}
	if doc.Tracker.HTTPAPI != nil && doc.Tracker.HTTPAPI.AdminToken != nil {
		doc.Tracker.HTTPAPI.AdminToken = doc.Tracker.HTTPAPI.AdminToken.WithKind(secret.KindAPIToken)
	}
	if doc.Grafana != nil && doc.Grafana.AdminPassword != nil {
		doc.Grafana.AdminPassword = doc.Grafana.AdminPassword.WithKind(secret.KindPassword)
	}

	cfg := &EnvironmentConfig{
		Name:         name,
		InstanceName: instanceName,
		Description:  doc.Description,
		SSH:          creds,
		Provider:     doc.Provider,
		Tracker:      doc.Tracker,
		Prometheus:   doc.Prometheus,
		Grafana:      doc.Grafana,
		Backup:       doc.Backup,
		TLS:          doc.TLS,
		Labels:       doc.Labels,
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseBytes is a convenience wrapper around Parse for in-memory
// documents (tests, rendered fixtures).
func ParseBytes(b []byte) (*EnvironmentConfig, error) {
	return Parse(bytes.NewReader(b))
}
