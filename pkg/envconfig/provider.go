package envconfig

import (
	"regexp"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
	"github.com/cuemby/tracker-deployer/pkg/secret"
)

// ProviderKind discriminates the two supported provisioning backends.
type ProviderKind string

const (
	ProviderLxd     ProviderKind = "lxd"
	ProviderHetzner ProviderKind = "hetzner"
)

var profileNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,62}$`)

// LxdOptions configures the local-VM provider.
type LxdOptions struct {
	ProfileName string `yaml:"profile_name"`
}

// HetznerOptions configures the cloud provider.
type HetznerOptions struct {
	APIToken   *secret.Value `yaml:"api_token"`
	Location   string        `yaml:"location"`
	ServerType string        `yaml:"server_type"`
	Image      string        `yaml:"image"`
}

// Provider is a closed, tagged variant: exactly one of Lxd or Hetzner
// is populated, selected by Kind.
type Provider struct {
	Kind    ProviderKind    `yaml:"kind"`
	Lxd     *LxdOptions     `yaml:"lxd,omitempty"`
	Hetzner *HetznerOptions `yaml:"hetzner,omitempty"`
}

func (p Provider) validate() error {
	switch p.Kind {
	case ProviderLxd:
		if p.Lxd == nil {
			return deployerr.Validation("provider.lxd", "lxd provider requires an lxd section")
		}
		if p.Hetzner != nil {
			return deployerr.Validation("provider.hetzner", "hetzner section must be absent for the lxd provider")
		}
		if !profileNameRe.MatchString(p.Lxd.ProfileName) {
			return deployerr.Validation("provider.lxd.profile_name", "must be 1-63 characters of letters, digits, underscore, or hyphen")
		}
		return nil

	case ProviderHetzner:
		if p.Hetzner == nil {
			return deployerr.Validation("provider.hetzner", "hetzner provider requires a hetzner section")
		}
		if p.Lxd != nil {
			return deployerr.Validation("provider.lxd", "lxd section must be absent for the hetzner provider")
		}
		if p.Hetzner.APIToken == nil {
			return deployerr.Validation("provider.hetzner.api_token", "is required")
		}
		if p.Hetzner.Location == "" {
			return deployerr.Validation("provider.hetzner.location", "is required")
		}
		if p.Hetzner.ServerType == "" {
			return deployerr.Validation("provider.hetzner.server_type", "is required")
		}
		if p.Hetzner.Image == "" {
			return deployerr.Validation("provider.hetzner.image", "is required")
		}
		return nil

	default:
		return deployerr.Validation("provider.kind", "must be \"lxd\" or \"hetzner\"")
	}
}
