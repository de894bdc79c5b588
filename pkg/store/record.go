package store

import (
	"time"

	"github.com/cuemby/tracker-deployer/pkg/envconfig"
	"github.com/cuemby/tracker-deployer/pkg/envstate"
)

// SchemaVersion is written to every record and checked on load so a
// future incompatible format change fails loudly instead of silently
// misreading an old record.
const SchemaVersion = 1

// Record is the durable on-disk representation of one environment.
type Record struct {
	Config    *envconfig.EnvironmentConfig
	State     envstate.State
	CreatedAt time.Time
	UpdatedAt time.Time
	DataDir   string
	BuildDir  string
}

// Touch returns a copy of the record with State replaced and
// UpdatedAt advanced. CreatedAt and every other field are preserved.
func (r Record) Touch(next envstate.State, now time.Time) Record {
	r.State = next
	r.UpdatedAt = now
	return r
}
