package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/secret"
)

const (
	recordFileName = "environment.json"
	lockFileName   = ".lock"
	sealKeyName    = ".sealkey"

	// DefaultLockTimeout is the lock-acquisition deadline applied when
	// a caller does not request a different one.
	DefaultLockTimeout = 30 * time.Second

	lockPollInterval = 25 * time.Millisecond
)

// Store persists environment records under a data directory, one
// subdirectory per environment.
type Store struct {
	DataRoot string

	// LockWaitObserver, when set, receives how long each WithLock
	// call waited before acquiring the advisory lock.
	LockWaitObserver func(time.Duration)
}

// New builds a Store rooted at dataRoot (typically "./data").
func New(dataRoot string) *Store {
	return &Store{DataRoot: dataRoot}
}

func (s *Store) envDir(name string) string      { return filepath.Join(s.DataRoot, name) }
func (s *Store) recordPath(name string) string  { return filepath.Join(s.envDir(name), recordFileName) }
func (s *Store) lockPath(name string) string    { return filepath.Join(s.envDir(name), lockFileName) }
func (s *Store) sealKeyPath(name string) string { return filepath.Join(s.envDir(name), sealKeyName) }

// EnvDir returns the per-environment directory a caller can use to
// derive sibling paths (e.g. handler.Create's data_dir).
func (s *Store) EnvDir(name string) string { return s.envDir(name) }

// Exists reports whether a record file exists for name.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.recordPath(name))
	return err == nil
}

type diskRecord struct {
	SchemaVersion int            `yaml:"schema_version"`
	Config        diskConfig     `yaml:"config"`
	State         envstate.State `yaml:"state"`
	CreatedAt     time.Time      `yaml:"created_at"`
	UpdatedAt     time.Time      `yaml:"updated_at"`
	DataDir       string         `yaml:"data_dir"`
	BuildDir      string         `yaml:"build_dir"`
}

// Load reads and decrypts the record for name.
func (s *Store) Load(name string) (*Record, error) {
	path := s.recordPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, deployerr.NotFound(name)
		}
		return nil, deployerr.Io(path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var disk diskRecord
	if err := dec.Decode(&disk); err != nil {
		return nil, deployerr.Corrupt("environment record", err.Error())
	}
	if disk.SchemaVersion != SchemaVersion {
		return nil, deployerr.Corrupt("environment record", fmt.Sprintf("unsupported schema_version %d", disk.SchemaVersion))
	}

	sealer, err := s.sealer(name)
	if err != nil {
		return nil, err
	}
	cfg, err := unsealConfig(disk.Config, sealer)
	if err != nil {
		return nil, deployerr.Corrupt("environment record", err.Error())
	}

	return &Record{
		Config:    cfg,
		State:     disk.State,
		CreatedAt: disk.CreatedAt,
		UpdatedAt: disk.UpdatedAt,
		DataDir:   disk.DataDir,
		BuildDir:  disk.BuildDir,
	}, nil
}

// Save atomically replaces the record for its Config.Name: write to a
// temp file in the same directory, fsync, then rename.
func (s *Store) Save(r Record) error {
	name := r.Config.Name.String()
	if err := os.MkdirAll(s.envDir(name), 0o755); err != nil {
		return deployerr.Io(s.envDir(name), err)
	}

	sealer, err := s.sealer(name)
	if err != nil {
		return err
	}
	sealedCfg, err := sealConfig(r.Config, sealer)
	if err != nil {
		return deployerr.Io(s.recordPath(name), err)
	}

	disk := diskRecord{
		SchemaVersion: SchemaVersion,
		Config:        sealedCfg,
		State:         r.State,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		DataDir:       r.DataDir,
		BuildDir:      r.BuildDir,
	}

	out, err := yaml.Marshal(disk)
	if err != nil {
		return deployerr.Io(s.recordPath(name), err)
	}

	return atomicWrite(s.recordPath(name), out)
}

// Delete removes only the record file; callers own data_dir/build_dir
// cleanup (purge does both, see pkg/handler).
func (s *Store) Delete(name string) error {
	path := s.recordPath(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return deployerr.Io(path, err)
	}
	return nil
}

// List enumerates the names of every environment with a record on
// disk, skipping non-conforming entries.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.DataRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, deployerr.Io(s.DataRoot, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.DataRoot, e.Name(), recordFileName)); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// WithLock runs fn while holding an exclusive advisory lock on
// name's data directory, failing with deployerr.Busy if the lock is
// not acquired within timeout. The lock is released on every exit
// path, including a panic inside fn.
func (s *Store) WithLock(name string, timeout time.Duration, fn func() error) error {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	if err := os.MkdirAll(s.envDir(name), 0o755); err != nil {
		return deployerr.Io(s.envDir(name), err)
	}

	fl := flock.New(s.lockPath(name))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	waitStart := time.Now()
	locked, err := fl.TryLockContext(ctx, lockPollInterval)
	if err != nil || !locked {
		return deployerr.Busy(timeout)
	}
	if s.LockWaitObserver != nil {
		s.LockWaitObserver(time.Since(waitStart))
	}
	defer fl.Unlock()

	return fn()
}

func (s *Store) sealer(name string) (*secret.Sealer, error) {
	key, err := secret.LoadOrCreateKey(s.sealKeyPath(name))
	if err != nil {
		return nil, deployerr.Io(s.sealKeyPath(name), err)
	}
	return secret.NewSealer(key)
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return deployerr.Io(path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return deployerr.Io(path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return deployerr.Io(path, err)
	}
	if err := tmp.Close(); err != nil {
		return deployerr.Io(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return deployerr.Io(path, err)
	}
	return nil
}
