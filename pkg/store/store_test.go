package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cuemby/tracker-deployer/pkg/envconfig"
	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/secret"
	"github.com/cuemby/tracker-deployer/pkg/sshkey"
	"github.com/cuemby/tracker-deployer/pkg/value"
)

func testConfig(t *testing.T) *envconfig.EnvironmentConfig {
	t.Helper()
	name, err := value.NewEnvironmentName("e2e-min")
	if err != nil {
		t.Fatal(err)
	}
	return &envconfig.EnvironmentConfig{
		Name: name,
		SSH: &sshkey.Credentials{
			PrivateKeyPath: "/tmp/id_ed25519",
			PublicKeyPath:  "/tmp/id_ed25519.pub",
			Username:       "torrust",
			Port:           22,
		},
		Provider: envconfig.Provider{
			Kind: envconfig.ProviderHetzner,
			Hetzner: &envconfig.HetznerOptions{
				APIToken:   secret.NewString(secret.KindAPIToken, "super-secret-token"),
				Location:   "fsn1",
				ServerType: "cx22",
				Image:      "ubuntu-24.04",
			},
		},
		Tracker: envconfig.TrackerConfig{
			Database: envconfig.DatabaseConfig{
				Driver: envconfig.DriverSqlite3,
			},
			UDPTrackers: []string{"0.0.0.0:6969"},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "data"))

	cfg := testConfig(t)
	rec := Record{
		Config:    cfg,
		State:     envstate.Created(),
		CreatedAt: time.Unix(1700000000, 0).UTC(),
		UpdatedAt: time.Unix(1700000000, 0).UTC(),
		DataDir:   "data/e2e-min",
		BuildDir:  "build/e2e-min",
	}

	if err := s.Save(rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !s.Exists("e2e-min") {
		t.Fatal("expected record to exist after Save")
	}

	loaded, err := s.Load("e2e-min")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Config.Name != cfg.Name {
		t.Errorf("name mismatch: got %q want %q", loaded.Config.Name, cfg.Name)
	}
	if loaded.State.Phase != envstate.PhaseCreated {
		t.Errorf("expected Created phase, got %v", loaded.State.Phase)
	}
	if loaded.Config.Provider.Hetzner.APIToken.ExposeString() != "super-secret-token" {
		t.Errorf("secret did not round-trip through the seal/open cycle")
	}
}

func TestLoadMissingIsNotFound(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Load("nope"); err == nil {
		t.Fatal("expected an error for a missing record")
	}
}

func TestSecretNeverHitsDiskInPlaintext(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "data"))
	cfg := testConfig(t)

	if err := s.Save(Record{Config: cfg, State: envstate.Created(), DataDir: "d", BuildDir: "b"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(s.recordPath("e2e-min"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "super-secret-token") {
		t.Fatal("plaintext secret leaked into the persisted record")
	}
}

func TestListSkipsDirectoriesWithoutARecord(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	cfg := testConfig(t)

	if err := s.Save(Record{Config: cfg, State: envstate.Created(), DataDir: "d", BuildDir: "b"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "stray"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "e2e-min" {
		t.Fatalf("expected only [e2e-min], got %v", names)
	}
}

func TestWithLockSerializesAndTimesOut(t *testing.T) {
	s := New(t.TempDir())

	release := make(chan struct{})
	entered := make(chan struct{})
	go func() {
		_ = s.WithLock("e2e-conc", 2*time.Second, func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	err := s.WithLock("e2e-conc", 50*time.Millisecond, func() error {
		t.Fatal("should not have acquired a held lock")
		return nil
	})
	if err == nil {
		t.Fatal("expected Busy error while the lock is held")
	}

	close(release)
}
