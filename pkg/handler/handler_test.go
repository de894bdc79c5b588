package handler

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cuemby/tracker-deployer/pkg/deployerr"
	"github.com/cuemby/tracker-deployer/pkg/envconfig"
	"github.com/cuemby/tracker-deployer/pkg/envstate"
	"github.com/cuemby/tracker-deployer/pkg/progress"
	"github.com/cuemby/tracker-deployer/pkg/retry"
	"github.com/cuemby/tracker-deployer/pkg/sshkey"
	"github.com/cuemby/tracker-deployer/pkg/store"
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
			Kind: envconfig.ProviderLxd,
			Lxd:  &envconfig.LxdOptions{ProfileName: "torrust-profile-e2e-min"},
		},
		Tracker: envconfig.TrackerConfig{
			Database:    envconfig.DatabaseConfig{Driver: envconfig.DriverSqlite3},
			UDPTrackers: []string{"0.0.0.0:6969"},
		},
	}
}

func newTestHandlers(t *testing.T) (*Handlers, *fakeProvisioner, *fakeConfigurator, *fakeOrchestrator, *fakeTransporter) {
	t.Helper()
	dir := t.TempDir()
	s := store.New(filepath.Join(dir, "data"))
	prov := &fakeProvisioner{instanceIP: "10.0.0.5"}
	conf := &fakeConfigurator{}
	orch := &fakeOrchestrator{}
	trans := &fakeTransporter{}

	h := New(s, prov, conf, orch, trans, filepath.Join(dir, "build"))
	h.LockTimeout = time.Second
	h.Retry = retry.Policy{Initial: time.Millisecond, Cap: time.Millisecond, Timeout: 20 * time.Millisecond}
	return h, prov, conf, orch, trans
}

func mustCreate(t *testing.T, h *Handlers, cfg *envconfig.EnvironmentConfig) store.Record {
	t.Helper()
	rec, err := h.Create(cfg, progress.Silent{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return rec
}

func sysErrKind(t *testing.T, err error) deployerr.Kind {
	t.Helper()
	var sysErr *deployerr.SystemError
	if !errors.As(err, &sysErr) {
		t.Fatalf("expected a SystemError, got %v", err)
	}
	return sysErr.Kind
}

func TestCreateThenShowAndList(t *testing.T) {
	h, _, _, _, _ := newTestHandlers(t)
	cfg := testConfig(t)

	mustCreate(t, h, cfg)

	rec, err := h.Show("e2e-min")
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	if rec.State.Phase != envstate.PhaseCreated {
		t.Errorf("expected Created, got %v", rec.State.Phase)
	}

	names, err := h.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "e2e-min" {
		t.Fatalf("expected [e2e-min], got %v", names)
	}
}

func TestCreateRejectsExistingRecord(t *testing.T) {
	h, _, _, _, _ := newTestHandlers(t)
	cfg := testConfig(t)
	mustCreate(t, h, cfg)

	if _, err := h.Create(cfg, progress.Silent{}); err == nil {
		t.Fatal("expected an error creating a record that already exists")
	} else if kind := sysErrKind(t, err); kind != deployerr.KindInvalidState {
		t.Errorf("expected InvalidState, got %v", kind)
	}
}

func TestProvisionRejectsWrongPrecondition(t *testing.T) {
	h, _, _, _, _ := newTestHandlers(t)
	cfg := testConfig(t)
	rec := mustCreate(t, h, cfg)

	// force the record into a state where Provisioning's precondition
	// (Created, Provisioned, or Failed(prior=Provisioning)) does not hold.
	rec = rec.Touch(envstate.State{Phase: envstate.PhaseConfigured}, time.Now())
	if err := h.Store.Save(rec); err != nil {
		t.Fatal(err)
	}

	err := h.Provision(context.Background(), "e2e-min", progress.Silent{})
	if err == nil {
		t.Fatal("expected a precondition error")
	}
	if kind := sysErrKind(t, err); kind != deployerr.KindInvalidState {
		t.Errorf("expected InvalidState, got %v", kind)
	}
}

func TestProvisionPersistsFailedOnDriverError(t *testing.T) {
	h, prov, _, _, _ := newTestHandlers(t)
	prov.provisionErr = errBoom
	cfg := testConfig(t)
	mustCreate(t, h, cfg)

	err := h.Provision(context.Background(), "e2e-min", progress.Silent{})
	if err == nil {
		t.Fatal("expected the provisioner error to propagate")
	}

	rec, loadErr := h.Store.Load("e2e-min")
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if rec.State.Phase != envstate.PhaseFailed {
		t.Fatalf("expected Failed, got %v", rec.State.Phase)
	}
	if rec.State.PriorState != envstate.PhaseProvisioning {
		t.Errorf("expected prior_state Provisioning, got %v", rec.State.PriorState)
	}
}

func TestProvisionResumesFromMatchingFailure(t *testing.T) {
	h, prov, _, _, _ := newTestHandlers(t)
	cfg := testConfig(t)
	mustCreate(t, h, cfg)

	loaded, err := h.Store.Load("e2e-min")
	if err != nil {
		t.Fatal(err)
	}
	rec := loaded.Touch(loaded.State.Failed(envstate.PhaseProvisioning, "driver crashed"), time.Now())
	if err := h.Store.Save(rec); err != nil {
		t.Fatal(err)
	}

	// The SSH-reachability / cloud-init probes would dial a real
	// network target this test doesn't have; a tiny retry deadline
	// keeps the call fast and we only assert it gets past the
	// precondition check and re-invokes the provisioner.
	_ = h.Provision(context.Background(), "e2e-min", progress.Silent{})
	if prov.provisions != 1 {
		t.Errorf("expected the provisioner to be re-invoked once, got %d", prov.provisions)
	}
}

func TestProvisionSkipsApplyWhenInstanceStillAnswers(t *testing.T) {
	h, prov, _, _, _ := newTestHandlers(t)
	cfg := testConfig(t)
	mustCreate(t, h, cfg)

	// Stand in for the instance's SSH port with a local listener so
	// the skip-the-apply probe sees a reachable instance.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	loaded, err := h.Store.Load("e2e-min")
	if err != nil {
		t.Fatal(err)
	}
	loaded.Config.SSH.Port = port
	rec := loaded.Touch(envstate.Provisioned("127.0.0.1", envstate.SSHConnection{
		Host: "127.0.0.1", Port: port, Username: "torrust", PrivateKeyPath: "/tmp/id_ed25519",
	}), time.Now())
	if err := h.Store.Save(rec); err != nil {
		t.Fatal(err)
	}

	// The cloud-init probe still shells out to a real ssh client this
	// test doesn't have, so the call is allowed to fail overall; the
	// assertion is only that the mutating apply was skipped.
	_ = h.Provision(context.Background(), "e2e-min", progress.Silent{})
	if prov.provisions != 0 {
		t.Errorf("expected the apply to be skipped for a reachable instance, got %d invocations", prov.provisions)
	}
}

func TestConfigureRejectsWrongPrecondition(t *testing.T) {
	h, _, _, _, _ := newTestHandlers(t)
	cfg := testConfig(t)
	mustCreate(t, h, cfg) // still Created, not Provisioned

	err := h.Configure(context.Background(), "e2e-min", progress.Silent{})
	if err == nil {
		t.Fatal("expected a precondition error")
	}
	if kind := sysErrKind(t, err); kind != deployerr.KindInvalidState {
		t.Errorf("expected InvalidState, got %v", kind)
	}
}

func TestReleasePropagatesTransporterError(t *testing.T) {
	h, _, _, _, trans := newTestHandlers(t)
	trans.err = errBoom
	cfg := testConfig(t)
	mustCreate(t, h, cfg)

	loaded, err := h.Store.Load("e2e-min")
	if err != nil {
		t.Fatal(err)
	}
	rec := loaded.Touch(envstate.Provisioned("10.0.0.5", envstate.SSHConnection{
		Host: "10.0.0.5", Port: 22, Username: "torrust", PrivateKeyPath: "/tmp/id_ed25519",
	}), time.Now())
	rec = rec.Touch(rec.State.Configured(), time.Now())
	if err := h.Store.Save(rec); err != nil {
		t.Fatal(err)
	}

	err = h.Release(context.Background(), "e2e-min", progress.Silent{})
	if err == nil {
		t.Fatal("expected the transporter error to propagate")
	}

	loaded, loadErr := h.Store.Load("e2e-min")
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if loaded.State.Phase != envstate.PhaseFailed || loaded.State.PriorState != envstate.PhaseReleasing {
		t.Fatalf("expected Failed(prior=releasing), got %v", loaded.State)
	}
}

func TestDestroyThenPurgeAfterFailedProvision(t *testing.T) {
	h, prov, _, _, _ := newTestHandlers(t)
	prov.provisionErr = errBoom
	cfg := testConfig(t)
	mustCreate(t, h, cfg)

	if err := h.Provision(context.Background(), "e2e-min", progress.Silent{}); err == nil {
		t.Fatal("expected the interrupted provision to fail")
	}

	// The interrupted provision may have partially created a VM, so
	// destroy must accept the Failed(prior=provisioning) record.
	if err := h.Destroy(context.Background(), "e2e-min", progress.Silent{}); err != nil {
		t.Fatalf("Destroy after a failed provision: %v", err)
	}
	rec, err := h.Store.Load("e2e-min")
	if err != nil {
		t.Fatal(err)
	}
	if rec.State.Phase != envstate.PhaseDestroyed {
		t.Fatalf("expected Destroyed, got %v", rec.State.Phase)
	}

	if err := h.Purge("e2e-min", progress.Silent{}); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if h.Store.Exists("e2e-min") {
		t.Error("expected no record after purge")
	}
}

func TestDestroyNoopWhenAlreadyDestroyed(t *testing.T) {
	h, prov, _, _, _ := newTestHandlers(t)
	cfg := testConfig(t)
	mustCreate(t, h, cfg)

	loaded, err := h.Store.Load("e2e-min")
	if err != nil {
		t.Fatal(err)
	}
	rec := loaded.Touch(envstate.Destroyed(), time.Now())
	if err := h.Store.Save(rec); err != nil {
		t.Fatal(err)
	}

	if err := h.Destroy(context.Background(), "e2e-min", progress.Silent{}); err != nil {
		t.Fatalf("Destroy on an already-destroyed record should be a no-op success, got %v", err)
	}
	if prov.destroys != 0 {
		t.Errorf("expected no driver invocation for an already-destroyed record, got %d", prov.destroys)
	}
}

func TestDestroyRejectsWithoutInstance(t *testing.T) {
	h, _, _, _, _ := newTestHandlers(t)
	cfg := testConfig(t)
	mustCreate(t, h, cfg) // Created: no instance ever provisioned

	err := h.Destroy(context.Background(), "e2e-min", progress.Silent{})
	if err == nil {
		t.Fatal("expected an error destroying an environment with no instance")
	}
	if kind := sysErrKind(t, err); kind != deployerr.KindInvalidState {
		t.Errorf("expected InvalidState, got %v", kind)
	}
}

func TestPurgeRejectsWhenNotDestroyed(t *testing.T) {
	h, _, _, _, _ := newTestHandlers(t)
	cfg := testConfig(t)
	mustCreate(t, h, cfg)

	err := h.Purge("e2e-min", progress.Silent{})
	if err == nil {
		t.Fatal("expected an error purging a non-Destroyed record")
	}
	if kind := sysErrKind(t, err); kind != deployerr.KindInvalidState {
		t.Errorf("expected InvalidState, got %v", kind)
	}
}

func TestPurgeRemovesEverythingAfterDestroyed(t *testing.T) {
	h, _, _, _, _ := newTestHandlers(t)
	cfg := testConfig(t)
	mustCreate(t, h, cfg)

	loaded, err := h.Store.Load("e2e-min")
	if err != nil {
		t.Fatal(err)
	}
	rec := loaded.Touch(envstate.Destroyed(), time.Now())
	if err := h.Store.Save(rec); err != nil {
		t.Fatal(err)
	}

	if err := h.Purge("e2e-min", progress.Silent{}); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if h.Store.Exists("e2e-min") {
		t.Error("expected the record to be gone after purge")
	}
}

func TestPurgeIsIdempotentOnAbsentRecord(t *testing.T) {
	h, _, _, _, _ := newTestHandlers(t)
	if err := h.Purge("never-existed", progress.Silent{}); err != nil {
		t.Fatalf("Purge on an absent record should succeed, got %v", err)
	}
}

func TestTestRejectsWhenNotRunning(t *testing.T) {
	h, _, _, _, _ := newTestHandlers(t)
	cfg := testConfig(t)
	mustCreate(t, h, cfg)

	err := h.Test(context.Background(), "e2e-min", progress.Silent{})
	if err == nil {
		t.Fatal("expected an error running test against a non-Running record")
	}
	if kind := sysErrKind(t, err); kind != deployerr.KindInvalidState {
		t.Errorf("expected InvalidState, got %v", kind)
	}
}

func TestValidateParsesAndChecksConfig(t *testing.T) {
	h, _, _, _, _ := newTestHandlers(t)
	cfg, err := h.Validate(invalidPrometheusDoc(t), false)
	if err == nil {
		t.Fatal("expected a validation error for a non-positive scrape interval")
	}
	_ = cfg
}

// generateSSHKeyPair writes a placeholder private key file under a
// fresh temp dir. sshkey.New only stats the private key path at parse
// time (real cryptographic validation is deferred to Validate, which
// Parse never calls), so the contents don't need to be a real key.
func generateSSHKeyPair(t *testing.T) (privPath, pubPath string) {
	t.Helper()
	dir := t.TempDir()
	privPath = filepath.Join(dir, "id_ed25519")
	pubPath = filepath.Join(dir, "id_ed25519.pub")
	if err := os.WriteFile(privPath, []byte("placeholder"), 0o600); err != nil {
		t.Fatal(err)
	}
	return privPath, pubPath
}

func invalidPrometheusDoc(t *testing.T) []byte {
	t.Helper()
	privPath, pubPath := generateSSHKeyPair(t)
	doc := `
environment: e2e-min
ssh_credentials:
  private_key_path: ` + privPath + `
  public_key_path: ` + pubPath + `
  username: torrust
  port: 22
provider:
  kind: lxd
  lxd:
    profile_name: torrust-profile-e2e-min
tracker:
  database:
    driver: sqlite3
  udp_trackers:
    - "0.0.0.0:6969"
prometheus:
  scrape_interval_secs: 0
`
	return []byte(doc)
}
