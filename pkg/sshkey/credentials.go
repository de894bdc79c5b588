package sshkey

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/ssh"
)

const (
	DefaultUsername = "torrust"
	DefaultPort     = 22
)

// Credentials describes the SSH key pair and connection defaults used
// to reach a provisioned instance.
type Credentials struct {
	PrivateKeyPath string `yaml:"private_key_path"`
	PublicKeyPath  string `yaml:"public_key_path"`
	Username       string `yaml:"username"`
	Port           int    `yaml:"port"`

	once      sync.Once
	validated error
}

// New builds Credentials, applying the default username and port, and
// checking that the private key path exists and is readable. It does
// not yet parse either key; that happens lazily in Validate.
func New(privateKeyPath, publicKeyPath, username string, port int) (*Credentials, error) {
	if !filepath.IsAbs(privateKeyPath) {
		return nil, fmt.Errorf("sshkey: private key path %q must be absolute", privateKeyPath)
	}
	if !filepath.IsAbs(publicKeyPath) {
		return nil, fmt.Errorf("sshkey: public key path %q must be absolute", publicKeyPath)
	}

	info, err := os.Stat(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sshkey: private key %q: %w", privateKeyPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("sshkey: private key %q is a directory", privateKeyPath)
	}
	if f, err := os.Open(privateKeyPath); err != nil {
		return nil, fmt.Errorf("sshkey: private key %q is not readable: %w", privateKeyPath, err)
	} else {
		f.Close()
	}

	if username == "" {
		username = DefaultUsername
	}
	if port == 0 {
		port = DefaultPort
	}

	return &Credentials{
		PrivateKeyPath: privateKeyPath,
		PublicKeyPath:  publicKeyPath,
		Username:       username,
		Port:           port,
	}, nil
}

// Validate parses both key files and confirms they form a matching
// pair, at the cryptographic level, memoizing the result so repeated
// calls (e.g. across retry attempts) don't re-parse the files.
func (c *Credentials) Validate() error {
	c.once.Do(func() {
		c.validated = c.validatePair()
	})
	return c.validated
}

func (c *Credentials) validatePair() error {
	privPEM, err := os.ReadFile(c.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("sshkey: read private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(privPEM)
	if err != nil {
		return fmt.Errorf("sshkey: parse private key: %w", err)
	}

	pubRaw, err := os.ReadFile(c.PublicKeyPath)
	if err != nil {
		return fmt.Errorf("sshkey: read public key: %w", err)
	}
	pubKey, _, _, _, err := ssh.ParseAuthorizedKey(pubRaw)
	if err != nil {
		return fmt.Errorf("sshkey: parse public key: %w", err)
	}

	if !bytes.Equal(signer.PublicKey().Marshal(), pubKey.Marshal()) {
		return fmt.Errorf("sshkey: %s and %s do not form a matching key pair", c.PrivateKeyPath, c.PublicKeyPath)
	}
	return nil
}
