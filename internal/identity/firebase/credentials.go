package firebase

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// storedCredentials is what survives a restart. Only the refresh token is
// kept; ID tokens are short-lived and re-minted on restore.
type storedCredentials struct {
	RefreshToken string `yaml:"refresh_token"`
	Email        string `yaml:"email,omitempty"`
}

type credentialFile struct {
	path string
}

// Load returns nil, nil when nothing is persisted.
func (f *credentialFile) Load() (*storedCredentials, error) {
	if f.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c storedCredentials
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	return &c, nil
}

func (f *credentialFile) Save(c storedCredentials) error {
	if f.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *credentialFile) Remove() error {
	if f.path == "" {
		return nil
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
