package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	APIBase string `json:"api_base"`
	Lang    string `json:"lang"`
}

// Credentials is the stored auth session. Token issuance and refresh
// live with the server; the client only keeps what login returned.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		APIBase: "http://localhost:3000/api",
		Lang:    "es",
	}
}

// Dir returns the state directory holding config.json, credentials.json
// and the offline cache.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("BALLROOM_DIR")); v != "" {
		return v, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(h, ".ballroom-calendar"), nil
}

func StatePath() (string, error) {
	d, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "state.json"), nil
}

func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	d, err := Dir()
	if err != nil {
		return Config{}, err
	}
	p := filepath.Join(d, "config.json")
	if b, err := os.ReadFile(p); err == nil {
		var onDisk Config
		if err := json.Unmarshal(b, &onDisk); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", p, err)
		}
		if strings.TrimSpace(onDisk.APIBase) != "" {
			cfg.APIBase = strings.TrimRight(strings.TrimSpace(onDisk.APIBase), "/")
		}
		if strings.TrimSpace(onDisk.Lang) != "" {
			cfg.Lang = strings.TrimSpace(onDisk.Lang)
		}
	}

	if v := strings.TrimSpace(os.Getenv("BALLROOM_API_BASE")); v != "" {
		cfg.APIBase = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("BALLROOM_LANG")); v != "" {
		cfg.Lang = v
	}

	if cfg.APIBase == "" {
		return Config{}, errors.New("api_base is empty")
	}
	return cfg, nil
}

func LoadCredentials() (Credentials, error) {
	d, err := Dir()
	if err != nil {
		return Credentials{}, err
	}
	b, err := os.ReadFile(filepath.Join(d, "credentials.json"))
	if err != nil {
		return Credentials{}, err
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials: %w", err)
	}
	return c, nil
}

func SaveCredentials(c Credentials) error {
	d, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d, "credentials.json"), b, 0o600)
}

func ClearCredentials() error {
	d, err := Dir()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(d, "credentials.json"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
