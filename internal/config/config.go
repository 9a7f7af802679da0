package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Rorical/RoriReview/internal/review"
)

const (
	DefaultModel         = "gpt-4o-mini"
	DefaultEndpoint      = review.DefaultEndpoint
	DefaultGatewayAddr   = ":8081"
	DefaultUpstream      = "http://localhost:5000/review"
	DefaultAllowedOrigin = "http://localhost:5173"
	DefaultReviewerAddr  = ":5000"
	DefaultLogFile       = "rorireview.log"

	ModeSingle  = "single"
	ModeAgentic = "agentic"
)

type Profile struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model"`
}

// ClientConfig controls the review form.
type ClientConfig struct {
	Endpoint string `json:"endpoint"`
	// DiscardStale drops settlements older than the latest submission
	// instead of letting the last one to settle win.
	DiscardStale bool   `json:"discard_stale"`
	LogFile      string `json:"log_file,omitempty"`
}

type GatewayConfig struct {
	Addr          string `json:"addr"`
	Upstream      string `json:"upstream"`
	AllowedOrigin string `json:"allowed_origin"`
}

type ReviewerConfig struct {
	Addr                string  `json:"addr"`
	Mode                string  `json:"mode"`
	MaxTokens           int     `json:"max_tokens"`
	Temperature         float32 `json:"temperature"`
	AgentTimeoutSeconds int     `json:"agent_timeout_seconds"`
}

type Config struct {
	Profiles       map[string]Profile `json:"profiles"`
	ActiveProfile  string             `json:"active_profile"`
	Client         ClientConfig       `json:"client"`
	Gateway        GatewayConfig      `json:"gateway"`
	Reviewer       ReviewerConfig     `json:"reviewer"`
	currentProfile *Profile
}

func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	config.applyDefaults()

	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	return config, nil
}

// Default returns a configuration with a single empty profile.
func Default() *Config {
	c := &Config{
		Profiles: map[string]Profile{
			"default": {
				APIKey:  "",
				BaseURL: "",
				Model:   DefaultModel,
			},
		},
		ActiveProfile: "default",
	}
	c.applyDefaults()
	c.setCurrentProfile()
	return c
}

func (c *Config) IsValid() bool {
	return c.currentProfile != nil && c.currentProfile.APIKey != ""
}

func (c *Config) GetAPIKey() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.APIKey
}

func (c *Config) GetModel() string {
	if c.currentProfile == nil || c.currentProfile.Model == "" {
		return DefaultModel
	}
	return c.currentProfile.Model
}

func (c *Config) GetBaseURL() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.BaseURL
}

// OverrideCredentials replaces the active profile's key and base URL for
// this process only. Empty values leave the profile untouched.
func (c *Config) OverrideCredentials(apiKey, baseURL string) {
	if c.currentProfile == nil {
		c.currentProfile = &Profile{Model: DefaultModel}
	}
	if apiKey != "" {
		c.currentProfile.APIKey = apiKey
	}
	if baseURL != "" {
		c.currentProfile.BaseURL = baseURL
	}
}

// Dir returns the directory holding config.json.
func Dir() (string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(configPath), nil
}

// LogPath resolves the form's log file, relative paths landing in the
// config directory.
func (c *Config) LogPath() (string, error) {
	name := c.Client.LogFile
	if name == "" {
		name = DefaultLogFile
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func getConfigPath() (string, error) {
	var configDir string

	// Use RORIREVIEW_HOME if set, otherwise use user's home directory
	if home := os.Getenv("RORIREVIEW_HOME"); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".rorireview", "config.json"), nil
}

func ensureConfigDir(configPath string) error {
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := Default()

	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	return saveConfig(c, configPath)
}

// applyDefaults fills sections missing from older config files.
func (c *Config) applyDefaults() {
	if c.Client.Endpoint == "" {
		c.Client.Endpoint = DefaultEndpoint
	}
	if c.Gateway.Addr == "" {
		c.Gateway.Addr = DefaultGatewayAddr
	}
	if c.Gateway.Upstream == "" {
		c.Gateway.Upstream = DefaultUpstream
	}
	if c.Gateway.AllowedOrigin == "" {
		c.Gateway.AllowedOrigin = DefaultAllowedOrigin
	}
	if c.Reviewer.Addr == "" {
		c.Reviewer.Addr = DefaultReviewerAddr
	}
	if c.Reviewer.Mode == "" {
		c.Reviewer.Mode = ModeSingle
	}
	if c.Reviewer.MaxTokens == 0 {
		c.Reviewer.MaxTokens = 500
	}
	if c.Reviewer.Temperature == 0 {
		c.Reviewer.Temperature = 0.5
	}
	if c.Reviewer.AgentTimeoutSeconds == 0 {
		c.Reviewer.AgentTimeoutSeconds = 15
	}
}

func (c *Config) setCurrentProfile() error {
	if c.Profiles == nil {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// Fall back to any available profile
		for name, p := range c.Profiles {
			c.ActiveProfile = name
			profile = p
			exists = true
			break
		}
	}

	if !exists {
		return fmt.Errorf("no valid profiles found")
	}

	c.currentProfile = &profile
	return nil
}

// ProfileNames returns the profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DeleteProfile removes a profile. Deleting the active profile activates the
// first remaining one, and deleting the last profile recreates an empty
// "default" profile.
func (c *Config) DeleteProfile(name string) error {
	if _, exists := c.Profiles[name]; !exists {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	delete(c.Profiles, name)

	if len(c.Profiles) == 0 {
		c.Profiles["default"] = Profile{Model: DefaultModel}
	}
	if c.ActiveProfile == name {
		c.ActiveProfile = c.ProfileNames()[0]
	}
	return c.setCurrentProfile()
}
