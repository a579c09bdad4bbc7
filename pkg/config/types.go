package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mfreeman451/meshradar/pkg/models"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr      = ":5000"
	defaultDBPath          = "meshradar.db"
	defaultCacheFile       = "data_cache.json"
	defaultAPIURL          = "api-user.e2ro.com"
	defaultRefreshInterval = Duration(60 * time.Second)
	defaultTimezone        = "UTC"
	defaultRateLimit       = 5
	defaultRateBurst       = 5
	defaultMaxConnections  = 100
	legacyNetworkName      = "Primary Network"
)

type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	return d.set(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return err
	}

	return d.set(v)
}

func (d *Duration) set(v interface{}) error {
	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case int:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config is the service configuration.
type Config struct {
	ListenAddr      string          `json:"listen_addr" yaml:"listen_addr" validate:"required"`
	GRPCHealthAddr  string          `json:"grpc_addr,omitempty" yaml:"grpc_addr,omitempty"`
	DBPath          string          `json:"db_path" yaml:"db_path" validate:"required"`
	CacheFile       string          `json:"cache_file" yaml:"cache_file" validate:"required"`
	DataDir         string          `json:"data_dir" yaml:"data_dir"`
	APIURL          string          `json:"api_url" yaml:"api_url" validate:"required"`
	RefreshInterval Duration        `json:"refresh_interval" yaml:"refresh_interval"`
	Retention       Duration        `json:"retention,omitempty" yaml:"retention,omitempty"`
	Timezone        string          `json:"timezone" yaml:"timezone" validate:"omitempty,timezone"`
	Networks        []NetworkConfig `json:"networks" yaml:"networks" validate:"unique=ID,dive"`
	Webhooks        []WebhookConfig `json:"webhooks,omitempty" yaml:"webhooks,omitempty" validate:"dive"`
	SMTP            SMTPConfig      `json:"smtp" yaml:"smtp"`
	RateLimit       RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
	MaxConnections  int             `json:"max_connections" yaml:"max_connections" validate:"gte=0"`

	// LegacyNetworkID is the single-network form of older config files.
	LegacyNetworkID string `json:"network_id,omitempty" yaml:"network_id,omitempty"`
}

// NetworkConfig describes one monitored site.
type NetworkConfig struct {
	ID      string          `json:"id" yaml:"id" validate:"required,excludesall=/\\"`
	Name    string          `json:"name" yaml:"name"`
	Email   string          `json:"email,omitempty" yaml:"email,omitempty" validate:"omitempty,email"`
	Token   string          `json:"token,omitempty" yaml:"token,omitempty"`
	Active  *bool           `json:"active,omitempty" yaml:"active,omitempty"`
	Address *models.Address `json:"address,omitempty" yaml:"address,omitempty"`
}

// IsActive reports whether the network is polled. Networks are active
// unless explicitly disabled.
func (n *NetworkConfig) IsActive() bool {
	return n.Active == nil || *n.Active
}

// WebhookConfig represents a webhook notification configuration.
type WebhookConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	URL      string   `json:"url" yaml:"url" validate:"omitempty,url"`
	Cooldown Duration `json:"cooldown" yaml:"cooldown"`
	Template string   `json:"template" yaml:"template"`
	Discord  bool     `json:"discord,omitempty" yaml:"discord,omitempty"`
	Headers  []Header `json:"headers,omitempty" yaml:"headers,omitempty"` // Optional custom headers
}

// Header represents a custom HTTP header.
type Header struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// SMTPConfig configures alert e-mail. Environment variables override the
// file, see ApplyEnv.
type SMTPConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Host     string `json:"host" yaml:"host" validate:"required_if=Enabled true"`
	Port     int    `json:"port" yaml:"port" validate:"gte=0,lte=65535"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	From     string `json:"from" yaml:"from" validate:"omitempty,email"`
}

// RateLimitConfig bounds outgoing API requests across all networks.
type RateLimitConfig struct {
	PerSecond float64 `json:"per_second" yaml:"per_second" validate:"gte=0"`
	Burst     int     `json:"burst" yaml:"burst" validate:"gte=0"`
}

// Validate migrates legacy fields, fills defaults and checks the result.
func (c *Config) Validate() error {
	c.migrateLegacy()
	c.applyDefaults()

	return validateStruct(c)
}

// migrateLegacy turns a single network_id into a networks list.
func (c *Config) migrateLegacy() {
	if c.LegacyNetworkID == "" || len(c.Networks) > 0 {
		return
	}

	active := true
	c.Networks = []NetworkConfig{{
		ID:     c.LegacyNetworkID,
		Name:   legacyNetworkName,
		Active: &active,
	}}
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, defaultDBPath)
	}

	if c.CacheFile == "" {
		c.CacheFile = filepath.Join(c.DataDir, defaultCacheFile)
	}

	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}

	if c.RefreshInterval <= 0 {
		c.RefreshInterval = defaultRefreshInterval
	}

	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}

	if c.RateLimit.PerSecond == 0 && c.RateLimit.Burst == 0 {
		c.RateLimit = RateLimitConfig{PerSecond: defaultRateLimit, Burst: defaultRateBurst}
	}

	if c.MaxConnections == 0 {
		c.MaxConnections = defaultMaxConnections
	}
}

// ApplyEnv overrides SMTP settings from MESHRADAR_SMTP_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("MESHRADAR_SMTP_HOST"); v != "" {
		c.SMTP.Host = v
	}

	if v := getenv("MESHRADAR_SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}

	if v := getenv("MESHRADAR_SMTP_USER"); v != "" {
		c.SMTP.Username = v
	}

	if v := getenv("MESHRADAR_SMTP_PASS"); v != "" {
		c.SMTP.Password = v
	}

	if v := getenv("MESHRADAR_SMTP_FROM"); v != "" {
		c.SMTP.From = v
	}

	if v := getenv("MESHRADAR_NOTIFY_ENABLED"); v != "" {
		c.SMTP.Enabled = v == "true" || v == "1"
	}
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// ActiveNetworks returns the networks to poll, in file order.
func (c *Config) ActiveNetworks() []models.MonitoredNetwork {
	out := make([]models.MonitoredNetwork, 0, len(c.Networks))

	for i := range c.Networks {
		n := &c.Networks[i]
		if !n.IsActive() {
			continue
		}

		out = append(out, models.MonitoredNetwork{
			ID:      n.ID,
			Name:    n.Name,
			Email:   n.Email,
			Active:  true,
			Address: n.Address,
		})
	}

	return out
}

// Tokens returns the configured API token of every network that has one.
func (c *Config) Tokens() map[string]string {
	out := make(map[string]string)

	for _, n := range c.Networks {
		if n.Token != "" {
			out[n.ID] = n.Token
		}
	}

	return out
}

// Network returns the configuration of one network.
func (c *Config) Network(id string) (NetworkConfig, bool) {
	for _, n := range c.Networks {
		if n.ID == id {
			return n, true
		}
	}

	return NetworkConfig{}, false
}
