// Package config loads the kasa CLI configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marcuoli/go-kasa/pkg/kasa"
)

// Config is the top-level configuration file.
type Config struct {
	Timeout    Duration     `yaml:"timeout"`    // Reply and quiescence timeout
	Port       int          `yaml:"port"`       // Device port
	MaxHosts   int          `yaml:"max_hosts"`  // Widest range to scan
	Interfaces []string     `yaml:"interfaces"` // Interface allow-list
	CIDRs      []string     `yaml:"cidrs"`      // Explicit ranges, replace interfaces
	Enrich     EnrichConfig `yaml:"enrich"`
}

// EnrichConfig controls the lookups run after discovery.
type EnrichConfig struct {
	ARP         bool     `yaml:"arp"`
	Vendor      bool     `yaml:"vendor"`
	DNS         bool     `yaml:"dns"`
	OUIDatabase string   `yaml:"oui_database"` // Path to IEEE oui.txt
	DNSServers  []string `yaml:"dns_servers"`  // host:port, overrides resolv.conf
	Timeout     Duration `yaml:"timeout"`      // Per lookup
}

// Duration wraps time.Duration for YAML values like "5s" or "750ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if dur < 0 {
		return fmt.Errorf("negative duration %q", s)
	}
	d.Duration = dur
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := kasa.DefaultOptions()
	return &Config{
		Timeout:  Duration{opts.Timeout},
		Port:     opts.Port,
		MaxHosts: opts.MaxHosts,
		Enrich: EnrichConfig{
			Timeout: Duration{opts.Enrich.Timeout},
		},
	}
}

// Load reads a YAML configuration file. Keys missing from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxHosts < 0 {
		return fmt.Errorf("max_hosts %d is negative", c.MaxHosts)
	}
	return nil
}

// Options converts the configuration to library options.
func (c *Config) Options() kasa.Options {
	opts := kasa.DefaultOptions()
	if c.Timeout.Duration > 0 {
		opts.Timeout = c.Timeout.Duration
	}
	if c.Port > 0 {
		opts.Port = c.Port
	}
	if c.MaxHosts > 0 {
		opts.MaxHosts = c.MaxHosts
	}
	opts.Interfaces = c.Interfaces
	opts.CIDRs = c.CIDRs

	opts.Enrich.EnableARP = c.Enrich.ARP
	opts.Enrich.EnableVendor = c.Enrich.Vendor
	opts.Enrich.EnableDNS = c.Enrich.DNS
	opts.Enrich.OUIDatabase = c.Enrich.OUIDatabase
	opts.Enrich.DNSServers = c.Enrich.DNSServers
	if c.Enrich.Timeout.Duration > 0 {
		opts.Enrich.Timeout = c.Enrich.Timeout.Duration
	}
	return opts
}
