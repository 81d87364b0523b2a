// Package config provides the externally tunable surface of the
// analysis pipeline: classifier thresholds, the service-port-to-role
// table, subnet candidate prefix lengths, the role-to-style map used by
// the graph artifact, and generator settings. All of these determine
// inference or emission outcomes and must be adjustable without code
// changes.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"netspawn/internal/classify"
	"netspawn/internal/graph"
	"netspawn/internal/model"
	"netspawn/internal/subnet"
)

// Config is the root configuration document.
type Config struct {
	Classifier ClassifierConfig           `yaml:"classifier"`
	Subnets    SubnetConfig               `yaml:"subnets"`
	Services   classify.PortTable         `yaml:"service_ports,omitempty"`
	Styles     map[model.Role]graph.Style `yaml:"styles,omitempty"`
	Generator  GeneratorConfig            `yaml:"generator"`
}

// ClassifierConfig holds the classifier thresholds.
type ClassifierConfig struct {
	DominanceRatio float64 `yaml:"dominance_ratio" validate:"gt=0"`
	ActivityFloor  int     `yaml:"activity_floor" validate:"gte=0"`
}

// SubnetConfig holds the candidate prefix lengths for subnet inference.
type SubnetConfig struct {
	PrefixLengths []int `yaml:"prefix_lengths" validate:"min=1,dive,gt=0,lte=128"`
}

// GeneratorConfig holds provider settings for emitted infrastructure
// definitions.
type GeneratorConfig struct {
	Provider string `yaml:"provider" validate:"required"`
	Project  string `yaml:"project"`
	Region   string `yaml:"region" validate:"required"`
	Zone     string `yaml:"zone" validate:"required"`
	// NetworkName is the base name of the provisioned network resource.
	NetworkName string `yaml:"network_name" validate:"required"`
}

var validate = validator.New()

// Load reads the config from path, or returns defaults when path is
// empty.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values. Partial config files keep the
// defaults for everything they leave out.
func (c *Config) applyDefaults() {
	if c.Classifier.DominanceRatio == 0 {
		c.Classifier.DominanceRatio = classify.DefaultDominanceRatio
	}
	if c.Classifier.ActivityFloor == 0 {
		c.Classifier.ActivityFloor = classify.DefaultActivityFloor
	}
	if len(c.Subnets.PrefixLengths) == 0 {
		c.Subnets.PrefixLengths = append([]int(nil), subnet.DefaultPrefixLengths...)
	}
	if len(c.Services) == 0 {
		c.Services = classify.DefaultPortTable()
	}
	if len(c.Styles) == 0 {
		c.Styles = DefaultStyles()
	}
	if c.Generator.Provider == "" {
		c.Generator.Provider = "google"
	}
	if c.Generator.Region == "" {
		c.Generator.Region = "europe-west1"
	}
	if c.Generator.Zone == "" {
		c.Generator.Zone = "europe-west1-b"
	}
	if c.Generator.NetworkName == "" {
		c.Generator.NetworkName = "netspawn"
	}
}

// Validate checks the configuration against its struct constraints and
// the cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for i, entry := range c.Services {
		if !entry.Role.Valid() {
			return fmt.Errorf("invalid config: service entry %d has unknown role %q", i, entry.Role)
		}
		if len(entry.Ports) == 0 {
			return fmt.Errorf("invalid config: service entry %d (%s) has no ports", i, entry.Role)
		}
	}
	return nil
}

// ClassifierParams converts the config into classifier parameters.
func (c *Config) ClassifierParams() classify.Params {
	return classify.Params{
		DominanceRatio: c.Classifier.DominanceRatio,
		ActivityFloor:  c.Classifier.ActivityFloor,
	}
}

// SubnetConfigValue converts the config into the subnet inferencer's
// configuration.
func (c *Config) SubnetConfigValue() subnet.Config {
	return subnet.Config{PrefixLengths: c.Subnets.PrefixLengths}
}

// DefaultStyles returns the built-in role-to-style map for the graph
// artifact.
func DefaultStyles() map[model.Role]graph.Style {
	return map[model.Role]graph.Style{
		model.RoleUnknown:        {Color: "#9e9e9e", Shape: "dot"},
		model.RoleServer:         {Color: "#1565c0", Shape: "box"},
		model.RoleClient:         {Color: "#90caf9", Shape: "dot"},
		model.RolePLCModbus:      {Color: "#e65100", Shape: "square"},
		model.RolePLCS7Comm:      {Color: "#ef6c00", Shape: "square"},
		model.RolePLCEtherNetIP:  {Color: "#f57c00", Shape: "square"},
		model.RoleWebServer:      {Color: "#2e7d32", Shape: "box"},
		model.RoleDNSServer:      {Color: "#00695c", Shape: "box"},
		model.RoleMailServer:     {Color: "#4527a0", Shape: "box"},
		model.RoleFTPServer:      {Color: "#283593", Shape: "box"},
		model.RoleSSHServer:      {Color: "#37474f", Shape: "box"},
		model.RoleDatabaseServer: {Color: "#6a1b9a", Shape: "database"},
		model.RoleMQTTBroker:     {Color: "#ad1457", Shape: "box"},
		model.RoleWebClient:      {Color: "#66bb6a", Shape: "dot"},
		model.RoleGateway:        {Color: "#c62828", Shape: "diamond"},
	}
}
