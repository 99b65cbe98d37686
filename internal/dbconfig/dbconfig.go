// Package dbconfig loads the YAML configuration for a federated DB
// interface and builds the corresponding dbiface/federation object graph.
package dbconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dfki-ric/xdbi/internal/dbiface"
	"github.com/dfki-ric/xdbi/internal/federation"
)

// Variant selects which DbInterface implementation a ServerConfig builds.
type Variant string

const (
	VariantDirect Variant = "direct"
	VariantRemote Variant = "remote"
)

// ServerConfig is one nested <db-interface-config> entry: either a direct
// local database (Path) or a remote HTTP one (Address). ReadOnly is a
// pointer so that an omitted "readonly" key is distinguishable from an
// explicit "readonly: false" — main_server defaults to writable,
// import_servers default to read-only, per spec.
type ServerConfig struct {
	Name     string  `yaml:"name,omitempty"`
	Variant  Variant `yaml:"variant"`
	Path     string  `yaml:"path,omitempty"`
	Address  string  `yaml:"address,omitempty"`
	ReadOnly *bool   `yaml:"readonly,omitempty"`
}

// readOnlyOr returns the configured readonly flag, or def if the key was
// omitted from the YAML.
func (s *ServerConfig) readOnlyOr(def bool) bool {
	if s.ReadOnly == nil {
		return def
	}
	return *s.ReadOnly
}

// FederationConfig is the top-level federated-interface configuration.
type FederationConfig struct {
	MainServer    *ServerConfig  `yaml:"main_server,omitempty"`
	ImportServers []ServerConfig `yaml:"import_servers"`
}

// Load reads and parses a federation configuration file. A missing or
// non-array import_servers key is a fatal InvalidConfig condition per the
// error-handling design; an absent main_server simply means the resulting
// federation has no writable member.
func Load(path string) (*FederationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dbconfig: read %s: %w", path, err)
	}
	var cfg FederationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("dbconfig: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the federation constructor requires.
func (c *FederationConfig) Validate() error {
	if c.ImportServers == nil {
		return fmt.Errorf("dbconfig: invalid config; no valid import_servers list")
	}
	for i, s := range c.ImportServers {
		if s.Variant != VariantDirect && s.Variant != VariantRemote {
			return fmt.Errorf("dbconfig: import_servers[%d]: unknown variant %q", i, s.Variant)
		}
	}
	if c.MainServer != nil && c.MainServer.Variant != VariantDirect && c.MainServer.Variant != VariantRemote {
		return fmt.Errorf("dbconfig: main_server: unknown variant %q", c.MainServer.Variant)
	}
	return nil
}

// Build resolves every relative path in the configuration against
// basePath and constructs the resulting Federated interface.
func (c *FederationConfig) Build(basePath string) (*federation.Federated, error) {
	var main dbiface.DbInterface
	if c.MainServer != nil {
		m, err := c.MainServer.build(basePath, false)
		if err != nil {
			return nil, fmt.Errorf("dbconfig: main_server: %w", err)
		}
		main = m
	}

	members := make([]federation.Member, 0, len(c.ImportServers))
	for i, s := range c.ImportServers {
		iface, err := s.build(basePath, true)
		if err != nil {
			return nil, fmt.Errorf("dbconfig: import_servers[%d]: %w", i, err)
		}
		members = append(members, federation.Member{Name: s.Name, DbInterface: iface})
	}

	return federation.New(main, members), nil
}

// build constructs the DbInterface for this entry. defaultReadOnly is
// applied when the config omits "readonly": true for import_servers,
// false for main_server.
func (s *ServerConfig) build(basePath string, defaultReadOnly bool) (dbiface.DbInterface, error) {
	readOnly := s.readOnlyOr(defaultReadOnly)
	switch s.Variant {
	case VariantDirect:
		path := s.Path
		if path != "" && !filepath.IsAbs(path) {
			path = filepath.Join(basePath, path)
		}
		return dbiface.NewDirect(path, readOnly), nil
	case VariantRemote:
		if s.Address == "" {
			return nil, fmt.Errorf("remote server config missing address")
		}
		return dbiface.NewRemote(s.Address, readOnly), nil
	default:
		return nil, fmt.Errorf("unknown variant %q", s.Variant)
	}
}
