package config

import (
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Default string          `toml:"default"`
	Log     Log             `toml:"log"`
	Disks   map[string]Disk `toml:"disks"`
}

type Log struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console, json
}

type Disk struct {
	Driver string `toml:"driver"` // local, memory, ftp, sftp, s3, minio
	Root   string `toml:"root"`   // local root, or remote root for ftp/sftp
	Auth   *Auth  `toml:"auth,omitempty"`

	// object stores
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`

	TimeoutSeconds int `toml:"timeout_seconds"`
}

type Auth struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	User       string `toml:"user"`
	Password   string `toml:"password"`
	PrivateKey string `toml:"private_key"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Lookup returns the named disk.
func (c *Config) Lookup(name string) (Disk, bool) {
	d, ok := c.Disks[name]
	return d, ok
}

// DiskNames returns the configured disk names in sorted order.
func (c *Config) DiskNames() []string {
	names := make([]string, 0, len(c.Disks))
	for name := range c.Disks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SplitDiskPath parses the "disk:path" shorthand. It only matches when the
// prefix names a configured disk, so paths that merely contain a colon are
// left alone.
func (c *Config) SplitDiskPath(arg string) (disk, path string, ok bool) {
	name, rest, found := strings.Cut(arg, ":")
	if !found {
		return "", arg, false
	}
	if _, exists := c.Disks[name]; !exists {
		return "", arg, false
	}
	if rest == "" {
		rest = "/"
	}
	return name, rest, true
}
