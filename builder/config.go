package builder

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the name of the project file looked up in the package
// directory.
const ConfigFile = "msprt.yaml"

// Config is the project file. Relative paths are relative to the file.
type Config struct {
	Chip     string   `yaml:"chip"`
	Device   string   `yaml:"device"`
	Memory   string   `yaml:"memory"`
	Output   string   `yaml:"output"`
	Packages []string `yaml:"packages"`
	Tags     []string `yaml:"tags"`
	Log      bool     `yaml:"log"`
}

// LoadConfig reads the project file. A missing file is not an error, the
// result is nil in that case.
func LoadConfig(fname string) (*Config, error) {
	buf, err := os.ReadFile(fname)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var cfg Config
	if err = yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, errors.Join(ErrConfig, err)
	}

	dir := filepath.Dir(fname)
	for _, path := range []*string{&cfg.Device, &cfg.Memory, &cfg.Output} {
		if len(*path) > 0 && !filepath.IsAbs(*path) {
			*path = filepath.Join(dir, *path)
		}
	}
	return &cfg, nil
}
