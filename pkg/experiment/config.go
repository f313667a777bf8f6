// Package experiment handles the bookkeeping around environment runs:
// result directories, persisted settings and per-episode statistics.
package experiment

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const configFile = "config.json"

// Config stores the settings of an experiment and owns its result
// directory. Can be stored and loaded.
type Config struct {
	Name      string `json:"name"`
	RunID     string `json:"run_id"`
	Timestamp string `json:"timestamp"`
	BaseDir   string `json:"base_dir"`
	BasedOn   string `json:"based_on,omitempty"`
	// Params holds free-form experiment parameters (seed, episode
	// count, model settings of the excluded training loop, ...).
	Params map[string]any `json:"params"`
}

// Create makes the experiment directory under baseDir and returns its
// config. With existOK false, a pre-existing directory is an error.
func Create(name, baseDir string, existOK bool) (*Config, error) {
	cfg := &Config{
		Name:      name,
		RunID:     uuid.New().String(),
		Timestamp: time.Now().Format("15:04 on Jan 02, 2006"),
		BaseDir:   baseDir,
		Params:    make(map[string]any),
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create experiment base dir: %w", err)
	}
	if err := os.Mkdir(cfg.Dir(), 0o755); err != nil {
		if !existOK || !os.IsExist(err) {
			return nil, fmt.Errorf("create experiment dir: %w", err)
		}
	}
	return cfg, nil
}

// Dir returns the experiment result directory.
func (c *Config) Dir() string {
	return filepath.Join(c.BaseDir, c.Name)
}

// Path returns the path of a file inside the experiment directory.
func (c *Config) Path(filename string) string {
	return filepath.Join(c.Dir(), filename)
}

// Save writes the config into its directory.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(c.Path(configFile), data, 0o644)
}

// Load reads the config of an existing experiment directory.
func Load(name, baseDir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, name, configFile))
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// CopyExpDir copies the content of this experiment directory into a new
// one and returns the new config. Params of the old config that the new
// one does not set are merged in. Use carefully: files in the directory
// might still reference the old location.
func (c *Config) CopyExpDir(newName string) (*Config, error) {
	newCfg, err := Create(newName, c.BaseDir, false)
	if err != nil {
		return nil, err
	}

	if err := copyTree(c.Dir(), newCfg.Dir()); err != nil {
		return nil, fmt.Errorf("copy experiment dir: %w", err)
	}
	// The copied config of the old experiment must not shadow the new
	// one.
	if err := os.Remove(newCfg.Path(configFile)); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	for key, value := range c.Params {
		if _, ok := newCfg.Params[key]; !ok {
			newCfg.Params[key] = value
		}
	}
	newCfg.BasedOn = fmt.Sprintf("This exp-result directory is based on %s.", c.Name)

	if err := newCfg.Save(); err != nil {
		return nil, err
	}
	return newCfg, nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, in)
		return err
	})
}
