package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	tune "github.com/benchtune/benchtune/tune"
)

// CatalogConfig is the YAML shape of an optimization catalog override.
type CatalogConfig struct {
	Optimizations []tune.Optimization `yaml:"optimizations"`
	HotPaths      []string            `yaml:"hot_paths"`
}

// loadCatalog builds the registry and fitness configuration. With no
// catalog path the built-in catalog is used; otherwise the YAML file
// replaces it entirely. Hot paths given on the command line win over the
// file's hot_paths entry. Any catalog problem is a configuration error
// and exits immediately.
func loadCatalog(path string, cliHotPaths []string) (*tune.Registry, tune.FitnessConfig) {
	fitness := tune.FitnessConfig{HotPaths: cliHotPaths}

	if path == "" {
		return tune.DefaultRegistry(), fitness
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Fatalf("Unable to read catalog file %s: %v", path, err)
	}

	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Fatalf("Unable to parse catalog file %s: %v", path, err)
	}
	if len(cfg.Optimizations) == 0 {
		logrus.Fatalf("Catalog file %s defines no optimizations", path)
	}

	reg, err := tune.NewRegistry(cfg.Optimizations)
	if err != nil {
		logrus.Fatalf("Invalid catalog in %s: %v", path, err)
	}
	logrus.Infof("Loaded catalog with %d optimizations from %s", reg.Len(), path)

	if len(cfg.HotPaths) > 0 && !hotPathsFlagSet() {
		fitness.HotPaths = cfg.HotPaths
	}
	return reg, fitness
}

// hotPathsFlagSet reports whether --hot-paths was given explicitly.
func hotPathsFlagSet() bool {
	return runCmd.Flags().Changed("hot-paths")
}
