package core

import (
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

// LaunchConfig is the subset of the launcher's YAML job configuration the
// CLI understands. The file belongs to the launcher; it is forwarded to the
// launch invocation untouched and only read here for defaults.
type LaunchConfig struct {
	Name   string            `yaml:"name"`
	LogDir string            `yaml:"logdir"`
	Env    map[string]string `yaml:"env"`
}

func ReadLaunchConfig(path string) (LaunchConfig, error) {
	bytes, err := ioutil.ReadFile(path)
	if err != nil {
		return LaunchConfig{}, err
	}
	var config LaunchConfig
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return LaunchConfig{}, err
	}
	return config, nil
}
