package core

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/url"
	"os"
	"path/filepath"
)

const (
	FugueHpcConfigPath      = "/.config/fugue-hpc/"
	FugueHpcConfigFilename  = "config.json"
	FugueHpcTargetFilename  = "target"
	FugueHpcConfigFilePerms = 0600
)

const FugueHpcConfigEnv = "FUGUE_HPC_CONFIG"

// Layout for the CLI config file
/*
{
	"default": {
		"fugue_endpoint": "<scheduler-api-url>",
		"fugue_user": {
			"username": "<username>",
			"apikey": "<apikey>"
		}
	}
}
*/
type FugueCluster struct {
	Endpoint string     `json:"fugue_endpoint"`
	Creds    FugueCreds `json:"fugue_user"`
}

type FugueCreds struct {
	Username string `json:"username"`
	Apikey   string `json:"apikey"`
}

type FugueConfig map[string]FugueCluster

// GetUrlCreds returns the credential query values every API request carries.
func (c FugueCluster) GetUrlCreds() url.Values {
	values := url.Values{}
	values.Set("username", c.Creds.Username)
	values.Set("apikey", c.Creds.Apikey)
	return values
}

func fileExist(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Build path for config file.
// Set from environment or use backup.
// Use current directory as last resort.
func getFugueConfigPath() string {
	configPath := os.Getenv(FugueHpcConfigEnv)
	if len(configPath) > 0 {
		return configPath
	}
	backupPath := os.Getenv("HOME") + FugueHpcConfigPath
	if fileExist(backupPath + FugueHpcConfigFilename) {
		return backupPath + FugueHpcConfigFilename
	}
	if err := os.MkdirAll(backupPath, 0744); err != nil {
		return FugueHpcConfigFilename
	}
	return backupPath + FugueHpcConfigFilename
}

func getFugueTargetPath() string {
	return filepath.Join(filepath.Dir(getFugueConfigPath()),
		FugueHpcTargetFilename)
}

func WriteFugueConfig(config FugueConfig) error {
	configFile := getFugueConfigPath()
	file, err := json.MarshalIndent(config, "", "	")
	if err != nil {
		return err
	}
	// config holds credentials; keep it private to the user
	os.Chmod(configFile, FugueHpcConfigFilePerms)
	return ioutil.WriteFile(configFile, file, FugueHpcConfigFilePerms)
}

func ReadFugueConfig() (FugueConfig, error) {
	filename := getFugueConfigPath()
	if !fileExist(filename) {
		return FugueConfig{}, errors.New("cannot read fugue-hpc config")
	}
	bytes, err := ioutil.ReadFile(filename)
	if err != nil {
		return FugueConfig{}, err
	}
	var config FugueConfig
	json.Unmarshal(bytes, &config)
	// check if any cluster was found in the config file
	if len(config) == 0 {
		return FugueConfig{}, errors.New("invalid fugue-hpc config")
	}
	return config, nil
}

// WriteFugueConfigTarget persists the cluster name later commands default to.
func WriteFugueConfigTarget(cluster string) error {
	return ioutil.WriteFile(getFugueTargetPath(), []byte(cluster),
		FugueHpcConfigFilePerms)
}

func ReadFugueConfigTarget() string {
	bytes, err := ioutil.ReadFile(getFugueTargetPath())
	if err != nil || len(bytes) == 0 {
		return "default"
	}
	return string(bytes)
}

// GetClusterConfig resolves the selected cluster from the config file.
func GetClusterConfig() (FugueCluster, error) {
	config, err := ReadFugueConfig()
	if err != nil {
		return FugueCluster{}, err
	}
	target := ReadFugueConfigTarget()
	if cluster, ok := config[target]; ok {
		return cluster, nil
	}
	return FugueCluster{}, errors.New("cannot find credentials for " + target)
}
