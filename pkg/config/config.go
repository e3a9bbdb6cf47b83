/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
	sigsyaml "sigs.k8s.io/yaml"
)

// BusConfig describes the SPI session settings used by the local demo
// commands and by the API server.
type BusConfig struct {
	Instance  int    `json:"instance" yaml:"instance"`
	BaudHz    uint32 `json:"baud_hz" yaml:"baud_hz"`
	Mode      uint8  `json:"mode" yaml:"mode"`
	CS        uint8  `json:"cs" yaml:"cs"`
	TimeoutMs uint32 `json:"timeout_ms" yaml:"timeout_ms"`
}

type ApiConfig struct {
	Address string `json:"address,omitempty" yaml:"address"`
	Port    int    `json:"port,omitempty" yaml:"port"`
}

type BridgeConfig struct {
	Address string `json:"address,omitempty" yaml:"address"`
	Port    int    `json:"port,omitempty" yaml:"port"`
}

type Config struct {
	LogLevel string `json:"log_level,omitempty" yaml:"log_level"`
	Backend  string `json:"backend,omitempty" yaml:"backend"`
	DBPath   string `json:"db_path,omitempty" yaml:"db_path"`

	Bus    *BusConfig    `json:"bus,omitempty" yaml:"bus"`
	Api    *ApiConfig    `json:"api,omitempty" yaml:"api"`
	Bridge *BridgeConfig `json:"bridge,omitempty" yaml:"bridge"`

	filepath string
}

// String dumps the effective config as a yaml document
func (c *Config) String() string {
	out, err := sigsyaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("Error while marshalling config: %s", err)
	}
	return fmt.Sprintf("---\n%s", string(out))
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(&c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	err = ioutil.WriteFile(c.filepath, data, 0644)
	if err != nil {
		return err
	}

	return nil
}

// Load reads the config file if it exists. A missing file is not an
// error, the defaults stay in effect.
func (c *Config) Load() error {
	data, err := ioutil.ReadFile(c.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

// ApiURL is the base URL the API client talks to.
func (c *Config) ApiURL() string {
	return fmt.Sprintf("http://%s:%d", c.Api.Address, c.Api.Port)
}

// BridgeAddr is the host:port the bridge server binds and the bridge
// backend dials.
func (c *Config) BridgeAddr() string {
	return fmt.Sprintf("%s:%d", c.Bridge.Address, c.Bridge.Port)
}

// ArchivePath resolves the bbolt archive location, defaulting next to
// the config file.
func (c *Config) ArchivePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(filepath.Dir(c.filepath), ArchiveFile)
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Backend:  BackendSim,
		Bus: &BusConfig{
			Instance:  DefaultInstance,
			BaudHz:    DefaultBaudHz,
			Mode:      DefaultMode,
			CS:        DefaultCS,
			TimeoutMs: DefaultTimeoutMs,
		},
		Api: &ApiConfig{
			Address: DefaultApiAddress,
			Port:    DefaultApiPort,
		},
		Bridge: &BridgeConfig{
			Address: DefaultBridgeAddress,
			Port:    DefaultBridgePort,
		},
		filepath: DefaultConfigPath(),
	}
}
