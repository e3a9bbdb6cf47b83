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
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.LogLevel != DefaultLogLevel || cfg.Backend != BackendSim {
		t.Errorf("defaults = %s/%s, want %s/%s", cfg.LogLevel, cfg.Backend, DefaultLogLevel, BackendSim)
	}
	if cfg.Bus.BaudHz != DefaultBaudHz || cfg.Bus.TimeoutMs != DefaultTimeoutMs {
		t.Errorf("bus defaults = %+v", cfg.Bus)
	}
	if got, want := cfg.ApiURL(), "http://127.0.0.1:8003"; got != want {
		t.Errorf("ApiURL() = %q, want %q", got, want)
	}
	if got, want := cfg.BridgeAddr(), "127.0.0.1:33415"; got != want {
		t.Errorf("BridgeAddr() = %q, want %q", got, want)
	}
}

func TestPersistLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigDir, ConfigFile)

	cfg := NewDefaultConfig()
	cfg.filepath = path
	cfg.LogLevel = "debug"
	cfg.Backend = BackendBridge
	cfg.Bus.TimeoutMs = 250
	cfg.Api.Port = 9000
	if err := cfg.Persist(false); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded := NewDefaultConfig()
	loaded.filepath = path
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.LogLevel != "debug" || loaded.Backend != BackendBridge {
		t.Errorf("loaded %s/%s, want debug/%s", loaded.LogLevel, loaded.Backend, BackendBridge)
	}
	if loaded.Bus.TimeoutMs != 250 {
		t.Errorf("loaded TimeoutMs = %d, want 250", loaded.Bus.TimeoutMs)
	}
	if loaded.Api.Port != 9000 {
		t.Errorf("loaded api port = %d, want 9000", loaded.Api.Port)
	}
}

func TestPersistRefusesOverwrite(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.filepath = filepath.Join(t.TempDir(), ConfigFile)
	if err := cfg.Persist(false); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	err := cfg.Persist(false)
	var exists ErrConfigFileExists
	if !errors.As(err, &exists) {
		t.Fatalf("second Persist = %v, want ErrConfigFileExists", err)
	}
	if err := cfg.Persist(true); err != nil {
		t.Errorf("forced Persist = %v, want nil", err)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.filepath = filepath.Join(t.TempDir(), "no-such-file")
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load of a missing file = %v, want nil", err)
	}
	if cfg.Backend != BackendSim || cfg.Bus.BaudHz != DefaultBaudHz {
		t.Error("defaults must stay in effect when there is no config file")
	}
}

func TestArchivePath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.filepath = "/var/lib/go-spi/config"
	if got, want := cfg.ArchivePath(), "/var/lib/go-spi/"+ArchiveFile; got != want {
		t.Errorf("ArchivePath() = %q, want %q", got, want)
	}
	cfg.DBPath = "/tmp/other.db"
	if got := cfg.ArchivePath(); got != "/tmp/other.db" {
		t.Errorf("ArchivePath() = %q, want the explicit db path", got)
	}
}

func TestString(t *testing.T) {
	out := NewDefaultConfig().String()
	if !strings.HasPrefix(out, "---\n") {
		t.Errorf("String() = %q, want a yaml document", out)
	}
	for _, want := range []string{"backend: sim", "baud_hz: 1000000", "port: 8003"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() lacks %q:\n%s", want, out)
		}
	}
}
