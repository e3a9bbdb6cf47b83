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

// Package command glues the configuration to the packages doing the
// actual work. Commands call into it instead of wiring backends and
// sessions themselves.
package command

import (
	"jinr.ru/greenlab/go-spi/pkg/config"
	"jinr.ru/greenlab/go-spi/pkg/session"
	"jinr.ru/greenlab/go-spi/pkg/spi"
	"jinr.ru/greenlab/go-spi/pkg/spi/sim"
	"jinr.ru/greenlab/go-spi/pkg/srv/bridge"
)

// NewLocalSession builds a session over the backend named by the
// config. The sim backend talks to an in-process device, the bridge
// backend talks to a device hosted by a bridge server. The returned
// closer releases the backend and must be called when done.
func NewLocalSession(cfg *config.Config) (*session.Session, func() error, error) {
	var backend spi.Backend
	closer := func() error { return nil }

	switch cfg.Backend {
	case config.BackendBridge:
		b, err := bridge.NewBackend(cfg)
		if err != nil {
			return nil, nil, err
		}
		backend = b
		closer = b.Close
	default:
		backend = sim.NewDevice()
	}

	return session.New(spi.New(backend)), closer, nil
}

// SessionConfig maps the bus section of the config to a session config
func SessionConfig(cfg *config.Config) *session.Config {
	if cfg.Bus == nil {
		return session.DefaultConfig()
	}
	return &session.Config{
		Instance:  cfg.Bus.Instance,
		BaudHz:    cfg.Bus.BaudHz,
		Mode:      cfg.Bus.Mode,
		CS:        cfg.Bus.CS,
		TimeoutMs: cfg.Bus.TimeoutMs,
	}
}
