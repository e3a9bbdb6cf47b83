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

// Package session implements the register-access layer on top of the
// bus controller: lifecycle, retrying transfers, the wire convention
// for register reads and writes, capture of readings and transfer
// statistics.
package session

import (
	"fmt"
	"sync"
	"time"

	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-spi/pkg/log"
	"jinr.ru/greenlab/go-spi/pkg/spi"
)

const (
	// CaptureDepth is the size of the session capture buffer.
	CaptureDepth = 8
	// MaxAttempts bounds the retry wrapper.
	MaxAttempts = 3
	// RetryBackoff is slept before every attempt after the first.
	RetryBackoff = time.Millisecond
)

const (
	VersionMajor = 1
	VersionMinor = 0
	VersionPatch = 0
)

// Config is the session setup. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	Instance  int    `json:"instance"`
	BaudHz    uint32 `json:"baud_hz"`
	Mode      uint8  `json:"mode"`
	CS        uint8  `json:"cs"`
	TimeoutMs uint32 `json:"timeout_ms"`
}

func DefaultConfig() *Config {
	return &Config{
		Instance:  0,
		BaudHz:    spi.DefaultBaudHz,
		Mode:      0,
		CS:        0,
		TimeoutMs: 100,
	}
}

func (c *Config) validate() error {
	if c.Instance < 0 || c.Instance >= spi.InstanceCount {
		return &Error{Code: CodeInvalidParam, Msg: fmt.Sprintf("instance %d out of range", c.Instance)}
	}
	if c.BaudHz == 0 {
		return &Error{Code: CodeInvalidParam, Msg: "baud rate must be positive"}
	}
	if c.Mode > 3 {
		return &Error{Code: CodeInvalidParam, Msg: fmt.Sprintf("mode %d out of range", c.Mode)}
	}
	if c.TimeoutMs == 0 {
		return &Error{Code: CodeInvalidParam, Msg: "timeout must be positive"}
	}
	return nil
}

func (c *Config) hwConfig() spi.HWConfig {
	cpol, cpha := spi.ModePolarity(c.Mode)
	return spi.HWConfig{
		BaudHz: c.BaudHz,
		Order:  spi.MSBFirst,
		CPOL:   cpol,
		CPHA:   cpha,
		CSPin:  c.CS,
		CSPol:  spi.CSActiveLow,
	}
}

// Stats are the transfer counters. Counters only grow between Init
// and ResetStats.
type Stats struct {
	TxBytes  uint32 `json:"tx_bytes"`
	RxBytes  uint32 `json:"rx_bytes"`
	Errors   uint32 `json:"errors"`
	Timeouts uint32 `json:"timeouts"`
	Retries  uint32 `json:"retries"`
}

func (s Stats) String() string {
	result, err := yaml.Marshal(&s)
	if err != nil {
		log.Error("Error occured while marshaling stats, %s", err)
		return ""
	}
	return fmt.Sprintf("---\n%s", string(result))
}

// Session drives register access over one controller instance. All
// methods are safe for concurrent use; operations are serialized on an
// internal lock.
type Session struct {
	ctrl *spi.Controller

	mu          sync.Mutex
	initialized bool
	config      Config
	stats       Stats
	capture     [CaptureDepth]Reading
	captured    int
}

func New(ctrl *spi.Controller) *Session {
	return &Session{ctrl: ctrl}
}

// Init validates cfg (nil selects the defaults) and binds the session
// to its controller instance. An initialized session is deinitialized
// first, so Init doubles as re-init.
func (s *Session) Init(cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	if s.initialized {
		if err := s.deinit(); err != nil {
			return err
		}
	}
	if err := s.ctrl.Init(cfg.Instance); err != nil {
		return &Error{Code: CodeSPIErr, Msg: "controller init failed: " + err.Error()}
	}
	hw := cfg.hwConfig()
	if err := s.ctrl.SetConfig(cfg.Instance, &hw); err != nil {
		s.ctrl.Deinit(cfg.Instance)
		return &Error{Code: CodeSPIErr, Msg: "controller config failed: " + err.Error()}
	}
	s.config = *cfg
	s.stats = Stats{}
	s.captured = 0
	s.initialized = true
	log.Debug("session up: instance %d, %d Hz, mode %d, cs %d, timeout %d ms",
		cfg.Instance, cfg.BaudHz, cfg.Mode, cfg.CS, cfg.TimeoutMs)
	return nil
}

// Deinit releases the controller instance. Deinit of a session that
// was never initialized is OK.
func (s *Session) Deinit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deinit()
}

func (s *Session) deinit() error {
	if !s.initialized {
		return nil
	}
	if err := s.ctrl.Deinit(s.config.Instance); err != nil {
		return &Error{Code: CodeSPIErr, Msg: "controller deinit failed: " + err.Error()}
	}
	s.initialized = false
	return nil
}

// Initialized reports whether the session is bound to an instance.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Config reports the active session configuration.
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Stats is a snapshot copy of the counters, safe to call at any point
// of the session lifecycle.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// ResetStats zeroes the counters on a live session.
func (s *Session) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = Stats{}
}

// Version packs the toolkit version as (major<<16)|(minor<<8)|patch.
func Version() uint32 {
	return VersionMajor<<16 | VersionMinor<<8 | VersionPatch
}

func VersionString() string {
	return fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}
