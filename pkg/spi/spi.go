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

// Package spi implements the bus controller layer: a fixed set of
// independently configured instances driving byte transfers through a
// pluggable backend.
package spi

import (
	"sync"
	"time"
)

const (
	// InstanceCount is the number of controller instances.
	InstanceCount = 4
	// FIFODepth is the capacity of the per-instance tx/rx rings.
	FIFODepth = 4
	// AsyncBudget is the fixed transfer budget of AsyncTransfer.
	AsyncBudget = 100 * time.Millisecond
)

// Latched error causes, folded into the Status word and cleared by
// ServiceIRQ.
const (
	ErrFlagTimeout uint32 = 1 << 0
)

// Status word bits.
const (
	StatusRxNotEmpty uint32 = 1 << 0
	StatusTxNotFull  uint32 = 1 << 1
	StatusBusy       uint32 = 1 << 2
	StatusError      uint32 = 1 << 3
)

// Transfer is one full-duplex exchange: Tx is clocked out byte by byte
// while Rx collects what comes back. Both slices must have the same
// length.
type Transfer struct {
	Tx []byte
	Rx []byte
}

type instance struct {
	mu          sync.Mutex
	initialized bool
	busy        bool
	config      HWConfig
	txFIFO      fifo
	rxFIFO      fifo
	errFlags    uint32
}

func (ins *instance) claim() bool {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	if ins.busy {
		return false
	}
	ins.busy = true
	return true
}

func (ins *instance) release() {
	ins.mu.Lock()
	ins.busy = false
	ins.mu.Unlock()
}

func (ins *instance) latch(flag uint32) {
	ins.mu.Lock()
	ins.errFlags |= flag
	ins.mu.Unlock()
}

// Controller owns the instance array. A Controller is created
// explicitly and passed to its users; there is no package-level
// controller state.
type Controller struct {
	backend   Backend
	instances [InstanceCount]instance
}

func New(backend Backend) *Controller {
	return &Controller{backend: backend}
}

func (c *Controller) instance(i int) (*instance, error) {
	if i < 0 || i >= InstanceCount {
		return nil, ErrInvalidInstance
	}
	return &c.instances[i], nil
}

// Init prepares an instance: default configuration, empty FIFOs, no
// latched errors. Initializing an already-initialized instance is a
// successful no-op.
func (c *Controller) Init(i int) error {
	ins, err := c.instance(i)
	if err != nil {
		return err
	}
	ins.mu.Lock()
	defer ins.mu.Unlock()
	if ins.initialized {
		return nil
	}
	ins.config = DefaultHWConfig()
	ins.txFIFO.reset()
	ins.rxFIFO.reset()
	ins.errFlags = 0
	ins.busy = false
	ins.initialized = true
	return nil
}

// Deinit releases an instance. Idempotent.
func (c *Controller) Deinit(i int) error {
	ins, err := c.instance(i)
	if err != nil {
		return err
	}
	ins.mu.Lock()
	defer ins.mu.Unlock()
	if !ins.initialized {
		return nil
	}
	ins.initialized = false
	ins.busy = false
	ins.errFlags = 0
	ins.txFIFO.reset()
	ins.rxFIFO.reset()
	return nil
}

// SetConfig applies cfg to an initialized instance and pushes it down
// to the backend. A nil cfg keeps the current configuration and
// succeeds without touching the backend.
func (c *Controller) SetConfig(i int, cfg *HWConfig) error {
	ins, err := c.instance(i)
	if err != nil {
		return err
	}
	ins.mu.Lock()
	defer ins.mu.Unlock()
	if !ins.initialized {
		return ErrNotInitialized
	}
	if cfg == nil {
		return nil
	}
	if err := c.backend.Configure(*cfg); err != nil {
		return err
	}
	ins.config = *cfg
	return nil
}

// Config reports the current configuration of an instance.
func (c *Controller) Config(i int) (HWConfig, error) {
	ins, err := c.instance(i)
	if err != nil {
		return HWConfig{}, err
	}
	ins.mu.Lock()
	defer ins.mu.Unlock()
	if !ins.initialized {
		return HWConfig{}, ErrNotInitialized
	}
	return ins.config, nil
}

func (c *Controller) prepare(i int, t *Transfer) (*instance, error) {
	ins, err := c.instance(i)
	if err != nil {
		return nil, err
	}
	ins.mu.Lock()
	initialized := ins.initialized
	ins.mu.Unlock()
	if !initialized {
		return nil, ErrNotInitialized
	}
	if t == nil || t.Tx == nil || t.Rx == nil {
		return nil, ErrNilBuffer
	}
	if len(t.Tx) != len(t.Rx) {
		return nil, ErrBufferMismatch
	}
	return ins, nil
}

// SyncTransfer runs one blocking transfer on instance i. A zero-length
// transfer succeeds without touching the bus. ErrBusy is returned when
// another transfer holds the instance. The timeout budget is charged
// k*D after byte k, D being the backend's ByteTime; the comparison is
// strict, so a transfer whose last byte lands exactly on the budget
// still succeeds.
func (c *Controller) SyncTransfer(i int, t *Transfer, timeout time.Duration) error {
	ins, err := c.prepare(i, t)
	if err != nil {
		return err
	}
	if len(t.Tx) == 0 {
		return nil
	}
	if !ins.claim() {
		return ErrBusy
	}
	defer ins.release()
	return c.transfer(ins, t, timeout)
}

// AsyncTransfer starts a transfer with the fixed AsyncBudget and
// reports completion through cb. The instance is claimed before
// AsyncTransfer returns, so an overlapping call observes ErrBusy. The
// callback runs on the transfer goroutine, not the caller's.
func (c *Controller) AsyncTransfer(i int, t *Transfer, cb func(error)) error {
	ins, err := c.prepare(i, t)
	if err != nil {
		return err
	}
	if len(t.Tx) == 0 {
		if cb != nil {
			cb(nil)
		}
		return nil
	}
	if !ins.claim() {
		return ErrBusy
	}
	go func() {
		err := c.transfer(ins, t, AsyncBudget)
		ins.release()
		if cb != nil {
			cb(err)
		}
	}()
	return nil
}

// transfer is the engine. The caller must hold the busy claim.
func (c *Controller) transfer(ins *instance, t *Transfer, budget time.Duration) error {
	ins.mu.Lock()
	cfg := ins.config
	ins.mu.Unlock()

	if err := c.backend.SetCS(cfg.CSPin, true); err != nil {
		return err
	}
	defer c.backend.SetCS(cfg.CSPin, false)

	d := c.backend.ByteTime()
	for k := range t.Tx {
		ins.mu.Lock()
		ins.txFIFO.push(t.Tx[k])
		out, _ := ins.txFIFO.pop()
		ins.mu.Unlock()
		in, err := c.backend.Exchange(out)
		if err != nil {
			return err
		}
		ins.mu.Lock()
		ins.rxFIFO.push(in)
		t.Rx[k], _ = ins.rxFIFO.pop()
		ins.mu.Unlock()
		if elapsed := time.Duration(k+1) * d; elapsed > budget {
			ins.latch(ErrFlagTimeout)
			return ErrTimeout
		}
	}
	return nil
}

// Status reports the instance condition as a bitmask: rx FIFO not
// empty, tx FIFO not full, transfer in flight, any latched error.
// Unknown or uninitialized instances report 0.
func (c *Controller) Status(i int) uint32 {
	ins, err := c.instance(i)
	if err != nil {
		return 0
	}
	ins.mu.Lock()
	defer ins.mu.Unlock()
	if !ins.initialized {
		return 0
	}
	var status uint32
	if !ins.rxFIFO.empty() {
		status |= StatusRxNotEmpty
	}
	if !ins.txFIFO.full() {
		status |= StatusTxNotFull
	}
	if ins.busy {
		status |= StatusBusy
	}
	if ins.errFlags != 0 {
		status |= StatusError
	}
	return status
}

// ServiceIRQ clears the latched error causes of an instance. Calling
// it on an uninitialized instance does nothing.
func (c *Controller) ServiceIRQ(i int) {
	ins, err := c.instance(i)
	if err != nil {
		return
	}
	ins.mu.Lock()
	defer ins.mu.Unlock()
	if !ins.initialized {
		return
	}
	ins.errFlags = 0
}

// SetCS drives a chip-select line directly. Transfers manage CS on
// their own; this entry point exists for callers that frame multiple
// transfers under one select.
func (c *Controller) SetCS(i int, pin uint8, assert bool) error {
	ins, err := c.instance(i)
	if err != nil {
		return err
	}
	ins.mu.Lock()
	initialized := ins.initialized
	ins.mu.Unlock()
	if !initialized {
		return ErrNotInitialized
	}
	return c.backend.SetCS(pin, assert)
}
