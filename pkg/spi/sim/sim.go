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

// Package sim provides the software backend: a register device
// simulated well enough to exercise every controller path without
// hardware.
package sim

import (
	"sync"
	"time"

	"jinr.ru/greenlab/go-spi/pkg/device"
	"jinr.ru/greenlab/go-spi/pkg/spi"
)

const (
	// ByteTime is the simulated cost of one byte exchange.
	ByteTime = 10 * time.Microsecond

	ReadFlag = 0x80
	AddrMask = 0x7F

	regCount = 256
)

// Device simulates a register device behind the backend seam. The
// first byte of a chip-select frame is the command {rw:1, addr:7} and
// answers from the addressed register; every following byte answers
// from the address advanced by the byte's offset in the frame, and on
// write frames (rw bit clear) replies with the previous content before
// storing the byte there. Unknown addresses read as 0x00. Chip-select
// edges reset the frame state.
type Device struct {
	mu    sync.Mutex
	regs  [regCount]byte
	cfg   spi.HWConfig
	cmd   byte
	count int
}

var _ spi.Backend = &Device{}

func NewDevice() *Device {
	d := &Device{}
	d.Reset()
	return d
}

// Reset restores the power-on register image and drops any frame in
// progress.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs = [regCount]byte{}
	for addr, val := range device.PowerOn {
		d.regs[addr] = val
	}
	d.count = 0
}

func (d *Device) Configure(cfg spi.HWConfig) error {
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()
	return nil
}

func (d *Device) ByteTime() time.Duration {
	return ByteTime
}

func (d *Device) Exchange(tx byte) (byte, error) {
	time.Sleep(ByteTime)
	d.mu.Lock()
	defer d.mu.Unlock()
	var reply byte
	if d.count == 0 {
		d.cmd = tx
		reply = d.regs[tx&AddrMask]
	} else {
		addr := (d.cmd + byte(d.count-1)) & AddrMask
		reply = d.regs[addr]
		if d.cmd&ReadFlag == 0 {
			d.regs[addr] = tx
		}
	}
	d.count++
	return reply, nil
}

func (d *Device) SetCS(pin uint8, assert bool) error {
	d.mu.Lock()
	d.count = 0
	d.mu.Unlock()
	return nil
}

// Peek reads a register directly, bypassing the bus.
func (d *Device) Peek(addr byte) byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[addr&AddrMask]
}

// Poke writes a register directly, bypassing the bus.
func (d *Device) Poke(addr, val byte) {
	d.mu.Lock()
	d.regs[addr&AddrMask] = val
	d.mu.Unlock()
}
