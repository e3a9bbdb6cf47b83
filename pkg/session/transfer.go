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

package session

import (
	"errors"
	"fmt"
	"time"

	"jinr.ru/greenlab/go-spi/pkg/device"
	"jinr.ru/greenlab/go-spi/pkg/log"
	"jinr.ru/greenlab/go-spi/pkg/spi"
)

// Register read/write wire convention: byte 0 carries the rw flag and
// the 7-bit address, byte 1 is the value (write) or a dummy fill whose
// response slot carries the value (read).
const (
	readFlag  = 0x80
	addrMask  = 0x7F
	dummyByte = 0xFF
)

// Addresses at and above plausibleLimit answering dummyByte usually
// mean a floating bus. Observed only, never turned into an error.
const plausibleLimit = 0xF0

// transfer wraps one controller transfer with the retry policy.
// Argument and lifecycle violations are never retried. Failed attempts
// count into Errors, attempts beyond the first into Retries; an
// all-attempts timeout counts into Timeouts.
func (s *Session) transfer(tx, rx []byte) error {
	if tx == nil || rx == nil {
		return errNullBuffer
	}
	if len(tx) == 0 || len(tx) != len(rx) {
		return errBadLength
	}
	if !s.initialized {
		return errNotInitialized
	}
	timeout := time.Duration(s.config.TimeoutMs) * time.Millisecond
	t := &spi.Transfer{Tx: tx, Rx: rx}
	var last error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if attempt > 1 {
			s.stats.Retries++
			time.Sleep(RetryBackoff)
		}
		last = s.ctrl.SyncTransfer(s.config.Instance, t, timeout)
		if last == nil {
			n := uint32(len(tx))
			s.stats.TxBytes += n
			s.stats.RxBytes += n
			return nil
		}
		s.stats.Errors++
		log.Debug("transfer attempt %d/%d failed: %s", attempt, MaxAttempts, last)
	}
	if errors.Is(last, spi.ErrTimeout) {
		s.stats.Timeouts++
		return &Error{Code: CodeTimeout, Msg: "transfer timed out"}
	}
	return &Error{Code: CodeSPIErr, Msg: "transfer failed: " + last.Error()}
}

// ReadRegister reads one register over the two-byte exchange.
func (s *Session) ReadRegister(addr byte) (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readRegister(addr)
}

func (s *Session) readRegister(addr byte) (byte, error) {
	if !s.initialized {
		return 0, errNotInitialized
	}
	tx := []byte{readFlag | (addr & addrMask), dummyByte}
	rx := make([]byte, 2)
	if err := s.transfer(tx, rx); err != nil {
		return 0, err
	}
	value := rx[1]
	if addr >= plausibleLimit && value == dummyByte {
		log.Warning("questionable reading 0x%02X from register 0x%02X", value, addr)
	}
	return value, nil
}

// WriteRegister writes one register: command byte with the rw flag
// clear, then the value.
func (s *Session) WriteRegister(addr, value byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}
	tx := []byte{addr & addrMask, value}
	rx := make([]byte, 2)
	return s.transfer(tx, rx)
}

// ReadRegisters fills buf from consecutive addresses starting at
// start. A failed read leaves 0 in its slot and the final verdict is
// NOT_OK; the loop always completes so buf is fully written.
func (s *Session) ReadRegisters(start byte, buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}
	if buf == nil {
		return errNullBuffer
	}
	if len(buf) == 0 {
		return errBadLength
	}
	failed := false
	for k := range buf {
		v, err := s.readRegister(start + byte(k))
		if err != nil {
			buf[k] = 0
			failed = true
			continue
		}
		buf[k] = v
	}
	if failed {
		return errReadFailed
	}
	return nil
}

// RunSequence runs the standard readout over the first min(len(rows),
// CaptureDepth) addresses of the readout sequence, recording one row
// per register with its per-read status code. The returned error
// reflects only the LAST read; callers wanting overall success must
// inspect every row's Status.
func (s *Session) RunSequence(rows []Reading) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return 0, errNotInitialized
	}
	if rows == nil {
		return 0, errNullBuffer
	}
	if len(rows) == 0 {
		return 0, errBadLength
	}
	n := len(rows)
	if n > CaptureDepth {
		n = CaptureDepth
	}
	var last error
	for k := 0; k < n; k++ {
		addr := device.ReadoutSequence[k]
		v, err := s.readRegister(addr)
		rows[k] = Reading{Addr: addr, Value: v, Status: byte(CodeOf(err))}
		last = err
	}
	return n, last
}

// Verify checks the identity register against the expected part id.
func (s *Session) Verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}
	v, err := s.readRegister(device.RegMap[device.RegWhoAmI])
	if err != nil {
		return err
	}
	if v != device.WhoAmIValue {
		return &Error{Code: CodeNotOK, Msg: fmt.Sprintf("unexpected WHO_AM_I 0x%02X, want 0x%02X", v, device.WhoAmIValue)}
	}
	return nil
}
