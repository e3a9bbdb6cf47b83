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
	"bytes"
	"os"
	"testing"

	"jinr.ru/greenlab/go-spi/pkg/device"
	"jinr.ru/greenlab/go-spi/pkg/log"
	"jinr.ru/greenlab/go-spi/pkg/spi"
	"jinr.ru/greenlab/go-spi/pkg/spi/sim"
)

func TestReadRegister(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	v, err := s.ReadRegister(0x0F)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if v != device.WhoAmIValue {
		t.Errorf("who_am_i = %#02x, want %#02x", v, device.WhoAmIValue)
	}
	if got := s.Stats(); got != (Stats{TxBytes: 2, RxBytes: 2}) {
		t.Errorf("Stats = %+v, want one clean two-byte exchange", got)
	}
}

func TestReadRegisterTable(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	tests := []struct {
		addr byte
		want byte
	}{
		{0x00, 0x00},
		{0x01, 0x01},
		{0x0F, 0x55},
		{0x10, 0x12},
		{0x11, 0x80},
		{0x20, 0x67},
		{0x25, 0x01},
		{0x30, 0x00},
	}
	for _, tt := range tests {
		v, err := s.ReadRegister(tt.addr)
		if err != nil {
			t.Errorf("ReadRegister(%#02x): %v", tt.addr, err)
			continue
		}
		if v != tt.want {
			t.Errorf("ReadRegister(%#02x) = %#02x, want %#02x", tt.addr, v, tt.want)
		}
	}
}

func TestWriteRegister(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	if err := s.WriteRegister(0x01, 0x42); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	v, err := s.ReadRegister(0x01)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if v != 0x42 {
		t.Errorf("read back %#02x, want 0x42", v)
	}
	if got := s.Stats(); got != (Stats{TxBytes: 4, RxBytes: 4}) {
		t.Errorf("Stats = %+v, want two clean two-byte exchanges", got)
	}
}

func TestQuestionableReadingIsNotAnError(t *testing.T) {
	d := sim.NewDevice()
	d.Poke(0xF0, 0xFF)
	s := newSession(t, d)
	var buf bytes.Buffer
	log.Init(&buf, "warning")
	defer log.Init(os.Stderr, "info")
	v, err := s.ReadRegister(0xF0)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if v != 0xFF {
		t.Errorf("value = %#02x, want 0xFF", v)
	}
	if !bytes.Contains(buf.Bytes(), []byte("questionable")) {
		t.Error("expected a plausibility warning in the log")
	}
}

func TestReadRegisters(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	buf := make([]byte, 3)
	if err := s.ReadRegisters(0x00, buf); err != nil {
		t.Fatalf("ReadRegisters: %v", err)
	}
	want := []byte{0x00, 0x01, 0x00}
	if !bytes.Equal(buf, want) {
		t.Errorf("ReadRegisters = % x, want % x", buf, want)
	}
}

func TestReadRegistersValidation(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	if err := s.ReadRegisters(0x00, nil); CodeOf(err) != CodeNullPtr {
		t.Errorf("nil buffer = %v, want NULL_PTR", err)
	}
	if err := s.ReadRegisters(0x00, []byte{}); CodeOf(err) != CodeInvalidParam {
		t.Errorf("empty buffer = %v, want INVALID_PARAM", err)
	}
	if err := s.Deinit(); err != nil {
		t.Fatalf("Deinit: %v", err)
	}
	// lifecycle outranks argument checks
	if err := s.ReadRegisters(0x00, nil); CodeOf(err) != CodeNotOK {
		t.Errorf("nil buffer on a down session = %v, want NOT_OK", err)
	}
}

func TestReadRegistersPartialFailure(t *testing.T) {
	// calls 3..5 kill all three attempts of the second register
	backend := newWindowBackend(3, 5)
	s := newSession(t, backend)
	buf := make([]byte, 3)
	err := s.ReadRegisters(0x0F, buf)
	if CodeOf(err) != CodeNotOK {
		t.Fatalf("ReadRegisters = %v, want NOT_OK", err)
	}
	want := []byte{0x55, 0x00, 0x12}
	if !bytes.Equal(buf, want) {
		t.Errorf("buf = % x, want % x with 0 in the failed slot", buf, want)
	}
	if got := s.Stats(); got != (Stats{TxBytes: 4, RxBytes: 4, Errors: 3, Retries: 2}) {
		t.Errorf("Stats = %+v, want two clean reads and one exhausted retry", got)
	}
}

func TestRetryRecovers(t *testing.T) {
	// the first call fails, the second attempt goes through
	backend := newWindowBackend(1, 1)
	s := newSession(t, backend)
	v, err := s.ReadRegister(0x0F)
	if err != nil {
		t.Fatalf("ReadRegister: %v", err)
	}
	if v != device.WhoAmIValue {
		t.Errorf("who_am_i = %#02x, want %#02x", v, device.WhoAmIValue)
	}
	if got := s.Stats(); got != (Stats{TxBytes: 2, RxBytes: 2, Errors: 1, Retries: 1}) {
		t.Errorf("Stats = %+v, want one failed attempt and one retry", got)
	}
}

func TestAllAttemptsFail(t *testing.T) {
	backend := newWindowBackend(1, 3)
	s := newSession(t, backend)
	_, err := s.ReadRegister(0x0F)
	if CodeOf(err) != CodeSPIErr {
		t.Fatalf("ReadRegister = %v, want SPI_ERROR", err)
	}
	if got := s.Stats(); got != (Stats{Errors: 3, Retries: 2}) {
		t.Errorf("Stats = %+v, want three failed attempts and two retries", got)
	}
	// the instance is not left busy by the failure
	v, err := s.ReadRegister(0x0F)
	if err != nil {
		t.Fatalf("read after exhausted retries: %v", err)
	}
	if v != device.WhoAmIValue {
		t.Errorf("who_am_i = %#02x, want %#02x", v, device.WhoAmIValue)
	}
}

func TestTimeoutPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutMs = 1
	s := New(spi.New(&slowBackend{Device: sim.NewDevice()}))
	if err := s.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	_, err := s.ReadRegister(0x0F)
	if CodeOf(err) != CodeTimeout {
		t.Fatalf("ReadRegister = %v, want TIMEOUT", err)
	}
	if got := s.Stats(); got != (Stats{Errors: 3, Timeouts: 1, Retries: 2}) {
		t.Errorf("Stats = %+v, want an all-timeout retry round", got)
	}
}

func TestRunSequence(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	rows := make([]Reading, len(device.ReadoutSequence))
	n, err := s.RunSequence(rows)
	if err != nil {
		t.Fatalf("RunSequence: %v", err)
	}
	if n != len(device.ReadoutSequence) {
		t.Fatalf("n = %d, want %d", n, len(device.ReadoutSequence))
	}
	want := []Reading{
		{Addr: 0x0F, Value: 0x55},
		{Addr: 0x00, Value: 0x00},
		{Addr: 0x01, Value: 0x01},
		{Addr: 0x02, Value: 0x00},
		{Addr: 0x03, Value: 0x00},
		{Addr: 0x04, Value: 0x00},
		{Addr: 0x05, Value: 0x00},
		{Addr: 0x06, Value: 0x00},
	}
	for k := range want {
		if rows[k] != want[k] {
			t.Errorf("rows[%d] = %+v, want %+v", k, rows[k], want[k])
		}
	}
}

func TestRunSequenceClamp(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	short := make([]Reading, 3)
	n, err := s.RunSequence(short)
	if err != nil || n != 3 {
		t.Errorf("RunSequence(3 rows) = %d, %v, want 3, nil", n, err)
	}
	long := make([]Reading, CaptureDepth+4)
	n, err = s.RunSequence(long)
	if err != nil || n != CaptureDepth {
		t.Errorf("RunSequence(%d rows) = %d, %v, want %d, nil", len(long), n, err, CaptureDepth)
	}
	for k := CaptureDepth; k < len(long); k++ {
		if long[k] != (Reading{}) {
			t.Errorf("rows beyond the clamp were written: rows[%d] = %+v", k, long[k])
		}
	}
}

func TestRunSequenceReportsLastReadOnly(t *testing.T) {
	// kill the first register; the verdict still follows the last one
	backend := newWindowBackend(1, 3)
	s := newSession(t, backend)
	rows := make([]Reading, len(device.ReadoutSequence))
	n, err := s.RunSequence(rows)
	if err != nil {
		t.Fatalf("RunSequence = %v, want nil when the last read is clean", err)
	}
	if n != len(device.ReadoutSequence) {
		t.Fatalf("n = %d, want %d", n, len(device.ReadoutSequence))
	}
	if rows[0].Status != byte(CodeSPIErr) || rows[0].Value != 0 {
		t.Errorf("rows[0] = %+v, want a failed row with status SPI_ERROR", rows[0])
	}
	for k := 1; k < n; k++ {
		if rows[k].Status != byte(CodeOK) {
			t.Errorf("rows[%d].Status = %#02x, want OK", k, rows[k].Status)
		}
	}
}

func TestRunSequenceValidation(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	if _, err := s.RunSequence(nil); CodeOf(err) != CodeNullPtr {
		t.Errorf("nil rows = %v, want NULL_PTR", err)
	}
	if _, err := s.RunSequence([]Reading{}); CodeOf(err) != CodeInvalidParam {
		t.Errorf("empty rows = %v, want INVALID_PARAM", err)
	}
	if err := s.Deinit(); err != nil {
		t.Fatalf("Deinit: %v", err)
	}
	if _, err := s.RunSequence(make([]Reading, 4)); CodeOf(err) != CodeNotOK {
		t.Errorf("sequence on a down session = %v, want NOT_OK", err)
	}
}

func TestVerify(t *testing.T) {
	d := sim.NewDevice()
	s := newSession(t, d)
	if err := s.Verify(); err != nil {
		t.Errorf("Verify on a healthy device = %v, want nil", err)
	}
	d.Poke(device.RegMap[device.RegWhoAmI], 0xAA)
	if err := s.Verify(); CodeOf(err) != CodeNotOK {
		t.Errorf("Verify with a wrong part id = %v, want NOT_OK", err)
	}
	if err := s.Deinit(); err != nil {
		t.Fatalf("Deinit: %v", err)
	}
	if err := s.Verify(); CodeOf(err) != CodeNotOK {
		t.Errorf("Verify on a down session = %v, want NOT_OK", err)
	}
}
