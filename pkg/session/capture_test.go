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
	"strings"
	"testing"

	"jinr.ru/greenlab/go-spi/pkg/device"
	"jinr.ru/greenlab/go-spi/pkg/spi/sim"
)

func TestSaveExportRoundTrip(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	rows := make([]Reading, len(device.ReadoutSequence))
	n, err := s.RunSequence(rows)
	if err != nil {
		t.Fatalf("RunSequence: %v", err)
	}
	if err := s.SaveData(rows[:n]); err != nil {
		t.Fatalf("SaveData: %v", err)
	}
	buf := make([]byte, 2*n)
	m, err := s.ExportData(buf)
	if err != nil {
		t.Fatalf("ExportData: %v", err)
	}
	if m != 2*n {
		t.Fatalf("ExportData = %d bytes, want %d", m, 2*n)
	}
	want := []byte{
		0x0F, 0x55,
		0x00, 0x00,
		0x01, 0x01,
		0x02, 0x00,
		0x03, 0x00,
		0x04, 0x00,
		0x05, 0x00,
		0x06, 0x00,
	}
	if !bytes.Equal(buf, want) {
		t.Errorf("export = % x, want % x", buf, want)
	}
	got := s.Capture()
	if len(got) != n {
		t.Fatalf("Capture() = %d rows, want %d", len(got), n)
	}
	for k := range got {
		if got[k] != rows[k] {
			t.Errorf("Capture()[%d] = %+v, want %+v", k, got[k], rows[k])
		}
	}
}

func TestExportShortBuffer(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	rows := make([]Reading, CaptureDepth)
	n, err := s.RunSequence(rows)
	if err != nil {
		t.Fatalf("RunSequence: %v", err)
	}
	if err := s.SaveData(rows[:n]); err != nil {
		t.Fatalf("SaveData: %v", err)
	}
	buf := make([]byte, 2*n-1)
	m, err := s.ExportData(buf)
	if CodeOf(err) != CodeInvalidParam {
		t.Fatalf("ExportData = %v, want INVALID_PARAM", err)
	}
	if m != 0 {
		t.Errorf("ExportData wrote %d bytes into a rejected buffer", m)
	}
	for k, b := range buf {
		if b != 0 {
			t.Fatalf("rejected buffer was touched at %d: %#02x", k, b)
		}
	}
}

func TestExportEmptyCapture(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	if _, err := s.ExportData(make([]byte, 2*CaptureDepth)); CodeOf(err) != CodeNotOK {
		t.Errorf("export of an empty capture = %v, want NOT_OK", err)
	}
	// with nothing captured the size check cannot reject anything
	if _, err := s.ExportData([]byte{}); CodeOf(err) != CodeNotOK {
		t.Errorf("export of an empty capture into an empty buffer = %v, want NOT_OK", err)
	}
	if _, err := s.ExportData(nil); CodeOf(err) != CodeNullPtr {
		t.Errorf("ExportData(nil) = %v, want NULL_PTR", err)
	}
}

func TestSaveDataValidation(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	if err := s.SaveData(nil); CodeOf(err) != CodeNullPtr {
		t.Errorf("SaveData(nil) = %v, want NULL_PTR", err)
	}
	if err := s.SaveData([]Reading{}); CodeOf(err) != CodeInvalidParam {
		t.Errorf("SaveData(empty) = %v, want INVALID_PARAM", err)
	}
}

func TestSaveDataClamp(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	rows := make([]Reading, CaptureDepth+4)
	for k := range rows {
		rows[k] = Reading{Addr: byte(k), Value: byte(0x40 + k)}
	}
	if err := s.SaveData(rows); err != nil {
		t.Fatalf("SaveData: %v", err)
	}
	got := s.Capture()
	if len(got) != CaptureDepth {
		t.Fatalf("Capture() = %d rows, want the clamp at %d", len(got), CaptureDepth)
	}
	for k := range got {
		if got[k] != rows[k] {
			t.Errorf("Capture()[%d] = %+v, want %+v", k, got[k], rows[k])
		}
	}
	buf := make([]byte, 4*CaptureDepth)
	m, err := s.ExportData(buf)
	if err != nil || m != 2*CaptureDepth {
		t.Errorf("ExportData = %d, %v, want %d, nil", m, err, 2*CaptureDepth)
	}
}

func TestSaveDataReplaces(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	first := make([]Reading, CaptureDepth)
	for k := range first {
		first[k] = Reading{Addr: byte(k)}
	}
	if err := s.SaveData(first); err != nil {
		t.Fatalf("SaveData: %v", err)
	}
	second := []Reading{{Addr: 0x0F, Value: 0x55}, {Addr: 0x10, Value: 0x12}}
	if err := s.SaveData(second); err != nil {
		t.Fatalf("SaveData: %v", err)
	}
	got := s.Capture()
	if len(got) != len(second) {
		t.Fatalf("Capture() = %d rows, want the second save only", len(got))
	}
	m, err := s.ExportData(make([]byte, 2*CaptureDepth))
	if err != nil || m != 2*len(second) {
		t.Errorf("ExportData = %d, %v, want %d, nil", m, err, 2*len(second))
	}
}

func TestReadingString(t *testing.T) {
	ok := Reading{Addr: 0x0F, Value: 0x55}
	if got := ok.String(); got != "Reg[0x0F] = 0x55 [OK]" {
		t.Errorf("String() = %q", got)
	}
	bad := Reading{Addr: 0x10, Value: 0x00, Status: byte(CodeTimeout)}
	if got := bad.String(); got != "Reg[0x10] = 0x00 [FAIL: 0x03]" {
		t.Errorf("String() = %q", got)
	}
}

func TestPrintData(t *testing.T) {
	s := newSession(t, sim.NewDevice())
	var out strings.Builder
	rows := []Reading{
		{Addr: 0x0F, Value: 0x55},
		{Addr: 0x10, Value: 0xFF, Status: byte(CodeSPIErr)},
	}
	if err := s.PrintData(&out, rows); err != nil {
		t.Fatalf("PrintData: %v", err)
	}
	want := "Reg[0x0F] = 0x55 [OK]\nReg[0x10] = 0xFF [FAIL: 0x05]\n"
	if out.String() != want {
		t.Errorf("PrintData wrote %q, want %q", out.String(), want)
	}
	if err := s.PrintData(&out, nil); CodeOf(err) != CodeNullPtr {
		t.Errorf("PrintData(nil) = %v, want NULL_PTR", err)
	}
}

func TestStatsString(t *testing.T) {
	s := Stats{TxBytes: 2, RxBytes: 2}
	out := s.String()
	if !strings.HasPrefix(out, "---\n") {
		t.Errorf("Stats.String() = %q, want a yaml document", out)
	}
	if !strings.Contains(out, "tx_bytes: 2") {
		t.Errorf("Stats.String() = %q, want the counters inside", out)
	}
}
