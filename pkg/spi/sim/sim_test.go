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

package sim

import (
	"testing"
	"time"

	"jinr.ru/greenlab/go-spi/pkg/device"
	"jinr.ru/greenlab/go-spi/pkg/spi"
)

func TestPowerOnImage(t *testing.T) {
	d := NewDevice()
	for addr, want := range device.PowerOn {
		if got := d.Peek(addr); got != want {
			t.Errorf("Peek(%#02x) = %#02x, want %#02x", addr, got, want)
		}
	}
	if got := d.Peek(0x30); got != 0 {
		t.Errorf("unlisted register reads %#02x, want 0x00", got)
	}
	if got := d.Peek(device.RegMap[device.RegWhoAmI]); got != device.WhoAmIValue {
		t.Errorf("who_am_i = %#02x, want %#02x", got, device.WhoAmIValue)
	}
}

// exchange drives one chip-select frame and returns the replies.
func exchange(t *testing.T, d *Device, frame []byte) []byte {
	t.Helper()
	if err := d.SetCS(0, true); err != nil {
		t.Fatalf("SetCS: %v", err)
	}
	out := make([]byte, len(frame))
	for k, tx := range frame {
		var err error
		out[k], err = d.Exchange(tx)
		if err != nil {
			t.Fatalf("Exchange(%#02x): %v", tx, err)
		}
	}
	if err := d.SetCS(0, false); err != nil {
		t.Fatalf("SetCS: %v", err)
	}
	return out
}

func TestReadFrame(t *testing.T) {
	d := NewDevice()
	// command byte and the first dummy byte both answer from the
	// addressed register
	rx := exchange(t, d, []byte{ReadFlag | 0x0F, 0xFF})
	if rx[0] != device.WhoAmIValue || rx[1] != device.WhoAmIValue {
		t.Errorf("read frame replied % x, want 55 55", rx)
	}
}

func TestReadAutoIncrement(t *testing.T) {
	d := NewDevice()
	rx := exchange(t, d, []byte{ReadFlag | 0x10, 0xFF, 0xFF, 0xFF})
	want := []byte{0x12, 0x12, 0x80, 0x00}
	for k := range want {
		if rx[k] != want[k] {
			t.Errorf("rx[%d] = %#02x, want %#02x", k, rx[k], want[k])
		}
	}
}

func TestWriteFrame(t *testing.T) {
	d := NewDevice()
	// the reply carries the previous content, then the byte lands
	rx := exchange(t, d, []byte{0x20, 0x42})
	if rx[1] != 0x67 {
		t.Errorf("write reply = %#02x, want the previous content 0x67", rx[1])
	}
	if got := d.Peek(0x20); got != 0x42 {
		t.Errorf("Peek(0x20) = %#02x, want 0x42", got)
	}
	rx = exchange(t, d, []byte{ReadFlag | 0x20, 0xFF})
	if rx[1] != 0x42 {
		t.Errorf("read back = %#02x, want 0x42", rx[1])
	}
}

func TestWriteAutoIncrement(t *testing.T) {
	d := NewDevice()
	exchange(t, d, []byte{0x20, 0x11, 0x22, 0x33})
	for k, want := range []byte{0x11, 0x22, 0x33} {
		addr := byte(0x20 + k)
		if got := d.Peek(addr); got != want {
			t.Errorf("Peek(%#02x) = %#02x, want %#02x", addr, got, want)
		}
	}
}

func TestChipSelectResetsFrame(t *testing.T) {
	d := NewDevice()
	// leave a frame half-open, then start a fresh one
	d.SetCS(0, true)
	if _, err := d.Exchange(ReadFlag | 0x10); err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	rx := exchange(t, d, []byte{ReadFlag | 0x0F, 0xFF})
	if rx[0] != device.WhoAmIValue {
		t.Errorf("new frame replied %#02x, want the command byte treated as a command", rx[0])
	}
}

func TestReset(t *testing.T) {
	d := NewDevice()
	d.Poke(0x0F, 0xAA)
	d.Poke(0x30, 0xBB)
	d.Reset()
	if got := d.Peek(0x0F); got != device.WhoAmIValue {
		t.Errorf("who_am_i after Reset = %#02x, want %#02x", got, device.WhoAmIValue)
	}
	if got := d.Peek(0x30); got != 0 {
		t.Errorf("scratch register after Reset = %#02x, want 0x00", got)
	}
}

func TestControllerRoundTrip(t *testing.T) {
	c := spi.New(NewDevice())
	if err := c.Init(0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	tr := &spi.Transfer{
		Tx: []byte{ReadFlag | 0x0F, 0xFF},
		Rx: make([]byte, 2),
	}
	if err := c.SyncTransfer(0, tr, 100*time.Millisecond); err != nil {
		t.Fatalf("SyncTransfer: %v", err)
	}
	if tr.Rx[1] != device.WhoAmIValue {
		t.Errorf("rx[1] = %#02x, want %#02x", tr.Rx[1], device.WhoAmIValue)
	}
}
