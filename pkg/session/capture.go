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
	"fmt"
	"io"
)

// Reading is one captured register access.
type Reading struct {
	Addr   byte `json:"addr"`
	Value  byte `json:"value"`
	Status byte `json:"status"`
}

func (r Reading) String() string {
	if r.Status == byte(CodeOK) {
		return fmt.Sprintf("Reg[0x%02X] = 0x%02X [OK]", r.Addr, r.Value)
	}
	return fmt.Sprintf("Reg[0x%02X] = 0x%02X [FAIL: 0x%02X]", r.Addr, r.Value, r.Status)
}

// SaveData replaces the capture with up to CaptureDepth rows. It never
// merges across calls.
func (s *Session) SaveData(rows []Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rows == nil {
		return errNullBuffer
	}
	if len(rows) == 0 {
		return errBadLength
	}
	n := len(rows)
	if n > CaptureDepth {
		n = CaptureDepth
	}
	copy(s.capture[:n], rows[:n])
	s.captured = n
	return nil
}

// ExportData packs the capture as [addr][value] pairs into buf and
// returns the byte count, which is always exactly twice the captured
// row count. A buffer shorter than that is rejected without touching
// it; exporting an empty capture is NOT_OK.
func (s *Session) ExportData(buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if buf == nil {
		return 0, errNullBuffer
	}
	required := 2 * s.captured
	if len(buf) < required {
		return 0, &Error{Code: CodeInvalidParam, Msg: fmt.Sprintf("buffer too small: %d < %d", len(buf), required)}
	}
	if s.captured == 0 {
		return 0, errNoCapture
	}
	for k := 0; k < s.captured; k++ {
		buf[2*k] = s.capture[k].Addr
		buf[2*k+1] = s.capture[k].Value
	}
	return required, nil
}

// Capture returns a copy of the captured rows.
func (s *Session) Capture() []Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]Reading, s.captured)
	copy(rows, s.capture[:s.captured])
	return rows
}

// PrintData writes rows to w, one line per register access. State is
// not touched.
func (s *Session) PrintData(w io.Writer, rows []Reading) error {
	if rows == nil {
		return errNullBuffer
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, r.String()); err != nil {
			return err
		}
	}
	return nil
}
