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

package spi

import (
	"time"
)

// Backend is the hardware seam of the controller. The transfer engine
// is built entirely on the one-byte full-duplex exchange; everything a
// device does is behind this interface.
//
// Exchange clocks one byte out and returns the byte clocked in.
// ByteTime reports the nominal cost D of a single exchange; the engine
// charges k*D against the transfer budget after byte k. SetCS drives
// the chip-select line; the engine asserts it before the first byte of
// a transfer and deasserts it after the last, so implementations may
// treat the edges as frame delimiters. Configure is invoked whenever
// an instance configuration is applied.
type Backend interface {
	Configure(cfg HWConfig) error
	Exchange(tx byte) (byte, error)
	ByteTime() time.Duration
	SetCS(pin uint8, assert bool) error
}
