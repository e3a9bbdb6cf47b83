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

// DefaultBaudHz is the bus rate an instance starts with after Init.
const DefaultBaudHz = 1000000

type BitOrder uint8

const (
	MSBFirst BitOrder = iota
	LSBFirst
)

func (o BitOrder) String() string {
	if o == LSBFirst {
		return "lsb"
	}
	return "msb"
}

type CSPolarity uint8

const (
	CSActiveLow CSPolarity = iota
	CSActiveHigh
)

func (p CSPolarity) String() string {
	if p == CSActiveHigh {
		return "active-high"
	}
	return "active-low"
}

// HWConfig is the per-instance hardware setup applied by SetConfig and
// pushed down to the backend.
type HWConfig struct {
	BaudHz      uint32
	ClockSource uint8
	Order       BitOrder
	CPOL        uint8
	CPHA        uint8
	CSPin       uint8
	CSPol       CSPolarity
}

// DefaultHWConfig is the configuration an instance carries right after
// Init: 1 MHz, MSB-first, mode 0, chip select 0 active-low.
func DefaultHWConfig() HWConfig {
	return HWConfig{
		BaudHz: DefaultBaudHz,
		Order:  MSBFirst,
		CSPol:  CSActiveLow,
	}
}

// ModePolarity expands a standard SPI mode 0-3 into its CPOL/CPHA pair.
func ModePolarity(mode uint8) (cpol, cpha uint8) {
	return (mode >> 1) & 1, mode & 1
}
