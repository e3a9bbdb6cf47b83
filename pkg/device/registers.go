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

// Package device describes the bench sensor the toolkit talks to: its
// register map, reset image and the standard readout sequence.
package device

import (
	"fmt"
	"strconv"
	"strings"
)

type RegAlias int

const (
	RegStatus RegAlias = iota
	RegCtrl1
	RegCtrl2
	RegCtrl3
	RegIntCfg
	RegFifoCtrl
	RegOdrCfg
	RegWhoAmI
	RegTempOut
	RegFifoSrc
	RegIntSrc
	RegOutXL
	RegOutXH
	RegOutYL
	RegOutYH
	RegOutZL
	RegOutZH
	RegAliasLimit
)

// RegMap binds register aliases to their 7-bit bus addresses. The
// layout is the usual ST-style one: control block at the bottom,
// WHO_AM_I at 0x0F, output block at 0x20.
var RegMap = map[RegAlias]byte{
	RegStatus:   0x00,
	RegCtrl1:    0x01,
	RegCtrl2:    0x02,
	RegCtrl3:    0x03,
	RegIntCfg:   0x04,
	RegFifoCtrl: 0x05,
	RegOdrCfg:   0x06,
	RegWhoAmI:   0x0F,
	RegTempOut:  0x10,
	RegFifoSrc:  0x11,
	RegIntSrc:   0x12,
	RegOutXL:    0x20,
	RegOutXH:    0x21,
	RegOutYL:    0x22,
	RegOutYH:    0x23,
	RegOutZL:    0x24,
	RegOutZH:    0x25,
}

// Names resolves the lowercase symbolic names accepted on the command
// line and in the API.
var Names = map[string]RegAlias{
	"status":    RegStatus,
	"ctrl1":     RegCtrl1,
	"ctrl2":     RegCtrl2,
	"ctrl3":     RegCtrl3,
	"int_cfg":   RegIntCfg,
	"fifo_ctrl": RegFifoCtrl,
	"odr_cfg":   RegOdrCfg,
	"who_am_i":  RegWhoAmI,
	"temp_out":  RegTempOut,
	"fifo_src":  RegFifoSrc,
	"int_src":   RegIntSrc,
	"out_x_l":   RegOutXL,
	"out_x_h":   RegOutXH,
	"out_y_l":   RegOutYL,
	"out_y_h":   RegOutYH,
	"out_z_l":   RegOutZL,
	"out_z_h":   RegOutZH,
}

// WhoAmIValue identifies the part in the WHO_AM_I register.
const WhoAmIValue = 0x55

// PowerOn is the register image the sensor presents at reset.
// Registers not listed read as 0x00.
var PowerOn = map[byte]byte{
	RegMap[RegCtrl1]:   0x01,
	RegMap[RegWhoAmI]:  WhoAmIValue,
	RegMap[RegTempOut]: 0x12,
	RegMap[RegFifoSrc]: 0x80,
	RegMap[RegOutXL]:   0x67,
	RegMap[RegOutXH]:   0x89,
	RegMap[RegOutYL]:   0xAB,
	RegMap[RegOutYH]:   0xCD,
	RegMap[RegOutZL]:   0xEF,
	RegMap[RegOutZH]:   0x01,
}

// ReadoutSequence is the ordered address list the standard readout
// walks: identity first, then the control block.
var ReadoutSequence = [8]byte{
	RegMap[RegWhoAmI],
	RegMap[RegStatus],
	RegMap[RegCtrl1],
	RegMap[RegCtrl2],
	RegMap[RegCtrl3],
	RegMap[RegIntCfg],
	RegMap[RegFifoCtrl],
	RegMap[RegOdrCfg],
}

// Addr resolves a register name or a numeric literal (decimal or 0x
// hex) to its address.
func Addr(s string) (byte, error) {
	if alias, ok := Names[strings.ToLower(s)]; ok {
		return RegMap[alias], nil
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown register %q", s)
	}
	return byte(n), nil
}

// Value parses a register value literal (decimal or 0x hex).
func Value(s string) (byte, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("bad register value %q", s)
	}
	return byte(n), nil
}

// Name reports the symbolic name of addr, or "" when unmapped.
func Name(addr byte) string {
	for name, alias := range Names {
		if RegMap[alias] == addr {
			return name
		}
	}
	return ""
}
