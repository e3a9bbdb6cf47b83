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
	"testing"
)

func TestCodeValues(t *testing.T) {
	// the numeric values are an external contract
	values := []struct {
		code Code
		num  uint8
		name string
	}{
		{CodeOK, 0, "OK"},
		{CodeNotOK, 1, "NOT_OK"},
		{CodeNullPtr, 2, "NULL_PTR"},
		{CodeTimeout, 3, "TIMEOUT"},
		{CodeInvalidParam, 4, "INVALID_PARAM"},
		{CodeSPIErr, 5, "SPI_ERROR"},
		{CodeCRCErr, 6, "CRC_ERROR"},
		{CodeNotReady, 7, "DEVICE_NOT_READY"},
	}
	for _, v := range values {
		if uint8(v.code) != v.num {
			t.Errorf("%s = %d, want %d", v.name, v.code, v.num)
		}
		if v.code.String() != v.name {
			t.Errorf("String() = %q, want %q", v.code.String(), v.name)
		}
	}
	if got := Code(250).String(); got != "code(250)" {
		t.Errorf("unknown code String() = %q", got)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != CodeOK {
		t.Errorf("CodeOf(nil) = %v, want OK", got)
	}
	if got := CodeOf(errors.New("plain")); got != CodeNotOK {
		t.Errorf("CodeOf(plain error) = %v, want NOT_OK", got)
	}
	err := &Error{Code: CodeTimeout, Msg: "late"}
	if got := CodeOf(err); got != CodeTimeout {
		t.Errorf("CodeOf(session error) = %v, want TIMEOUT", got)
	}
	wrapped := fmt.Errorf("read register: %w", err)
	if got := CodeOf(wrapped); got != CodeTimeout {
		t.Errorf("CodeOf(wrapped session error) = %v, want TIMEOUT", got)
	}
}

func TestErrorString(t *testing.T) {
	err := &Error{Code: CodeInvalidParam, Msg: "instance 9 out of range"}
	if got := err.Error(); got != "INVALID_PARAM: instance 9 out of range" {
		t.Errorf("Error() = %q", got)
	}
	bare := &Error{Code: CodeNotOK}
	if got := bare.Error(); got != "NOT_OK" {
		t.Errorf("Error() = %q", got)
	}
}
