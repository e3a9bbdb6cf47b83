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
)

// Code is the numeric result taxonomy of the session layer. The values
// are an external contract: they are stored in capture rows and shown
// in CLI and API output.
type Code uint8

const (
	CodeOK Code = iota
	CodeNotOK
	CodeNullPtr
	CodeTimeout
	CodeInvalidParam
	CodeSPIErr
	CodeCRCErr   // reserved
	CodeNotReady // reserved
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeNotOK:
		return "NOT_OK"
	case CodeNullPtr:
		return "NULL_PTR"
	case CodeTimeout:
		return "TIMEOUT"
	case CodeInvalidParam:
		return "INVALID_PARAM"
	case CodeSPIErr:
		return "SPI_ERROR"
	case CodeCRCErr:
		return "CRC_ERROR"
	case CodeNotReady:
		return "DEVICE_NOT_READY"
	}
	return fmt.Sprintf("code(%d)", uint8(c))
}

// Error is a session failure carrying its contract code.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// CodeOf maps an error to its contract code: nil is CodeOK, session
// errors report their own code, anything else degrades to CodeNotOK.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeNotOK
}

var (
	errNotInitialized = &Error{Code: CodeNotOK, Msg: "session not initialized"}
	errNullBuffer     = &Error{Code: CodeNullPtr, Msg: "nil buffer"}
	errBadLength      = &Error{Code: CodeInvalidParam, Msg: "bad buffer length"}
	errNoCapture      = &Error{Code: CodeNotOK, Msg: "capture is empty"}
	errReadFailed     = &Error{Code: CodeNotOK, Msg: "one or more reads failed"}
)
