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
	"errors"
)

var (
	ErrInvalidInstance = errors.New("invalid controller instance")
	ErrNotInitialized  = errors.New("controller instance not initialized")
	ErrNilBuffer       = errors.New("nil transfer buffer")
	ErrBufferMismatch  = errors.New("tx and rx buffer lengths differ")
	ErrBusy            = errors.New("transfer already in progress")
	ErrTimeout         = errors.New("transfer timed out")
)

// Conditions reserved for richer backends. The byte-exchange engine
// never raises them itself.
var (
	ErrRxOverrun  = errors.New("rx fifo overrun")
	ErrTxUnderrun = errors.New("tx fifo underrun")
	ErrParity     = errors.New("parity error")
	ErrModeFault  = errors.New("mode fault")
)
