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

package ifc

import (
	"jinr.ru/greenlab/go-spi/pkg/session"
)

// ApiClient talks to a running API server
type ApiClient interface {
	// RegRead reads one register, addr and the result are hexadecimal
	RegRead(addr string) (string, error)
	// RegWrite writes one register, addr and value are hexadecimal
	RegWrite(addr, value string) error
	// Sequence runs the readout sequence on the server and returns
	// the saved readings
	Sequence() ([]session.Reading, error)
	// Stats returns the server session statistics
	Stats() (*session.Stats, error)
	// StatsReset resets the server session statistics
	StatsReset() error
	// Export returns the saved readings as address value pairs
	Export() ([]byte, error)
}
