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

// BridgeServer hosts a bus device and answers transfer and chip select
// requests sent over UDP.
type BridgeServer interface {
	Run() error
}

// ApiServer exposes the register session over HTTP.
type ApiServer interface {
	Run() error
}
