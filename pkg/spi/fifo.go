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

// fifo is a fixed-depth byte ring. Head advances on push, tail on pop.
// Empty when head == tail, full when one more push would collide with
// tail, so the usable capacity is FIFODepth-1 bytes.
type fifo struct {
	buf  [FIFODepth]byte
	head int
	tail int
}

func (f *fifo) reset() {
	f.head = 0
	f.tail = 0
}

func (f *fifo) empty() bool {
	return f.head == f.tail
}

func (f *fifo) full() bool {
	return (f.head+1)%FIFODepth == f.tail
}

func (f *fifo) used() int {
	return (f.head - f.tail + FIFODepth) % FIFODepth
}

func (f *fifo) push(b byte) bool {
	if f.full() {
		return false
	}
	f.buf[f.head] = b
	f.head = (f.head + 1) % FIFODepth
	return true
}

func (f *fifo) pop() (byte, bool) {
	if f.empty() {
		return 0, false
	}
	b := f.buf[f.tail]
	f.tail = (f.tail + 1) % FIFODepth
	return b, true
}
