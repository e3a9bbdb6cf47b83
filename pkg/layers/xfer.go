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

package layers

import (
	"errors"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// XferLayerNum identifies the layer
	XferLayerNum = 2032
	// CSLayerNum identifies the layer
	CSLayerNum = 2033
)

// Op status octet carried by both payload layers.
const (
	OpStatusOK    = 0
	OpStatusError = 1
)

// PayloadLayer is implemented by bus frame payloads. Size reports the
// number of octets Serialize writes.
type PayloadLayer interface {
	gopacket.SerializableLayer
	Serialize(buf []byte)
	Size() int
}

var _ PayloadLayer = &XferLayer{}
var _ PayloadLayer = &CSLayer{}

// XferLayer carries the bytes of one exchange. A request holds the
// bytes to clock out, the response holds the bytes clocked in, one per
// request byte. Requests carry status 0; a response status other than
// OpStatusOK voids its data.
type XferLayer struct {
	layers.BaseLayer
	Status byte
	Data   []byte
}

var XferLayerType = gopacket.RegisterLayerType(XferLayerNum,
	gopacket.LayerTypeMetadata{Name: "XferLayerType", Decoder: gopacket.DecodeFunc(DecodeXferLayer)})

func (x *XferLayer) LayerType() gopacket.LayerType {
	return XferLayerType
}

// Size returns the number of octets the transfer payload serializes to
func (x *XferLayer) Size() int {
	return 1 + len(x.Data)
}

// Serialize serializes the transfer payload to a buffer of at least
// Size() bytes.
func (x *XferLayer) Serialize(buf []byte) {
	buf[0] = x.Status
	copy(buf[1:], x.Data)
}

// SerializeTo serializes the transfer payload into bytes and writes the bytes to the SerializeBuffer
func (x *XferLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.AppendBytes(1 + len(x.Data))
	if err != nil {
		return err
	}
	x.Serialize(bytes)
	return nil
}

func (x *XferLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 1 {
		df.SetTruncated()
		return errors.New("xfer payload too short")
	}
	x.BaseLayer = layers.BaseLayer{
		Contents: data[:],
		Payload:  []byte{},
	}
	x.Status = data[0]
	x.Data = data[1:]
	return nil
}

func DecodeXferLayer(data []byte, p gopacket.PacketBuilder) error {
	x := &XferLayer{}
	err := x.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(x)
	return nil
}

// CSLayer carries one chip-select edge.
type CSLayer struct {
	layers.BaseLayer
	Status byte
	Pin    byte
	Assert bool
}

var CSLayerType = gopacket.RegisterLayerType(CSLayerNum,
	gopacket.LayerTypeMetadata{Name: "CSLayerType", Decoder: gopacket.DecodeFunc(DecodeCSLayer)})

func (cs *CSLayer) LayerType() gopacket.LayerType {
	return CSLayerType
}

// Size returns the number of octets the chip-select payload serializes to
func (cs *CSLayer) Size() int {
	return 3
}

// Serialize serializes the chip-select payload to a buffer of at least
// Size() bytes.
func (cs *CSLayer) Serialize(buf []byte) {
	buf[0] = cs.Status
	buf[1] = cs.Pin
	if cs.Assert {
		buf[2] = 1
	} else {
		buf[2] = 0
	}
}

// SerializeTo serializes the chip-select payload into bytes and writes the bytes to the SerializeBuffer
func (cs *CSLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.AppendBytes(3)
	if err != nil {
		return err
	}
	cs.Serialize(bytes)
	return nil
}

func (cs *CSLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < 3 {
		df.SetTruncated()
		return errors.New("cs payload too short")
	}
	cs.BaseLayer = layers.BaseLayer{
		Contents: data[:],
		Payload:  []byte{},
	}
	cs.Status = data[0]
	cs.Pin = data[1]
	cs.Assert = data[2] != 0
	return nil
}

func DecodeCSLayer(data []byte, p gopacket.PacketBuilder) error {
	cs := &CSLayer{}
	err := cs.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(cs)
	return nil
}
