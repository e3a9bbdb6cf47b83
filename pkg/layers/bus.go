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

// Package layers defines the frame format spoken between the bridge
// backend and the bridge server hosting a device.
package layers

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"jinr.ru/greenlab/go-spi/pkg/log"
)

func init() {
	initUnknownBusTypes()
	initActualBusTypes()
}

const (
	// BusLayerNum identifies the layer
	BusLayerNum = 2031
	// BusSync is the magic number leading every bus frame
	BusSync = 0x5053
	// BusHeaderSize counts the Type, Sync, Seq and Len words
	BusHeaderSize = 8
	// BusTailSize is the trailing checksum word. Requests carry a
	// crc32 over header and payload, responses carry zero.
	BusTailSize = 4
	// BusMaxFrameSize is the max size of a bus frame on the wire
	// including header and checksum
	BusMaxFrameSize = 512
	// BusMaxPayloadSize is the max size of a bus frame payload
	BusMaxPayloadSize = BusMaxFrameSize - BusHeaderSize - BusTailSize
)

type BusType uint16

const (
	BusTypeXferRequest  BusType = 0x0301
	BusTypeXferResponse BusType = 0x0302
	BusTypeCSRequest    BusType = 0x0305
	BusTypeCSResponse   BusType = 0x0306
)

type errorDecoderForBusType int

func (e *errorDecoderForBusType) Decode(data []byte, p gopacket.PacketBuilder) error {
	return e
}

func (e *errorDecoderForBusType) Error() string {
	return fmt.Sprintf("Unable to decode bus type %d", int(*e))
}

var errorDecodersForBusType [65536]errorDecoderForBusType
var BusMetadata [65536]layers.EnumMetadata

func initUnknownBusTypes() {
	for i := 0; i < 65536; i++ {
		errorDecodersForBusType[i] = errorDecoderForBusType(i)
		BusMetadata[i] = layers.EnumMetadata{
			DecodeWith: &errorDecodersForBusType[i],
			Name:       "UnknownBusType",
		}
	}
}

func initActualBusTypes() {
	BusMetadata[BusTypeXferRequest] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(DecodeXferLayer), Name: "Xfer", LayerType: XferLayerType}
	BusMetadata[BusTypeXferResponse] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(DecodeXferLayer), Name: "Xfer", LayerType: XferLayerType}
	BusMetadata[BusTypeCSRequest] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(DecodeCSLayer), Name: "CS", LayerType: CSLayerType}
	BusMetadata[BusTypeCSResponse] = layers.EnumMetadata{DecodeWith: gopacket.DecodeFunc(DecodeCSLayer), Name: "CS", LayerType: CSLayerType}
}

// LayerType returns BusMetadata.LayerType
func (t BusType) LayerType() gopacket.LayerType {
	return BusMetadata[t].LayerType
}

// Decode calls BusMetadata.DecodeWith's decoder
func (t BusType) Decode(data []byte, p gopacket.PacketBuilder) error {
	return BusMetadata[t].DecodeWith.Decode(data, p)
}

// String returns BusMetadata.Name
func (t BusType) String() string {
	return BusMetadata[t].Name
}

type BusHeader struct {
	Type BusType
	Sync uint16
	Seq  uint16
	Len  uint16 // length of the frame payload in bytes
}

type BusLayer struct {
	layers.BaseLayer
	BusHeader
	Crc uint32
}

var BusLayerType = gopacket.RegisterLayerType(BusLayerNum,
	gopacket.LayerTypeMetadata{Name: "BusLayerType", Decoder: gopacket.DecodeFunc(decodeBusLayer)})

func (bl *BusLayer) LayerType() gopacket.LayerType {
	return BusLayerType
}

// SerializeHeader serializes only the header (not the tail) to a
// buffer. The checksum depends on the serialized header and payload,
// so senders compute it over these bytes before filling the tail.
func (bl *BusLayer) SerializeHeader(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], uint16(bl.Type))
	binary.LittleEndian.PutUint16(buf[2:4], bl.Sync)
	binary.LittleEndian.PutUint16(buf[4:6], bl.Seq)
	binary.LittleEndian.PutUint16(buf[6:8], bl.Len)
}

// Checksum computes the crc32 checksum of a frame given its serialized
// header and payload bytes
func Checksum(header, payload []byte) uint32 {
	frame := make([]byte, 0, len(header)+len(payload))
	frame = append(frame, header...)
	frame = append(frame, payload...)
	return crc32.ChecksumIEEE(frame)
}

// SerializeTo serializes the layer into bytes and writes the bytes to the SerializeBuffer
func (bl *BusLayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	headerBytes, err := b.PrependBytes(BusHeaderSize)
	if err != nil {
		return err
	}
	bl.SerializeHeader(headerBytes)

	tailBytes, err := b.AppendBytes(BusTailSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(tailBytes[0:4], bl.Crc)
	return nil
}

// DecodeFromBytes attempts to decode the byte slice as a bus frame
func (bl *BusLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < BusHeaderSize+BusTailSize {
		df.SetTruncated()
		return errors.New("bus frame too short")
	}

	if binary.LittleEndian.Uint16(data[2:4]) != BusSync {
		log.Debug("Bus sync is invalid")
		return fmt.Errorf("Wrong bus sync. Must be 0x%04x", BusSync)
	}

	bl.BaseLayer = layers.BaseLayer{
		Contents: data[0:BusHeaderSize],
		Payload:  data[BusHeaderSize : len(data)-BusTailSize],
	}

	bl.Type = BusType(binary.LittleEndian.Uint16(data[0:2]))
	bl.Sync = binary.LittleEndian.Uint16(data[2:4])
	bl.Seq = binary.LittleEndian.Uint16(data[4:6])
	bl.Len = binary.LittleEndian.Uint16(data[6:8])
	bl.Crc = binary.LittleEndian.Uint32(data[len(data)-BusTailSize:])

	if int(bl.Len) != len(bl.Payload) {
		return fmt.Errorf("Wrong bus frame length: header says %d, payload is %d", bl.Len, len(bl.Payload))
	}

	return nil
}

func (bl *BusLayer) NextLayerType() gopacket.LayerType {
	return bl.Type.LayerType()
}

func decodeBusLayer(data []byte, p gopacket.PacketBuilder) error {
	bl := &BusLayer{}
	err := bl.DecodeFromBytes(data, p)
	if err != nil {
		log.Error("Error while decoding bus layer: %s", err)
		return err
	}
	p.AddLayer(bl)
	return p.NextDecoder(bl.NextLayerType())
}
