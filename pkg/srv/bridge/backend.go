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

package bridge

import (
	"net"
	"sync"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-spi/pkg/config"
	"jinr.ru/greenlab/go-spi/pkg/layers"
	"jinr.ru/greenlab/go-spi/pkg/log"
	"jinr.ru/greenlab/go-spi/pkg/spi"
	"jinr.ru/greenlab/go-spi/pkg/spi/sim"
	"jinr.ru/greenlab/go-spi/pkg/srv"
)

const (
	// RequestTimeout bounds the wait for a response frame. A lost
	// frame surfaces as a transfer error, not a budget timeout.
	RequestTimeout = 500 * time.Millisecond
)

// Backend drives a device hosted by a bridge server. Every exchange and
// chip-select edge is one request frame answered synchronously, so the
// device frame state lives entirely on the server side.
type Backend struct {
	mu   sync.Mutex
	conn *net.UDPConn
	seq  uint16
	buf  []byte
}

var _ spi.Backend = &Backend{}

// NewBackend connects to the bridge server named by the config
func NewBackend(cfg *config.Config) (*Backend, error) {
	log.Debug("Initializing bridge backend with address: %s", cfg.BridgeAddr())

	uaddr, err := net.ResolveUDPAddr("udp", cfg.BridgeAddr())
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, uaddr)
	if err != nil {
		return nil, err
	}
	return &Backend{
		conn: conn,
		buf:  make([]byte, layers.BusMaxFrameSize),
	}, nil
}

func (b *Backend) Close() error {
	return b.conn.Close()
}

// NextSeq returns the next frame sequence number
func (b *Backend) NextSeq() uint16 {
	seq := b.seq
	b.seq++
	return seq
}

// Configure records the host side bus parameters. The hosted device
// samples on any edge, so nothing is sent on the wire.
func (b *Backend) Configure(cfg spi.HWConfig) error {
	return nil
}

// ByteTime reports the hosted device cost of one exchange. The network
// round trip is not charged against transfer budgets.
func (b *Backend) ByteTime() time.Duration {
	return sim.ByteTime
}

// Exchange clocks one byte through the remote device
func (b *Backend) Exchange(tx byte) (byte, error) {
	packet, err := b.request(layers.BusTypeXferRequest, &layers.XferLayer{Data: []byte{tx}})
	if err != nil {
		return 0, err
	}

	xferLayer := packet.Layer(layers.XferLayerType)
	if xferLayer == nil {
		return 0, srv.ErrBadFrame{What: "response carries no xfer payload"}
	}
	resp := xferLayer.(*layers.XferLayer)
	if resp.Status != layers.OpStatusOK {
		return 0, srv.ErrRemoteOp{Status: resp.Status}
	}
	if len(resp.Data) != 1 {
		return 0, srv.ErrBadFrame{What: "xfer response data length mismatch"}
	}
	return resp.Data[0], nil
}

// SetCS applies one chip-select edge to the remote device
func (b *Backend) SetCS(pin uint8, assert bool) error {
	packet, err := b.request(layers.BusTypeCSRequest, &layers.CSLayer{Pin: pin, Assert: assert})
	if err != nil {
		return err
	}

	csLayer := packet.Layer(layers.CSLayerType)
	if csLayer == nil {
		return srv.ErrBadFrame{What: "response carries no cs payload"}
	}
	resp := csLayer.(*layers.CSLayer)
	if resp.Status != layers.OpStatusOK {
		return srv.ErrRemoteOp{Status: resp.Status}
	}
	return nil
}

// request sends one request frame and waits for the matching response.
// Requests carry a crc32 checksum over the serialized header and
// payload so the server can drop corrupted frames.
func (b *Backend) request(busType layers.BusType, payload layers.PayloadLayer) (gopacket.Packet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if payload.Size() > layers.BusMaxPayloadSize {
		return nil, srv.ErrBadFrame{What: "request payload too long"}
	}

	bus := &layers.BusLayer{}
	bus.Type = busType
	bus.Sync = layers.BusSync
	bus.Seq = b.NextSeq()
	bus.Len = uint16(payload.Size())

	headerBytes := make([]byte, layers.BusHeaderSize)
	bus.SerializeHeader(headerBytes)
	payloadBytes := make([]byte, payload.Size())
	payload.Serialize(payloadBytes)
	bus.Crc = layers.Checksum(headerBytes, payloadBytes)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}
	if err := gopacket.SerializeLayers(buf, opts, bus, payload); err != nil {
		return nil, err
	}
	if _, err := b.conn.Write(buf.Bytes()); err != nil {
		return nil, err
	}

	if err := b.conn.SetReadDeadline(time.Now().Add(RequestTimeout)); err != nil {
		return nil, err
	}
	length, err := b.conn.Read(b.buf)
	if err != nil {
		return nil, err
	}

	packet := gopacket.NewPacket(b.buf[:length], layers.BusLayerType, gopacket.Default)
	busLayer := packet.Layer(layers.BusLayerType)
	if busLayer == nil {
		return nil, srv.ErrBadFrame{What: "response is not a bus frame"}
	}
	resp := busLayer.(*layers.BusLayer)
	if resp.Seq != bus.Seq {
		return nil, srv.ErrSeqMismatch{Want: bus.Seq, Got: resp.Seq}
	}
	return packet, nil
}
