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

// Package bridge turns a bus device into a network service. The server
// hosts a simulated device and answers transfer and chip-select frames,
// the backend makes a remote device look like a local one.
package bridge

import (
	"context"
	"net"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-spi/pkg/config"
	"jinr.ru/greenlab/go-spi/pkg/layers"
	"jinr.ru/greenlab/go-spi/pkg/log"
	"jinr.ru/greenlab/go-spi/pkg/spi/sim"
	"jinr.ru/greenlab/go-spi/pkg/srv"
	"jinr.ru/greenlab/go-spi/pkg/srv/ifc"
)

const (
	readBufferSize = 65536
)

type Server struct {
	srv.Server
	dev *sim.Device
}

var _ ifc.BridgeServer = &Server{}

// NewServer creates a bridge server hosting a freshly powered device
func NewServer(ctx context.Context, cfg *config.Config) (ifc.BridgeServer, error) {
	log.Debug("Initializing bridge server with address: %s", cfg.BridgeAddr())

	uaddr, err := net.ResolveUDPAddr("udp", cfg.BridgeAddr())
	if err != nil {
		return nil, err
	}

	s := &Server{
		Server: srv.Server{
			Context: ctx,
			Config:  cfg,
			UDPAddr: uaddr,
			ChIn:    make(chan srv.InPacket),
			ChOut:   make(chan srv.OutPacket),
		},
		dev: sim.NewDevice(),
	}
	return s, nil
}

func (s *Server) Run() error {
	log.Info("Starting bridge server: %s", s.UDPAddr)

	conn, err := net.ListenUDP("udp", s.UDPAddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	errChan := make(chan error, 1)
	buffer := make([]byte, readBufferSize)

	// Read UDP packets from the wire and put them to the input queue
	go func() {
		for {
			length, addr, readErr := conn.ReadFrom(buffer)
			if readErr != nil {
				errChan <- readErr
				return
			}
			udpAddr, readErr := net.ResolveUDPAddr("udp", addr.String())
			if readErr != nil {
				errChan <- readErr
				return
			}
			captureInfo := gopacket.CaptureInfo{
				Length:        length,
				CaptureLength: length,
				Timestamp:     time.Now(),
				AncillaryData: []interface{}{udpAddr},
			}
			data := make([]byte, length)
			copy(data, buffer[:length])
			s.ChIn <- srv.InPacket{Data: data, CaptureInfo: captureInfo}
		}
	}()

	// Decode requests from the input queue and answer them
	go func() {
		source := gopacket.NewPacketSource(s, layers.BusLayerType)
		for packet := range source.Packets() {
			addr, packetErr := srv.GetAddrPort(packet)
			if packetErr != nil {
				log.Error(packetErr.Error())
				continue
			}
			s.handle(packet, addr)
		}
	}()

	// Read frames from the output queue and send them to the wire
	go func() {
		for {
			outPacket := <-s.ChOut
			_, sendErr := conn.WriteToUDP(outPacket.Data, outPacket.UDPAddr)
			if sendErr != nil {
				log.Error("Error while sending frame to %s", outPacket.UDPAddr)
				errChan <- sendErr
				return
			}
		}
	}()

	select {
	case <-s.Context.Done():
		return s.Context.Err()
	case err = <-errChan:
		return err
	}
}

// handle dispatches one decoded request frame. Requests must carry a
// valid checksum, bad frames are dropped without an answer.
func (s *Server) handle(packet gopacket.Packet, addr *net.UDPAddr) {
	busLayer := packet.Layer(layers.BusLayerType)
	if busLayer == nil {
		return
	}
	bus := busLayer.(*layers.BusLayer)

	if bus.Crc != layers.Checksum(bus.Contents, bus.Payload) {
		log.Warning("Dropping bus frame with wrong checksum from %s", addr)
		return
	}

	switch bus.Type {
	case layers.BusTypeXferRequest:
		if xferLayer := packet.Layer(layers.XferLayerType); xferLayer != nil {
			s.handleXfer(xferLayer.(*layers.XferLayer), bus.Seq, addr)
		}
	case layers.BusTypeCSRequest:
		if csLayer := packet.Layer(layers.CSLayerType); csLayer != nil {
			s.handleCS(csLayer.(*layers.CSLayer), bus.Seq, addr)
		}
	default:
		log.Warning("Dropping bus frame with unexpected type: %d", bus.Type)
	}
}

// handleXfer clocks the request bytes through the device and answers
// with the bytes the device shifted out
func (s *Server) handleXfer(req *layers.XferLayer, seq uint16, addr *net.UDPAddr) {
	log.Debug("Handling xfer request: seq: %d bytes: %d", seq, len(req.Data))

	resp := &layers.XferLayer{
		Status: layers.OpStatusOK,
		Data:   make([]byte, len(req.Data)),
	}
	for i, tx := range req.Data {
		rx, err := s.dev.Exchange(tx)
		if err != nil {
			resp.Status = layers.OpStatusError
			resp.Data = nil
			break
		}
		resp.Data[i] = rx
	}
	s.respond(layers.BusTypeXferResponse, seq, resp, addr)
}

// handleCS applies one chip-select edge to the device
func (s *Server) handleCS(req *layers.CSLayer, seq uint16, addr *net.UDPAddr) {
	log.Debug("Handling cs request: seq: %d pin: %d assert: %t", seq, req.Pin, req.Assert)

	resp := &layers.CSLayer{
		Status: layers.OpStatusOK,
		Pin:    req.Pin,
		Assert: req.Assert,
	}
	if err := s.dev.SetCS(req.Pin, req.Assert); err != nil {
		resp.Status = layers.OpStatusError
	}
	s.respond(layers.BusTypeCSResponse, seq, resp, addr)
}

// respond serializes a response frame and puts it to the output queue.
// Responses echo the request sequence number and carry a zero checksum.
func (s *Server) respond(busType layers.BusType, seq uint16, payload layers.PayloadLayer, addr *net.UDPAddr) {
	bus := &layers.BusLayer{}
	bus.Type = busType
	bus.Sync = layers.BusSync
	bus.Seq = seq
	bus.Len = uint16(payload.Size())

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{}
	if err := gopacket.SerializeLayers(buf, opts, bus, payload); err != nil {
		log.Error("Error while serializing response frame for %s: %s", addr, err)
		return
	}
	s.ChOut <- srv.OutPacket{Data: buf.Bytes(), UDPAddr: addr}
}
