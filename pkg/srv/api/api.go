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

// go-spi API
//
// # RESTful APIs to interact with a go-spi register session
//
// Terms Of Service:
//
// Schemes: http
// Host: localhost:8003
// Version: 1.0.0
// Contact:
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-spi/pkg/config"
	"jinr.ru/greenlab/go-spi/pkg/device"
	"jinr.ru/greenlab/go-spi/pkg/log"
	"jinr.ru/greenlab/go-spi/pkg/session"
	"jinr.ru/greenlab/go-spi/pkg/srv/ifc"
)

// Success response
// swagger:response okResp
type RespOk struct {
	// in:body
	Body struct {
		// HTTP status code 200 - OK
		Code int `json:"code"`
	}
}

// Error Bad Request
// swagger:response badReq
type ReqBadRequest struct {
	// in:body
	Body struct {
		// HTTP status code 400 - Bad Request
		Code int `json:"code"`
	}
}

// RegHex carries a register address and value as hexadecimal strings
type RegHex struct {
	Addr  string `json:"addr"`  // hexadecimal
	Value string `json:"value"` // hexadecimal
}

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	sess *session.Session
}

var _ ifc.ApiServer = &ApiServer{}

func NewApiServer(ctx context.Context, cfg *config.Config, sess *session.Session) (ifc.ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.Api.Address, cfg.Api.Port)

	s := &ApiServer{
		Context: ctx,
		Config:  cfg,
		sess:    sess,
	}
	return s, nil
}

// Run starts the API server
func (s *ApiServer) Run() error {
	log.Info("Starting API server: address: %s port: %d", s.Config.Api.Address, s.Config.Api.Port)

	if err := s.configureRouter(); err != nil {
		return err
	}
	handler := handlers.LoggingHandler(os.Stdout, s.Router)
	handler = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handler)
	httpServer := &http.Server{
		Handler: handler,
		Addr:    fmt.Sprintf("%s:%d", s.Config.Api.Address, s.Config.Api.Port),
	}
	return httpServer.ListenAndServe()
}

func (s *ApiServer) configureRouter() error {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	// swagger:operation GET /reg/{addr} read register
	// ---
	// summary: read a register once through the session
	// description: addr is a hexadecimal address or a register name
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "400":
	//     "$ref": "#/responses/badReq"
	subRouter.HandleFunc("/reg/{addr}", s.handleRegRead()).Methods("GET")
	// swagger:operation POST /reg/{addr} write register
	// ---
	// summary: write a register through the session
	// description: the body carries the value as a hexadecimal string
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "400":
	//     "$ref": "#/responses/badReq"
	subRouter.HandleFunc("/reg/{addr}", s.handleRegWrite()).Methods("POST")
	// swagger:operation GET /sequence run readout sequence
	// ---
	// summary: run the readout sequence and save the readings
	// description: every row carries its own status octet
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "400":
	//     "$ref": "#/responses/badReq"
	subRouter.HandleFunc("/sequence", s.handleSequence()).Methods("GET")
	// swagger:operation GET /stats get statistics
	// ---
	// summary: read the session transfer statistics
	// description: --
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	subRouter.HandleFunc("/stats", s.handleStats()).Methods("GET")
	// swagger:operation DELETE /stats reset statistics
	// ---
	// summary: reset the session transfer statistics
	// description: --
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	subRouter.HandleFunc("/stats", s.handleStatsReset()).Methods("DELETE")
	// swagger:operation GET /export export saved readings
	// ---
	// summary: export the saved readings as address value pairs
	// description: the response body is a binary blob of two bytes per reading
	// responses:
	//   "200":
	//     "$ref": "#/responses/okResp"
	//   "400":
	//     "$ref": "#/responses/badReq"
	subRouter.HandleFunc("/export", s.handleExport()).Methods("GET")
	return s.configureDocs()
}

// httpStatus maps a session error to an HTTP status code
func httpStatus(err error) int {
	switch session.CodeOf(err) {
	case session.CodeNullPtr, session.CodeInvalidParam:
		return http.StatusBadRequest
	case session.CodeTimeout:
		return http.StatusGatewayTimeout
	case session.CodeSPIErr:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *ApiServer) handleRegRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		log.Debug("Handling reg read request: addr: %s", vars["addr"])

		addr, err := device.Addr(vars["addr"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		value, err := s.sess.ReadRegister(addr)
		if err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}

		json.NewEncoder(w).Encode(&RegHex{
			Addr:  fmt.Sprintf("0x%02x", addr),
			Value: fmt.Sprintf("0x%02x", value),
		})
	}
}

func (s *ApiServer) handleRegWrite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		regHex := &RegHex{}
		if err := json.NewDecoder(r.Body).Decode(regHex); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		log.Debug("Handling reg write request: addr: %s value: %s", vars["addr"], regHex.Value)

		addr, err := device.Addr(vars["addr"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		value, err := device.Value(regHex.Value)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.sess.WriteRegister(addr, value); err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
	}
}

func (s *ApiServer) handleSequence() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling sequence request")

		rows := make([]session.Reading, len(device.ReadoutSequence))
		n, err := s.sess.RunSequence(rows)
		if n == 0 && err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		if err := s.sess.SaveData(rows[:n]); err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}

		json.NewEncoder(w).Encode(rows[:n])
	}
}

func (s *ApiServer) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling stats request")

		stats := s.sess.Stats()
		json.NewEncoder(w).Encode(&stats)
	}
}

func (s *ApiServer) handleStatsReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling stats reset request")

		s.sess.ResetStats()
	}
}

func (s *ApiServer) handleExport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling export request")

		buf := make([]byte, 2*session.CaptureDepth)
		n, err := s.sess.ExportData(buf)
		if err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(buf[:n])
	}
}
