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

package api

import (
	"encoding/json"

	"github.com/go-openapi/loads"
	"github.com/go-openapi/runtime/middleware"
)

// swaggerJSON describes the API surface. It is embedded so the server
// binary can document itself without build time generation.
const swaggerJSON = `{
  "swagger": "2.0",
  "info": {
    "title": "go-spi API",
    "description": "RESTful APIs to interact with a go-spi register session",
    "version": "1.0.0"
  },
  "schemes": ["http"],
  "basePath": "/api",
  "consumes": ["application/json"],
  "produces": ["application/json"],
  "paths": {
    "/reg/{addr}": {
      "parameters": [
        {"name": "addr", "in": "path", "required": true, "type": "string", "description": "register name or hexadecimal address"}
      ],
      "get": {
        "summary": "read a register once through the session",
        "responses": {
          "200": {"description": "register value", "schema": {"$ref": "#/definitions/RegHex"}},
          "400": {"description": "bad address"}
        }
      },
      "post": {
        "summary": "write a register through the session",
        "parameters": [
          {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegHex"}}
        ],
        "responses": {
          "200": {"description": "written"},
          "400": {"description": "bad address or value"}
        }
      }
    },
    "/sequence": {
      "get": {
        "summary": "run the readout sequence and save the readings",
        "responses": {
          "200": {"description": "readings with per row status", "schema": {"type": "array", "items": {"$ref": "#/definitions/Reading"}}}
        }
      }
    },
    "/stats": {
      "get": {
        "summary": "read the session transfer statistics",
        "responses": {
          "200": {"description": "statistics", "schema": {"$ref": "#/definitions/Stats"}}
        }
      },
      "delete": {
        "summary": "reset the session transfer statistics",
        "responses": {
          "200": {"description": "reset"}
        }
      }
    },
    "/export": {
      "get": {
        "summary": "export the saved readings as address value pairs",
        "produces": ["application/octet-stream"],
        "responses": {
          "200": {"description": "two bytes per reading"},
          "400": {"description": "nothing saved"}
        }
      }
    }
  },
  "definitions": {
    "RegHex": {
      "type": "object",
      "properties": {
        "addr": {"type": "string"},
        "value": {"type": "string"}
      }
    },
    "Reading": {
      "type": "object",
      "properties": {
        "addr": {"type": "integer"},
        "value": {"type": "integer"},
        "status": {"type": "integer"}
      }
    },
    "Stats": {
      "type": "object",
      "properties": {
        "tx_bytes": {"type": "integer"},
        "rx_bytes": {"type": "integer"},
        "errors": {"type": "integer"},
        "timeouts": {"type": "integer"},
        "retries": {"type": "integer"}
      }
    }
  }
}`

// configureDocs mounts the swagger document and a redoc viewer for it
func (s *ApiServer) configureDocs() error {
	doc, err := loads.Analyzed(json.RawMessage(swaggerJSON), "")
	if err != nil {
		return err
	}
	s.Router.Handle("/swagger.json", middleware.Spec("", doc.Raw(), nil))
	s.Router.Handle("/docs", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/swagger.json",
		Title:   "go-spi API",
	}, nil))
	return nil
}
