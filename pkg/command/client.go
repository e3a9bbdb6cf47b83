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

package command

import (
	"errors"
	"fmt"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-spi/pkg/command/ifc"
	"jinr.ru/greenlab/go-spi/pkg/config"
	"jinr.ru/greenlab/go-spi/pkg/session"
	"jinr.ru/greenlab/go-spi/pkg/srv/api"
)

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

var _ ifc.ApiClient = &ApiClient{}

func NewApiClient(cfg *config.Config) ifc.ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("%s/api", cfg.ApiURL()),
	}
}

func (c *ApiClient) regUrl(addr string) string {
	return fmt.Sprintf("%s/reg/%s", c.ApiPrefix, addr)
}

// RegRead sends a request to read a register through the server session
func (c *ApiClient) RegRead(addr string) (string, error) {
	r, err := req.Get(c.regUrl(addr))
	if err != nil {
		return "", err
	}
	if r.Response().StatusCode != 200 {
		return "", errors.New(r.Response().Status)
	}
	reg := &api.RegHex{}
	err = r.ToJSON(reg)
	if err != nil {
		return "", err
	}
	return reg.Value, nil
}

// RegWrite sends a request to write a register through the server session
func (c *ApiClient) RegWrite(addr, value string) error {
	reg := &api.RegHex{
		Addr:  addr,
		Value: value,
	}
	r, err := req.Post(c.regUrl(addr), req.BodyJSON(reg))
	if err != nil {
		return err
	}
	if r.Response().StatusCode != 200 {
		return errors.New(r.Response().Status)
	}
	return nil
}

// Sequence sends a request to run the readout sequence and returns the
// saved readings
func (c *ApiClient) Sequence() ([]session.Reading, error) {
	r, err := req.Get(fmt.Sprintf("%s/sequence", c.ApiPrefix))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	var rows []session.Reading
	err = r.ToJSON(&rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Stats sends a request to read the server session statistics
func (c *ApiClient) Stats() (*session.Stats, error) {
	r, err := req.Get(fmt.Sprintf("%s/stats", c.ApiPrefix))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	stats := &session.Stats{}
	err = r.ToJSON(stats)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// StatsReset sends a request to reset the server session statistics
func (c *ApiClient) StatsReset() error {
	r, err := req.Delete(fmt.Sprintf("%s/stats", c.ApiPrefix))
	if err != nil {
		return err
	}
	if r.Response().StatusCode != 200 {
		return errors.New(r.Response().Status)
	}
	return nil
}

// Export sends a request to export the saved readings and returns the
// raw address value pairs
func (c *ApiClient) Export() ([]byte, error) {
	r, err := req.Get(fmt.Sprintf("%s/export", c.ApiPrefix))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != 200 {
		return nil, errors.New(r.Response().Status)
	}
	return r.ToBytes()
}
