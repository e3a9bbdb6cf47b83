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
	"context"

	"jinr.ru/greenlab/go-spi/pkg/config"
	"jinr.ru/greenlab/go-spi/pkg/srv/api"
	"jinr.ru/greenlab/go-spi/pkg/srv/bridge"
)

// StartApiServer builds a session over the configured backend and
// serves it over HTTP until the listener fails
func StartApiServer(cfg *config.Config) error {
	ctx := context.Background()

	sess, closer, err := NewLocalSession(cfg)
	if err != nil {
		return err
	}
	defer closer()

	if err := sess.Init(SessionConfig(cfg)); err != nil {
		return err
	}
	defer sess.Deinit()

	s, err := api.NewApiServer(ctx, cfg, sess)
	if err != nil {
		return err
	}
	return s.Run()
}

// StartBridgeServer hosts a device behind the configured UDP address
func StartBridgeServer(cfg *config.Config) error {
	ctx := context.Background()

	s, err := bridge.NewServer(ctx, cfg)
	if err != nil {
		return err
	}
	return s.Run()
}
