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

package config

import (
	"github.com/spf13/cobra"

	pkgconfig "jinr.ru/greenlab/go-spi/pkg/config"
)

const (
	ForceOptionName = "force"
)

func NewWriteCommand() *cobra.Command {
	var force bool
	cfg := pkgconfig.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write the effective config to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Persist(force)
		},
	}
	cmd.Flags().BoolVar(&force, ForceOptionName, false, "Overwrite an existing config file")

	return cmd
}
