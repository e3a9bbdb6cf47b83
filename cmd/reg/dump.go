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

package reg

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-spi/pkg/command"
	"jinr.ru/greenlab/go-spi/pkg/config"
	"jinr.ru/greenlab/go-spi/pkg/device"
)

func NewDumpCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Read all mapped registers",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)

			var addrs []int
			for _, addr := range device.RegMap {
				addrs = append(addrs, int(addr))
			}
			sort.Ints(addrs)

			for _, addr := range addrs {
				hexAddr := fmt.Sprintf("0x%02x", addr)
				value, err := apiClient.RegRead(hexAddr)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", hexAddr, device.Name(byte(addr)), value)
			}
			return nil
		},
	}
	return cmd
}
