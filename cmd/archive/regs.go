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

package archive

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-spi/pkg/archive"
	"jinr.ru/greenlab/go-spi/pkg/config"
	"jinr.ru/greenlab/go-spi/pkg/device"
)

func NewRegsCommand() *cobra.Command {
	var db string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "regs",
		Short: "Show the last archived value of every register",
		RunE: func(cmd *cobra.Command, args []string) error {
			if db != "" {
				cfg.DBPath = db
			}
			arch, err := archive.NewArchive(context.Background(), cfg)
			if err != nil {
				return err
			}
			defer arch.Close()

			rows, err := arch.Registers()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, row := range rows {
				fmt.Fprintf(out, "0x%02X %s = 0x%02X\n", row.Addr, device.Name(row.Addr), row.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&db, DBOptionName, "", "Path to the archive database")

	return cmd
}
