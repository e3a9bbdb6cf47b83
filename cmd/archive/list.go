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
	"time"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-spi/pkg/archive"
	"jinr.ru/greenlab/go-spi/pkg/config"
)

func NewListCommand() *cobra.Command {
	var db string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived sweeps",
		RunE: func(cmd *cobra.Command, args []string) error {
			if db != "" {
				cfg.DBPath = db
			}
			arch, err := archive.NewArchive(context.Background(), cfg)
			if err != nil {
				return err
			}
			defer arch.Close()

			records, err := arch.Records()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, record := range records {
				fmt.Fprintf(out, "capture %d %s\n", record.Seq, record.Time.Format(time.RFC3339))
				for _, row := range record.Rows {
					fmt.Fprintln(out, row.String())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&db, DBOptionName, "", "Path to the archive database")

	return cmd
}
