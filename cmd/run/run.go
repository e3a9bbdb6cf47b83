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

package run

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-spi/pkg/archive"
	"jinr.ru/greenlab/go-spi/pkg/command"
	"jinr.ru/greenlab/go-spi/pkg/config"
	"jinr.ru/greenlab/go-spi/pkg/device"
	"jinr.ru/greenlab/go-spi/pkg/session"
)

const (
	BackendOptionName = "backend"
	ArchiveOptionName = "archive"
)

func NewCommand() *cobra.Command {
	var backend string
	var archiveRun bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the readout sequence once and print a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if backend != "" {
				cfg.Backend = backend
			}
			return runReadout(cfg, cmd.OutOrStdout(), archiveRun)
		},
	}
	cmd.Flags().StringVar(&backend, BackendOptionName, "",
		fmt.Sprintf("Bus backend. One of %s/%s", config.BackendSim, config.BackendBridge))
	cmd.Flags().BoolVar(&archiveRun, ArchiveOptionName, false, "Archive the readings")

	return cmd
}

// runReadout runs one readout sweep and prints every reading followed
// by the session statistics. The command fails when any read in the
// sweep failed.
func runReadout(cfg *config.Config, out io.Writer, archiveRun bool) error {
	sess, closer, err := command.NewLocalSession(cfg)
	if err != nil {
		return err
	}
	defer closer()

	if err := sess.Init(command.SessionConfig(cfg)); err != nil {
		return err
	}
	defer sess.Deinit()

	fmt.Fprintf(out, "go-spi v%s readout\n", session.VersionString())

	rows := make([]session.Reading, len(device.ReadoutSequence))
	n, seqErr := sess.RunSequence(rows)
	if n == 0 && seqErr != nil {
		return seqErr
	}
	if err := sess.SaveData(rows[:n]); err != nil {
		return err
	}
	if err := sess.PrintData(out, rows[:n]); err != nil {
		return err
	}

	stats := sess.Stats()
	fmt.Fprint(out, stats.String())

	if archiveRun {
		arch, err := archive.NewArchive(context.Background(), cfg)
		if err != nil {
			return err
		}
		defer arch.Close()
		if err := arch.Put(rows[:n]); err != nil {
			return err
		}
	}

	failed := 0
	for _, row := range rows[:n] {
		if row.Status != 0 {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d reads failed", failed, n)
	}
	return nil
}
