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

package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-spi/pkg/archive"
	"jinr.ru/greenlab/go-spi/pkg/command"
	"jinr.ru/greenlab/go-spi/pkg/config"
	"jinr.ru/greenlab/go-spi/pkg/device"
	"jinr.ru/greenlab/go-spi/pkg/session"
)

const (
	BackendOptionName  = "backend"
	IntervalOptionName = "interval"
	CountOptionName    = "count"
	ArchiveOptionName  = "archive"
)

func NewCommand() *cobra.Command {
	var backend string
	var interval time.Duration
	var count int
	var archiveRuns bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the readout sequence cyclically until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			if backend != "" {
				cfg.Backend = backend
			}
			return watchReadout(cfg, cmd.OutOrStdout(), interval, count, archiveRuns)
		},
	}
	cmd.Flags().StringVar(&backend, BackendOptionName, "",
		fmt.Sprintf("Bus backend. One of %s/%s", config.BackendSim, config.BackendBridge))
	cmd.Flags().DurationVar(&interval, IntervalOptionName, time.Second, "Delay between sweeps")
	cmd.Flags().IntVar(&count, CountOptionName, 0, "Number of sweeps. 0 means run until interrupted")
	cmd.Flags().BoolVar(&archiveRuns, ArchiveOptionName, false, "Archive every sweep")

	return cmd
}

func watchReadout(cfg *config.Config, out io.Writer, interval time.Duration, count int, archiveRuns bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, closer, err := command.NewLocalSession(cfg)
	if err != nil {
		return err
	}
	defer closer()

	if err := sess.Init(command.SessionConfig(cfg)); err != nil {
		return err
	}
	defer sess.Deinit()

	var arch *archive.Archive
	if archiveRuns {
		arch, err = archive.NewArchive(ctx, cfg)
		if err != nil {
			return err
		}
		defer arch.Close()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for done := 0; count == 0 || done < count; done++ {
		rows := make([]session.Reading, len(device.ReadoutSequence))
		n, seqErr := sess.RunSequence(rows)
		if n == 0 && seqErr != nil {
			return seqErr
		}
		if err := sess.SaveData(rows[:n]); err != nil {
			return err
		}

		fmt.Fprintf(out, "sweep %d %s\n", done+1, time.Now().UTC().Format(time.RFC3339))
		if err := sess.PrintData(out, rows[:n]); err != nil {
			return err
		}
		if arch != nil {
			if err := arch.Put(rows[:n]); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}
