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
	"github.com/spf13/cobra"
)

const (
	AddrOptionName  = "addr"
	ValueOptionName = "value"
)

// NewCommand groups the register commands. They talk to a running API
// server, start one with the serve command first.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reg",
		Short: "Read and write device registers through a running API server",
	}
	cmd.AddCommand(NewGetCommand())
	cmd.AddCommand(NewSetCommand())
	cmd.AddCommand(NewDumpCommand())
	return cmd
}
