// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/walteh/research/cmd/research/commands"
	"github.com/walteh/research/cmd/research/opts"
	"github.com/walteh/research/pkg/log"
	"github.com/walteh/research/pkg/remote"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ro := &opts.RootOpts{Console: log.New(os.Stdout, zerolog.InfoLevel)}
	rootCmd := newRootCmd(ro)

	rootCmd.AddCommand(
		commands.NewTopicsCmd(ro),
		commands.NewTreeCmd(ro),
		commands.NewShowCmd(ro),
		commands.NewSearchCmd(ro),
		commands.NewConfigCmd(ro),
		commands.NewCacheCmd(ro),
		commands.NewServeCmd(ro),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ro.Console.Error(remote.UserMessage(err))
		zerolog.Ctx(ctx).Debug().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}
