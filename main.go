// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spezifisch/persistctl/logger"
)

var osExit = os.Exit // A variable to allow mocking os.Exit in tests

const DEVELOPMENT = "development"

// Version is the program version; usually set from BuildInfo
var Version string = DEVELOPMENT

type app struct {
	v          *viper.Viper
	logger     *logger.Logger
	configFile string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "persistctl",
		Short:         "Remember player volume, mute, playback rate, captions and audio track",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfig(a.v, a.configFile); err != nil {
				return err
			}
			cfg := loggerConfig(a.v)
			cfg.Console = cmd.ErrOrStderr()
			a.logger = logger.Init(cfg)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "use config `file`")

	root.AddCommand(
		newPlayCmd(a),
		newShowCmd(a),
		newResetCmd(a),
		newProbeCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the persistctl version",
		// no config needed
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "persistctl %s\n", version())
		},
	}
}

func version() string {
	if Version == DEVELOPMENT {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
			return bi.Main.Version
		}
	}
	return Version
}

// return codes:
// 0 - OK
// 1 - generic errors
// 2 - config errors
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var cfgErr *configError
		if errors.As(err, &cfgErr) {
			osExit(2)
			return
		}
		osExit(1)
		return
	}
	osExit(0)
}
