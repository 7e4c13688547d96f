// Copyright 2025 The zkeeper Authors
// This file is part of the zkeeper library.
//
// The zkeeper library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The zkeeper library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the zkeeper library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/probeum/zkeeper/log"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show the effective configuration values",
		ArgsUsage:   "[output file]",
		Flags:       append([]cli.Flag{}, configFlags...),
		Category:    "MISCELLANEOUS COMMANDS",
		Description: "The dumpconfig command shows configuration values after applying defaults, a TOML file, and CLI flags, in that order.",
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
)

// tomlSettings mirrors the teacher's field-name normalization: TOML keys
// match Go struct field names exactly, and an unknown field is a hard
// error rather than silently ignored.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		id := fmt.Sprintf("%s.%s", rt.String(), field)
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// SyncConfig configures the replicated log view and sync decider.
type SyncConfig struct {
	Retention        int    // max entries retained in the in-memory committed window
	TxnLogSizeBudget uint64 // §6 txnLogSizeBudget; 0 disables txn-log-based sync
}

// ReaperConfig configures the container reaper (§6's enumerated keys).
type ReaperConfig struct {
	CheckIntervalMs        int64
	MaxPerMinute           int
	MaxNeverUsedIntervalMs int64
	DryRun                 bool
}

// MetricsConfig toggles the metrics snapshot endpoint printed on exit.
type MetricsConfig struct {
	Enabled bool
}

// Config is zkeeperd's top-level TOML document, one section per
// component, matching the teacher's one-struct-per-subsystem layout.
type Config struct {
	Sync    SyncConfig
	Reaper  ReaperConfig
	Metrics MetricsConfig
}

func defaultConfig() Config {
	return Config{
		Sync: SyncConfig{
			Retention:        1000,
			TxnLogSizeBudget: 64 << 20,
		},
		Reaper: ReaperConfig{
			CheckIntervalMs:        60_000,
			MaxPerMinute:           60,
			MaxNeverUsedIntervalMs: 24 * 60 * 60 * 1000,
			DryRun:                 false,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

func loadConfigFile(file string, cfg *Config) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads defaults, then a TOML file if -config was given, then
// applies CLI flag overrides, in that precedence order.
func makeConfig(ctx *cli.Context) Config {
	cfg := defaultConfig()
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			log.Crit("failed to load config file", "file", file, "err", err)
		}
	}
	applyFlags(ctx, &cfg)
	return cfg
}

func dumpConfig(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	_, err = dump.Write(out)
	return err
}
