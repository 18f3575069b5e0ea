// Copyright 2026 walteh LLC
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
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/renpatch/pkg/config"
	"github.com/walteh/renpatch/pkg/log"
	"github.com/walteh/renpatch/pkg/operation"
	"github.com/walteh/renpatch/pkg/report"
	"github.com/walteh/renpatch/pkg/status"
)

// newPatchCmd creates the patch command
func newPatchCmd() *cobra.Command {
	var (
		output      string
		reportPath  string
		glob        string
		excludeDirs []string
		suffix      string
		dryRun      bool
		backup      bool
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "patch <project-root> <translations.jsonl>",
		Short: "Patch translated JSONL back into a mirror of the project tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.Ctx(cmd.Context())

			cfg, err := loadPatchConfig(logger, args[0], args[1])
			if err != nil {
				pterm.Error.Println(err)
				return err
			}

			// Flags override config file values.
			flags := cmd.Flags()
			if flags.Changed("out") {
				cfg.Output = output
			}
			if flags.Changed("report") {
				cfg.Report = reportPath
			}
			if flags.Changed("glob") {
				cfg.Glob = glob
			}
			if flags.Changed("exclude-dirs") {
				cfg.ExcludeDirs = excludeDirs
			}
			if flags.Changed("suffix") {
				cfg.Suffix = suffix
			}
			if flags.Changed("dry-run") {
				cfg.DryRun = dryRun
			}
			if flags.Changed("backup") {
				cfg.Backup = backup
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				pterm.Error.Println(err)
				return err
			}

			pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"}).Printf("patching %s\n", cfg.String())

			statusMgr := status.New(cfg.Output, logger)
			collector := report.NewCollector()
			console := log.New(os.Stdout, logger.GetLevel())

			op := operation.NewPatchOperation(operation.Options{
				Config:    cfg,
				StatusMgr: statusMgr,
				Collector: collector,
				Logger:    logger,
				Console:   console,
			})

			runner := operation.NewRunner(logger)
			if err := runner.Run(cmd.Context(), op); err != nil {
				pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println("patch failed")
				return errors.Errorf("running patch operation: %w", err)
			}

			if cfg.DryRun {
				pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println("dry-run: no files were written")
			} else {
				pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Printf("report written to %s\n", cfg.Report)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "out_patch", "output directory (mirror tree)")
	cmd.Flags().StringVar(&reportPath, "report", "", "TSV report path (default: beside translations)")
	cmd.Flags().StringVar(&glob, "glob", "**/*.rpy", "glob for files to include")
	cmd.Flags().StringSliceVar(&excludeDirs, "exclude-dirs", []string{"tl"}, "directory names to exclude")
	cmd.Flags().StringVar(&suffix, "suffix", ".zh.rpy", "output file suffix")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "produce the report without writing files")
	cmd.Flags().BoolVar(&backup, "backup", false, "write .bak backups before overwriting output files")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel file workers (0 = sequential)")

	return cmd
}

// loadPatchConfig builds the config from an optional config file plus the
// positional arguments, which always win.
func loadPatchConfig(logger *zerolog.Logger, root, translations string) (*config.Config, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.ParseFile(logger, configFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
	}
	cfg.Root = root
	cfg.Translations = translations
	return cfg, nil
}
