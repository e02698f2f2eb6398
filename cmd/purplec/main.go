// Command purplec compiles a single Purple-language source file into
// textual LLVM IR. The command tree, flag set, and logging setup are
// grounded on the teacher's src/main.go + util/args.go (hand-rolled flag
// parsing, -o/-v/-q/-l), generalized onto github.com/spf13/cobra,
// github.com/spf13/viper and github.com/sirupsen/logrus per
// SPEC_FULL.md §6/§10.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"purplec/internal/compiler"
	"purplec/internal/config"
	"purplec/internal/diag"
	"purplec/internal/probe"
)

const version = "purplec 0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(int(diag.KindOf(err)))
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "purplec",
		Short:   "Compile Purple-language source to textual LLVM IR",
		Version: version,
	}
	root.AddCommand(newCompileCmd(), newBuildCmd())
	return root
}

// newCompileCmd implements `purplec compile <path.pur>`.
func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <path.pur>",
		Short: "Compile a Purple source file to a .ll file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.Bind(cmd)
			if err != nil {
				return err
			}
			cfg := config.Resolve(v)
			log := newLogger(cfg)

			out := cfg.Out
			if out == "" {
				out = "a.s"
			}

			c := compiler.New(compiler.Options{
				SourcePath: args[0],
				OutPath:    out,
				Triple:     cfg.Triple,
				Datalayout: cfg.Datalayout,
			}, log)

			if err := c.Run(); err != nil {
				log.WithField("kind", diag.KindOf(err).String()).Error(err)
				return err
			}
			log.Infof("wrote %s", out)
			return nil
		},
	}
	addCommonFlags(cmd)
	return cmd
}

// newBuildCmd implements `purplec build <path.pur>`, compiling to LLVM
// IR and then shelling out to clang to assemble/link a native binary
// (spec.md §6.6's downstream-toolchain contract — an external
// collaborator, never implemented by the core engine itself).
func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <path.pur>",
		Short: "Compile and link a Purple source file into a native binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.Bind(cmd)
			if err != nil {
				return err
			}
			cfg := config.Resolve(v)
			log := newLogger(cfg)

			llFile := cfg.Out
			if llFile == "" {
				llFile = "a.ll"
			}
			out := strings.TrimSuffix(llFile, ".ll")
			if out == llFile {
				out = "a.out"
			}

			c := compiler.New(compiler.Options{
				SourcePath: args[0],
				OutPath:    llFile,
				Triple:     cfg.Triple,
				Datalayout: cfg.Datalayout,
			}, log)
			if err := c.Run(); err != nil {
				log.WithField("kind", diag.KindOf(err).String()).Error(err)
				return err
			}
			if err := probe.Link(llFile, out); err != nil {
				log.Error(err)
				return err
			}
			log.Infof("wrote %s", out)
			return nil
		},
	}
	addCommonFlags(cmd)
	return cmd
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out", "o", "", "output file path")
	cmd.Flags().BoolP("quiet", "q", false, "suppress all logging output")
	cmd.Flags().BoolP("verbose", "v", false, "enable debug-level logging")
	cmd.Flags().StringP("log-level", "l", "", "log level: NONE, DEBUG, INFO, WARNING, ERROR, CRITICAL")
	cmd.Flags().String("triple", "", "override the target triple instead of probing the host toolchain")
	cmd.Flags().String("datalayout", "", "override the target datalayout instead of probing the host toolchain")
}

// newLogger builds a logrus.Logger honoring spec.md §6.2's level
// precedence: -l overrides -v which overrides the default (INFO), and
// -q forces NONE regardless of the others.
func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level := logrus.InfoLevel
	if cfg.Verbose {
		level = logrus.DebugLevel
	}
	if cfg.LogLevel != "" {
		if l, err := parseLevel(cfg.LogLevel); err == nil {
			level = l
		}
	}
	log.SetLevel(level)

	if cfg.Quiet {
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.PanicLevel)
	}
	return log
}

// parseLevel maps spec.md §6's named severities onto logrus levels.
func parseLevel(name string) (logrus.Level, error) {
	switch strings.ToUpper(name) {
	case "NONE":
		return logrus.PanicLevel, nil
	case "DEBUG":
		return logrus.DebugLevel, nil
	case "INFO":
		return logrus.InfoLevel, nil
	case "WARNING":
		return logrus.WarnLevel, nil
	case "ERROR":
		return logrus.ErrorLevel, nil
	case "CRITICAL":
		return logrus.FatalLevel, nil
	}
	return 0, fmt.Errorf("unrecognized log level %q", name)
}
