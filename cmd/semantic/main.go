// Command semantic evaluates or analyzes term bundles with a chosen domain.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kudryavchik/semantic/pkg/driver"
)

var (
	flagLogLevel string
	flagGitURL   string
	flagGitRev   string
	flagCacheDir string
)

func main() {
	root := &cobra.Command{
		Use:           "semantic",
		Short:         "evaluate term bundles against pluggable value domains",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagGitURL, "git", "", "load the bundle from a git repository URL instead of a directory")
	root.PersistentFlags().StringVar(&flagGitRev, "rev", "", "git revision to check out (default HEAD)")
	root.PersistentFlags().StringVar(&flagCacheDir, "cache", defaultCacheDir(), "cache directory for git checkouts")

	root.AddCommand(newEvalCommand(), newAnalyzeCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "semantic:", err)
		os.Exit(1)
	}
}

func newEvalCommand() *cobra.Command {
	var domainName string
	cmd := &cobra.Command{
		Use:   "eval [bundle-dir]",
		Short: "evaluate a bundle and print the entry document's final value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			domain, err := driver.DomainByName(domainName)
			if err != nil {
				return err
			}
			bundle, err := loadBundle(log, args)
			if err != nil {
				return err
			}
			session := &driver.Session{Domain: domain, Stdout: os.Stdout, Log: log}
			result, err := session.Run(bundle)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), domain.Show(result))
			return nil
		},
	}
	cmd.Flags().StringVar(&domainName, "domain", "concrete", "value domain (concrete, type)")
	return cmd
}

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [bundle-dir]",
		Short: "run the type domain over a bundle, continuing past failed eliminations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			bundle, err := loadBundle(log, args)
			if err != nil {
				return err
			}
			session := driver.NewAnalysisSession(os.Stdout, log)
			result, err := session.Run(bundle)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), session.Domain.Show(result))
			return nil
		},
	}
	return cmd
}

func loadBundle(log *slog.Logger, args []string) (*driver.Bundle, error) {
	loader := driver.NewLoader(log)
	if flagGitURL != "" {
		return loader.LoadGit(flagGitURL, flagGitRev, flagCacheDir)
	}
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	return loader.LoadDir(dir)
}

func newLogger() *slog.Logger {
	var level slog.Level
	switch flagLogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".semantic-cache"
	}
	return base + string(os.PathSeparator) + "semantic"
}
