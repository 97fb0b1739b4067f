package main

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"time"

	"github.com/appscodelabs/vdropdown/dropdown"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

var (
	injectVersions    string
	injectPrefix      string
	injectText        string
	injectHeaderClass string
	injectFallback    string
	injectTimeout     time.Duration
	injectStdout      bool
)

var injectCmd = &cobra.Command{
	Use:   "inject FILE...",
	Short: "Append a version dropdown to the navigation header of HTML pages",
	Long: `Fetches the version list (a flat JSON object of label to URL suffix) and
appends a dropdown linking every version to the navigation header of each page.

Every page gets a fresh fetch. Running inject twice on the same page appends a
second dropdown.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInject,
}

func init() {
	rootCmd.AddCommand(injectCmd)
	injectCmd.Flags().StringVar(&injectVersions, "versions", "", "URL of the versions JSON document")
	injectCmd.Flags().StringVar(&injectPrefix, "prefix", "", "Prefix prepended to every version path")
	injectCmd.Flags().StringVar(&injectText, "text", "Versions", "Button text when the version list is available")
	injectCmd.Flags().StringVar(&injectHeaderClass, "header-class", dropdown.DefaultHeaderClass, "Class marking the navigation header")
	injectCmd.Flags().StringVar(&injectFallback, "fallback", dropdown.FallbackText, "Button text when the version list is unavailable")
	injectCmd.Flags().DurationVar(&injectTimeout, "timeout", defaultTimeout, "Timeout for fetching the version list")
	injectCmd.Flags().BoolVar(&injectStdout, "stdout", false, "Write pages to stdout instead of in place")
	_ = injectCmd.MarkFlagRequired("versions")
}

func runInject(cmd *cobra.Command, args []string) error {
	for _, path := range args {
		if err := injectFile(cmd.Context(), path); err != nil {
			return err
		}
	}
	return nil
}

func injectFile(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, injectTimeout)
	defer cancel()

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening page")
	}
	page, err := dropdown.Load(f)
	f.Close()
	if err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}

	outcome := dropdown.Build(ctx, page, injectVersions, injectPrefix, injectText,
		dropdown.WithLogger(logger),
		dropdown.WithHeaderClass(injectHeaderClass),
		dropdown.WithFallbackText(injectFallback),
	).Wait()
	if outcome.Err != nil {
		logger.Warn("version list unavailable", zap.String("page", path), zap.Error(outcome.Err))
	}
	if outcome.Attached == 0 {
		logger.Warn("page has no navigation header", zap.String("page", path), zap.String("class", injectHeaderClass))
	}
	logger.Info("injected dropdown",
		zap.String("page", path),
		zap.Int("versions", len(outcome.Versions)),
		zap.Int("headers", outcome.Attached),
	)

	if injectStdout {
		return page.Render(os.Stdout)
	}
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return errors.Wrapf(err, "rendering %s", path)
	}
	return ioutil.WriteFile(path, buf.Bytes(), 0644)
}
