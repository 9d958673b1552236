package common

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner to stderr. Production
// runs skip the decoration and keep the structured startup line only.
func PrintBanner(config *Config, logger *Logger) {
	version := GetVersion()
	build := GetBuild()
	commit := GetGitCommit()

	if config.IsProduction() {
		logStartup(logger, config, version, build, commit)
		return
	}

	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 84
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		` .d8888b.  8888888 8888888b.  8888888888  .d88888b.  888      8888888  .d88888b. `,
		`d88P  Y88b   888   888   Y88b 888        d88P" "Y88b 888        888   d88P" "Y88b`,
		`Y88b.        888   888    888 888        888     888 888        888   888     888`,
		` "Y888b.     888   888   d88P 8888888    888     888 888        888   888     888`,
		`    "Y88b.   888   8888888P"  888        888     888 888        888   888     888`,
		`      "888   888   888        888        888     888 888        888   888     888`,
		`Y88b  d88P   888   888        888        Y88b. .d88P 888        888   Y88b. .d88P`,
		` "Y8888P"  8888888 888        888         "Y88888P"  88888888 8888888  "Y88888P" `,
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", hr)
	fmt.Fprintf(os.Stderr, "\n")
	for _, line := range art {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s  Mutual Fund Portfolio Valuation%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", hr)
	fmt.Fprintf(os.Stderr, "\n")

	kvPad := 16
	kvLines := [][2]string{
		{"Version", version},
		{"Build", build},
		{"Commit", commit},
		{"Environment", config.Environment},
		{"History", config.History.Path},
		{"Data", config.Storage.File.Path},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(os.Stderr, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", hr)
	fmt.Fprintf(os.Stderr, "\n")

	logStartup(logger, config, version, build, commit)
}

func logStartup(logger *Logger, config *Config, version, build, commit string) {
	logger.Info().
		Str("version", version).
		Str("build", build).
		Str("commit", commit).
		Str("environment", config.Environment).
		Str("history", config.History.Path).
		Str("data", config.Storage.File.Path).
		Msg("Application started")
}

// PrintSummaryBanner displays the end-of-run summary box to stderr.
// Lines are key/value pairs already formatted for display.
func PrintSummaryBanner(logger *Logger, lines [][2]string) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 46
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", hr)
	fmt.Fprintf(os.Stderr, "%s  SIPFOLIO RUN COMPLETE%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(os.Stderr, "%s\n", hr)
	for _, kv := range lines {
		fmt.Fprintf(os.Stderr, "%s  %-12s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(os.Stderr, "%s\n", hr)
	fmt.Fprintf(os.Stderr, "\n")

	logger.Info().Msg("Run complete")
}
