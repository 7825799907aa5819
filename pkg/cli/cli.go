// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Name is the executable name without extension.
var Name = func() string {
	if len(os.Args) == 0 {
		return "monitorctl"
	}
	name := filepath.Base(os.Args[0])
	return strings.TrimSuffix(name, filepath.Ext(name))
}()

// Option defines command line options.
type Option struct {
	Config      string        `short:"c" long:"config" description:"analysis config file (YAML)"`
	Window      time.Duration `short:"w" long:"window" description:"series window, overrides the config (e.g. 6h)"`
	Debug       bool          `short:"d" long:"debug" description:"debug mode"`
	Version     bool          `short:"v" long:"version" description:"display the version and exit"`
	SelfMetrics bool          `long:"self-metrics" description:"print this run's own metrics to stderr"`
	Files       []string      `no-flag:"true"`
}

// Parse returns parsed command-line flags in Option struct.
// Positional arguments are scrape files.
func Parse(args []string) (*Option, error) {
	opt := &Option{}
	parser := flags.NewParser(opt, flags.Default)
	parser.Name = Name
	parser.Usage = "[OPTIONS] scrape-file..."

	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	if len(rest) > 1 {
		opt.Files = rest[1:]
	}

	return opt, nil
}

func IsHelp(err error) bool {
	return flags.WroteHelp(err)
}
