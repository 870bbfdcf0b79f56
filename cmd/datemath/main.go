package main

import (
	stdErrors "errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/datemath/cli"
)

var app struct {
	Version kong.VersionFlag `help:"Show version information"`
	cli.Commands
}

func main() {
	ctx := kong.Parse(&app,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("datemath"),
		kong.Description("Evaluate date and duration arithmetic such as NOW - 1MONTH / DAY."),
		kong.UsageOnError(),
		kong.Bind(&app.Globals),
		kong.Configuration(kong.JSON, "~/.datemath.json"),
	)

	err := ctx.Run()

	// Failed statements were already reported.
	var cmdErr *cli.CommandError
	if stdErrors.As(err, &cmdErr) {
		os.Exit(cmdErr.ExitCode())
	}
	ctx.FatalIfErrorf(err)
}

// buildVersion combines the version and commit set via ldflags, e.g.
//
//	-X github.com/robinvdvleuten/datemath/cli.Version=v1.0.0
func buildVersion() string {
	version := cli.Version
	if version == "" {
		version = "dev"
	}
	if cli.CommitSHA == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, cli.CommitSHA)
}
