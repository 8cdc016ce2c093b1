// cmd/rt0013/main.go
package main

import (
	"log"
	"os"

	"github.com/urfave/cli"
)

const Version = "0.1.0"

func main() {
	app := cli.NewApp()
	app.Name = "rt0013"
	app.Usage = "Configure and read RT0013 temperature/humidity logger tags"
	app.Version = Version

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: "rt0013.yaml",
			Usage: "Configuration file (.yaml or .toml)",
		},
		cli.StringFlag{
			Name:  "tag, t",
			Usage: "Tag id from the configuration (default: first tag)",
		},
	}

	channelFlag := cli.StringFlag{
		Name:  "channel",
		Usage: "temperature | humidity",
	}

	app.Commands = []cli.Command{
		{
			Name:   "info",
			Usage:  "Show revisions, control, status, dates and sample counts",
			Action: cmdInfo,
		},
		{
			Name:   "bins",
			Usage:  "Show the bin configuration of a channel",
			Flags:  []cli.Flag{channelFlag},
			Action: cmdBins,
		},
		{
			Name:  "configure",
			Usage: "Write the bin configuration of a channel from a YAML file",
			Flags: []cli.Flag{
				channelFlag,
				cli.StringFlag{Name: "file", Usage: "YAML list of bins"},
				cli.BoolFlag{Name: "fix", Usage: "Raise non-ascending limits instead of failing"},
			},
			Action: cmdConfigure,
		},
		{
			Name:  "read",
			Usage: "Read raw registers",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "addr", Usage: "Register address (0x prefix for hex)"},
				cli.IntFlag{Name: "words", Value: 1, Usage: "Number of registers"},
			},
			Action: cmdRead,
		},
		{
			Name:  "write",
			Usage: "Write one raw register",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "addr", Usage: "Register address (0x prefix for hex)"},
				cli.StringFlag{Name: "value", Usage: "Register value (0x prefix for hex)"},
			},
			Action: cmdWrite,
		},
		{
			Name:   "logging",
			Usage:  "Show or switch sample logging: logging [on|off]",
			Action: cmdLogging,
		},
		{
			Name:  "text",
			Usage: "Show or set the user area text",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "set", Usage: "New text (truncated to the user area)"},
			},
			Action: cmdText,
		},
		{
			Name:   "decode",
			Usage:  "Decode the sample log of a channel",
			Flags:  []cli.Flag{channelFlag},
			Action: cmdDecode,
		},
		{
			Name:   "export",
			Usage:  "Decode the sample log and push new points to OpenTSDB",
			Flags:  []cli.Flag{channelFlag},
			Action: cmdExport,
		},
		{
			Name:  "reset",
			Usage: "Reset the tag and wait for it to come back",
			Flags: []cli.Flag{
				cli.DurationFlag{Name: "poll", Value: tagResetPoll, Usage: "Interval between checks"},
				cli.DurationFlag{Name: "timeout", Value: tagResetTimeout, Usage: "Give up after"},
			},
			Action: cmdReset,
		},
		{
			Name:   "watch",
			Usage:  "Poll every configured tag and publish status blocks until interrupted",
			Action: cmdWatch,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("rt0013: %v", err)
	}
}
