// cmd/rt0013/commands.go
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"

	"github.com/tamzrod/rt0013/internal/config"
	"github.com/tamzrod/rt0013/internal/regmap"
	"github.com/tamzrod/rt0013/internal/session"
	"github.com/tamzrod/rt0013/internal/state"
	"github.com/tamzrod/rt0013/internal/tag"
	"github.com/tamzrod/rt0013/internal/writer"
)

const (
	tagResetPoll    = tag.DefaultResetPoll
	tagResetTimeout = tag.DefaultResetTimeout
)

// loadConfig loads, validates and normalizes the global --config file.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	config.Normalize(cfg)
	return cfg, nil
}

// openTag opens the tag selected by --tag.
func openTag(c *cli.Context) (*session.Session, config.TagConfig, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, config.TagConfig{}, nil, err
	}
	tc, ok := cfg.FindTag(c.GlobalString("tag"))
	if !ok {
		return nil, config.TagConfig{}, nil, errors.Errorf("tag %q not in configuration", c.GlobalString("tag"))
	}
	s, err := session.Open(tc, log.Default())
	if err != nil {
		return nil, config.TagConfig{}, nil, errors.Wrapf(err, "open tag %s", tc.ID)
	}
	return s, tc, cfg, nil
}

func channels(c *cli.Context, all bool) ([]regmap.Channel, error) {
	s := c.String("channel")
	if s == "" {
		if all {
			return regmap.Channels[:], nil
		}
		return nil, errors.New("--channel is required")
	}
	ch, err := regmap.ParseChannel(s)
	if err != nil {
		return nil, err
	}
	return []regmap.Channel{ch}, nil
}

func parseU16(name, s string) (uint16, error) {
	if s == "" {
		return 0, errors.Errorf("--%s is required", name)
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "--%s", name)
	}
	return uint16(v), nil
}

func formatTime(t time.Time) string {
	if t.Unix() == 0 {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func cmdInfo(c *cli.Context) error {
	s, tc, _, err := openTag(c)
	if err != nil {
		return err
	}
	defer s.Close()

	m := s.Tag
	// one sweep; every accessor below is a cache hit
	if err := m.PrefetchAll(); err != nil {
		return err
	}
	return printInfo(c.App.Writer, tc, m)
}

func printInfo(w io.Writer, tc config.TagConfig, m *tag.Manager) error {
	fw, err := m.FirmwareRevision()
	if err != nil {
		return err
	}
	hw, err := m.HardwareRevision()
	if err != nil {
		return err
	}
	st, err := m.Status()
	if err != nil {
		return err
	}
	delay, err := m.SamplingDelay()
	if err != nil {
		return err
	}
	initDate, err := m.InitDate()
	if err != nil {
		return err
	}
	shipDate, err := m.ShippingDate()
	if err != nil {
		return err
	}
	stopDate, err := m.StopDate()
	if err != nil {
		return err
	}
	eta, err := m.ETA()
	if err != nil {
		return err
	}
	text, err := m.UserText()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "tag:            %s %s\n", tc.ID, tc.Name)
	fmt.Fprintf(w, "firmware:       %s\n", fw)
	fmt.Fprintf(w, "hardware:       %s\n", hw)
	for _, b := range []regmap.CtrlBit{regmap.CtrlReset, regmap.CtrlLoggingEnable, regmap.CtrlDelayEnable, regmap.CtrlRFSensitivity} {
		on, err := m.Control(b)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "control %-6s  %v\n", b.String()+":", on)
	}
	fmt.Fprintf(w, "battery:        %s\n", st.Battery)
	fmt.Fprintf(w, "eta alarm:      %v\n", st.ETAAlarm)
	fmt.Fprintf(w, "sampling delay: %d s\n", delay)
	fmt.Fprintf(w, "init date:      %s\n", formatTime(initDate))
	fmt.Fprintf(w, "shipping date:  %s\n", formatTime(shipDate))
	fmt.Fprintf(w, "stop date:      %s\n", formatTime(stopDate))
	fmt.Fprintf(w, "eta:            %d s\n", eta)

	for _, ch := range regmap.Channels {
		n, err := m.SamplesNum(ch)
		if err != nil {
			return err
		}
		last, err := m.LastSample(ch)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-11s     last %.2f %s, %d samples, memory full %v, bin alarm %v\n",
			ch.String()+":", last, ch.Unit(), n, st.MemFull(ch), st.BinAlarm(ch))
	}
	fmt.Fprintf(w, "user text:      %q\n", text)
	return nil
}

func cmdBins(c *cli.Context) error {
	chs, err := channels(c, true)
	if err != nil {
		return err
	}
	s, _, _, err := openTag(c)
	if err != nil {
		return err
	}
	defer s.Close()

	w := c.App.Writer
	for _, ch := range chs {
		bins, err := s.Tag.Bins(ch)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s (%s)\n", ch, ch.Unit())
		fmt.Fprintf(w, "  bin  enabled  limit    interval  threshold  samples  times  count\n")
		for i, b := range bins {
			on, err := s.Tag.BinEnabled(regmap.FlagCounter, ch, i)
			if err != nil {
				return err
			}
			n, err := s.Tag.BinCounter(ch, i)
			if err != nil {
				return err
			}
			threshold := strconv.Itoa(int(b.Threshold))
			if b.Threshold == regmap.ThresholdNever {
				threshold = "never"
			}
			fmt.Fprintf(w, "  %-3d  %-7v  %-7.2f  %-8d  %-9s  %-7v  %-5v  %d\n",
				i, on, b.HighLimit, b.SampleTime, threshold, b.StoreSamples, b.StoreTimes, n)
		}
	}
	return nil
}

// binEntry is one entry of a configure file. Omitted fields take the factory default.
type binEntry struct {
	HighLimit    *float64 `yaml:"high_limit"`
	Threshold    *uint16  `yaml:"threshold"`
	StoreSamples *bool    `yaml:"store_samples"`
	StoreTimes   *bool    `yaml:"store_times"`
	SampleTime   uint16   `yaml:"sample_time"`
}

func readBinFile(ch regmap.Channel, path string) ([]tag.Bin, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "read bins")
	}
	defer f.Close()

	var entries []binEntry
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil {
		return nil, errors.Wrap(err, "parse bins")
	}
	bins := make([]tag.Bin, len(entries))
	for i, e := range entries {
		b := tag.DefaultBin(ch, i)
		if e.HighLimit != nil {
			b.HighLimit = *e.HighLimit
		}
		if e.StoreSamples != nil {
			b.StoreSamples = *e.StoreSamples
		}
		if e.StoreTimes != nil {
			b.StoreTimes = *e.StoreTimes
		}
		if e.Threshold != nil {
			b.Threshold = *e.Threshold
		}
		if e.SampleTime != 0 {
			b.SampleTime = e.SampleTime
		}
		bins[i] = b
	}
	return bins, nil
}

func cmdConfigure(c *cli.Context) error {
	chs, err := channels(c, false)
	if err != nil {
		return err
	}
	ch := chs[0]
	if c.String("file") == "" {
		return errors.New("--file is required")
	}
	bins, err := readBinFile(ch, c.String("file"))
	if err != nil {
		return err
	}
	bins, err = tag.ValidateBins(ch, bins, c.Bool("fix"))
	if err != nil {
		return err
	}

	s, tc, _, err := openTag(c)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Tag.ConfigureBins(ch, bins); err != nil {
		return err
	}
	log.Printf("configured %d %s bins (tag=%s)", len(bins), ch, tc.ID)
	return nil
}

func cmdRead(c *cli.Context) error {
	addr, err := parseU16("addr", c.String("addr"))
	if err != nil {
		return err
	}
	s, _, _, err := openTag(c)
	if err != nil {
		return err
	}
	defer s.Close()

	vals, err := s.Tag.ReadRegisters(addr, c.Int("words"))
	if err != nil {
		return err
	}
	for i, v := range vals {
		fmt.Fprintf(c.App.Writer, "0x%04X  0x%04X  %d\n", int(addr)+i, v, v)
	}
	return nil
}

func cmdWrite(c *cli.Context) error {
	addr, err := parseU16("addr", c.String("addr"))
	if err != nil {
		return err
	}
	val, err := parseU16("value", c.String("value"))
	if err != nil {
		return err
	}
	s, _, _, err := openTag(c)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.Tag.WriteRegister(addr, val)
}

func cmdLogging(c *cli.Context) error {
	s, _, _, err := openTag(c)
	if err != nil {
		return err
	}
	defer s.Close()

	switch c.Args().First() {
	case "":
		on, err := s.Tag.Control(regmap.CtrlLoggingEnable)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "logging: %v\n", on)
		return nil
	case "on":
		return s.Tag.SetControl(regmap.CtrlLoggingEnable, true)
	case "off":
		return s.Tag.SetControl(regmap.CtrlLoggingEnable, false)
	}
	return errors.Errorf("logging: unknown argument %q", c.Args().First())
}

func cmdText(c *cli.Context) error {
	s, tc, _, err := openTag(c)
	if err != nil {
		return err
	}
	defer s.Close()

	if c.IsSet("set") {
		truncated, err := s.Tag.SetUserText(c.String("set"))
		if err != nil {
			return err
		}
		if truncated {
			log.Printf("user text truncated to %d bytes (tag=%s)", tag.UserAreaBytes, tc.ID)
		}
		return nil
	}

	text, err := s.Tag.UserText()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, text)
	return nil
}

func cmdDecode(c *cli.Context) error {
	chs, err := channels(c, true)
	if err != nil {
		return err
	}
	s, _, _, err := openTag(c)
	if err != nil {
		return err
	}
	defer s.Close()

	w := c.App.Writer
	for _, ch := range chs {
		pts, err := s.Tag.DecodeLog(ch)
		if err != nil {
			return errors.Wrapf(err, "decode %s", ch)
		}
		fmt.Fprintf(w, "%s: %d points\n", ch, len(pts))
		for _, p := range pts {
			ts, val := "-", "-"
			if p.Timestamp != nil {
				ts = p.Timestamp.UTC().Format(time.RFC3339)
			}
			if p.Value != nil {
				val = fmt.Sprintf("%.2f %s", *p.Value, ch.Unit())
			}
			fmt.Fprintf(w, "  %-25s %s\n", ts, val)
		}
	}
	return nil
}

func cmdExport(c *cli.Context) error {
	chs, err := channels(c, true)
	if err != nil {
		return err
	}
	s, tc, cfg, err := openTag(c)
	if err != nil {
		return err
	}
	defer s.Close()

	sink, err := writer.BuildSink(cfg.Export)
	if err != nil {
		return err
	}
	st, err := state.Open(cfg.State)
	if err != nil {
		return err
	}
	defer st.Close()
	exp, err := writer.NewExporter(sink, st, log.Default())
	if err != nil {
		return err
	}

	for _, ch := range chs {
		pts, err := s.Tag.DecodeLog(ch)
		if err != nil {
			return errors.Wrapf(err, "decode %s", ch)
		}
		n, err := exp.Export(tc.ID, ch, pts)
		if err != nil {
			return errors.Wrapf(err, "export %s", ch)
		}
		fmt.Fprintf(c.App.Writer, "%s: %d new points exported\n", ch, n)
	}
	return nil
}

func cmdReset(c *cli.Context) error {
	s, tc, _, err := openTag(c)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("resetting tag (tag=%s)", tc.ID)
	ok, err := s.Tag.ResetTag(ctx, c.Duration("poll"), c.Duration("timeout"))
	if err != nil {
		return err
	}
	if !ok {
		return cli.NewExitError("reset did not complete in time", 2)
	}
	fmt.Fprintln(c.App.Writer, "reset complete")
	return nil
}
