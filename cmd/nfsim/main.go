// Command nfsim runs the neurofeedback engine offline, as fast as the CPU
// allows, and prints one row per published snapshot.
//
// Usage:
//
//	nfsim [flags]
//
// The engaged state follows a schedule instead of the keyboard, and noise is
// seeded, so the same flags always print the same table.
//
// Examples:
//
//	nfsim -duration 4s -schedule on
//	nfsim -duration 60s -schedule blocks:10,10
//	nfsim -schedule lua:protocol.lua -format json
//	nfsim -rate 500 -alpha 12 -q 4 -seed 7
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-neurofeedback/dsp/core"
	"github.com/cwbudde/algo-neurofeedback/engine"
	"github.com/cwbudde/algo-neurofeedback/internal/config"
	"github.com/cwbudde/algo-neurofeedback/internal/protocol"
)

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	cfg      config.Config
	duration time.Duration
	schedule string
	format   string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	opts := options{cfg: config.Load()}
	if opts.cfg.Seed == 0 {
		opts.cfg.Seed = 1
	}

	fs := flag.NewFlagSet("nfsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts.cfg.RegisterFlags(fs)
	fs.DurationVar(&opts.duration, "duration", 10*time.Second, "simulated session length")
	fs.StringVar(&opts.schedule, "schedule", "blocks:5,5", "engagement schedule: on, off, blocks:REST,ENGAGE, lua:PATH")
	fs.StringVar(&opts.format, "format", "table", "output format: table or json")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: nfsim [flags]\n\n")
		fmt.Fprintf(stderr, "Runs a deterministic offline neurofeedback session.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.duration <= 0 {
		return opts, fmt.Errorf("duration must be > 0: %v", opts.duration)
	}
	if opts.format != "table" && opts.format != "json" {
		return opts, fmt.Errorf("unknown format %q", opts.format)
	}
	return opts, nil
}

func run(w io.Writer, args []string) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	sched, err := protocol.Parse(opts.schedule)
	if err != nil {
		return err
	}
	if ls, ok := sched.(*protocol.LuaSchedule); ok {
		defer ls.Close()
	}

	p, err := engine.NewPipeline(engine.ApplyOptions(opts.cfg.EngineOptions()...))
	if err != nil {
		return err
	}

	out := newPrinter(w, opts.format)
	if err := out.header(); err != nil {
		return err
	}

	fs := p.Config().SampleRate
	steps := int(opts.duration.Seconds() * fs)
	for n := 1; n <= steps; n++ {
		if s := p.Step(sched.Engaged(float64(n) / fs)); s != nil {
			if err := out.row(s); err != nil {
				return err
			}
		}
	}

	if ls, ok := sched.(*protocol.LuaSchedule); ok && ls.Err() != nil {
		return fmt.Errorf("schedule script: %w", ls.Err())
	}
	return out.flush()
}

type printer struct {
	format string
	tw     *tabwriter.Writer
	enc    *json.Encoder
}

func newPrinter(w io.Writer, format string) *printer {
	if format == "json" {
		return &printer{format: format, enc: json.NewEncoder(w)}
	}
	return &printer{format: format, tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (p *printer) header() error {
	if p.tw == nil {
		return nil
	}
	if _, err := fmt.Fprintf(p.tw, "Time [s]\tEngaged\tPower\tPower [dB]\tCoherence\tCorrelation\tTarget\tLevel\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := fmt.Fprintf(p.tw, "--------\t-------\t-----\t----------\t---------\t-----------\t------\t-----\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func (p *printer) row(s *engine.Snapshot) error {
	if p.enc != nil {
		return p.enc.Encode(s)
	}
	_, err := fmt.Fprintf(p.tw, "%.3f\t%v\t%.4f\t%.1f\t%.4f\t%+.4f\t%.3f\t%.3f\n",
		s.SimTime, s.Engaged, s.BandPower, core.LinearToDB(s.BandPower), s.Coherence, s.Correlation, s.TargetLevel, s.OutputLevel)
	if err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	return nil
}

func (p *printer) flush() error {
	if p.tw == nil {
		return nil
	}
	return p.tw.Flush()
}
