// Command neurofeedback runs a live simulated neurofeedback session.
//
// Usage:
//
//	neurofeedback [flags]
//
// The engine generates a 16-channel montage with two frontal probes in
// real time, measures alpha-band power and inter-hemispheric coherence, and
// drives the volume of a sine tone from the band power. Keys in the
// terminal:
//
//	space   hold to engage (simulated focused state)
//	l       latch engagement on or off
//	s       start or stop the session
//	q       quit
//
// With -port > 0 the same session is exposed over HTTP: JSON telemetry at
// /api/metrics and the feedback tone as an Opus WebRTC stream at /offer.
//
// Examples:
//
//	neurofeedback
//	neurofeedback -audio=false -port 9000
//	neurofeedback -alpha 11 -q 3 -ramp 0.2 -log debug
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cwbudde/algo-neurofeedback/engine"
	"github.com/cwbudde/algo-neurofeedback/internal/audio"
	"github.com/cwbudde/algo-neurofeedback/internal/config"
	"github.com/cwbudde/algo-neurofeedback/internal/keys"
	nflog "github.com/cwbudde/algo-neurofeedback/internal/logging"
	"github.com/cwbudde/algo-neurofeedback/internal/stream"
	"github.com/pion/logging"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 2 * time.Second

func main() {
	cfg := config.Load()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: neurofeedback [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a live simulated alpha neurofeedback session.\n")
		fmt.Fprintf(os.Stderr, "Keys: space hold engage, l latch, s start/stop, q quit.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	factory := nflog.NewFactory(cfg.LogLevel, stderr)
	log := factory.NewLogger("main")

	loop, err := engine.NewLoop(append(cfg.EngineOptions(), engine.WithLogger(factory.NewLogger("engine")))...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var player audio.Player
	if cfg.Audio {
		tone := audio.NewTone(cfg.CarrierHz, cfg.AudioRate, loop, loop.Clock)
		player, err = audio.NewPlayer(tone, factory.NewLogger("audio"))
		switch {
		case errors.Is(err, audio.ErrNoDevice):
			log.Warnf("no audio device, continuing silently: %v", err)
			player = nil
		case err != nil:
			return err
		default:
			if err := player.Start(); err != nil {
				return fmt.Errorf("start audio: %w", err)
			}
			log.Infof("audio output via %s at %d Hz", audio.Backend, cfg.AudioRate)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	var rtc *stream.WebRTCHandler
	if cfg.Port > 0 {
		rtc, err = serve(gctx, g, cfg, loop, factory, log)
		if err != nil {
			return err
		}
	}

	mapper := keys.NewMapper(&keyHandler{ctx: gctx, loop: loop, quit: cancel, log: log}, keys.DefaultHoldTimeout, nil)
	host := keys.NewHost(mapper)
	if err := host.Start(); err != nil {
		log.Warnf("keyboard controls unavailable: %v", err)
	} else {
		defer host.Stop()
	}

	if err := loop.Start(gctx); err != nil {
		return err
	}

	g.Go(func() error {
		printStatus(gctx, loop, stdout)
		return nil
	})

	err = g.Wait()

	if stopErr := loop.SetRunning(context.Background(), false); stopErr != nil {
		log.Warnf("stop session: %v", stopErr)
	}
	if player != nil {
		if fadeErr := audio.FadeOut(context.Background(), player, loop.FadeOutDelay()); fadeErr != nil {
			log.Warnf("close audio: %v", fadeErr)
		}
	}
	if rtc != nil {
		if closeErr := rtc.Close(); closeErr != nil {
			log.Warnf("close peers: %v", closeErr)
		}
	}
	fmt.Fprintln(stdout)

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// serve starts the HTTP API, the WebRTC tone stream and the frame pump that
// feeds it. All of them stop when ctx ends.
func serve(ctx context.Context, g *errgroup.Group, cfg config.Config, loop *engine.Loop, factory logging.LoggerFactory, log logging.LeveledLogger) (*stream.WebRTCHandler, error) {
	b := stream.NewBroadcaster()
	// Streamed audio always runs at the Opus rate, whatever the device rate.
	rtc, err := stream.NewWebRTCHandler(b, stream.SampleRate, factory)
	if err != nil {
		return nil, err
	}

	pump := stream.NewPump(audio.NewTone(cfg.CarrierHz, stream.SampleRate, loop, loop.Clock))
	frames := make(chan []int16, 4)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:           stream.NewAPI(ctx, loop, rtc, rtc, factory.NewLogger("api")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		pump.Run(ctx, frames)
		return nil
	})
	g.Go(func() error {
		b.Run(ctx, frames)
		return nil
	})
	g.Go(func() error {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return rtc, nil
}

// keyHandler routes terminal controls to the engine loop.
type keyHandler struct {
	ctx  context.Context
	loop *engine.Loop
	quit context.CancelFunc
	log  logging.LeveledLogger
}

func (h *keyHandler) SetEngaged(engaged bool) { h.loop.SetEngaged(engaged) }

func (h *keyHandler) ToggleSession() {
	running := h.loop.State() != engine.StateRunning
	if err := h.loop.SetRunning(h.ctx, running); err != nil {
		h.log.Warnf("toggle session: %v", err)
	}
}

func (h *keyHandler) Quit() { h.quit() }

// printStatus rewrites a single terminal line on every published snapshot.
func printStatus(ctx context.Context, loop *engine.Loop, w io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-loop.Updates():
			fmt.Fprintf(w, "\r%s", statusLine(loop.Latest(), loop.State()))
		}
	}
}

func statusLine(s *engine.Snapshot, state engine.State) string {
	if s == nil {
		return fmt.Sprintf("[%s] waiting for data", state)
	}
	mode := "rest   "
	if s.Engaged {
		mode = "engaged"
	}
	return fmt.Sprintf("[%s] t=%7.2fs %s power=%6.3f coherence=%4.2f volume=%3.0f%%  ",
		state, s.SimTime, mode, s.BandPower, s.Coherence, 100*s.OutputLevel)
}
