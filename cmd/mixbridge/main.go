// SPDX-License-Identifier: EPL-2.0

// Command mixbridge mixes audio files into a live duplex stream or renders
// them offline.
//
//	mixbridge devices
//	mixbridge live [-backend portaudio|oto|null] file...
//	mixbridge render -o out.wav file...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/mixbridge"
	"github.com/ik5/mixbridge/audio"
	"github.com/ik5/mixbridge/mixer"
	"github.com/ik5/mixbridge/playback"
	"github.com/ik5/mixbridge/stream"
)

const usage = `usage:
  mixbridge devices [-backend name]
  mixbridge live [flags] file...
  mixbridge render -o out.wav [flags] file...

Run "mixbridge <command> -h" for flags.`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "mixbridge:", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return flag.ErrHelp
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "devices":
		return runDevices(args[1:])
	case "live":
		return runLive(ctx, stop, args[1:])
	case "render":
		return runRender(ctx, args[1:])
	case "-h", "-help", "--help", "help":
		fmt.Println(usage)
		return nil
	}

	fmt.Fprintln(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", args[0])
}

// common holds the flags every command shares.
type common struct {
	cfg     mixer.Config
	verbose bool
	backend string
}

func newFlagSet(name string) (*flag.FlagSet, *common) {
	c := &common{cfg: mixer.DefaultConfig()}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.IntVar(&c.cfg.SampleRate, "rate", c.cfg.SampleRate, "sample rate in Hz")
	fs.IntVar(&c.cfg.Channels, "channels", c.cfg.Channels, "channel count")
	fs.IntVar(&c.cfg.FramesPerBuffer, "frames", c.cfg.FramesPerBuffer, "frames per buffer period")
	fs.DurationVar(&c.cfg.LatencyThreshold, "latency", c.cfg.LatencyThreshold, "backlog latency that triggers slowing a source down")
	fs.BoolVar(&c.verbose, "v", false, "debug logging")
	fs.StringVar(&c.backend, "backend", defaultBackend, "audio backend: "+backendNames)

	return fs, c
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true

	return cfg.Build()
}

func setup(name string, args []string) (*common, []string, *zap.Logger, error) {
	fs, c := newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	log, err := newLogger(c.verbose)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	return c, fs.Args(), log, nil
}

func runDevices(args []string) error {
	c, _, log, err := setup("devices", args)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctl, err := newController(c, log)
	if err != nil {
		return err
	}
	defer ctl.Close()

	in, err := ctl.InputDevices()
	if err != nil {
		return err
	}
	out, err := ctl.OutputDevices()
	if err != nil {
		return err
	}

	fmt.Println("input devices:")
	for _, d := range in {
		fmt.Printf("  %3d  %s (%d ch)\n", d.Index, d.Name, d.MaxInputChannels)
	}
	fmt.Println("output devices:")
	for _, d := range out {
		fmt.Printf("  %3d  %s (%d ch)\n", d.Index, d.Name, d.MaxOutputChannels)
	}

	return nil
}

func newController(c *common, log *zap.Logger) (*stream.Controller, error) {
	backend, err := newBackend(c.backend)
	if err != nil {
		return nil, err
	}

	eng, err := mixer.NewEngine(c.cfg, mixer.WithLogger(log))
	if err != nil {
		return nil, err
	}

	return stream.NewController(eng, backend,
		stream.WithLogger(log),
		stream.WithStateHook(func(s stream.State, err error) {
			if err != nil {
				log.Error("stream state changed", zap.Stringer("state", s), zap.Error(err))
				return
			}
			log.Info("stream state changed", zap.Stringer("state", s))
		}),
	)
}

func runLive(ctx context.Context, cancel context.CancelFunc, args []string) error {
	c, files, log, err := setup("live", args)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctl, err := newController(c, log)
	if err != nil {
		return err
	}
	defer ctl.Close()

	players := make([]*playback.Player, 0, len(files))
	for _, path := range files {
		p, err := mixbridge.OpenFile(path, c.cfg, playback.WithLogger(log))
		if err != nil {
			return err
		}
		ctl.RegisterSource(p)
		players = append(players, p)
	}

	if err := startPlayback(ctl, players); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if len(files) > 0 {
		// finished players are dropped by the engine; stop once none remain
		g.Go(func() error {
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()

			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
				}
				if ctl.Engine().Len() == 0 {
					log.Info("all sources finished")
					cancel()
					return nil
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		st := ctl.Engine().Stats()
		log.Info("shutting down",
			zap.Uint64("cycles", st.Cycles),
			zap.Uint64("skipped", st.Skipped),
			zap.Uint64("throttles", st.Throttles),
			zap.Uint64("normalizations", st.Normalizations),
		)
		return ctl.Stop()
	})

	return g.Wait()
}

// startPlayback starts the stream and only then the players, so no backlog
// queues up while the device is opening.
func startPlayback(ctl *stream.Controller, players []*playback.Player) error {
	if err := ctl.Start(); err != nil {
		return err
	}
	for _, p := range players {
		if err := p.Play(); err != nil {
			return err
		}
	}
	return nil
}

func runRender(ctx context.Context, args []string) error {
	fs, c := newFlagSet("render")
	output := fs.String("o", "mix.wav", "output WAV file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("render: no input files")
	}

	log, err := newLogger(c.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := mixbridge.DefaultRegistry()
	sources := make([]audio.Source, 0, fs.NArg())
	for _, path := range fs.Args() {
		src, err := reg.Open(path)
		if err != nil {
			for _, s := range sources {
				s.Close()
			}
			return err
		}
		sources = append(sources, src)
	}

	f, err := os.Create(*output)
	if err != nil {
		for _, s := range sources {
			s.Close()
		}
		return err
	}
	defer f.Close()

	start := time.Now()
	frames, err := mixbridge.Render(ctx, f, c.cfg, sources, mixbridge.WithLogger(log))
	if err != nil {
		return err
	}

	log.Info("rendered",
		zap.String("file", *output),
		zap.Duration("length", time.Duration(frames)*time.Second/time.Duration(c.cfg.SampleRate)),
		zap.Duration("took", time.Since(start)),
	)

	return f.Close()
}
