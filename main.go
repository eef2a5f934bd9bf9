package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"midi-table/config"
	"midi-table/debug"
	"midi-table/emit"
	"midi-table/midi"
	"midi-table/sequencer"
	"midi-table/theme"
	"midi-table/tui"
)

const usage = "Usage: midi-table [flags] <file>.mid <name>"

var errUsage = errors.New("missing arguments")

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// run is main without the process exit, returning the exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newCommand(stdout, stderr)
	if err := cmd.Run(ctx, args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, usage)
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "midi-table",
		Usage:     "convert a MIDI file into a C event table for the LEDC engine",
		ArgsUsage: "<file>.mid <name>",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mode",
				Usage: "event layout: sequential (freq, duration + rests) or absolute (freq, start, duration)",
			},
			&cli.Float64Flag{
				Name:  "tempo",
				Usage: "initial tempo in BPM until the track sets one (default depends on mode)",
			},
			&cli.StringFlag{
				Name:  "include",
				Usage: "engine header to include",
			},
			&cli.IntFlag{
				Name:  "transpose",
				Usage: "absolute mode: octave shift written into each track descriptor",
			},
			&cli.StringFlag{
				Name:  "charset",
				Usage: "encoding of track names in the file, e.g. shift_jis or windows-1252",
			},
			&cli.BoolFlag{
				Name:  "fold-diacritics",
				Usage: "strip accents from track names before sanitizing",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "config file (default ~/.config/midi-table/config.json)",
			},
			&cli.BoolFlag{
				Name:  "save-config",
				Usage: "write the effective settings back to the config file",
			},
			&cli.BoolFlag{
				Name:  "preview",
				Usage: "browse the converted tracks on stderr after writing the table",
			},
			&cli.BoolFlag{
				Name:  "warnings",
				Usage: "report note anomalies on stderr",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug logging on stderr",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() < 2 {
				return errUsage
			}
			path, base := c.Args().Get(0), c.Args().Get(1)

			if c.Bool("verbose") || c.Bool("warnings") {
				debug.Enable(stderr, c.Bool("verbose"))
				defer debug.Disable()
			}

			cfgPath := c.String("config")
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			applyFlags(c, cfg)

			tracks, mode, err := convertFile(path, cfg)
			if err != nil {
				return err
			}

			layout := emit.Layout{
				Mode:      mode,
				Include:   cfg.Include,
				Pins:      cfg.Pins,
				Transpose: cfg.Transpose,
			}
			if err := emit.Write(stdout, base, tracks, layout); err != nil {
				return errors.Wrap(err, "write table")
			}

			if c.Bool("save-config") {
				if err := saveConfig(cfg, cfgPath); err != nil {
					return err
				}
			}

			if c.Bool("preview") {
				palette, err := theme.Load(cfg.Palette)
				if err != nil {
					return errors.Wrap(err, "load palette")
				}
				return tui.Run(tui.NewModel(base, tracks, theme.New(palette)), stderr)
			}
			return nil
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func saveConfig(cfg *config.Config, path string) error {
	if path != "" {
		return cfg.SaveFile(path)
	}
	return cfg.Save()
}

// applyFlags overrides config values with flags given on the command line
func applyFlags(c *cli.Command, cfg *config.Config) {
	if c.IsSet("mode") {
		cfg.Mode = c.String("mode")
	}
	if c.IsSet("tempo") {
		cfg.TempoBPM = c.Float64("tempo")
	}
	if c.IsSet("include") {
		cfg.Include = c.String("include")
	}
	if c.IsSet("transpose") {
		cfg.Transpose = c.Int("transpose")
	}
	if c.IsSet("charset") {
		cfg.Charset = c.String("charset")
	}
	if c.IsSet("fold-diacritics") {
		cfg.FoldDiacritics = c.Bool("fold-diacritics")
	}
}

// convertFile reads and converts path with the given settings and returns
// the tracks with the mode they were converted in. Nothing is written until
// the whole file converted cleanly.
func convertFile(path string, cfg *config.Config) ([]sequencer.Track, sequencer.Mode, error) {
	mode, err := sequencer.ParseMode(cfg.Mode)
	if err != nil {
		return nil, "", err
	}

	names, err := sequencer.NewNameDecoder(cfg.Charset, cfg.FoldDiacritics)
	if err != nil {
		return nil, "", err
	}

	var tempo float64
	if cfg.TempoBPM > 0 {
		tempo = sequencer.TempoFromBPM(cfg.TempoBPM)
	}

	file, err := midi.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	debug.Log("main", "%s: %d tracks, %d ticks/beat", path, len(file.Tracks), file.TicksPerBeat)

	tracks, err := sequencer.Convert(file, sequencer.Options{
		Mode:  mode,
		Tempo: tempo,
		Names: names,
	})
	if err != nil {
		return nil, "", err
	}
	return tracks, mode, nil
}
