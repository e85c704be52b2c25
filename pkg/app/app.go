// Package app wires the command line surface to the compile and
// decompile pipelines.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/zurustar/midiweave/pkg/compiler"
	"github.com/zurustar/midiweave/pkg/logger"
	"github.com/zurustar/midiweave/pkg/smf"
)

// App is the program surface: one instance per invocation.
type App struct{}

// New creates the application.
func New() *App {
	return &App{}
}

// Run parses arguments and executes the selected mode. args excludes
// the program name.
func (a *App) Run(args []string) error {
	root := &cli.Command{
		Name:  "midiweave",
		Usage: "compile a JSON composition document to a MIDI file, or decompile a MIDI file to JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, logger.InitLogger(cmd.String("log-level"))
		},
		Commands: []*cli.Command{
			{
				Name:      "json2midi",
				Usage:     "compile a JSON document into a standard MIDI file",
				ArgsUsage: "<input.json> <output.mid>",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "seed for the random source (default: wall clock)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("usage: midiweave json2midi <input.json> <output.mid>")
					}
					seed := cmd.Int64("seed")
					if !cmd.IsSet("seed") {
						seed = time.Now().UnixNano()
					}
					return a.CompileFile(cmd.Args().Get(0), cmd.Args().Get(1), seed)
				},
			},
			{
				Name:      "midi2json",
				Usage:     "decompile a standard MIDI file into a JSON document",
				ArgsUsage: "<input.mid> <output.json>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "meta-charset",
						Usage: "source charset of meta text, transcoded to UTF-8 (default: escape non-ASCII bytes)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("usage: midiweave midi2json <input.mid> <output.json>")
					}
					return a.DecompileFile(cmd.Args().Get(0), cmd.Args().Get(1), cmd.String("meta-charset"))
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return fmt.Errorf("usage: midiweave <mode> <input> <output> (modes: json2midi, midi2json)")
			}
			return fmt.Errorf("invalid mode %q: use 'json2midi' or 'midi2json'", cmd.Args().Get(0))
		},
	}

	return root.Run(context.Background(), append([]string{"midiweave"}, args...))
}

// CompileFile reads a JSON document, expands it and writes the SMF.
func (a *App) CompileFile(inputPath, outputPath string, seed int64) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("unable to open input file %s: %w", inputPath, err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("JSON parsing error: %w", err)
	}

	result, err := compiler.Compile(doc, seed)
	if err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("unable to open output file %s: %w", outputPath, err)
	}
	defer out.Close()

	writer := smf.NewWriter(out)
	if err := writer.WriteHeader(result.Format, uint16(len(result.Tracks)), result.Division); err != nil {
		return err
	}
	for _, track := range result.Tracks {
		if err := writer.WriteTrack(track); err != nil {
			return err
		}
	}

	fmt.Println("MIDI file created successfully.")
	return nil
}

// DecompileFile reads an SMF and writes the canonical JSON document.
// metaCharset optionally names the charset meta text is transcoded
// from.
func (a *App) DecompileFile(inputPath, outputPath, metaCharset string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("unable to open input file %s: %w", inputPath, err)
	}

	var decoder smf.TextDecoder
	if metaCharset != "" {
		decoder, err = smf.NewCharsetDecoder(metaCharset)
		if err != nil {
			return err
		}
	}

	doc, err := smf.NewReader(data, decoder).Decode()
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	encoded = append(encoded, '\n')

	if err := os.WriteFile(outputPath, encoded, 0o644); err != nil {
		return fmt.Errorf("unable to open output file %s: %w", outputPath, err)
	}

	fmt.Println("JSON file created successfully.")
	return nil
}
