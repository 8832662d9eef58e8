// ABOUTME: CLI command definitions for splicedd
// ABOUTME: Implements decode, scramble, inspect, fetch, play and cache clean
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/splicedd/splicedd-go/internal/preview"
	"github.com/splicedd/splicedd-go/pkg/audio"
	"github.com/splicedd/splicedd-go/pkg/audio/decode"
	"github.com/splicedd/splicedd-go/pkg/audio/output"
	"github.com/splicedd/splicedd-go/pkg/splice"
	"github.com/urfave/cli/v2"
)

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Descramble a preview into a plain MP3",
		ArgsUsage: "<url|path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "-", Usage: "Output file, - for stdout"},
			&cli.BoolFlag{Name: "verify", Usage: "Check the result decodes as MP3"},
		},
		Action: func(c *cli.Context) error {
			src, err := sourceArg(c)
			if err != nil {
				return err
			}

			scrambled, err := newFetcher(c).Fetch(c.Context, src)
			if err != nil {
				return err
			}

			plain, err := splice.Decode(scrambled)
			if err != nil {
				return err
			}

			if c.Bool("verify") {
				format, err := decode.Probe(plain)
				if err != nil {
					return err
				}
				log.Printf("Verified MP3: %d Hz, %d channels", format.SampleRate, format.Channels)
			}

			return writeOutput(c.String("out"), plain)
		},
	}
}

func scrambleCommand() *cli.Command {
	return &cli.Command{
		Name:      "scramble",
		Usage:     "Scramble a plain MP3 into the preview format (for fixtures)",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "-", Usage: "Output file, - for stdout"},
			&cli.StringFlag{Name: "key", Usage: "18-byte key as hex (random if empty)"},
		},
		Action: func(c *cli.Context) error {
			src, err := sourceArg(c)
			if err != nil {
				return err
			}

			key, err := parseKey(c.String("key"))
			if err != nil {
				return err
			}

			plain, err := newFetcher(c).Fetch(c.Context, src)
			if err != nil {
				return err
			}

			return writeOutput(c.String("out"), splice.Encode(plain, key))
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the control header of a scrambled preview",
		ArgsUsage: "<url|path>",
		Action: func(c *cli.Context) error {
			src, err := sourceArg(c)
			if err != nil {
				return err
			}

			data, err := newFetcher(c).Fetch(c.Context, src)
			if err != nil {
				return err
			}

			return inspect(c.App.Writer, data)
		},
	}
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Download a preview without descrambling it",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "-", Usage: "Output file, - for stdout"},
		},
		Action: func(c *cli.Context) error {
			src, err := sourceArg(c)
			if err != nil {
				return err
			}

			data, err := newFetcher(c).Fetch(c.Context, src)
			if err != nil {
				return err
			}

			return writeOutput(c.String("out"), data)
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Fetch, descramble and play a preview",
		ArgsUsage: "<url|path>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "volume", Value: 100, Usage: "Playback volume (0-100)"},
			&cli.BoolFlag{Name: "no-cache", Usage: "Do not read or write the preview cache"},
			&cli.BoolFlag{Name: "mute", Usage: "Decode and play silently"},
		},
		Action: func(c *cli.Context) error {
			src, err := sourceArg(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			var cache *preview.Cache
			if !c.Bool("no-cache") {
				cache, err = preview.NewCache(c.String("cache-dir"))
				if err != nil {
					return err
				}
			}

			loader := preview.NewLoader(preview.Config{
				Fetcher: newFetcher(c),
				Cache:   cache,
				Verify:  true,
			})

			asset := preview.Asset{
				UUID:  src,
				Name:  filepath.Base(src),
				Files: []preview.File{{Type: preview.FileTypePreviewMP3, URL: src}},
			}

			plain, err := loader.Load(ctx, asset)
			if err != nil {
				return err
			}

			buf, err := decode.DecodeMP3(plain)
			if err != nil {
				return err
			}
			log.Printf("Playing %s: %v at %d Hz", asset.Name, buf.Duration(), buf.Format.SampleRate)

			return play(ctx, buf, c.Int("volume"), c.Bool("mute"))
		},
	}
}

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the preview cache",
		Subcommands: []*cli.Command{
			{
				Name:  "clean",
				Usage: "Remove every cached preview",
				Action: func(c *cli.Context) error {
					return cleanCache(c.String("cache-dir"))
				},
			},
		},
	}
}

// playChunk is how much audio goes to the output per write
const playChunk = 100 * time.Millisecond

func play(ctx context.Context, buf *audio.Buffer, volume int, muted bool) error {
	out := newOutput(volume, muted)
	defer out.Close()

	if err := out.Open(buf.Format); err != nil {
		return err
	}

	err := writeChunks(ctx, out, buf)
	if err == nil {
		err = out.Drain(ctx)
	}
	if errors.Is(err, context.Canceled) {
		log.Printf("Playback interrupted")
		return nil
	}
	return err
}

func newOutput(volume int, muted bool) *output.Oto {
	out := output.NewOto()
	out.SetVolume(volume)
	out.SetMuted(muted)
	log.Printf("Output volume %d, muted %v", out.GetVolume(), out.IsMuted())
	return out
}

// writeChunks feeds buf to out in playChunk slices, stopping once ctx is done
func writeChunks(ctx context.Context, out output.Output, buf *audio.Buffer) error {
	chunk := buf.Format.SampleRate * int(playChunk/time.Millisecond) / 1000 * buf.Format.Channels
	if chunk <= 0 {
		chunk = len(buf.Samples)
	}

	for start := 0; start < len(buf.Samples); start += chunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+chunk, len(buf.Samples))
		if err := out.Write(buf.Samples[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func cleanCache(dir string) error {
	if dir == "" {
		return cli.Exit("no cache directory configured", 2)
	}

	cache, err := preview.NewCache(dir)
	if err != nil {
		return err
	}
	if err := cache.Cleanup(); err != nil {
		return fmt.Errorf("failed to clean cache %s: %w", dir, err)
	}
	log.Printf("Removed preview cache %s", dir)
	return nil
}

func inspect(w io.Writer, data []byte) error {
	h, err := splice.ParseHeader(data)
	if err != nil {
		return err
	}

	available := len(data) - splice.HeaderSize
	fmt.Fprintf(w, "buffer:    %d bytes\n", len(data))
	fmt.Fprintf(w, "marker:    %s\n", hex.EncodeToString(h.Marker[:]))
	fmt.Fprintf(w, "size:      %d bytes\n", h.Size)
	fmt.Fprintf(w, "key:       %s\n", hex.EncodeToString(h.Key[:]))
	fmt.Fprintf(w, "payload:   %d bytes available\n", available)

	if h.Size > uint64(available) {
		fmt.Fprintf(w, "status:    size exceeds buffer by %d bytes\n", h.Size-uint64(available))
		return nil
	}
	fmt.Fprintf(w, "trailing:  %d bytes\n", uint64(available)-h.Size)

	plain, err := splice.Decode(data)
	if err != nil {
		fmt.Fprintf(w, "status:    %v\n", err)
		return nil
	}

	format, err := decode.Probe(plain)
	if err != nil {
		fmt.Fprintf(w, "status:    descrambled, but %v\n", err)
		return nil
	}
	fmt.Fprintf(w, "status:    ok, mp3 %d Hz %d ch\n", format.SampleRate, format.Channels)
	return nil
}

func sourceArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit(fmt.Sprintf("usage: splicedd %s %s", c.Command.Name, c.Command.ArgsUsage), 2)
	}
	return c.Args().First(), nil
}

func parseKey(s string) ([splice.KeySize]byte, error) {
	var key [splice.KeySize]byte
	if s == "" {
		if _, err := rand.Read(key[:]); err != nil {
			return key, fmt.Errorf("failed to generate key: %w", err)
		}
		return key, nil
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return key, fmt.Errorf("invalid key: %w", err)
	}
	if len(b) != splice.KeySize {
		return key, fmt.Errorf("invalid key: need %d bytes, got %d", splice.KeySize, len(b))
	}
	copy(key[:], b)
	return key, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Printf("Wrote %d bytes to %s", len(data), path)
	return nil
}
