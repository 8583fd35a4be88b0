// Command ecosort classifies waste-item photos from the command line. By
// default it talks to a running ecosort-server; with -direct it calls
// Gemini itself, and with -offline it uses the static material table (no
// model at all).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ecosort/ecosort/config"
	"github.com/ecosort/ecosort/internal/capture"
	"github.com/ecosort/ecosort/internal/classify"
	"github.com/ecosort/ecosort/internal/client"
	"github.com/lithammer/dedent"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	serverURL := flag.String("server", client.DefaultBaseURL, "classification server base URL")
	direct := flag.Bool("direct", false, "call Gemini directly instead of the server (requires GEMINI_API_KEY)")
	offline := flag.Bool("offline", false, "use the static material table, no model call")
	flag.Usage = usage
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		usage()
		os.Exit(1)
	}

	config.LoadEnvFile()
	ctx := context.Background()

	classifyFile, err := buildClassifyFunc(ctx, *serverURL, *direct, *offline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	results := make([]*classify.Result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			result, err := classifyFile(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for i, result := range results {
		if i > 0 {
			fmt.Println(strings.Repeat("-", 50))
		}
		fmt.Print(renderResult(files[i], result))
	}
}

type classifyFunc func(ctx context.Context, path string) (*classify.Result, error)

func buildClassifyFunc(ctx context.Context, serverURL string, direct, offline bool) (classifyFunc, error) {
	switch {
	case offline:
		classifier := classify.StaticClassifier{}
		return viaClassifier(classifier), nil
	case direct:
		classifier, err := classify.NewGeminiClassifier(ctx, os.Getenv("GEMINI_API_KEY"))
		if err != nil {
			return nil, err
		}
		return viaClassifier(classifier), nil
	default:
		api := client.New(client.Opts{BaseURL: serverURL})
		return func(ctx context.Context, path string) (*classify.Result, error) {
			img, err := loadImage(path)
			if err != nil {
				return nil, err
			}
			return api.Classify(ctx, img)
		}, nil
	}
}

func viaClassifier(classifier classify.Classifier) classifyFunc {
	return func(ctx context.Context, path string) (*classify.Result, error) {
		img, err := loadImage(path)
		if err != nil {
			return nil, err
		}
		classification, err := classifier.Classify(ctx, img.Data, img.MIMEType)
		if err != nil {
			return nil, err
		}
		return classification.Result, nil
	}
}

// loadImage reads a file through a capture session so the same MIME and
// size rules apply as in the browser flow.
func loadImage(path string) (*capture.EncodedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	session := capture.NewSession(nil)
	img, err := session.SelectFile(data)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("not an image file")
	}
	return img, nil
}

func renderResult(path string, r *classify.Result) string {
	bin := classify.BinColors[r.BinColor]
	text := fmt.Sprintf(strings.TrimSpace(dedent.Dedent(`
		%s
		  Material:    %s (%s)
		  Recyclable:  %t
		  Bin:         %s (%s)
		  Tip:         %s
	`)), path, r.MaterialType, r.Description, r.Recyclable, bin.Name, bin.Description, r.Tip)
	if len(r.Examples) > 0 {
		text += fmt.Sprintf("\n  Examples:    %s", strings.Join(r.Examples, ", "))
	}
	if r.SpecialHandling && r.SpecialHandlingMessage != "" {
		text += fmt.Sprintf("\n  Warning:     %s", r.SpecialHandlingMessage)
	}
	return text + "\n"
}

func usage() {
	fmt.Fprint(os.Stderr, strings.TrimSpace(dedent.Dedent(`
		Usage: ecosort [flags] <image-file>...

		Flags:
		  -server URL   classification server base URL (default http://localhost:5000)
		  -direct       call Gemini directly (requires GEMINI_API_KEY)
		  -offline      classify from the static material table, no model call
	`)))
	fmt.Fprintln(os.Stderr)
}
