// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command detectlandmark prints the landmarks the Cloud Vision API finds in
// an image.
//
// Usage:
//
//	detectlandmark [flags] IMAGE
//
// IMAGE is a local file or a gs://bucket/object URI. Credentials come from
// Application Default Credentials unless -credentials names a JSON key file.
// Set GOOGLE_SDK_GO_LOGGING_LEVEL=debug to log request details to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/storage"
	"github.com/GoogleCloudPlatform/cloud-vision/go/imagefile"
	"github.com/GoogleCloudPlatform/cloud-vision/go/landmark"
	"google.golang.org/api/option"
)

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("GOOGLE_SDK_GO_LOGGING_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	if err := run(context.Background(), os.Args[1:], os.Stdout, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("detectlandmark: failed", "error", err)
		os.Exit(1)
	}
}

// Replaced in tests.
var (
	detectCredentials = landmark.DetectCredentials

	newClient = func(ctx context.Context, cfg landmark.Config, creds *auth.Credentials) (*landmark.Client, error) {
		return landmark.Dial(ctx, cfg, option.WithAuthCredentials(creds))
	}

	newStorageClient = func(ctx context.Context, creds *auth.Credentials) (*storage.Client, error) {
		return storage.NewClient(ctx, option.WithAuthCredentials(creds))
	}
)

func run(ctx context.Context, args []string, stdout io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("detectlandmark", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: detectlandmark [flags] IMAGE\n")
		fs.PrintDefaults()
	}
	maxResults := fs.Int("max-results", landmark.DefaultMaxResults, "maximum number of landmarks to report")
	appName := fs.String("app-name", landmark.DefaultApplicationName, "application name sent as the user agent")
	credsFile := fs.String("credentials", "", "JSON credentials file; empty means Application Default Credentials")
	endpoint := fs.String("endpoint", "", "override the Vision API endpoint")
	transport := fs.String("transport", string(landmark.TransportREST), "wire protocol, rest or grpc")
	quality := fs.Int("quality", imagefile.DefaultQuality, "JPEG quality of the uploaded image, 1 to 100")
	maxDimension := fs.Int("max-dimension", 0, "scale down images whose longer side exceeds this many pixels; 0 keeps the original size")
	timeout := fs.Duration("timeout", 0, "deadline for loading and annotating the image; 0 means none")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one image")
	}
	if *maxResults <= 0 {
		return fmt.Errorf("%w: -max-results must be positive, got %d", landmark.ErrInvalidArgument, *maxResults)
	}
	path := fs.Arg(0)

	creds, err := detectCredentials(*credsFile)
	if err != nil {
		return err
	}
	client, err := newClient(ctx, landmark.Config{
		ApplicationName: *appName,
		MaxResults:      *maxResults,
		Transport:       landmark.Transport(*transport),
		Endpoint:        *endpoint,
		Logger:          logger,
	}, creds)
	if err != nil {
		return err
	}
	defer client.Close()

	loader := &imagefile.Loader{Quality: *quality, MaxDimension: *maxDimension}
	if strings.HasPrefix(path, "gs://") {
		sc, err := newStorageClient(ctx, creds)
		if err != nil {
			return fmt.Errorf("creating storage client: %w", err)
		}
		defer sc.Close()
		loader.Storage = sc
	}

	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	logger.Debug("detectlandmark: annotating", "image", path, "max_results", *maxResults, "transport", *transport)
	landmarks, err := client.DetectFile(ctx, loader, path)
	if err != nil {
		return err
	}
	return printLandmarks(stdout, landmarks)
}

func printLandmarks(w io.Writer, landmarks []landmark.Landmark) error {
	plural := "s"
	if len(landmarks) == 1 {
		plural = ""
	}
	if _, err := fmt.Fprintf(w, "Found %d landmark%s\n", len(landmarks), plural); err != nil {
		return err
	}
	for _, l := range landmarks {
		if _, err := fmt.Fprintf(w, "\t%s\t%.3f\n", l.Description, l.Score); err != nil {
			return err
		}
	}
	return nil
}
