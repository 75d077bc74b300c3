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

package landmark

import (
	"context"
	"fmt"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// Scopes are the OAuth2 scopes requested by DetectCredentials.
var Scopes = []string{
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/cloud-vision",
}

// Service submits batches of image annotation requests. It is satisfied by
// *vision.ImageAnnotatorClient from cloud.google.com/go/vision/v2/apiv1.
type Service interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
}

var _ Service = (*vision.ImageAnnotatorClient)(nil)

// Transport is the wire protocol used to reach the service.
type Transport string

const (
	// TransportREST sends JSON over HTTP/1.1.
	TransportREST Transport = "rest"

	// TransportGRPC sends protocol buffers over gRPC.
	TransportGRPC Transport = "grpc"
)

// Dial creates a Client backed by a Vision API ImageAnnotatorClient.
//
// The options in opts are applied after those derived from cfg, so they can
// override the endpoint or user agent. Credentials are not detected here;
// pass them with option.WithAuthCredentials, or rely on the client library's
// own Application Default Credentials lookup.
func Dial(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Client, error) {
	copts := []option.ClientOption{}
	if cfg.Logger != nil {
		copts = append(copts, option.WithLogger(cfg.Logger))
	}
	cfg = cfg.withDefaults()
	copts = append(copts, option.WithUserAgent(cfg.ApplicationName))
	if cfg.Endpoint != "" {
		copts = append(copts, option.WithEndpoint(cfg.Endpoint))
	}
	copts = append(copts, opts...)

	var (
		ic  *vision.ImageAnnotatorClient
		err error
	)
	switch cfg.Transport {
	case TransportREST:
		ic, err = vision.NewImageAnnotatorRESTClient(ctx, copts...)
	case TransportGRPC:
		ic, err = vision.NewImageAnnotatorClient(ctx, copts...)
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", ErrInvalidArgument, cfg.Transport)
	}
	if err != nil {
		return nil, fmt.Errorf("landmark: creating %s client: %w", cfg.Transport, err)
	}
	c := NewClient(ic, cfg)
	c.closer = ic
	return c, nil
}

// DetectCredentials finds Application Default Credentials scoped to Scopes.
// If file is not empty, credentials are read from that JSON file instead.
func DetectCredentials(file string) (*auth.Credentials, error) {
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes:          Scopes,
		CredentialsFile: file,
	})
	if err != nil {
		return nil, fmt.Errorf("landmark: detecting credentials: %w", err)
	}
	return creds, nil
}
