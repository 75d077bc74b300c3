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
	"image"
	"io"
	"log/slog"
	"math"
	"strings"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/GoogleCloudPlatform/cloud-vision/go/imagefile"
	"github.com/GoogleCloudPlatform/cloud-vision/go/internal/trace"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
)

const (
	// DefaultApplicationName is sent as the user agent when
	// Config.ApplicationName is empty.
	DefaultApplicationName = "Google-VisionDetectLandmark/1.0"

	// DefaultMaxResults is used by DetectFile when Config.MaxResults is zero.
	DefaultMaxResults = 4

	spanName = "github.com/GoogleCloudPlatform/cloud-vision/go/landmark.IdentifyLandmarks"
)

// Landmark is a landmark detected in an image.
type Landmark struct {
	// MID is the Knowledge Graph entity ID, if the service provided one.
	MID string

	// Description is the landmark's name, e.g. "Eiffel Tower".
	Description string

	// Score is the service's confidence, in the range [0, 1].
	Score float32

	// Bounds holds the vertices of the polygon enclosing the landmark, in
	// pixel coordinates of the submitted image. It may be empty.
	Bounds []image.Point

	// Locations are the geographic positions of the landmark. A landmark
	// can have several, e.g. one where it is and one where it was photographed
	// from.
	Locations []LatLng
}

// LatLng is a latitude/longitude pair in degrees.
type LatLng struct {
	Latitude, Longitude float64
}

// Config holds the settings of a Client.
type Config struct {
	// ApplicationName identifies the caller to the service, as
	// "MyCompany-ProductName/1.0". Defaults to DefaultApplicationName.
	ApplicationName string

	// MaxResults is the result limit used by DetectFile. Defaults to
	// DefaultMaxResults.
	MaxResults int

	// Transport selects the wire protocol used by Dial. Defaults to
	// TransportREST.
	Transport Transport

	// Endpoint overrides the service endpoint used by Dial.
	Endpoint string

	// Logger receives debug and warning records. If nil, nothing is logged.
	Logger *slog.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.ApplicationName == "" {
		cfg.ApplicationName = DefaultApplicationName
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportREST
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg
}

// A Client identifies landmarks through a Service. It is safe for
// concurrent use if its Service is.
type Client struct {
	svc    Service
	cfg    Config
	closer io.Closer
}

// NewClient returns a Client that submits requests to svc.
func NewClient(svc Service, cfg Config) *Client {
	return &Client{svc: svc, cfg: cfg.withDefaults()}
}

// Close releases the connection opened by Dial. It is a no-op for clients
// created with NewClient.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// noRetry makes a call fail on its first error.
func noRetry() gax.Retryer { return nil }

// IdentifyLandmarks asks the service for up to maxResults landmarks in img
// and returns them in the service's ranking order.
//
// maxResults must be positive and img must be non-empty; otherwise the
// returned error wraps ErrInvalidArgument. The call makes one request and
// blocks until the service answers or ctx is done.
func (c *Client) IdentifyLandmarks(ctx context.Context, img imagefile.EncodedImage, maxResults int) (_ []Landmark, err error) {
	ctx = trace.StartSpan(ctx, spanName, trace.MaxResultsKey.Int(maxResults))
	defer func() { trace.EndSpan(ctx, err) }()

	if maxResults <= 0 || maxResults > math.MaxInt32 {
		return nil, fmt.Errorf("%w: maxResults must be in [1, %d], got %d", ErrInvalidArgument, math.MaxInt32, maxResults)
	}
	if len(img.Content) == 0 {
		return nil, fmt.Errorf("%w: image has no content", ErrInvalidArgument)
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: img.Content},
			Features: []*visionpb.Feature{{
				Type:       visionpb.Feature_LANDMARK_DETECTION,
				MaxResults: int32(maxResults),
			}},
		}},
	}
	trace.Event(ctx, "submit", trace.ImageBytesKey.Int(len(img.Content)))
	c.cfg.Logger.DebugContext(ctx, "landmark: submitting request",
		"max_results", maxResults, "image_bytes", len(img.Content))

	resp, err := c.svc.BatchAnnotateImages(ctx, req, gax.WithRetry(noRetry))
	if err != nil {
		return nil, err
	}
	res, err := singleResponse(resp)
	if err != nil {
		return nil, err
	}

	anns := res.GetLandmarkAnnotations()
	if len(anns) > maxResults {
		c.cfg.Logger.WarnContext(ctx, "landmark: service returned more results than requested",
			"max_results", maxResults, "got", len(anns))
		anns = anns[:maxResults]
	}
	landmarks := make([]Landmark, 0, len(anns))
	for _, a := range anns {
		landmarks = append(landmarks, fromEntity(a))
	}
	trace.Event(ctx, "response", trace.LandmarksKey.Int(len(landmarks)))
	return landmarks, nil
}

// DetectFile loads the image at path with l, or with a zero Loader if l is
// nil, and identifies up to Config.MaxResults landmarks in it.
func (c *Client) DetectFile(ctx context.Context, l *imagefile.Loader, path string) ([]Landmark, error) {
	if l == nil {
		l = &imagefile.Loader{}
	}
	img, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	c.cfg.Logger.DebugContext(ctx, "landmark: image loaded",
		"path", path, "format", img.Format, "width", img.Width, "height", img.Height)
	return c.IdentifyLandmarks(ctx, img, c.cfg.MaxResults)
}

// singleResponse checks that resp answers exactly one request and that the
// answer is a success.
func singleResponse(resp *visionpb.BatchAnnotateImagesResponse) (*visionpb.AnnotateImageResponse, error) {
	if n := len(resp.GetResponses()); n != 1 {
		return nil, &ProtocolError{Responses: n}
	}
	res := resp.GetResponses()[0]
	if res == nil {
		return nil, &RemoteError{Code: codes.Unknown, Message: unknownError}
	}
	if st := res.GetError(); st != nil {
		msg := st.GetMessage()
		if strings.TrimSpace(msg) == "" {
			msg = unknownError
		}
		code := codes.Code(st.GetCode())
		if code == codes.OK {
			code = codes.Unknown
		}
		return nil, &RemoteError{Code: code, Message: msg}
	}
	return res, nil
}

func fromEntity(a *visionpb.EntityAnnotation) Landmark {
	lm := Landmark{
		MID:         a.GetMid(),
		Description: a.GetDescription(),
		Score:       a.GetScore(),
	}
	for _, v := range a.GetBoundingPoly().GetVertices() {
		lm.Bounds = append(lm.Bounds, image.Pt(int(v.GetX()), int(v.GetY())))
	}
	for _, loc := range a.GetLocations() {
		if ll := loc.GetLatLng(); ll != nil {
			lm.Locations = append(lm.Locations, LatLng{Latitude: ll.GetLatitude(), Longitude: ll.GetLongitude()})
		}
	}
	return lm
}
