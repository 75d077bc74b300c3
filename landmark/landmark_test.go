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
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/GoogleCloudPlatform/cloud-vision/go/imagefile"
	"github.com/GoogleCloudPlatform/cloud-vision/go/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	gax "github.com/googleapis/gax-go/v2"
	otcodes "go.opentelemetry.io/otel/codes"
	rpcstatus "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/genproto/googleapis/type/latlng"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/testing/protocmp"
)

// fakeService records requests and replies with a canned response.
type fakeService struct {
	reqs []*visionpb.BatchAnnotateImagesRequest
	opts [][]gax.CallOption

	resp *visionpb.BatchAnnotateImagesResponse
	err  error
}

func (f *fakeService) BatchAnnotateImages(_ context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.reqs = append(f.reqs, req)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func batchOf(res ...*visionpb.AnnotateImageResponse) *visionpb.BatchAnnotateImagesResponse {
	return &visionpb.BatchAnnotateImagesResponse{Responses: res}
}

func landmarks(anns ...*visionpb.EntityAnnotation) *visionpb.AnnotateImageResponse {
	return &visionpb.AnnotateImageResponse{LandmarkAnnotations: anns}
}

func entity(desc string, score float32) *visionpb.EntityAnnotation {
	return &visionpb.EntityAnnotation{Description: desc, Score: score}
}

var testImage = imagefile.EncodedImage{Content: []byte("\xff\xd8\xff\xe0 jpeg bytes"), Format: "jpeg", Width: 4, Height: 3}

func TestIdentifyLandmarks(t *testing.T) {
	svc := &fakeService{resp: batchOf(landmarks(
		entity("Eiffel Tower", 0.9),
		entity("Trocadéro", 0.7),
		entity("Seine River", 0.5),
	))}
	c := NewClient(svc, Config{})

	got, err := c.IdentifyLandmarks(context.Background(), testImage, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []Landmark{
		{Description: "Eiffel Tower", Score: 0.9},
		{Description: "Trocadéro", Score: 0.7},
		{Description: "Seine River", Score: 0.5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("landmarks mismatch (-want +got):\n%s", diff)
	}

	if len(svc.reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(svc.reqs))
	}
	wantReq := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: testImage.Content},
			Features: []*visionpb.Feature{{
				Type:       visionpb.Feature_LANDMARK_DETECTION,
				MaxResults: 4,
			}},
		}},
	}
	if diff := cmp.Diff(wantReq, svc.reqs[0], protocmp.Transform()); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	if len(svc.opts[0]) == 0 {
		t.Error("request was sent without call options, want retries disabled")
	}
}

func TestIdentifyLandmarksGeometry(t *testing.T) {
	ann := &visionpb.EntityAnnotation{
		Mid:         "/m/02j81",
		Description: "Eiffel Tower",
		Score:       0.93,
		BoundingPoly: &visionpb.BoundingPoly{Vertices: []*visionpb.Vertex{
			{X: 10, Y: 20}, {X: 110, Y: 20}, {X: 110, Y: 220}, {X: 10, Y: 220},
		}},
		Locations: []*visionpb.LocationInfo{
			{LatLng: &latlng.LatLng{Latitude: 48.858461, Longitude: 2.294351}},
			{}, // no coordinates
		},
	}
	c := NewClient(&fakeService{resp: batchOf(landmarks(ann))}, Config{})

	got, err := c.IdentifyLandmarks(context.Background(), testImage, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []Landmark{{
		MID:         "/m/02j81",
		Description: "Eiffel Tower",
		Score:       0.93,
		Bounds:      []image.Point{image.Pt(10, 20), image.Pt(110, 20), image.Pt(110, 220), image.Pt(10, 220)},
		Locations:   []LatLng{{Latitude: 48.858461, Longitude: 2.294351}},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("landmarks mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentifyLandmarksNoneFound(t *testing.T) {
	c := NewClient(&fakeService{resp: batchOf(&visionpb.AnnotateImageResponse{})}, Config{})
	got, err := c.IdentifyLandmarks(context.Background(), testImage, 4)
	if err != nil {
		t.Fatalf("got err %v, want nil", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want an empty, non-nil slice", got)
	}
}

func TestIdentifyLandmarksTruncates(t *testing.T) {
	svc := &fakeService{resp: batchOf(landmarks(
		entity("a", 0.9), entity("b", 0.8), entity("c", 0.7),
	))}
	c := NewClient(svc, Config{})
	got, err := c.IdentifyLandmarks(context.Background(), testImage, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []Landmark{{Description: "a", Score: 0.9}, {Description: "b", Score: 0.8}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("landmarks mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentifyLandmarksInvalidArgument(t *testing.T) {
	for _, test := range []struct {
		desc       string
		img        imagefile.EncodedImage
		maxResults int
	}{
		{"zero max results", testImage, 0},
		{"negative max results", testImage, -3},
		{"empty image", imagefile.EncodedImage{}, 4},
	} {
		svc := &fakeService{resp: batchOf(landmarks())}
		c := NewClient(svc, Config{})
		_, err := c.IdentifyLandmarks(context.Background(), test.img, test.maxResults)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: got err %v, want ErrInvalidArgument", test.desc, err)
		}
		if len(svc.reqs) != 0 {
			t.Errorf("%s: sent %d requests, want none", test.desc, len(svc.reqs))
		}
	}
}

func TestIdentifyLandmarksProtocolError(t *testing.T) {
	for _, test := range []struct {
		desc string
		resp *visionpb.BatchAnnotateImagesResponse
		want int
	}{
		{"nil batch", nil, 0},
		{"empty batch", batchOf(), 0},
		{"two entries", batchOf(landmarks(entity("a", 1)), landmarks(entity("b", 1))), 2},
		{"three entries", batchOf(landmarks(), landmarks(), landmarks()), 3},
	} {
		c := NewClient(&fakeService{resp: test.resp}, Config{})
		_, err := c.IdentifyLandmarks(context.Background(), testImage, 4)
		var perr *ProtocolError
		if !errors.As(err, &perr) {
			t.Errorf("%s: got err %v, want *ProtocolError", test.desc, err)
			continue
		}
		if perr.Responses != test.want {
			t.Errorf("%s: ProtocolError.Responses = %d, want %d", test.desc, perr.Responses, test.want)
		}
	}
}

func TestIdentifyLandmarksRemoteError(t *testing.T) {
	for _, test := range []struct {
		desc     string
		res      *visionpb.AnnotateImageResponse
		wantCode codes.Code
		wantMsg  string
	}{
		{
			desc:     "service message",
			res:      &visionpb.AnnotateImageResponse{Error: &rpcstatus.Status{Code: int32(codes.ResourceExhausted), Message: "quota exceeded"}},
			wantCode: codes.ResourceExhausted,
			wantMsg:  "quota exceeded",
		},
		{
			desc:     "blank message",
			res:      &visionpb.AnnotateImageResponse{Error: &rpcstatus.Status{Code: int32(codes.Internal), Message: "  "}},
			wantCode: codes.Internal,
			wantMsg:  "unknown error",
		},
		{
			desc:     "empty status",
			res:      &visionpb.AnnotateImageResponse{Error: &rpcstatus.Status{}},
			wantCode: codes.Unknown,
			wantMsg:  "unknown error",
		},
		{
			desc:     "neither landmarks nor error",
			res:      nil,
			wantCode: codes.Unknown,
			wantMsg:  "unknown error",
		},
		{
			desc: "error wins over landmarks",
			res: &visionpb.AnnotateImageResponse{
				LandmarkAnnotations: []*visionpb.EntityAnnotation{entity("Eiffel Tower", 0.9)},
				Error:               &rpcstatus.Status{Code: int32(codes.InvalidArgument), Message: "Bad image data."},
			},
			wantCode: codes.InvalidArgument,
			wantMsg:  "Bad image data.",
		},
	} {
		c := NewClient(&fakeService{resp: batchOf(test.res)}, Config{})
		got, err := c.IdentifyLandmarks(context.Background(), testImage, 4)
		var rerr *RemoteError
		if !errors.As(err, &rerr) {
			t.Errorf("%s: got err %v, want *RemoteError", test.desc, err)
			continue
		}
		if got != nil {
			t.Errorf("%s: got landmarks %v alongside an error", test.desc, got)
		}
		if rerr.Message != test.wantMsg {
			t.Errorf("%s: Message = %q, want %q", test.desc, rerr.Message, test.wantMsg)
		}
		if rerr.Code != test.wantCode {
			t.Errorf("%s: Code = %v, want %v", test.desc, rerr.Code, test.wantCode)
		}
		if code := status.Code(err); code != test.wantCode {
			t.Errorf("%s: status.Code = %v, want %v", test.desc, code, test.wantCode)
		}
	}
}

func TestIdentifyLandmarksTransportError(t *testing.T) {
	want := status.Error(codes.PermissionDenied, "caller lacks permission")
	c := NewClient(&fakeService{err: want}, Config{})
	_, err := c.IdentifyLandmarks(context.Background(), testImage, 4)
	if err != want {
		t.Errorf("got err %v, want the transport error unchanged", err)
	}
}

func TestIdentifyLandmarksSpans(t *testing.T) {
	ctx := context.Background()
	rec := testutil.NewSpanRecorder(t)

	c := NewClient(&fakeService{resp: batchOf(landmarks(entity("Eiffel Tower", 0.9)))}, Config{})
	if _, err := c.IdentifyLandmarks(ctx, testImage, 4); err != nil {
		t.Fatal(err)
	}
	c = NewClient(&fakeService{resp: batchOf()}, Config{})
	if _, err := c.IdentifyLandmarks(ctx, testImage, 4); err == nil {
		t.Fatal("got nil error for an empty batch")
	}

	spans := rec.Named(spanName)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	var events []string
	for _, e := range spans[0].Events {
		events = append(events, e.Name)
	}
	if diff := cmp.Diff([]string{"submit", "response"}, events); diff != "" {
		t.Errorf("successful call: events mismatch (-want +got):\n%s", diff)
	}
	if got := spans[0].Status.Code; got != otcodes.Unset {
		t.Errorf("successful call: status %v, want Unset", got)
	}
	if got := spans[1].Status.Code; got != otcodes.Error {
		t.Errorf("failed call: status %v, want Error", got)
	}
	if got, want := spans[1].Status.Description, "landmark: got 0 responses for 1 request"; got != want {
		t.Errorf("failed call: description %q, want %q", got, want)
	}
}

func TestDetectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tower.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	img.Set(3, 3, color.RGBA{R: 255, A: 255})
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	svc := &fakeService{resp: batchOf(landmarks(entity("Eiffel Tower", 0.9)))}
	c := NewClient(svc, Config{MaxResults: 7})
	got, err := c.DetectFile(context.Background(), nil, path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Landmark{{Description: "Eiffel Tower", Score: 0.9}}, got); diff != "" {
		t.Errorf("landmarks mismatch (-want +got):\n%s", diff)
	}
	if len(svc.reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(svc.reqs))
	}
	r := svc.reqs[0].GetRequests()[0]
	if got := r.GetFeatures()[0].GetMaxResults(); got != 7 {
		t.Errorf("MaxResults = %d, want 7", got)
	}
	if len(r.GetImage().GetContent()) == 0 {
		t.Error("request carried no image content")
	}
}

func TestDetectFileMissing(t *testing.T) {
	svc := &fakeService{resp: batchOf(landmarks())}
	c := NewClient(svc, Config{})
	_, err := c.DetectFile(context.Background(), &imagefile.Loader{}, filepath.Join(t.TempDir(), "missing.jpg"))
	var rerr *imagefile.ReadError
	if !errors.As(err, &rerr) {
		t.Fatalf("got err %v, want *imagefile.ReadError", err)
	}
	if len(svc.reqs) != 0 {
		t.Errorf("sent %d requests, want none", len(svc.reqs))
	}
}

func TestConfigDefaults(t *testing.T) {
	got := Config{}.withDefaults()
	if got.ApplicationName != DefaultApplicationName {
		t.Errorf("ApplicationName = %q, want %q", got.ApplicationName, DefaultApplicationName)
	}
	if got.MaxResults != DefaultMaxResults {
		t.Errorf("MaxResults = %d, want %d", got.MaxResults, DefaultMaxResults)
	}
	if got.Transport != TransportREST {
		t.Errorf("Transport = %q, want %q", got.Transport, TransportREST)
	}
	if got.Logger == nil {
		t.Error("Logger is nil")
	}

	set := Config{ApplicationName: "MyCompany-Landmarks/2.0", MaxResults: 10, Transport: TransportGRPC}.withDefaults()
	if diff := cmp.Diff(Config{ApplicationName: "MyCompany-Landmarks/2.0", MaxResults: 10, Transport: TransportGRPC}, set,
		cmpopts.IgnoreFields(Config{}, "Logger")); diff != "" {
		t.Errorf("explicit settings changed (-want +got):\n%s", diff)
	}
}

func TestNewClientClose(t *testing.T) {
	c := NewClient(&fakeService{}, Config{})
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
