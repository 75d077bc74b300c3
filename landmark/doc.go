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

/*
Package landmark detects well-known landmarks in images with the Google Cloud
Vision API.

# Creating a Client

Dial connects to the Vision API. By default it speaks JSON over HTTP to
vision.googleapis.com; set Config.Transport to TransportGRPC to use gRPC
instead. Credentials are passed as client options, typically the result of
DetectCredentials, which performs Application Default Credentials discovery:

	creds, err := landmark.DetectCredentials("")
	if err != nil {
		// TODO: handle error.
	}
	client, err := landmark.Dial(ctx, landmark.Config{}, option.WithAuthCredentials(creds))

NewClient wraps any Service, which is how tests substitute a fake for the
network.

# Identifying Landmarks

Client.IdentifyLandmarks sends one image, previously prepared with package
imagefile, in a batch of exactly one request and returns the landmarks the
service found, in the order the service ranked them. An image with no
landmarks yields an empty slice and a nil error.

Each call makes exactly one attempt. The client disables the transport's
automatic retries and imposes no deadline of its own; callers that need
either should retry on the returned error or pass a context created with
context.WithTimeout.

# Errors

Invalid arguments are reported by wrapping ErrInvalidArgument. A response
batch that does not hold exactly one entry yields a *ProtocolError, and a
service-reported failure a *RemoteError. Transport and authentication errors
are returned unchanged; inspect them with the apierror package from
github.com/googleapis/gax-go/v2.
*/
package landmark // import "github.com/GoogleCloudPlatform/cloud-vision/go/landmark"
