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
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrInvalidArgument is wrapped by errors caused by bad caller input. No
// request is sent when it is returned.
var ErrInvalidArgument = errors.New("landmark: invalid argument")

// unknownError is the message of a RemoteError when the service gave none.
const unknownError = "unknown error"

// ProtocolError reports a response batch whose size does not match the one
// request that was submitted.
type ProtocolError struct {
	// Responses is the number of entries in the response batch.
	Responses int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("landmark: got %d responses for 1 request", e.Responses)
}

// RemoteError reports that the service answered but did not annotate the
// image.
type RemoteError struct {
	// Code is the status code reported by the service, or codes.Unknown.
	Code codes.Code

	// Message is the service-provided message, or "unknown error".
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("landmark: annotation failed: %s", e.Message)
}

// GRPCStatus lets status.Code and status.FromError see the service status.
func (e *RemoteError) GRPCStatus() *status.Status {
	return status.New(e.Code, e.Message)
}
