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

package imagefile

import "fmt"

// ReadError reports that an image could not be opened, read or decoded.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("imagefile: reading %q: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// EncodeError reports that a decoded image could not be re-encoded as JPEG.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("imagefile: encoding %q: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
