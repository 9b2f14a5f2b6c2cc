// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package content

import (
	"sync"
)

// 📦 Blob holds a binary file in memory until released.
//
// Release is idempotent and safe to call from any goroutine. After release
// Bytes returns nil.
type Blob struct {
	mimeType string

	mu       sync.Mutex
	data     []byte
	size     int
	released bool
}

func NewBlob(data []byte, mimeType string) *Blob {
	return &Blob{data: data, size: len(data), mimeType: mimeType}
}

func (b *Blob) MIMEType() string {
	return b.mimeType
}

// Size is the length of the payload, kept after release.
func (b *Blob) Size() int {
	return b.size
}

func (b *Blob) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

func (b *Blob) Release() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = nil
	b.released = true
}

func (b *Blob) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}
