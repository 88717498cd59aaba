// Copyright 2025 Tom Barlow
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

package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Log appends audit entries to a file, one JSON record per line.
// Safe for concurrent use; the lock keeps records from interleaving.
type Log struct {
	mu   sync.Mutex
	path string
}

// Open prepares an audit log at path, creating parent directories as
// needed. The file itself is created on first write.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	return &Log{path: path}, nil
}

// Path returns the backing file path.
func (l *Log) Path() string {
	return l.path
}

// Record redacts and appends one entry. The payload is redacted here so
// no caller can bypass it; the entry passed in is not mutated.
func (l *Log) Record(entry Entry) error {
	entry.Payload = Redact(entry.Payload)

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	return nil
}
