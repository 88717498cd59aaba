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

package credentials

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// keychainService is the keyring service namespace for stored credentials.
const keychainService = "rory"

// keychainBackend abstracts the OS keychain so tests can substitute a fake.
type keychainBackend interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// ErrKeychainUnavailable is returned when the platform has no usable
// keychain (headless Linux without a Secret Service, for example).
var ErrKeychainUnavailable = errors.New("keychain unavailable")

// Keychain is the OS keychain backend: macOS Keychain, Linux Secret
// Service, or Windows Credential Manager via go-keyring.
type Keychain struct{}

// NewKeychain returns the OS keychain backend, or ErrKeychainUnavailable
// if the platform keychain cannot be reached.
func NewKeychain() (*Keychain, error) {
	// Probe with a key that should not exist; only a transport-level
	// failure means the keychain itself is unusable.
	_, err := keyring.Get(keychainService, "__rory_probe__")
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrKeychainUnavailable
	}
	return &Keychain{}, nil
}

// Get retrieves a stored credential value by its environment-variable key.
func (k *Keychain) Get(key string) (string, error) {
	value, err := keyring.Get(keychainService, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", err
	}
	return value, err
}

// Set stores a credential value under its environment-variable key.
func (k *Keychain) Set(key, value string) error {
	return keyring.Set(keychainService, key, value)
}

// Delete removes a stored credential.
func (k *Keychain) Delete(key string) error {
	return keyring.Delete(keychainService, key)
}
