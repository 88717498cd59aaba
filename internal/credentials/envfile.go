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
	"os"

	"github.com/joho/godotenv"
)

// envFile is the parsed contents of a .env file. Missing file means an
// empty map; lookups simply miss.
type envFile map[string]string

// envFileSearchPaths mirrors the conventional .env discovery order:
// the working directory first, then two parent directories up.
var envFileSearchPaths = []string{".env", "../.env", "../../.env"}

// loadEnvFile reads the .env file at path, or searches the conventional
// locations when path is empty. Parse errors and missing files both yield
// an empty map: a broken .env file must not block environment resolution.
func loadEnvFile(path string) envFile {
	if path != "" {
		return readEnvFile(path)
	}

	for _, candidate := range envFileSearchPaths {
		if _, err := os.Stat(candidate); err == nil {
			return readEnvFile(candidate)
		}
	}

	return envFile{}
}

func readEnvFile(path string) envFile {
	values, err := godotenv.Read(path)
	if err != nil {
		return envFile{}
	}
	return values
}
