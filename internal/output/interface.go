// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

// OutputWriter defines the interface for publishing named step outputs.
// Commands depend on it so that tests can capture outputs in memory.
type OutputWriter interface {
	// Set publishes a single named value.
	Set(name, value string) error

	// Close closes the underlying writer and releases any resources.
	Close() error
}
