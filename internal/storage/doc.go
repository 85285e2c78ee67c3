/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists screenplay workspaces on disk. A workspace is a
// directory holding screenplay.json (the manifest), the script text, and a
// derived per-workspace SQLite index at .swright/index.sqlite used for
// full-text search and snapshot history. The index is ephemeral: it can
// always be rebuilt from the manifest and script text.
package storage
