/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Screenplay is the workspace manifest persisted as screenplay.json. It
// carries title-page metadata and the document paths of the last session;
// the screenplay text itself stays in its plain-text file.
type Screenplay struct {
	Title    string   `json:"title"`
	Author   string   `json:"author,omitempty"`
	Draft    string   `json:"draft,omitempty"`
	Contact  string   `json:"contact,omitempty"`
	LoadPath string   `json:"load_path,omitempty"`
	SavePath string   `json:"save_path,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// Metadata holds bookkeeping fields that are not part of the title page.
type Metadata struct {
	Notes     string `json:"notes,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}
