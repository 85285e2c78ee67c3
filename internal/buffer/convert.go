/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package buffer

import "unicode/utf8"

// charCount returns the number of Unicode code points in s.
func charCount(s string) int {
	return utf8.RuneCountInString(s)
}

// charToByteIndex maps a character column to the byte offset of that
// character's first byte in s. Columns past the end of the line map to
// len(s). All byte arithmetic on line content goes through here; the rest
// of the package deals in character columns only.
func charToByteIndex(s string, column int) int {
	if column <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == column {
			return i
		}
		n++
	}
	return len(s)
}
