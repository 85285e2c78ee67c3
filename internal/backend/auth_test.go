/*
 * Copyright (c) 2025 the Screenwright authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := signToken("secret", "alice", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sub, err := verifyToken("secret", tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "alice" {
		t.Fatalf("subject = %q, want alice", sub)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	tok, err := signToken("secret", "alice", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifyToken("other", tok); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestTokenTamperedPayloadRejected(t *testing.T) {
	tok, err := signToken("secret", "alice", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		t.Fatalf("token format %q", tok)
	}
	// Flip a character in the payload.
	payload := []byte(parts[0])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	if _, err := verifyToken("secret", string(payload)+"."+parts[1]); err == nil {
		t.Fatalf("expected verification failure for tampered payload")
	}
}

func TestTokenExpiredRejected(t *testing.T) {
	tok, err := signToken("secret", "alice", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifyToken("secret", tok); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestTokenGarbageRejected(t *testing.T) {
	for _, tok := range []string{"", "nodot", "a.b.c", "!!!.???"} {
		if _, err := verifyToken("secret", tok); err == nil {
			t.Fatalf("expected rejection for %q", tok)
		}
	}
}

func TestWithAuthMiddleware(t *testing.T) {
	var gotSub string
	h := withAuth("secret", func(w http.ResponseWriter, r *http.Request, sub string) {
		gotSub = sub
		w.WriteHeader(http.StatusOK)
	})

	// No header.
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no header status = %d", rec.Code)
	}

	// Bad token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	h(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", rec.Code)
	}

	// Good token.
	tok, err := signToken("secret", "bob", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("good token status = %d", rec.Code)
	}
	if gotSub != "bob" {
		t.Fatalf("subject = %q, want bob", gotSub)
	}
}
