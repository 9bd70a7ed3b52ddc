// Copyright (C) INFINI Labs & INFINI LIMITED.
//
// The INFINI Framework is offered under the GNU Affero General Public License v3.0
// and as commercial software.
//
// For commercial licensing, contact us at:
//   - Website: infinilabs.com
//   - Email: hello@infini.ltd
//
// Open Source licensed under AGPL V3:
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

/* Copyright © INFINI LTD. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */
package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httprouter "infini.sh/shift/core/api/router"
	"infini.sh/shift/core/errors"
)

func TestDecodeJSONBody(t *testing.T) {
	h := Handler{}

	var settings struct {
		LogLevel string `json:"log_level"`
	}
	req := httptest.NewRequest("PUT", "/setting/logger", strings.NewReader(`{"log_level":"debug"}`))
	if err := h.DecodeJSON(req, &settings); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if settings.LogLevel != "debug" {
		t.Errorf("wrong value decoded: got %q", settings.LogLevel)
	}

	req = httptest.NewRequest("PUT", "/setting/logger", strings.NewReader(""))
	err := h.DecodeJSON(req, &settings)
	if err == nil {
		t.Fatal("empty body should not decode")
	}
	if errors.CodeOf(err) != errors.BodyEmpty {
		t.Errorf("wrong error code for empty body: got %v", errors.CodeOf(err))
	}
}

// The base path handling differs from http.StripPrefix on purpose: a
// request outside the base path is handed through untouched instead of
// being rejected, so the health and root endpoints keep working when a
// base path is configured.
func TestStripPrefix(t *testing.T) {
	testCases := []struct {
		name        string
		prefix      string
		requestPath string
		expected    string
	}{
		{"strips the configured base path", "/shift", "/shift/migration/_start", "/migration/_start"},
		{"passes through outside the base path", "/shift", "/health", "/health"},
		{"bare base path maps to root", "/v1", "/v1/", "/"},
		{"empty prefix changes nothing", "", "/migration/_start", "/migration/_start"},
		{"partial prefix does not count", "/api", "/apiv2/stats", "/apiv2/stats"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var receivedPath string
			final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				receivedPath = r.URL.Path
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", tc.requestPath, nil)
			rr := httptest.NewRecorder()
			StripPrefix(tc.prefix, final).ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Errorf("wrong status code: got %v want %v", rr.Code, http.StatusOK)
			}
			if receivedPath != tc.expected {
				t.Errorf("wrong path after strip: got %q want %q", receivedPath, tc.expected)
			}
		})
	}
}

func TestBasicAuth(t *testing.T) {
	var reached bool
	guarded := BasicAuth(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}, "admin", "s3cret")

	req := httptest.NewRequest("POST", "/migration/_start", nil)
	req.SetBasicAuth("admin", "s3cret")
	rr := httptest.NewRecorder()
	guarded(rr, req, nil)
	if !reached || rr.Code != http.StatusOK {
		t.Errorf("valid credentials rejected: reached=%v code=%v", reached, rr.Code)
	}

	reached = false
	req = httptest.NewRequest("POST", "/migration/_start", nil)
	req.SetBasicAuth("admin", "guess")
	rr = httptest.NewRecorder()
	guarded(rr, req, nil)
	if reached {
		t.Error("handler ran with bad credentials")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong status code: got %v want %v", rr.Code, http.StatusUnauthorized)
	}
	if rr.Header().Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate challenge")
	}

	// no credentials at all must be challenged too
	reached = false
	req = httptest.NewRequest("POST", "/migration/_start", nil)
	rr = httptest.NewRecorder()
	guarded(rr, req, nil)
	if reached || rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request not challenged: reached=%v code=%v", reached, rr.Code)
	}
}

func TestRecoveryHandler(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	RecoveryHandler()(panicky).ServeHTTP(rr, httptest.NewRequest("GET", "/stats", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("wrong status code: got %v want %v", rr.Code, http.StatusInternalServerError)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "boom") {
		t.Errorf("response should name the error, got %q", body)
	}
	if strings.Contains(body, "goroutine") {
		t.Error("stack trace leaked into the response body")
	}
}
