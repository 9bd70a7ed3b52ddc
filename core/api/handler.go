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
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/jmoiron/jsonq"
	"github.com/segmentio/encoding/json"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/util"
)

// Method is the http verb a route is registered under.
type Method string

const (
	GET    Method = "GET"
	POST   Method = "POST"
	PUT    Method = "PUT"
	DELETE Method = "DELETE"
	HEAD   Method = "HEAD"

	OPTIONS Method = "OPTIONS"
)

func (method Method) String() string {
	return string(method)
}

// Handler carries the response and request helpers every endpoint of the
// management API builds on.
type Handler struct {
}

// WriteHeader writes the status code, plus the transport hardening header
// when the API itself runs on TLS.
func (handler Handler) WriteHeader(w http.ResponseWriter, code int) {
	if apiConfig != nil && apiConfig.TLSConfig.TLSEnabled {
		w.Header().Add("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
	}

	w.WriteHeader(code)
}

// EncodeJSON renders the object indented, responses stay readable in a
// terminal.
func (handler Handler) EncodeJSON(v interface{}) (b []byte, err error) {
	b, err = json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (handler Handler) WriteTextHeader(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain")
}

func (handler Handler) WriteJSONHeader(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
}

// Result wraps a listing with its total, the shape the history endpoint
// serves.
type Result struct {
	Total  int64       `json:"total"`
	Result interface{} `json:"result"`
}

func (handler Handler) WriteJSONListResult(w http.ResponseWriter, total int64, v interface{}, statusCode int) error {
	result := Result{}
	result.Total = total
	result.Result = v
	return handler.WriteJSON(w, result, statusCode)
}

func (handler Handler) WriteError(w http.ResponseWriter, errMessage string, statusCode int) error {
	err1 := util.MapStr{
		"status": statusCode,
		"error": util.MapStr{
			"reason": errMessage,
		},
	}
	return handler.WriteJSON(w, err1, statusCode)
}

func (handler Handler) WriteJSON(w http.ResponseWriter, v interface{}, statusCode int) error {
	b, err := handler.EncodeJSON(v)
	if err != nil {
		w.Write([]byte(err.Error()))
		return err
	}

	return handler.WriteBytes(w, b, statusCode)
}

func (handler Handler) WriteBytes(w http.ResponseWriter, b []byte, statusCode int) error {
	handler.WriteJSONHeader(w)
	handler.WriteHeader(w, statusCode)

	_, err := w.Write(b)
	if err != nil {
		w.Write([]byte(err.Error()))
		return err
	}

	return nil
}

func (handler Handler) WriteAckJSON(w http.ResponseWriter, ack bool, status int, obj map[string]interface{}) error {
	v := map[string]interface{}{}
	v["acknowledged"] = ack

	if obj != nil {
		for k, v1 := range obj {
			v[k] = v1
		}
	}

	return handler.WriteJSON(w, v, status)
}

func (handler Handler) WriteAckOKJSON(w http.ResponseWriter) error {
	return handler.WriteAckJSON(w, true, 200, nil)
}

// GetParameter returns a query parameter, empty when absent.
func (handler Handler) GetParameter(r *http.Request, key string) string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Query().Get(key)
}

func (handler Handler) GetParameterOrDefault(r *http.Request, key string, defaultValue string) string {
	v := r.URL.Query().Get(key)
	if len(v) > 0 {
		return v
	}
	return defaultValue
}

func (handler Handler) GetIntOrDefault(r *http.Request, key string, defaultValue int) int {
	v := handler.GetParameter(r, key)
	s, ok := util.ToInt(v)
	if ok != nil {
		return defaultValue
	}
	return s
}

// GetJSON wraps the request body in a query object, for endpoints that only
// pick a field or two out of it.
func (handler Handler) GetJSON(r *http.Request) (*jsonq.JsonQuery, error) {
	content, err := ioutil.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, errors.NewWithCode(err, errors.JSONIsEmpty, r.URL.String())
	}

	data := map[string]interface{}{}
	dec := json.NewDecoder(strings.NewReader(string(content)))
	err = dec.Decode(&data)
	if err != nil {
		return nil, err
	}
	jq := jsonq.NewQuery(data)

	return jq, nil
}

func (handler Handler) DecodeJSON(r *http.Request, o interface{}) error {
	content, err := handler.GetRawBody(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(content, o)
}

// GetRawBody returns the request body, an error with a BodyEmpty code when
// there is none.
func (handler Handler) GetRawBody(r *http.Request) ([]byte, error) {
	content, err := ioutil.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, errors.NewWithCode(err, errors.BodyEmpty, r.URL.String())
	}
	return content, nil
}

// Write sends raw bytes, the caller owns headers and status.
func (handler Handler) Write(w http.ResponseWriter, b []byte) (int, error) {
	return w.Write(b)
}

func (handler Handler) Error500(w http.ResponseWriter, msg string) {
	handler.WriteError(w, msg, http.StatusInternalServerError)
}

func (handler Handler) Error(w http.ResponseWriter, err error) {
	handler.WriteError(w, err.Error(), http.StatusInternalServerError)
}

func (handler Handler) Error400(w http.ResponseWriter, msg string) {
	handler.WriteError(w, msg, http.StatusBadRequest)
}

func (handler Handler) WriteCreatedOKJSON(w http.ResponseWriter, id interface{}) error {
	return handler.WriteJSON(w, CreateResponse(id), http.StatusOK)
}

func (handler Handler) WriteGetOKJSON(w http.ResponseWriter, id, obj interface{}) error {
	return handler.WriteJSON(w, FoundResponse(id, obj), 200)
}

func (handler Handler) WriteGetMissingJSON(w http.ResponseWriter, id string) error {
	return handler.WriteJSON(w, NotFoundResponse(id), 404)
}
