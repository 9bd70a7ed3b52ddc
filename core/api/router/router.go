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

// Copyright 2013 Julien Schmidt. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

// Package httprouter wraps the trie based julienschmidt router with an exact
// match table in front of it, so that static paths like /migration/_history
// and wildcard paths like /migration/:id can live side by side, which the
// plain trie refuses to register.
//
// A trivial example is:
//
//  package main
//
//  import (
//      "fmt"
//      "net/http"
//      "log"
//  )
//
//  func Hello(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
//      fmt.Fprintf(w, "hello, %s!\n", ps.ByName("name"))
//  }
//
//  func main() {
//      router := httprouter.New(http.NewServeMux())
//      router.GET("/hello/:name", Hello)
//
//      log.Fatal(http.ListenAndServe(":8080", router))
//  }
//
// The router matches incoming requests by the request method and the path.
// Exact static routes are answered from the hash table, everything carrying
// a wildcard is delegated to the radix tree. Named parameters of the form
// :name match a single path segment, catch-alls of the form *name match
// everything from their position to the end of the path:
//
//  Path: /blog/:category/:post
//
//  Requests:
//   /blog/go/request-routers            match: category="go", post="request-routers"
//   /blog/go/request-routers/           redirect to /blog/go/request-routers
//   /blog/go/                           no match
//
// The value of parameters is saved as a slice of the Param struct, consisting
// each of a key and a value, retrievable by name via ps.ByName("category").
package httprouter

import (
	"context"
	"net/http"
	"strings"

	upstream "github.com/julienschmidt/httprouter"
	"infini.sh/shift/core/errors"
)

// Handle is a function that can be registered to a route to handle HTTP
// requests. Like http.HandlerFunc, but has a third parameter for the values of
// wildcards (variables).
type Handle func(http.ResponseWriter, *http.Request, Params)

// Param is a single URL parameter, consisting of a key and a value.
type Param struct {
	Key   string
	Value string
}

// Params is a Param-slice, as returned by the router.
// The slice is ordered, the first URL parameter is also the first slice value.
// It is therefore safe to read values by the index.
type Params []Param

// MustGetParameter returns the value of the named parameter and panics when
// it was not set, the recovery middleware turns that into a 500.
func (ps Params) MustGetParameter(name string) string {
	v := ps.ByName(name)
	if v == "" {
		panic(errors.Errorf("parameter [%v] was not set", name))
	}
	return v
}

// ByName returns the value of the first Param which key matches the given name.
// If no matching Param is found, an empty string is returned.
func (ps Params) ByName(name string) string {
	return ps.ByNameWithDefault(name, "")
}

func (ps Params) ByNameWithDefault(name, def string) string {
	for i := range ps {
		if ps[i].Key == name {
			return ps[i].Value
		}
	}
	return def
}

func (ps Params) Keys() []string {
	o := []string{}
	for i := range ps {
		o = append(o, ps[i].Key)
	}
	return o
}

// Router is a http.Handler which can be used to dispatch requests to different
// handler functions via configurable routes
type Router struct {
	//method/path/handler
	hashRoute map[string]map[string]Handle

	// wildcard routes ride the upstream radix tree
	tree *upstream.Router

	// When enabled, paths without wildcards bypass the tree and are kept in
	// the exact match table, avoiding the tree's conflict rules between
	// static and parameterized siblings.
	ResolveConflict bool

	// Configurable http.Handler which is called when no matching route is
	// found. If it is not set, http.NotFound is used.
	NotFound http.Handler

	// Function to handle panics recovered from http handlers.
	// It should be used to generate a error page and return the http error code
	// 500 (Internal Server Error).
	PanicHandler func(http.ResponseWriter, *http.Request, interface{})

	mux *http.ServeMux
}

// Make sure the Router conforms with the http.Handler interface
var _ http.Handler = New(http.NewServeMux())

// New returns a new initialized Router.
// Path auto-correction, including trailing slashes, is enabled by default.
func New(mux *http.ServeMux) *Router {
	tree := upstream.New()
	tree.RedirectTrailingSlash = true
	tree.RedirectFixedPath = true
	tree.HandleMethodNotAllowed = true
	tree.HandleOPTIONS = true
	r := &Router{
		ResolveConflict: true,
		tree:            tree,
		mux:             mux,
	}
	tree.NotFound = http.HandlerFunc(r.serveFallback)
	return r
}

// GET is a shortcut for router.Handle("GET", path, handle)
func (r *Router) GET(path string, handle Handle) {
	r.Handle("GET", path, handle)
}

// HEAD is a shortcut for router.Handle("HEAD", path, handle)
func (r *Router) HEAD(path string, handle Handle) {
	r.Handle("HEAD", path, handle)
}

// OPTIONS is a shortcut for router.Handle("OPTIONS", path, handle)
func (r *Router) OPTIONS(path string, handle Handle) {
	r.Handle("OPTIONS", path, handle)
}

// POST is a shortcut for router.Handle("POST", path, handle)
func (r *Router) POST(path string, handle Handle) {
	r.Handle("POST", path, handle)
}

// PUT is a shortcut for router.Handle("PUT", path, handle)
func (r *Router) PUT(path string, handle Handle) {
	r.Handle("PUT", path, handle)
}

// PATCH is a shortcut for router.Handle("PATCH", path, handle)
func (r *Router) PATCH(path string, handle Handle) {
	r.Handle("PATCH", path, handle)
}

// DELETE is a shortcut for router.Handle("DELETE", path, handle)
func (r *Router) DELETE(path string, handle Handle) {
	r.Handle("DELETE", path, handle)
}

// Handle registers a new request handle with the given path and method.
//
// For GET, POST, PUT, PATCH and DELETE requests the respective shortcut
// functions can be used.
//
// This function is intended for bulk loading and to allow the usage of less
// frequently used, non-standardized or custom methods (e.g. for internal
// communication with a proxy).
func (r *Router) Handle(method, path string, handle Handle) {
	if path[0] != '/' {
		panic("path must begin with '/' in path '" + path + "'")
	}

	if r.ResolveConflict {
		if !strings.ContainsAny(path, "*:") {

			if r.hashRoute == nil || len(r.hashRoute) == 0 {
				r.hashRoute = map[string]map[string]Handle{}
			}
			paths, ok := r.hashRoute[method]
			if !ok {
				paths = map[string]Handle{}
				paths[path] = handle
			} else {
				paths[path] = handle
			}
			r.hashRoute[method] = paths
			return
		}
	}

	r.tree.Handle(method, path, func(w http.ResponseWriter, req *http.Request, ps upstream.Params) {
		params := make(Params, len(ps))
		for i := range ps {
			params[i] = Param{Key: ps[i].Key, Value: ps[i].Value}
		}
		handle(w, req, params)
	})
}

// HandlerFunc is an adapter which allows the usage of an http.HandlerFunc as a
// request handle.
func (r *Router) HandlerFunc(method, path string, handler http.HandlerFunc) {
	r.Handler(method, path, handler)
}

type paramsKey struct{}

// ParamsKey is the request context key under which URL params are stored.
var ParamsKey = paramsKey{}

// Handler is an adapter which allows the usage of an http.Handler as a
// request handle. The Params will be available in the request context
// under ParamsKey.
func (r *Router) Handler(method, path string, handler http.Handler) {
	r.Handle(method, path,
		func(w http.ResponseWriter, req *http.Request, p Params) {
			ctx := req.Context()
			ctx = context.WithValue(ctx, ParamsKey, p)
			req = req.WithContext(ctx)
			handler.ServeHTTP(w, req)
		},
	)
}

// ParamsFromContext pulls the URL parameters from a request context,
// or returns nil if none are present.
func ParamsFromContext(ctx context.Context) Params {
	p, _ := ctx.Value(ParamsKey).(Params)
	return p
}

// ServeFiles serves files from the given file system root.
// The path must end with "/*filepath", files are then served from the local
// path /defined/root/dir/*filepath.
// Internally a http.FileServer is used, therefore http.NotFound is used instead
// of the Router's NotFound handler.
// To use the operating system's file system implementation,
// use http.Dir:
//     router.ServeFiles("/src/*filepath", http.Dir("/var/www"))
func (r *Router) ServeFiles(path string, root http.FileSystem) {
	if len(path) < 10 || path[len(path)-10:] != "/*filepath" {
		panic("path must end with /*filepath in path '" + path + "'")
	}

	fileServer := http.FileServer(root)

	r.GET(path, func(w http.ResponseWriter, req *http.Request, ps Params) {
		req.URL.Path = ps.ByName("filepath")
		fileServer.ServeHTTP(w, req)
	})
}

func (r *Router) recv(w http.ResponseWriter, req *http.Request) {
	if rcv := recover(); rcv != nil {
		r.PanicHandler(w, req, rcv)
	}
}

// Lookup allows the manual lookup of a method + path combo.
// This is e.g. useful to build a framework around this router.
// Exact matches carry no parameters, so the Params return is nil for them.
func (r *Router) Lookup(method, path string) (Handle, bool) {

	if r.ResolveConflict {
		if r.hashRoute != nil {
			v, ok := r.hashRoute[method]
			if ok {
				v1, ok := v[path]
				if ok {
					return v1, true
				}
			}
		}
	}

	return nil, false
}

// serveFallback is the end of the chain: patterns registered on the plain
// mux get a chance, then the configurable NotFound handler answers.
func (r *Router) serveFallback(w http.ResponseWriter, req *http.Request) {
	if r.mux != nil {
		if _, pattern := r.mux.Handler(req); pattern != "" {
			r.mux.ServeHTTP(w, req)
			return
		}
	}
	if r.NotFound != nil {
		r.NotFound.ServeHTTP(w, req)
		return
	}
	http.NotFound(w, req)
}

// ServeHTTP makes the router implement the http.Handler interface.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.PanicHandler != nil {
		defer r.recv(w, req)
	}

	path := req.URL.Path

	if r.ResolveConflict {
		handler, ok := r.Lookup(req.Method, path)
		if ok {
			handler(w, req, nil)
			return
		}
	}

	r.tree.ServeHTTP(w, req)
}
