/* Copyright © INFINI Ltd. All rights reserved.
 * web: https://infinilabs.com
 * mail: hello#infini.ltd */

package api

import (
	"crypto/subtle"
	"net/http"

	httprouter "infini.sh/shift/core/api/router"
)

// BasicAuth guards a route with HTTP basic auth. Credentials compare in
// constant time so a failed check leaks nothing about how close the guess
// was.
func BasicAuth(h httprouter.Handle, requiredUser, requiredPassword string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		user, password, hasAuth := r.BasicAuth()
		if hasAuth && secureCompare(user, requiredUser) && secureCompare(password, requiredPassword) {
			h(w, r, ps)
			return
		}
		w.Header().Set("WWW-Authenticate", "Basic realm=Restricted")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
}

// BasicAuthFilter applies the same guard through the api filter chain,
// covering router handles and plain handler funcs alike.
type BasicAuthFilter struct {
	Username string
	Password string
}

func (filter *BasicAuthFilter) FilterHttpRouter(pattern string, h httprouter.Handle) httprouter.Handle {
	return BasicAuth(h, filter.Username, filter.Password)
}

func (filter *BasicAuthFilter) FilterHttpHandlerFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		user, password, hasAuth := r.BasicAuth()
		if hasAuth && secureCompare(user, filter.Username) && secureCompare(password, filter.Password) {
			handler(w, r)
			return
		}
		w.Header().Set("WWW-Authenticate", "Basic realm=Restricted")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
}

func secureCompare(given, actual string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(actual)) == 1
}
