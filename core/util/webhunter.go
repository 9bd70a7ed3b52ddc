/*
Copyright 2016 Medcl (m AT medcl.net)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

   http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package util

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	uri "net/url"
	"strings"
	"time"

	log "github.com/cihub/seelog"
	"golang.org/x/net/proxy"
	"infini.sh/shift/core/errors"
)

const (
	Verb_GET    string = "GET"
	Verb_PUT    string = "PUT"
	Verb_POST   string = "POST"
	Verb_DELETE string = "DELETE"
	Verb_HEAD   string = "HEAD"
)

type Request struct {
	Agent       string
	Method      string
	Url         string
	Proxy       string
	Body        []byte
	headers     map[string]string
	ContentType string
	Compress    bool

	basicAuthUsername string
	basicAuthPassword string
	Context           context.Context
}

func NewRequest(method, url string) *Request {
	req := Request{}
	req.Url = url
	req.Method = method
	return &req
}

// NewPostRequest issue a simple http post request
func NewPostRequest(url string, body []byte) *Request {
	req := Request{}
	req.Url = url
	req.Method = Verb_POST
	if body != nil {
		req.Body = body
	}
	return &req
}

// NewPutRequest issue a simple http put request
func NewPutRequest(url string, body []byte) *Request {
	req := Request{}
	req.Url = url
	req.Method = Verb_PUT
	if body != nil {
		req.Body = body
	}
	return &req
}

// NewGetRequest issue a simple http get request
func NewGetRequest(url string, body []byte) *Request {
	req := Request{}
	req.Url = url
	if body != nil {
		req.Body = body
	}
	req.Method = Verb_GET
	return &req
}

// NewDeleteRequest issue a simple http delete request
func NewDeleteRequest(url string, body []byte) *Request {
	req := Request{}
	req.Url = url
	if body != nil {
		req.Body = body
	}
	req.Method = Verb_DELETE
	return &req
}

// SetBasicAuth set user and password for request
func (r *Request) SetBasicAuth(username, password string) *Request {
	r.basicAuthUsername = username
	r.basicAuthPassword = password
	return r
}

func (r *Request) SetContentType(contentType string) *Request {
	r.ContentType = contentType
	return r
}

func (r *Request) AddHeader(key, v string) *Request {
	if r.headers == nil {
		r.headers = map[string]string{}
	}
	r.headers[key] = v
	return r
}

func (r *Request) SetAgent(agent string) *Request {
	r.Agent = agent
	return r
}

func (r *Request) AcceptGzip() *Request {
	r.AddHeader("Accept-Encoding", "gzip")
	return r
}

func (r *Request) SetProxy(proxy string) *Request {
	r.Proxy = proxy
	return r
}

// Result is the http request result
type Result struct {
	Host       string
	Url        string
	Headers    map[string][]string
	Body       []byte
	StatusCode int
	Size       uint64
}

const userAgent = "Mozilla/5.0 (compatible; INFINI/1.0; +http://infini.sh/)"

const ContentTypeJson = "application/json;charset=utf-8"
const ContentTypeForm = "application/x-www-form-urlencoded;charset=UTF-8"

// ExecuteRequest issue a request
func ExecuteRequest(req *Request) (result *Result, err error) {
	return ExecuteRequestWithCatchFlag(defaultClient, req, true)
}

func ExecuteRequestWithCatchFlag(client *http.Client, req *Request, catchError bool) (result *Result, err error) {

	if !catchError {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("error in request: %v", r)
				result = &Result{}
				err = errors.Errorf("error in request: %v", r)
			}
		}()
	}

	if client == nil {
		client = defaultClient
	}

	var request *http.Request
	if req.Body != nil && len(req.Body) > 0 {
		postBytesReader := bytes.NewReader(req.Body)
		request, err = http.NewRequest(req.Method, req.Url, postBytesReader)
	} else {
		request, err = http.NewRequest(req.Method, req.Url, nil)
	}
	if err != nil {
		log.Errorf("error in request: %s", err)
		return nil, err
	}

	if req.Context != nil {
		request = request.WithContext(req.Context)
	}

	if req.Agent != "" {
		request.Header.Set("User-Agent", req.Agent)
	} else {
		request.Header.Set("User-Agent", userAgent)
	}

	if req.Compress {
		request.Header.Set("Accept-Encoding", "gzip,deflate")
	}

	if req.ContentType != "" {
		request.Header.Set("Content-Type", req.ContentType)
	}

	if req.headers != nil {
		for k, v := range req.headers {
			request.Header.Set(k, v)
		}
	}

	if req.basicAuthUsername != "" && req.basicAuthPassword != "" {
		request.SetBasicAuth(req.basicAuthUsername, req.basicAuthPassword)
	}

	if req.Proxy != "" {
		proxyURL, err := uri.Parse(req.Proxy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse proxy URL: %v", err)
		}

		// get a dialer that creates the connection via the SOCKS5 proxy
		proxyDialer, err := proxy.FromURL(proxyURL, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain proxy dialer: %v", err)
		}

		proxyTransport := &http.Transport{
			Dial: proxyDialer.Dial,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: timeout,
				DualStack: true,
			}).DialContext,
		}
		client.Transport = proxyTransport
	}

	return execute(client, request)
}

// HttpGet issue a simple http get request
func HttpGet(resource string) (*Result, error) {
	req := NewGetRequest(resource, nil)
	return ExecuteRequest(req)
}

var timeout = 60 * time.Second
var t = &http.Transport{
	Dial: func(netw, addr string) (net.Conn, error) {
		deadline := time.Now().Add(timeout)
		c, err := net.DialTimeout(netw, addr, timeout)
		if err != nil {
			return nil, err
		}
		c.SetDeadline(deadline)
		return c, nil
	},
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   timeout,
		KeepAlive: timeout,
		DualStack: true,
	}).DialContext,
	ResponseHeaderTimeout: timeout,
	IdleConnTimeout:       timeout,
	TLSHandshakeTimeout:   timeout,
	ExpectContinueTimeout: timeout,
	DisableCompression:    true,
	DisableKeepAlives:     false,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	TLSClientConfig:       &tls.Config{InsecureSkipVerify: true},
}

var defaultClient = &http.Client{
	Transport:     t,
	Timeout:       timeout,
	CheckRedirect: nil,
}

// NewHTTPClient returns a client whose total and per-phase timeouts are
// raised to the given duration, for requests that legitimately run long,
// like a synchronous _reindex call.
func NewHTTPClient(timeout time.Duration) *http.Client {
	dialTimeout := 60 * time.Second
	if timeout < dialTimeout {
		dialTimeout = timeout
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   dialTimeout,
				KeepAlive: dialTimeout,
				DualStack: true,
			}).DialContext,
			ResponseHeaderTimeout: timeout,
			IdleConnTimeout:       dialTimeout,
			TLSHandshakeTimeout:   dialTimeout,
			ExpectContinueTimeout: dialTimeout,
			DisableCompression:    true,
			TLSClientConfig:       &tls.Config{InsecureSkipVerify: true},
		},
		Timeout: timeout,
	}
}

func execute(client *http.Client, req *http.Request) (*Result, error) {
	result := &Result{}
	resp, err := client.Do(req)

	defer func() {
		if resp != nil && resp.Body != nil {
			io.Copy(ioutil.Discard, resp.Body)
			resp.Body.Close()
		}
	}()

	if err != nil {
		return result, err
	}

	if resp != nil {
		statusCode := resp.StatusCode
		result.StatusCode = statusCode

		if statusCode == 301 || statusCode == 302 {
			log.Debug("got redirect: ", req.URL, " => ", resp.Header.Get("Location"))
			location := resp.Header.Get("Location")
			if len(location) > 0 && location != req.URL.String() {
				return result, errors.NewWithPayload(err, errors.URLRedirected, location, fmt.Sprint("got redirect: ", req.URL, " => ", location))
			}
		}

		// redirects may change the host
		result.Host = resp.Request.Host
		result.Url = resp.Request.URL.String()
	}

	if resp.Header != nil {
		result.Headers = map[string][]string{}
		for k, v := range resp.Header {
			result.Headers[strings.ToLower(k)] = v
		}
	}

	reader := resp.Body

	if resp.Header.Get("Content-Encoding") == "gzip" {
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
	}

	if reader != nil {
		body, err := ioutil.ReadAll(reader)
		io.Copy(ioutil.Discard, reader)
		reader.Close()
		if err != nil {
			return result, nil
		}

		result.Body = body
		result.Size = uint64(len(body))
		return result, nil
	}

	return nil, http.ErrNotSupported
}
