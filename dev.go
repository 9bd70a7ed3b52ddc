//go:build dev
// +build dev

/* Copyright © INFINI Ltd. All rights reserved.
 * web: https://infinilabs.com
 * mail: hello#infini.ltd */

package main

import (
	"expvar"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime/pprof"

	"github.com/arl/statsviz"
	log "github.com/cihub/seelog"

	"infini.sh/shift/core/global"
)

var cpuproFile string
var memproFile string
var httpprof string

// metricsHandler dumps every expvar as one JSON document, handy for
// watching allocation counters while a copy runs.
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	first := true
	report := func(key string, value interface{}) {
		if !first {
			fmt.Fprintf(w, ",\n")
		}
		first = false
		if str, ok := value.(string); ok {
			fmt.Fprintf(w, "%q: %q", key, str)
		} else {
			fmt.Fprintf(w, "%q: %v", key, value)
		}
	}

	fmt.Fprintf(w, "{\n")
	expvar.Do(func(kv expvar.KeyValue) {
		report(kv.Key, kv.Value)
	})
	fmt.Fprintf(w, "\n}\n")
}

func init() {

	fmt.Println("[WARNING] THIS IS IN DEVELOPMENT MODE.")

	debugFlagInitFunc = func() {
		flag.StringVar(&cpuproFile, "cpu-profile", "", "write cpu profile to this file")
		flag.StringVar(&memproFile, "mem-profile", "", "write memory profile to this file on exit")
		flag.StringVar(&httpprof, "pprof", "", "enable and setup pprof/expvar service, eg: localhost:6060 , the endpoint will be: http://localhost:6060/debug/pprof/ and http://localhost:6060/debug/vars")
	}

	debugInitFunc = func() {

		if httpprof != "" {
			go func() {
				defer func() {
					if r := recover(); r != nil {
						log.Error("error to serve httpprof,", r)
					}
				}()

				log.Infof("pprof listen at: http://%s/debug/pprof/", httpprof)
				mux := http.NewServeMux()

				// http://localhost:6060/debug/statsviz/
				statsviz.Register(mux)

				log.Infof("statsviz listen at: http://%s/debug/statsviz/", httpprof)

				mux.HandleFunc("/debug/pprof/", func(w http.ResponseWriter, r *http.Request) {
					http.DefaultServeMux.ServeHTTP(w, r)
				})

				mux.HandleFunc("/debug/vars", metricsHandler)

				endpoint := http.ListenAndServe(httpprof, mux)
				log.Debugf("stop pprof server: %v", endpoint)
			}()
		}

		if cpuproFile != "" {
			f, err := os.Create(cpuproFile)
			if err != nil {
				panic(err)
			}
			pprof.StartCPUProfile(f)
			// the profile covers the whole run, stopped on the way out
			global.RegisterShutdownCallback(func() {
				pprof.StopCPUProfile()
				f.Close()
			})
		}

		if memproFile != "" {
			// a startup heap snapshot says nothing, take it on exit
			global.RegisterShutdownCallback(func() {
				f, err := os.Create(memproFile)
				if err != nil {
					log.Error("unable to write memory profile,", err)
					return
				}
				pprof.WriteHeapProfile(f)
				f.Close()
			})
		}
	}

}
