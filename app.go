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

package main

import (
	"flag"
	"fmt"
	defaultLog "log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	log "github.com/cihub/seelog"
	"infini.sh/shift/core/config"
	"infini.sh/shift/core/env"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/logger"
	"infini.sh/shift/core/module"
	"infini.sh/shift/core/stats"
	"infini.sh/shift/core/util"
)

// hooks for the dev build, see dev.go
var debugFlagInitFunc func()
var debugInitFunc func()

type App struct {
	environment *env.Env
	numCPU      int
	quitSignal  chan bool
	isDebug     bool
	configFile  string
	logLevel    string
	exitCode    int
}

func NewApp(name, desc, ver, buildNumber, commit, buildDate, eolDate, terminalHeader, terminalFooter string) *App {
	return &App{
		environment: env.NewEnv(name, desc, ver, buildNumber, commit, buildDate, eolDate, terminalHeader, terminalFooter),
		quitSignal:  make(chan bool, 1),
	}
}

func (app *App) Init(customFunc func()) {

	showversion := flag.Bool("v", false, "version")
	flag.StringVar(&app.logLevel, "log", "info", "the log level, options: trace,debug,info,warn,error")
	flag.StringVar(&app.configFile, "config", app.environment.GetAppLowercaseName()+".yml", "the location of config file, default: "+app.environment.GetAppLowercaseName()+".yml")
	flag.BoolVar(&app.isDebug, "debug", false, "run in debug mode, "+app.environment.GetAppName()+" will quit with panic error")
	flag.IntVar(&app.numCPU, "cpu", -1, "the number of CPUs to use")

	if debugFlagInitFunc != nil {
		debugFlagInitFunc()
	}

	flag.Parse()

	if *showversion {
		fmt.Println(app.environment.GetAppName(), app.environment.GetVersion(), app.environment.GetBuildNumber(), app.environment.GetLastCommitHash())
		os.Exit(0)
	}

	defaultLog.SetOutput(logger.EmptyLogger{})

	logger.SetLogging(&config.LoggingConfig{LogLevel: app.logLevel, DisableFileOutput: true}, app.environment.GetAppLowercaseName(), "")

	app.environment.IsDebug = app.isDebug

	app.environment.SetConfigFile(app.configFile)

	app.environment.Init()

	//put env into global registrar
	global.RegisterEnv(app.environment)

	loggingConfig := app.environment.SystemConfig.LoggingConfig
	loggingConfig.LogLevel = app.logLevel
	logger.SetLogging(&loggingConfig, app.environment.GetAppLowercaseName(), app.environment.GetLogDir())

	if debugInitFunc != nil {
		debugInitFunc()
	}

	if customFunc != nil {
		customFunc()
	}
}

func (app *App) bootstrap(setup func()) {

	if app.numCPU <= 0 {
		runtime.GOMAXPROCS(runtime.NumCPU())
	} else {
		runtime.GOMAXPROCS(app.numCPU)
	}

	fmt.Println(app.environment.GetWelcomeMessage())

	//check instance lock
	util.CheckInstanceLock(app.environment.GetDataDir())

	if setup != nil {
		setup()
	}
}

// handleSignals translates process signals into an orderly stop. Work in
// flight checks the shutdown flag at its next safe point and gives up
// there, nothing is killed mid-call.
func (app *App) handleSignals(quitAfterStop bool) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		os.Interrupt)

	go func() {
		s := <-sigc
		fmt.Printf("\n[%s] got signal: %v, start shutting down\n", app.environment.GetAppCapitalName(), s.String())
		global.RaiseShutdownSignal()
		//wait workers to exit
		module.Stop()
		if quitAfterStop {
			app.Quit()
		}
	}()
}

// Start runs setup then start and keeps the process alive until a signal
// arrives or something calls Quit, the service mode entry point.
func (app *App) Start(setup func(), start func()) {

	app.bootstrap(setup)

	if start != nil {
		start()
	}

	app.handleSignals(true)

	log.Infof("%s now started.", app.environment.GetAppName())

	<-app.quitSignal
}

// Run executes one workload on the calling goroutine and returns when it is
// done, the one-shot entry point. A signal does not kill the process, it
// raises the shutdown flag so the workload can stop at its next phase
// boundary and still report what happened.
func (app *App) Run(setup func(), workload func()) {

	app.bootstrap(setup)

	app.handleSignals(false)

	if workload != nil {
		workload()
	}

	if !global.ShuttingDown() {
		module.Stop()
	}
}

// Quit wakes the main loop up, safe to call more than once.
func (app *App) Quit() {
	select {
	case app.quitSignal <- true:
	default:
	}
}

// SetExitCode decides what the process reports to the shell once Shutdown
// runs, zero until someone records a failure.
func (app *App) SetExitCode(code int) {
	app.exitCode = code
}

func (app *App) Shutdown() {
	//cleanup
	util.ClearInstanceLock()
	config.StopWatchers()

	callbacks := global.ShutdownCallback()
	for i, v := range callbacks {
		log.Trace("executing callback: ", i)
		v()
	}

	if r := recover(); r != nil {
		var v string
		switch r := r.(type) {
		case error:
			if errors.CodeOf(r) == errors.UsageError {
				app.exitCode = 2
			}
			v = r.Error()
		case runtime.Error:
			v = r.Error()
		case string:
			v = r
		default:
			v = fmt.Sprintf("%v", r)
		}

		if app.exitCode == 0 {
			app.exitCode = 1
		}

		log.Error("shutdown: ", v)
		fmt.Fprintf(os.Stderr, "\n[%s] failed: %v\n", app.environment.GetAppCapitalName(), v)

		if app.environment.IsDebug {
			buf := make([]byte, 1<<20)
			n := runtime.Stack(buf, true)
			fmt.Printf("\n%s", buf[:n])
		}
	}

	log.Flush()
	logger.Flush()

	if app.environment.IsDebug {
		if all, err := stats.StatsMap(); err == nil {
			fmt.Println(util.ToJson(all, true))
		}
	}

	log.Infof("%s now terminated.", app.environment.GetAppName())
	log.Flush()
	//print goodbye message
	fmt.Println(app.environment.GetGoodbyeMessage())

	os.Exit(app.exitCode)
}
