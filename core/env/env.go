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

package env

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	log "github.com/cihub/seelog"
	"infini.sh/shift/core/config"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/util"
)

// Env is environment object of app
type Env struct {
	name          string
	uppercaseName string
	lowercaseName string
	desc          string

	//generated
	version     string
	commit      string
	buildDate   string
	buildNumber string
	eolDate     string
	//generated

	configFile string

	terminalHeader string
	terminalFooter string

	// static configs
	SystemConfig *config.SystemConfig

	IsDebug bool

	LoggingLevel string

	init bool

	workingDataDir string
	workingLogDir  string
}

func (env *Env) GetLastCommitHash() string {
	return util.TrimSpaces(env.commit)
}

// GetBuildDate returns the build datetime of current package
func (env *Env) GetBuildDate() time.Time {
	t, err := time.Parse(time.RFC3339, util.TrimSpaces(env.buildDate))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (env *Env) GetBuildNumber() string {
	return util.TrimSpaces(env.buildNumber)
}

// GetVersion returns the version of this build
func (env *Env) GetVersion() string {
	return util.TrimSpaces(env.version)
}

func (env *Env) GetEOLDate() time.Time {
	t, err := time.Parse(time.RFC3339, util.TrimSpaces(env.eolDate))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (env *Env) GetAppName() string {
	return env.name
}

func (env *Env) GetAppCapitalName() string {
	return env.uppercaseName
}

func (env *Env) GetAppLowercaseName() string {
	return env.lowercaseName
}

func (env *Env) GetAppDesc() string {
	return env.desc
}

func (env *Env) GetWelcomeMessage() string {
	s := env.terminalHeader

	message := fmt.Sprintf("%s, %s, %s", util.FormatTime(env.GetBuildDate()), util.FormatTime(env.GetEOLDate()), env.GetLastCommitHash())

	s += ("[" + env.GetAppCapitalName() + "] " + env.GetAppDesc() + "\n")
	s += "[" + env.GetAppCapitalName() + "] " + env.GetVersion() + "#" + env.GetBuildNumber() + ", " + message + ""
	return s
}

func (env *Env) GetGoodbyeMessage() string {
	s := fmt.Sprintf("[%s] %s, uptime: %s\n\n", env.GetAppCapitalName(), env.GetVersion(), time.Since(GetStartTime()))
	s += env.terminalFooter
	return s
}

// Init creates a new env instance from a config
func (env *Env) Init() *Env {
	if env.init {
		return env
	}

	err := env.loadConfig()
	if err != nil {
		panic(err)
	}

	if env.IsDebug {
		log.Debug(util.ToJson(env, true))
	}

	env.init = true
	return env
}

var moduleConfig map[string]*config.Config
var pluginConfig map[string]*config.Config
var startTime = time.Now().UTC()

var (
	defaultSystemConfig = config.SystemConfig{
		APIConfig: config.APIConfig{
			Enabled: true,
			NetworkConfig: config.NetworkConfig{
				Binding:          "127.0.0.1:2900",
				SkipOccupiedPort: true,
			},
		},
		LoggingConfig: config.LoggingConfig{
			DisableFileOutput: false,
		},

		NodeConfig: config.NodeConfig{},

		PathConfig: config.PathConfig{
			Data:   "data",
			Log:    "log",
			Config: "configs",
		},
	}
)

var configObject *config.Config

func (env *Env) loadConfig() error {

	var ignoreFileMissing = false
	if env.configFile == "" {
		env.configFile = "./" + env.GetAppLowercaseName() + ".yml"
		ignoreFileMissing = true
	}

	env.SystemConfig = &defaultSystemConfig

	if env.SystemConfig.NodeConfig.ID == "" {
		env.SystemConfig.NodeConfig.ID = util.GetUUID()
	}

	filename, _ := filepath.Abs(env.configFile)

	//looking config from pwd
	pwd, _ := os.Getwd()
	if pwd != "" {
		pwd = path.Join(pwd, env.GetAppLowercaseName()+".yml")
	}
	ex, err := os.Executable()
	var exPath string
	if err == nil {
		exPath = filepath.Dir(ex)
	}
	if exPath != "" {
		exPath = path.Join(exPath, env.GetAppLowercaseName()+".yml")
	}

	log.Trace("pwd:", pwd, ",process path:", exPath)

	if util.FileExists(filename) {
		err := env.loadEnvFromConfigFile(filename)
		if err != nil {
			return err
		}
	} else if util.FileExists(pwd) {
		log.Warnf("default config missing, but found in %v", pwd)
		err := env.loadEnvFromConfigFile(pwd)
		if err != nil {
			return err
		}
	} else if util.FileExists(exPath) {
		log.Warnf("default config missing, but found in %v", exPath)
		err := env.loadEnvFromConfigFile(exPath)
		if err != nil {
			return err
		}
	} else {
		if !ignoreFileMissing {
			return errors.Errorf("config not found: %s", filename)
		}
	}

	return nil
}

func (env *Env) loadEnvFromConfigFile(filename string) error {
	log.Debug("loading config file:", filename)
	var err error
	configObject, err = config.LoadFile(filename)
	if err != nil {
		return err
	}

	if err := configObject.Unpack(env.SystemConfig); err != nil {
		return err
	}

	env.SetConfigFile(filename)

	log.Trace(env.SystemConfig.PathConfig.Config)

	//load configs from config folder
	if env.SystemConfig.PathConfig.Config != "" {
		cfgPath := env.SystemConfig.PathConfig.Config
		log.Debug("loading configs from:", cfgPath)
		if util.FileExists(cfgPath) {

			config.EnableWatcher(cfgPath)

			v, err := config.LoadPath(cfgPath)
			if err != nil {
				return err
			}
			if env.IsDebug {
				obj := map[string]interface{}{}
				v.Unpack(&obj)
				log.Trace(util.ToJson(obj, true))
			}

			err = configObject.Merge(v)
			if err != nil {
				return err
			}
		}

		if env.IsDebug {
			obj := map[string]interface{}{}
			configObject.Unpack(&obj)
			log.Trace(util.ToJson(obj, true))
		}
	}

	obj := map[string]interface{}{}
	if err := configObject.Unpack(obj); err != nil {
		return err
	}
	pluginConfig = parseModuleConfig(env.SystemConfig.Plugins)
	moduleConfig = parseModuleConfig(env.SystemConfig.Modules)

	return nil
}

func (env *Env) GetConfigFile() string {
	return env.configFile
}

func (env *Env) SetConfigFile(configFile string) *Env {
	env.configFile = configFile
	return env
}

func parseModuleConfig(cfgs []*config.Config) map[string]*config.Config {
	result := map[string]*config.Config{}

	for _, cfg := range cfgs {
		log.Trace(getModuleName(cfg), ",", cfg.Enabled(true))
		name := getModuleName(cfg)
		result[name] = cfg
	}

	return result
}

// GetModuleConfig return specify module's config
func GetModuleConfig(name string) *config.Config {
	cfg := moduleConfig[strings.ToLower(name)]
	return cfg
}

// GetPluginConfig return specify plugin's config
func GetPluginConfig(name string) *config.Config {
	cfg := pluginConfig[strings.ToLower(name)]
	return cfg
}

func ParseConfig(configKey string, configInstance interface{}) (exist bool, err error) {
	return ParseConfigSection(configObject, configKey, configInstance)
}

func ParseConfigSection(cfg *config.Config, configKey string, configInstance interface{}) (exist bool, err error) {
	if cfg != nil {
		childConfig, err := cfg.Child(configKey, -1)
		if err != nil {
			return exist, err
		}

		log.Tracef("found config: %s ", configKey)

		exist = true

		err = childConfig.Unpack(configInstance)
		log.Tracef("parsed config: %s, %v", configKey, configInstance)
		if err != nil {
			return exist, err
		}

		return exist, nil
	} else {
		log.Debugf("config: %s not found", configKey)
	}
	return exist, errors.Errorf("invalid config: %s", configKey)
}

func getModuleName(c *config.Config) string {
	cfgObj := struct {
		Module string `config:"name"`
	}{}

	if c == nil {
		return ""
	}
	if err := c.Unpack(&cfgObj); err != nil {
		return ""
	}

	return cfgObj.Module
}

// NewEnv creates a new env instance
func NewEnv(name, desc, ver, buildNumber, commit, buildDate, eolDate, terminalHeader, terminalFooter string) *Env {
	return &Env{
		name:           util.TrimSpaces(name),
		uppercaseName:  strings.ToUpper(util.TrimSpaces(name)),
		lowercaseName:  strings.ToLower(util.TrimSpaces(name)),
		desc:           util.TrimSpaces(desc),
		version:        util.TrimSpaces(ver),
		commit:         util.TrimSpaces(commit),
		buildDate:      buildDate,
		buildNumber:    buildNumber,
		eolDate:        eolDate,
		terminalHeader: terminalHeader,
		terminalFooter: terminalFooter,
	}
}

// EmptyEnv return a empty env instance
func EmptyEnv() *Env {
	system := defaultSystemConfig
	system.PathConfig.Data = os.TempDir()
	system.PathConfig.Log = os.TempDir()
	system.LoggingConfig.DisableFileOutput = true
	return &Env{SystemConfig: &system}
}

func GetStartTime() time.Time {
	return startTime
}

// GetDataDir returns root working dir of app instance
func (env *Env) GetDataDir() string {
	if env.workingDataDir != "" {
		return env.workingDataDir
	}

	env.workingDataDir = path.Join(env.SystemConfig.PathConfig.Data, env.GetAppLowercaseName())
	os.MkdirAll(env.workingDataDir, 0755)
	return env.workingDataDir
}

func (env *Env) GetLogDir() string {
	if env.workingLogDir != "" {
		return env.workingLogDir
	}

	env.workingLogDir = env.SystemConfig.PathConfig.Log
	os.MkdirAll(env.workingLogDir, 0755)
	return env.workingLogDir
}
