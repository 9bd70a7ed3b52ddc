// Package config , actually copied from github.com/elastic/beats
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	ucfg "github.com/elastic/go-ucfg"
	"github.com/elastic/go-ucfg/parse"
	"github.com/elastic/go-ucfg/yaml"

	log "github.com/cihub/seelog"
	"github.com/valyala/fasttemplate"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/util"
)

// Config object to store hierarchical configurations into.
// See https://godoc.org/github.com/elastic/go-ucfg#Config
type Config ucfg.Config

var configOpts = []ucfg.Option{
	ucfg.PathSep("."),
	ucfg.AppendValues,
	ucfg.VarExp,
	ucfg.ResolveNOOP,
	ucfg.DefaultParseConfig(parse.NoopConfig),
}

// NewConfig create a pretty new config
func NewConfig() *Config {
	return fromConfig(ucfg.New())
}

// NewConfigFrom get config instance
func NewConfigFrom(from interface{}) (*Config, error) {
	c, err := ucfg.NewFrom(from, configOpts...)
	return fromConfig(c), err
}

// MergeConfigs just merge configs together
func MergeConfigs(cfgs ...*Config) (*Config, error) {
	config := NewConfig()
	for _, c := range cfgs {
		if err := config.Merge(c); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// NewConfigWithYAML load config from yaml
func NewConfigWithYAML(in []byte, source string) (*Config, error) {
	opts := append(
		[]ucfg.Option{
			ucfg.MetaData(ucfg.Meta{Source: source}),
		},
		configOpts...,
	)
	c, err := yaml.NewConfig(in, opts...)
	return fromConfig(c), err
}

func LoadPath(folder string) (*ucfg.Config, error) {
	files := []string{}
	filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if info != nil && !info.IsDir() {
			if strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml") {
				files = append(files, path)
			}
		}
		return nil
	})
	return LoadFiles(files...)
}

type TemplateConfigs struct {
	Templates []ConfigTemplate `config:"configs.template"`
}

type ConfigTemplate struct {
	Name     string      `config:"name"`
	Path     string      `config:"path"`
	Variable util.MapStr `config:"variable"`
}

type EnvConfig struct {
	Environments map[string]interface{} `config:"env"`
}

func LoadFile(path string) (*Config, error) {
	var err error
	//check templated file
	cfgByes, err := util.FileGetContent(path)
	if err != nil {
		panic(err)
	}

	//if hash variable, apply and re-unpack
	bytesStr := string(cfgByes)
	if util.ContainStr(bytesStr, "$[[") {
		obj, err := LoadEnvVariables(path)
		if err != nil {
			panic(err)
		}

		envObj := util.MapStr{}
		envObj.Put("env", obj)
		tempConfig := ConfigTemplate{
			Path:     path,
			Variable: envObj,
		}
		return NewConfigWithTemplate(tempConfig)
	}
	return internalLoadFile(path)
}

func LoadEnvVariables(path string) (map[string]interface{}, error) {
	env1 := EnvConfig{}
	var err error
	configObject, err := internalLoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := configObject.Unpack(&env1); err != nil {
		return nil, err
	}

	log.Debugf("config contain variables, try to parse with environments")
	environs := os.Environ()
	obj := map[string]interface{}{}

	for k, v := range env1.Environments {
		obj[k] = v
	}

	for _, env := range environs {
		kv := strings.Split(env, "=")
		if len(kv) == 2 {
			obj[kv[0]] = kv[1]
		}
	}

	log.Trace("environments:", util.ToJson(obj, true))
	return obj, nil
}

// internalLoadFile will load config from specify file
func internalLoadFile(path string) (*Config, error) {

	c, err := yaml.NewConfigWithFile(path, configOpts...)
	if err != nil {
		return nil, err
	}

	pCfg := fromConfig(c)

	if pCfg.HasField("configs") {
		templates := TemplateConfigs{}
		pCfg.Unpack(&templates)
		log.Trace(templates)
		if len(templates.Templates) > 0 {
			for i, v := range templates.Templates {
				log.Tracef("processing #[%v] template: %v,%v", i, v.Name, v.Path)
				cfg, err := NewConfigWithTemplate(v)
				if err != nil {
					return pCfg, err
				} else {
					pCfg, err = MergeConfigs(pCfg, cfg)
					if err != nil {
						return pCfg, err
					}
					obj := map[string]interface{}{}
					if err := pCfg.Unpack(obj); err != nil {
						return pCfg, err
					}
				}
			}
		}

	}

	log.Debugf("load config file '%v'", path)
	return pCfg, err
}

func NestedRenderingTemplate(temp string, runKv util.MapStr) string {
	template, err := fasttemplate.NewTemplate(temp, "$[[", "]]")
	if err != nil {
		panic(err)
	}

	configStr := template.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		variable, ok := GetVariable(runKv, tag)
		if ok {
			return w.Write([]byte(variable))
		}
		return w.Write([]byte("$[[" + tag + "]]"))
	})

	if configStr != temp && strings.Contains(configStr, "$[[") && strings.Contains(configStr, "]]") && strings.Index(configStr, "$[[") < strings.LastIndex(configStr, "]]") {
		newConfigStr := NestedRenderingTemplate(configStr, runKv)
		if newConfigStr != configStr {
			configStr = newConfigStr
		}
	}
	return configStr
}

func GetVariable(runtimeKV util.MapStr, key string) (string, bool) {
	if runtimeKV != nil {

		if util.ContainStr(key, "$[[") {

			template, err := fasttemplate.NewTemplate(string(key), "$[[", "]]")
			if err != nil {
				panic(err)
			}

			key = template.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
				variable, ok := GetVariable(runtimeKV, tag)
				if ok {
					return w.Write([]byte(variable))
				}
				return w.Write([]byte("$[[" + tag + "]]"))
			})
		}

		x, err := runtimeKV.GetValue(key)
		if err == nil {
			str, ok := x.(string)
			if ok {
				return str, true
			}
			return fmt.Sprintf("%v", x), true
		}
	}
	return "", false
}

func NewConfigWithTemplate(v ConfigTemplate) (*Config, error) {

	cfgFile := v.Path
	if !filepath.IsAbs(cfgFile) {
		cfgFile, _ = filepath.Abs(cfgFile)
	}
	if !util.FileExists(cfgFile) {
		return nil, errors.Errorf("template %v not exists", cfgFile)
	}

	tempBytes, err := util.FileGetContent(cfgFile)
	if err != nil {
		return nil, err
	}

	configStr := NestedRenderingTemplate(string(tempBytes), v.Variable)

	log.Trace("rendering templated config:\n", configStr)
	return NewConfigWithYAML([]byte(configStr), "template")
}

// LoadFiles will load configs from specify files
func LoadFiles(paths ...string) (*ucfg.Config, error) {

	c := ucfg.New()
	opts := []ucfg.Option{
		ucfg.AppendValues,
	}

	var err error
	cfg := &Config{}

	for _, path := range paths {
		cfg, err = internalLoadFile(path)
		if err != nil {
			return c, err
		}

		err = c.Merge(cfg, opts...)
		if err != nil {
			return c, err
		}
	}

	return c, err
}

// Merge a map, a slice, a struct or another Config object into c.
func (c *Config) Merge(from interface{}) error {
	return c.access().Merge(from, configOpts...)
}

// Unpack unpacks c into a struct, a map, or a slice allocating maps, slices,
// and pointers as necessary.
func (c *Config) Unpack(to interface{}) error {
	return c.access().Unpack(to, configOpts...)
}

// HasField checks if c has a top-level named key name.
func (c *Config) HasField(name string) bool {
	return c.access().HasField(name)
}

// Bool reads a boolean setting returning an error if the setting has no
// boolean value.
func (c *Config) Bool(name string, idx int) (bool, error) {
	return c.access().Bool(name, idx, configOpts...)
}

// String reads a string setting returning an error if the setting has
// no string or primitive value convertible to string.
func (c *Config) String(name string, idx int) (string, error) {
	return c.access().String(name, idx, configOpts...)
}

// Int reads an int64 value returning an error if the setting is
// not integer value, the primitive value is not convertible to int or a conversion
// would create an integer overflow.
func (c *Config) Int(name string, idx int) (int64, error) {
	return c.access().Int(name, idx, configOpts...)
}

// Child returns a child configuration or an error if the setting requested is a
// primitive value only.
func (c *Config) Child(name string, idx int) (*Config, error) {
	sub, err := c.access().Child(name, idx, configOpts...)
	return fromConfig(sub), err
}

// SetBool sets a boolean primitive value. An error is returned if the new name
// is invalid.
func (c *Config) SetBool(name string, idx int, value bool) error {
	return c.access().SetBool(name, idx, value, configOpts...)
}

// SetString sets string value. An error is returned if the name is invalid.
func (c *Config) SetString(name string, idx int, value string) error {
	return c.access().SetString(name, idx, value, configOpts...)
}

// IsDict checks if c has named keys.
func (c *Config) IsDict() bool {
	return c.access().IsDict()
}

// IsArray checks if c has index only accessible settings.
func (c *Config) IsArray() bool {
	return c.access().IsArray()
}

// Enabled was a predefined config, enabled by default if no config was found
func (c *Config) Enabled(defaultV bool) bool {
	testEnabled := struct {
		Enabled bool `config:"enabled"`
	}{defaultV}

	if c == nil {
		return defaultV
	}
	if err := c.Unpack(&testEnabled); err != nil {
		// if unpacking fails, expect 'enabled' being set to default value
		return defaultV
	}
	return testEnabled.Enabled
}

func FromConfig(in *ucfg.Config) *Config {
	return fromConfig(in)
}

func fromConfig(in *ucfg.Config) *Config {
	return (*Config)(in)
}

func (c *Config) access() *ucfg.Config {
	return (*ucfg.Config)(c)
}

// GetFields returns a list of all top-level named keys in c.
func (c *Config) GetFields() []string {
	return c.access().GetFields()
}
