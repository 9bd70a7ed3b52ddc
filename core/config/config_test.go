package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"infini.sh/shift/core/util"
)

type clusterEntry struct {
	Name     string `config:"name"`
	Endpoint string `config:"endpoint"`
	Enabled  bool   `config:"enabled"`
}

func TestNewConfigFromAndUnpack(t *testing.T) {
	cfg, err := NewConfigFrom(map[string]interface{}{
		"name":     "default",
		"endpoint": "http://localhost:9200",
		"enabled":  true,
	})
	assert.NoError(t, err)

	entry := clusterEntry{}
	err = cfg.Unpack(&entry)
	assert.NoError(t, err)
	assert.Equal(t, "default", entry.Name)
	assert.Equal(t, "http://localhost:9200", entry.Endpoint)
	assert.True(t, entry.Enabled)
}

func TestNewConfigWithYAML(t *testing.T) {
	raw := []byte(`
elasticsearch:
  - name: default
    endpoint: http://localhost:9200
migration:
  protected_indices:
    - ".*"
`)
	cfg, err := NewConfigWithYAML(raw, "test")
	assert.NoError(t, err)
	assert.True(t, cfg.HasField("elasticsearch"))
	assert.True(t, cfg.HasField("migration"))

	child, err := cfg.Child("migration", -1)
	assert.NoError(t, err)

	section := struct {
		ProtectedIndices []string `config:"protected_indices"`
	}{}
	err = child.Unpack(&section)
	assert.NoError(t, err)
	assert.Equal(t, []string{".*"}, section.ProtectedIndices)
}

func TestMergeOverridesScalars(t *testing.T) {
	base, err := NewConfigFrom(map[string]interface{}{"endpoint": "http://localhost:9200", "timeout": 60})
	assert.NoError(t, err)
	override, err := NewConfigFrom(map[string]interface{}{"endpoint": "http://es:9200"})
	assert.NoError(t, err)

	merged, err := MergeConfigs(base, override)
	assert.NoError(t, err)

	v, err := merged.String("endpoint", -1)
	assert.NoError(t, err)
	assert.Equal(t, "http://es:9200", v)

	n, err := merged.Int("timeout", -1)
	assert.NoError(t, err)
	assert.Equal(t, int64(60), n)
}

func TestEnabledDefault(t *testing.T) {
	var nilCfg *Config
	assert.True(t, nilCfg.Enabled(true))
	assert.False(t, nilCfg.Enabled(false))

	off, err := NewConfigFrom(map[string]interface{}{"enabled": false})
	assert.NoError(t, err)
	assert.False(t, off.Enabled(true))

	on, err := NewConfigFrom(map[string]interface{}{"other": 1})
	assert.NoError(t, err)
	assert.True(t, on.Enabled(true))
}

func TestNestedRenderingTemplate(t *testing.T) {
	kv := util.MapStr{
		"host":     "localhost",
		"endpoint": "http://$[[host]]:9200",
	}

	assert.Equal(t, "localhost", NestedRenderingTemplate("$[[host]]", kv))

	//a variable whose value is itself a template gets re-rendered
	assert.Equal(t, "http://localhost:9200", NestedRenderingTemplate("$[[endpoint]]", kv))

	//unknown variables stay put instead of disappearing
	assert.Equal(t, "$[[missing]]", NestedRenderingTemplate("$[[missing]]", kv))
}

func TestGetVariable(t *testing.T) {
	kv := util.MapStr{
		"env": map[string]interface{}{
			"ES_ENDPOINT": "http://localhost:9200",
			"PORT":        9200,
		},
	}

	v, ok := GetVariable(kv, "env.ES_ENDPOINT")
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:9200", v)

	//non string values render through fmt
	v, ok = GetVariable(kv, "env.PORT")
	assert.True(t, ok)
	assert.Equal(t, "9200", v)

	_, ok = GetVariable(kv, "env.MISSING")
	assert.False(t, ok)

	_, ok = GetVariable(nil, "env.PORT")
	assert.False(t, ok)
}

func TestLoadFileExpandsEnvSection(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "shift.yml")
	content := []byte(`
env:
  ES_ENDPOINT: http://localhost:9200
elasticsearch:
  - name: default
    endpoint: $[[env.ES_ENDPOINT]]
`)
	err := os.WriteFile(file, content, 0644)
	assert.NoError(t, err)

	cfg, err := LoadFile(file)
	assert.NoError(t, err)

	section := struct {
		Elasticsearch []clusterEntry `config:"elasticsearch"`
	}{}
	err = cfg.Unpack(&section)
	assert.NoError(t, err)
	assert.Len(t, section.Elasticsearch, 1)
	assert.Equal(t, "http://localhost:9200", section.Elasticsearch[0].Endpoint)
}

func TestLoadFileEnvironmentWins(t *testing.T) {
	t.Setenv("ES_ENDPOINT", "http://es:9200")

	dir := t.TempDir()
	file := filepath.Join(dir, "shift.yml")
	content := []byte(`
env:
  ES_ENDPOINT: http://localhost:9200
elasticsearch:
  - name: default
    endpoint: $[[env.ES_ENDPOINT]]
`)
	err := os.WriteFile(file, content, 0644)
	assert.NoError(t, err)

	cfg, err := LoadFile(file)
	assert.NoError(t, err)

	section := struct {
		Elasticsearch []clusterEntry `config:"elasticsearch"`
	}{}
	err = cfg.Unpack(&section)
	assert.NoError(t, err)
	assert.Len(t, section.Elasticsearch, 1)
	assert.Equal(t, "http://es:9200", section.Elasticsearch[0].Endpoint)
}

func TestGetBindingAddr(t *testing.T) {
	cfg := NetworkConfig{Binding: "127.0.0.1:2900"}
	assert.Equal(t, "127.0.0.1:2900", cfg.GetBindingAddr())
}
