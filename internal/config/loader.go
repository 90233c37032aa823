package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix namespaces every environment override: database.host is read
// from CUSTOMIZER_DATABASE_HOST.
const envPrefix = "CUSTOMIZER"

// settingKeys lists the dotted key of every scalar or slice field reachable
// from t through mapstructure tags.  Maps are skipped; they can only come
// from a file.
func settingKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := strings.Split(f.Tag.Get("mapstructure"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + tag
		switch f.Type.Kind() {
		case reflect.Struct:
			if f.Type.PkgPath() == t.PkgPath() {
				keys = append(keys, settingKeys(f.Type, key+".")...)
				continue
			}
			keys = append(keys, key)
		case reflect.Map:
		default:
			keys = append(keys, key)
		}
	}
	return keys
}

// envKeys are bound explicitly because AutomaticEnv only resolves keys viper
// has already seen in a file.
var envKeys = settingKeys(reflect.TypeOf(Config{}), "")

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	return v
}

// decode turns the merged file, environment and defaults into a validated
// Config.
func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return &cfg, nil
}

// Load reads the YAML file at path with CUSTOMIZER_* overrides on top.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
	}
	return decode(v)
}

// LoadFromEnv builds the configuration from defaults and the environment
// alone.
func LoadFromEnv() (*Config, error) { return decode(newViper()) }

// LoadFromFile is LoadFromEnv for an empty path and Load otherwise.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromEnv()
	}
	return Load(path)
}

// Watch re-reads path on every change and hands the result to onChange.  A
// change that does not load is passed to onError instead, when it is set.
// It returns at once; viper owns the watching goroutine.
func Watch(path string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(path)
	_ = v.ReadInConfig()
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := decode(v)
		switch {
		case err == nil:
			onChange(cfg)
		case onError != nil:
			onError(err)
		}
	})
	v.WatchConfig()
}

//Personal.AI order the ending
