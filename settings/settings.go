package settings

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/indigo-web/symtable/errors"
	"github.com/indigo-web/symtable/hashtable"
	jsoniter "github.com/json-iterator/go"
)

type number interface {
	int | int8 | int16 | int32 | int64 | uint | uint8 | uint16 | uint32 | uint64
}

type Backend string

const (
	Hash Backend = "hash"
	List Backend = "list"
)

type (
	// Growth is responsible for the hash table bucket array
	Growth struct {
		// Stages is an ascending sequence of bucket counts. The table starts with
		// the first one and advances as soon as it holds more bindings than buckets
		Stages []int `toml:"stages" json:"stages"`
	}

	// Memory limits the amount of memory tables may occupy
	Memory struct {
		// Limit is the maximal number of bytes shared by all the tables built from
		// the same settings. Zero disables the limit
		Limit uint64 `toml:"limit" json:"limit"`
	}

	// Metrics controls whether allocations are exposed via prometheus
	Metrics struct {
		Enabled   bool   `toml:"enabled" json:"enabled"`
		Namespace string `toml:"namespace" json:"namespace"`
	}

	// List is responsible for the list backend
	List struct {
		// Prealloc is the number of bindings to pre-allocate room for
		Prealloc int `toml:"prealloc" json:"prealloc"`
	}
)

type Settings struct {
	Backend Backend `toml:"backend" json:"backend"`
	Growth  Growth  `toml:"growth" json:"growth"`
	Memory  Memory  `toml:"memory" json:"memory"`
	Metrics Metrics `toml:"metrics" json:"metrics"`
	List    List    `toml:"list" json:"list"`
}

func Default() Settings {
	return Settings{
		Backend: Hash,
		Growth: Growth{
			Stages: slices.Clone(hashtable.DefaultStages),
		},
		Metrics: Metrics{
			Namespace: "symtable",
		},
		List: List{
			Prealloc: 16,
		},
	}
}

// Fill takes some settings and fills it with default values
// everywhere where it is not filled
func Fill(original Settings) (modified Settings) {
	defaultSettings := Default()

	if original.Backend == "" {
		original.Backend = defaultSettings.Backend
	}

	if len(original.Growth.Stages) == 0 {
		original.Growth.Stages = defaultSettings.Growth.Stages
	} else {
		original.Growth.Stages = slices.Clone(original.Growth.Stages)
	}

	if original.Metrics.Namespace == "" {
		original.Metrics.Namespace = defaultSettings.Metrics.Namespace
	}

	original.List.Prealloc = customOrDefault(
		original.List.Prealloc, defaultSettings.List.Prealloc,
	)

	return original
}

// Load reads the settings from a file. The format is chosen by the extension, either .toml
// or .json. Missing values are filled with defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	return Parse(data, filepath.Ext(path))
}

// Parse decodes the settings in the format, identified by the extension (with the leading dot.)
func Parse(data []byte, ext string) (s Settings, err error) {
	switch ext {
	case ".toml":
		_, err = toml.Decode(string(data), &s)
	case ".json":
		err = jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &s)
	default:
		return s, errors.Wrapf(errors.ErrConfig, "%q", ext)
	}

	if err != nil {
		return s, err
	}

	return Fill(s), nil
}

func customOrDefault[T number](custom, defaultVal T) T {
	if custom == 0 {
		return defaultVal
	}

	return custom
}
