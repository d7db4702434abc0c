package profile

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/texqa/aql-extractor/constants"
	"github.com/texqa/aql-extractor/internal/common"
	"github.com/texqa/aql-extractor/internal/fields"
)

// Profile is an optional JSON file tuning the extraction contract: the
// extended column set, per-field default overrides, and extra factory
// name/code literals. An absent profile means the built-in 13-column schema.
type Profile struct {
	ExtendedSchema bool              `json:"extended_schema"`
	Defaults       map[string]string `json:"defaults"`
	FactoryPairs   []string          `json:"factory_pairs"`
}

// Load reads and validates a profile file. The file must exist and satisfy
// the profile JSON schema; unknown keys fail validation.
func Load(path string, logger *slog.Logger) (*Profile, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError("PROFILE_ERROR", "read profile "+path, err)
	}
	if err := validateJSONAgainstSchema(BuildProfileJSONSchema(), data); err != nil {
		return nil, common.NewAppError("PROFILE_ERROR", "invalid profile "+path+": "+err.Error(), common.ErrValidation)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, common.NewAppError("PROFILE_ERROR", "decode profile "+path, err)
	}
	logger.Info("profile.loaded",
		"path", path,
		"extended", p.ExtendedSchema,
		"defaults", len(p.Defaults),
		"factory_pairs", len(p.FactoryPairs))
	return &p, nil
}

// Options merges the profile over the built-in contract: schema-level
// defaults for the chosen column set, overlaid with the profile's overrides,
// plus any extra factory pairs after the built-in ones.
func (p *Profile) Options() fields.Options {
	opts := fields.Options{
		Extended:     p.ExtendedSchema,
		Defaults:     constants.SchemaDefaults(p.ExtendedSchema),
		FactoryPairs: append([]string(nil), constants.KnownFactoryPairs...),
	}
	for k, v := range p.Defaults {
		opts.Defaults[k] = v
	}
	for _, fp := range p.FactoryPairs {
		if !containsPair(opts.FactoryPairs, fp) {
			opts.FactoryPairs = append(opts.FactoryPairs, fp)
		}
	}
	return opts
}

// Resolve returns the extraction options for an optional profile path:
// built-ins when path is empty, the loaded profile's merge otherwise.
func Resolve(path string, logger *slog.Logger) (fields.Options, error) {
	if path == "" {
		return fields.DefaultOptions(), nil
	}
	p, err := Load(path, logger)
	if err != nil {
		return fields.Options{}, err
	}
	return p.Options(), nil
}

func containsPair(pairs []string, name string) bool {
	for _, p := range pairs {
		if p == name {
			return true
		}
	}
	return false
}
