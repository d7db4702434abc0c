package fields

import (
	"log/slog"

	"github.com/texqa/aql-extractor/constants"
	"github.com/texqa/aql-extractor/internal/common"
	"github.com/texqa/aql-extractor/internal/textnorm"
)

// Extractor turns one document's text into a Record by running every schema
// field's strategy chain over the canonicalized text. Safe for concurrent use.
type Extractor struct {
	schema []string
	rules  []FieldRule
	logger *slog.Logger
}

// NewExtractor validates the schema implied by opts and compiles the
// strategy chains once, up front.
func NewExtractor(opts Options, logger *slog.Logger) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema := constants.Schema(opts.Extended)
	if err := validateSchema(schema); err != nil {
		return nil, err
	}
	rules, err := buildRules(opts)
	if err != nil {
		return nil, err
	}
	if len(rules) != len(schema) {
		return nil, common.NewAppError("SCHEMA_ERROR", "rule set does not cover schema", common.ErrValidation)
	}
	return &Extractor{schema: schema, rules: rules, logger: logger}, nil
}

// Schema returns the output field names in declared column order.
func (e *Extractor) Schema() []string {
	out := make([]string, len(e.schema))
	copy(out, e.schema)
	return out
}

// Extract evaluates every field chain against doc's text. A document whose
// text is empty or whitespace-only yields common.ErrNoContent; any other
// input produces a Record, with unmatched fields empty or defaulted.
func (e *Extractor) Extract(doc Document) (Record, error) {
	ct := textnorm.Canonicalize(doc.Text)
	if ct.Empty() {
		return Record{}, common.ErrNoContent
	}

	rec := newRecord(doc.Name, e.schema)
	filled := 0
	for _, rule := range e.rules {
		value := ""
		for _, st := range rule.Strategies {
			if v, ok := st.Extract(ct); ok && v != "" {
				value = v
				break
			}
		}
		if value == "" {
			value = rule.Default
		}
		if value != "" {
			filled++
		}
		rec.set(rule.Field, value)
	}
	e.logger.Debug("fields.extract.ok", "doc", doc.Name, "filled", filled, "fields", len(e.rules))
	return rec, nil
}

func validateSchema(schema []string) error {
	if len(schema) == 0 {
		return common.NewAppError("SCHEMA_ERROR", "empty field schema", common.ErrValidation)
	}
	seen := make(map[string]struct{}, len(schema))
	for _, f := range schema {
		if f == "" {
			return common.NewAppError("SCHEMA_ERROR", "empty field name", common.ErrValidation)
		}
		if _, dup := seen[f]; dup {
			return common.NewAppError("SCHEMA_ERROR", "duplicate field name: "+f, common.ErrValidation)
		}
		seen[f] = struct{}{}
	}
	return nil
}
