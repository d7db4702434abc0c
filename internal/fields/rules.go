package fields

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/texqa/aql-extractor/constants"
	"github.com/texqa/aql-extractor/internal/common"
)

// Options configures the extraction schema: the extended column set, default
// values substituted for fields no strategy filled, and factory names that
// need a dedicated literal match.
type Options struct {
	Extended     bool
	Defaults     map[string]string
	FactoryPairs []string
}

// DefaultOptions returns the built-in 13-column contract.
func DefaultOptions() Options {
	return Options{
		Defaults:     constants.SchemaDefaults(false),
		FactoryPairs: append([]string(nil), constants.KnownFactoryPairs...),
	}
}

// FieldRule binds one schema field to its ordered strategy chain. Specific
// strategies sit before generic ones; the first non-empty value wins.
type FieldRule struct {
	Field      string
	Default    string
	Strategies []Strategy
}

// Anchor labels shared across chains.
var (
	labelInspectionNo   = LabelPattern("Inspection No.")
	labelInspectionSeq  = LabelPattern("Inspection Seq.")
	labelInspectionDate = LabelPattern("Inspection Date")
	labelPOSplit        = LabelPattern("PO / Split No.")
	labelPODate         = LabelPattern("PO Date")
	labelStyleNo        = LabelPattern("Style No.")
	labelItemNo         = LabelPattern("Item No.")
	labelCustomerDept   = LabelPattern("Customer / Dept")
	labelFactoryFID     = LabelPattern("Factory / FID Code")
	labelVendorNo       = LabelPattern("Vendor / Vendor No.")
	labelQualityDigit   = LabelPattern("Quality Digit")
)

// Value shapes matched against the text following an anchor.
var (
	reValUpperToken = regexp.MustCompile(`^\s*([A-Z0-9-]+)`)
	reValInt        = regexp.MustCompile(`^\s*([0-9]+)`)
	reValDate       = regexp.MustCompile(`^\s*([A-Za-z]{3}\s[0-9]{1,2},\s[0-9]{2})`)
	reValLoose      = regexp.MustCompile(`^\s*([0-9A-Za-z/]+)`)
)

// Full-text patterns for constructs that span lines.
var (
	// Three-column PO header with the value row beneath it.
	rePOHeaderRow = regexp.MustCompile(`(?i)PO\s*/\s*Split\s+No\.\s*PO\s+Date\s*PO\s+Type[^\n]*\n\s*([0-9]+)\s*([A-Za-z]{3}\s[0-9]{1,2},\s[0-9]{2})`)
	// First line within 160 chars beneath the item-description header.
	reItemWindow = regexp.MustCompile(`(?is)Item\s+Description.{0,160}?\n\s*([^\n]+)\n`)
	// Last grand-total number trailing the delivered-quantity table.
	reQtyTrailing = regexp.MustCompile(`(?is)Delivered\s+Qty\..*?\b([0-9]{2,6})\b\s*\z`)
	// Second numeric on the row beneath the quantity sub-header.
	reQtyHeader = regexp.MustCompile(`(?is)Delivered\s+Quantity.{0,60}?Item\s+Quantity.{0,30}?\n\s*[0-9]+\s*([0-9]{2,6})`)
)

var combinedPairHeader = []*regexp.Regexp{labelCustomerDept, labelFactoryFID}

// buildRules assembles the strategy chain for every schema field.
func buildRules(opts Options) ([]FieldRule, error) {
	factoryName := make([]Strategy, 0, len(opts.FactoryPairs))
	factoryCode := make([]Strategy, 0, len(opts.FactoryPairs))
	for _, canonical := range opts.FactoryPairs {
		canonical = strings.TrimSpace(canonical)
		if canonical == "" {
			return nil, common.NewAppError("SCHEMA_ERROR", "empty factory pair name", common.ErrValidation)
		}
		factoryName = append(factoryName, newKnownPairStrategy("factory.known-pair", canonical, false))
		factoryCode = append(factoryCode, newKnownPairStrategy("fid-code.known-pair", canonical, true))
	}

	rules := []FieldRule{
		{
			Field: constants.FieldInspectionNo,
			Strategies: []Strategy{
				&InlineStrategy{name: "inspection-no.inline", label: labelInspectionNo, value: reValUpperToken},
				&NextLineStrategy{name: "inspection-no.next-line", label: labelInspectionNo, value: reValUpperToken},
			},
		},
		{
			Field: constants.FieldInspectionSeq,
			Strategies: []Strategy{
				&InlineStrategy{name: "inspection-seq.inline", label: labelInspectionSeq, value: reValInt},
				&NextLineStrategy{name: "inspection-seq.next-line", label: labelInspectionSeq, value: reValInt},
			},
		},
		{
			Field: constants.FieldInspectionDate,
			Strategies: []Strategy{
				&InlineStrategy{name: "inspection-date.inline", label: labelInspectionDate, value: reValDate},
				&NextLineStrategy{name: "inspection-date.next-line", label: labelInspectionDate, value: reValDate},
			},
		},
		{
			Field: constants.FieldPOSplitNo,
			Strategies: []Strategy{
				&PatternStrategy{name: "po-split.header-row", re: rePOHeaderRow, group: 1},
				&InlineStrategy{name: "po-split.inline", label: labelPOSplit, value: reValInt},
				&NextLineStrategy{name: "po-split.next-line", label: labelPOSplit, value: reValInt},
			},
		},
		{
			Field: constants.FieldPODate,
			Strategies: []Strategy{
				&PatternStrategy{name: "po-date.header-row", re: rePOHeaderRow, group: 2},
				&InlineStrategy{name: "po-date.inline", label: labelPODate, value: reValDate},
				&NextLineStrategy{name: "po-date.next-line", label: labelPODate, value: reValDate},
			},
		},
		{
			Field: constants.FieldStyleNo,
			Strategies: []Strategy{
				&WindowNumbersStrategy{name: "style-no.description-window", re: reItemWindow, pick: 0, min: 2},
				&InlineStrategy{name: "style-no.inline", label: labelStyleNo, value: reValLoose},
				&NextLineStrategy{name: "style-no.next-line", label: labelStyleNo, value: reValLoose},
			},
		},
		{
			Field: constants.FieldItemNo,
			Strategies: []Strategy{
				&WindowNumbersStrategy{name: "item-no.description-window", re: reItemWindow, pick: 1, min: 2},
				&InlineStrategy{name: "item-no.inline", label: labelItemNo, value: reValLoose},
				&NextLineStrategy{name: "item-no.next-line", label: labelItemNo, value: reValLoose},
			},
		},
		{
			Field: constants.FieldDeliveredQty,
			Strategies: []Strategy{
				&PatternStrategy{name: "delivered-qty.trailing-total", re: reQtyTrailing, group: 1, stripParens: true},
				&PatternStrategy{name: "delivered-qty.header-area", re: reQtyHeader, group: 1, stripParens: true},
			},
		},
		{
			Field: constants.FieldCustomer,
			Strategies: []Strategy{
				&HeaderRowStrategy{name: "customer.header-row", labels: combinedPairHeader, index: 0},
				&PairStrategy{name: "customer.pair", label: labelCustomerDept},
				&SlashSplitStrategy{name: "customer.slash-split", label: labelCustomerDept, index: 0},
			},
		},
		{
			Field: constants.FieldDept,
			Strategies: []Strategy{
				&HeaderRowStrategy{name: "dept.header-row", labels: combinedPairHeader, index: 0, code: true},
				&PairStrategy{name: "dept.pair", label: labelCustomerDept, code: true},
				&SlashSplitStrategy{name: "dept.slash-split", label: labelCustomerDept, index: 1},
			},
		},
		{
			Field: constants.FieldFactory,
			Strategies: append(factoryName,
				&HeaderRowStrategy{name: "factory.header-row", labels: combinedPairHeader, index: 1},
				&PairStrategy{name: "factory.pair", label: labelFactoryFID},
			),
		},
		{
			Field: constants.FieldFIDCode,
			Strategies: append(factoryCode,
				&HeaderRowStrategy{name: "fid-code.header-row", labels: combinedPairHeader, index: 1, code: true},
				&PairStrategy{name: "fid-code.pair", label: labelFactoryFID, code: true},
			),
		},
		{
			Field: constants.FieldVendor,
			Strategies: []Strategy{
				&PairStrategy{name: "vendor.pair", label: labelVendorNo},
			},
		},
	}

	if opts.Extended {
		rules = append(rules, FieldRule{
			Field: constants.FieldQualityDigit,
			Strategies: []Strategy{
				&InlineStrategy{name: "quality-digit.inline", label: labelQualityDigit, value: reValInt},
				&NextLineStrategy{name: "quality-digit.next-line", label: labelQualityDigit, value: reValInt},
			},
		})
	}

	for i := range rules {
		rules[i].Default = opts.Defaults[rules[i].Field]
	}
	for field := range opts.Defaults {
		if !containsField(rules, field) {
			return nil, common.NewAppError("SCHEMA_ERROR", fmt.Sprintf("default for unknown field %q", field), common.ErrValidation)
		}
	}
	return rules, nil
}

func containsField(rules []FieldRule, field string) bool {
	for _, r := range rules {
		if r.Field == field {
			return true
		}
	}
	return false
}
