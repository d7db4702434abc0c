package constants

// Canonical field names for extracted AQL inspection reports. These exact
// strings are the XLSX column headers and the JSON record keys.
const (
	FieldInspectionNo   = "Inspection No."
	FieldInspectionSeq  = "Inspection Seq."
	FieldInspectionDate = "Inspection Date"
	FieldPOSplitNo      = "PO / Split No."
	FieldPODate         = "PO Date"
	FieldStyleNo        = "Style No."
	FieldItemNo         = "Item No."
	FieldDeliveredQty   = "Delivered Quantity"
	FieldCustomer       = "Customer"
	FieldDept           = "Dept"
	FieldFactory        = "Factory"
	FieldFIDCode        = "FID Code"
	FieldVendor         = "Vendor"
	FieldQualityDigit   = "Quality Digit"
)

// Schema-level defaults substituted when no strategy yields a value.
const (
	DefaultInspectionSeq = "1"
	DefaultQualityDigit  = "1"
)

// KnownFactoryPairs lists factory names whose "name / code" runs need a
// dedicated match because the generic header scan picks up trailing text
// on their report template.
var KnownFactoryPairs = []string{
	"Huangshan Yinghui Textile Technology Co., Ltd.",
}

var baseSchema = []string{
	FieldInspectionNo,
	FieldInspectionSeq,
	FieldInspectionDate,
	FieldPOSplitNo,
	FieldPODate,
	FieldStyleNo,
	FieldItemNo,
	FieldDeliveredQty,
	FieldCustomer,
	FieldDept,
	FieldFactory,
	FieldFIDCode,
	FieldVendor,
}

// Schema returns the canonical column order. The extended form appends the
// Quality Digit column used by internal QA dashboards.
func Schema(extended bool) []string {
	out := make([]string, len(baseSchema), len(baseSchema)+1)
	copy(out, baseSchema)
	if extended {
		out = append(out, FieldQualityDigit)
	}
	return out
}

// SchemaDefaults returns the built-in default values keyed by field name.
func SchemaDefaults(extended bool) map[string]string {
	d := map[string]string{
		FieldInspectionSeq: DefaultInspectionSeq,
	}
	if extended {
		d[FieldQualityDigit] = DefaultQualityDigit
	}
	return d
}
