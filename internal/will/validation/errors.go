package validation

// Error is a single validation failure with a precise field path.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Section string `json:"section"`
}

// Stable machine-readable error codes. UIs key display logic off these, so
// they never change once released.
const (
	CodeRequired         = "required"
	CodeType             = "type"
	CodeFormat           = "format"
	CodeEnum             = "enum"
	CodeMaxLength        = "max_length"
	CodeMaxItems         = "max_items"
	CodeMinValue         = "min_value"
	CodeMaxValue         = "max_value"
	CodeRange            = "range"
	CodeMinAge           = "min_age"
	CodeCount            = "count"
	CodeInvalid          = "invalid"
	CodeInvalidChars     = "invalid_chars"
	CodeDependency       = "dependency"
	CodeDuplicate        = "duplicate"
	CodeInvalidReference = "invalid_reference"
	CodePercentageSum    = "percentage_sum"

	// Warning-only codes.
	CodePotentialDuplicate = "potential_duplicate"
	CodeMissingTrust       = "missing_trust"
)

// Result accumulates every violation found in one validation pass.
// Validation never stops at the first error.
type Result struct {
	Errors   []Error `json:"errors"`
	Warnings []Error `json:"warnings"`
}

// OK reports whether the payload passed with no blocking errors.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// AddError records a blocking validation error.
func (r *Result) AddError(field, message, code, section string) {
	r.Errors = append(r.Errors, Error{Field: field, Message: message, Code: code, Section: section})
}

// AddWarning records a non-blocking issue surfaced to the user but not
// preventing generation.
func (r *Result) AddWarning(field, message, code, section string) {
	r.Warnings = append(r.Warnings, Error{Field: field, Message: message, Code: code, Section: section})
}

// BySection groups errors by section for UI display.
func (r *Result) BySection() map[string][]Error {
	out := make(map[string][]Error)
	for _, e := range r.Errors {
		section := e.Section
		if section == "" {
			section = "general"
		}
		out[section] = append(out[section], e)
	}
	return out
}
