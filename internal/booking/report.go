package booking

import (
	"strings"

	"github.com/wolfman30/medibook/internal/i18n"
)

// ValidationReport is the blocking modal shown when required fields are missing.
type ValidationReport struct {
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Confirm string   `json:"confirm"`
	Fields  []Field  `json:"fields"`
	Labels  []string `json:"labels"`
}

// NewValidationReport renders missing fields in the localizer's active language.
// Labels are comma-joined after the "missing fields" prefix.
func NewValidationReport(l *i18n.Localizer, missing []Field) ValidationReport {
	labels := make([]string, len(missing))
	for i, f := range missing {
		labels[i] = l.Text(f.LabelKey())
	}
	return ValidationReport{
		Title:   l.Text(i18n.KeyInputCheck),
		Message: l.Text(i18n.KeyMissingFields) + strings.Join(labels, ", "),
		Confirm: l.Text(i18n.KeyConfirm),
		Fields:  missing,
		Labels:  labels,
	}
}

// Report renders a rejected outcome. It returns false when nothing is missing.
func (o Outcome) Report(l *i18n.Localizer) (ValidationReport, bool) {
	if !o.Rejected() {
		return ValidationReport{}, false
	}
	return NewValidationReport(l, o.Missing), true
}
