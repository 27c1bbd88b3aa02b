// Package redact masks personally identifiable fields in log output.
// Fields appear in log lines as field=value pairs (cookie strings, form
// bodies, query strings); the value part is replaced before the line is
// written anywhere.
package redact

import (
	"fmt"
	"io"
	"regexp"
	"sync"
)

// Redaction replaces masked field values.
const Redaction = "***"

// PIIFields are the field names masked by default.
var PIIFields = []string{"name", "email", "phone", "ssn", "password"}

// Filter masks the value of each field in message. A value runs from the
// field's "=" up to the next occurrence of separator.
func Filter(fields []string, redaction, message, separator string) string {
	for _, field := range fields {
		re := regexp.MustCompile(fmt.Sprintf("%s=.*?%s", regexp.QuoteMeta(field), regexp.QuoteMeta(separator)))
		message = re.ReplaceAllString(message, fmt.Sprintf("%s=%s%s", field, redaction, separator))
	}
	return message
}

// Writer decorates an io.Writer, masking configured fields in everything
// written through it. Unlike Filter it does not need a trailing separator:
// a value ends at ';', '&', '"', or whitespace, so it works on query strings
// and JSON access-log lines alike.
type Writer struct {
	mu      sync.Mutex
	out     io.Writer
	pattern *regexp.Regexp
}

// NewWriter wraps out, masking the given fields. With no fields it masks
// PIIFields.
func NewWriter(out io.Writer, fields ...string) *Writer {
	if len(fields) == 0 {
		fields = PIIFields
	}
	alternation := ""
	for i, field := range fields {
		if i > 0 {
			alternation += "|"
		}
		alternation += regexp.QuoteMeta(field)
	}
	return &Writer{
		out:     out,
		pattern: regexp.MustCompile(`(` + alternation + `)=[^;&"\s]*`),
	}
}

// Write masks field values in p and forwards the result. It reports the
// original length so wrapped writers satisfy the io.Writer contract.
func (w *Writer) Write(p []byte) (int, error) {
	masked := w.pattern.ReplaceAll(p, []byte("${1}="+Redaction))
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write(masked); err != nil {
		return 0, err
	}
	return len(p), nil
}
