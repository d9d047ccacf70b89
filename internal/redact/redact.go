// Package redact scrubs values that must not reach logs or clients from error
// text: connection strings, credentials, email addresses, SQL fragments and
// filesystem paths.
package redact

import "regexp"

// Placeholders substituted for redacted values.
const (
	Placeholder           = "[REDACTED]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	PathPlaceholder       = "[REDACTED_PATH]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Rules run in order. Connection strings go first so that the host part is
// not half-consumed by the email rule.
var rules = []rule{
	{
		regexp.MustCompile(`(?i)\b(postgres(?:ql)?|pgx|mysql|mongodb(?:\+srv)?)://\S+`),
		CredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(password|passwd|pwd|user)=\S+`),
		CredentialPlaceholder,
	},
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		EmailPlaceholder,
	},
	{
		regexp.MustCompile(
			`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b[\s\S]*?\b(FROM|INTO|SET|WHERE)\b[^;:]*`,
		),
		SQLPlaceholder,
	},
	{
		regexp.MustCompile(`(/[\w.-]+){2,}`),
		PathPlaceholder,
	},
}

// String returns input with every sensitive value replaced by a placeholder.
func String(input string) string {
	if input == "" {
		return input
	}
	for _, r := range rules {
		input = r.pattern.ReplaceAllString(input, r.placeholder)
	}
	return input
}

// Error is String applied to err.Error(); nil yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
