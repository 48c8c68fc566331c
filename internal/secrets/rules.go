package secrets

// DefaultRules returns the built-in detection rules. Prefix-anchored tokens
// need no keyword; looser patterns only run when a keyword is present.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:       "private-key",
			Pattern:  `-----BEGIN (?:RSA |DSA |EC |OPENSSH |PGP )?PRIVATE KEY(?:[- ]BLOCK)?-----`,
			Severity: SeverityHigh,
		},
		{
			ID:       "aws-access-key-id",
			Pattern:  `(A3T[A-Z0-9]|AKIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA|ASIA)[A-Z0-9]{16}`,
			Severity: SeverityHigh,
		},
		{
			ID:       "aws-secret-access-key",
			Pattern:  `(?i)(?:aws_secret_access_key|aws_secret_key|secret_access_key)\s*[:=]\s*['"]?[A-Za-z0-9/+=]{40}['"]?`,
			Keywords: []string{"secret"},
			Severity: SeverityHigh,
		},
		{
			ID:       "anthropic-api-key",
			Pattern:  `sk-ant-[A-Za-z0-9_\-]{90,}`,
			Severity: SeverityHigh,
		},
		{
			ID:       "openai-api-key",
			Pattern:  `sk-(?:proj-)?[A-Za-z0-9_\-]{40,}`,
			Severity: SeverityHigh,
		},
		{
			ID:       "github-token",
			Pattern:  `(?:ghp|gho|ghu|ghs)_[A-Za-z0-9]{36}|github_pat_[A-Za-z0-9_]{22,}`,
			Severity: SeverityHigh,
		},
		{
			ID:       "slack-token",
			Pattern:  `xox[baprs]-[A-Za-z0-9\-]{10,}`,
			Severity: SeverityHigh,
		},
		{
			ID:       "stripe-key",
			Pattern:  `(?:sk|pk)_(?:live|test)_[A-Za-z0-9]{24,}`,
			Severity: SeverityHigh,
		},
		{
			ID:       "google-api-key",
			Pattern:  `AIza[A-Za-z0-9_\-]{35}`,
			Severity: SeverityHigh,
		},
		{
			ID:       "jwt",
			Pattern:  `eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*`,
			Severity: SeverityMedium,
		},
		{
			ID:       "connection-url",
			Pattern:  `(?i)(?:postgres|postgresql|mysql|mongodb|redis|amqp|nats)://[^:\s]+:[^@\s]+@[^\s]+`,
			Severity: SeverityHigh,
		},
		{
			ID:       "bearer-token",
			Pattern:  `(?i)bearer\s+[A-Za-z0-9_\-\.=]{20,}`,
			Keywords: []string{"bearer"},
			Severity: SeverityMedium,
		},
		{
			ID:       "generic-secret",
			Pattern:  `(?i)(?:api[_-]?key|secret|password|passwd|token)\s*[:=]\s*['"]?[^\s'"]{8,}['"]?`,
			Keywords: []string{"key", "secret", "password", "passwd", "token"},
			Severity: SeverityMedium,
		},
	}
}
