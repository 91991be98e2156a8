// Package redaction masks secret-looking environment values before they are
// shown on the console or written to debug logs.
package redaction

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/go-ports/asdfw/internal/models"
)

// IgnoreFileName holds extra value patterns, one regular expression per line.
const IgnoreFileName = ".redactignore"

// Replacement is substituted for every masked value or fragment.
const Replacement = "[REDACTED]"

// valuePatterns match secrets by shape, whatever the variable is called.
var valuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)sk_live_[a-zA-Z0-9]+`),             // Stripe live keys
	regexp.MustCompile(`(?i)sk_test_[a-zA-Z0-9]+`),             // Stripe test keys
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]+`),               // GitHub tokens
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),                     // AWS access key IDs
	regexp.MustCompile(`xox[bpa]-[a-zA-Z0-9-]+`),               // Slack tokens
	regexp.MustCompile(`-----BEGIN (?:RSA )?PRIVATE KEY-----`), // Private keys
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+`), // JWT tokens
}

// urlCredentials matches the user:password part of a URL.
var urlCredentials = regexp.MustCompile(`://[^/\s:@]+:[^/\s@]+@`)

// sensitiveName matches variable names whose whole value is masked.
var sensitiveName = regexp.MustCompile(`(?i)(TOKEN|SECRET|PASSW(OR)?D|CREDENTIAL|API_?KEY|ACCESS_?KEY|PRIVATE_?KEY|AUTH)`)

// IsSensitiveName reports whether a variable called name is masked entirely.
func IsSensitiveName(name string) bool {
	return sensitiveName.MatchString(name)
}

// Redact masks secret-shaped fragments of value: the built-in patterns first,
// then the caller-supplied extraPatterns (e.g. from LoadIgnore).
func Redact(value string, extraPatterns []*regexp.Regexp) string {
	value = urlCredentials.ReplaceAllString(value, "://"+Replacement+"@")
	for _, re := range valuePatterns {
		value = re.ReplaceAllString(value, Replacement)
	}
	for _, re := range extraPatterns {
		value = re.ReplaceAllString(value, Replacement)
	}
	return value
}

// EnvPair returns p with its value masked when the name is sensitive or the
// value contains secret-shaped fragments.
func EnvPair(p models.EnvPair, extraPatterns []*regexp.Regexp) models.EnvPair {
	if IsSensitiveName(p.Name) && p.Value != "" {
		return models.EnvPair{Name: p.Name, Value: Replacement}
	}
	return models.EnvPair{Name: p.Name, Value: Redact(p.Value, extraPatterns)}
}

// EnvPairs applies EnvPair to every pair, keeping order.
func EnvPairs(pairs []models.EnvPair, extraPatterns []*regexp.Regexp) []models.EnvPair {
	out := make([]models.EnvPair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, EnvPair(p, extraPatterns))
	}
	return out
}

// LoadIgnore reads an ignore file and compiles each non-blank, non-comment
// line as a regular expression.
// Returns nil (no error) if the file does not exist.
func LoadIgnore(path string) ([]*regexp.Regexp, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []*regexp.Regexp
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		re, err := regexp.Compile(line)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, re)
	}
	return patterns, scanner.Err()
}
