package infer

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// mentionPatterns capture path-shaped tokens after verbs that signal an
// explicit file mention, e.g. "create calc.py" or "edit utils/helper.py".
// All matches across all patterns are collected, not just the first.
var mentionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)create\s+([a-zA-Z0-9_./]+\.[a-zA-Z0-9]+)`),
	regexp.MustCompile(`(?i)edit\s+([a-zA-Z0-9_./]+\.[a-zA-Z0-9]+)`),
	regexp.MustCompile(`(?i)modify\s+([a-zA-Z0-9_./]+\.[a-zA-Z0-9]+)`),
	regexp.MustCompile(`(?i)update\s+([a-zA-Z0-9_./]+\.[a-zA-Z0-9]+)`),
	regexp.MustCompile(`(?i)in\s+([a-zA-Z0-9_./]+\.[a-zA-Z0-9]+)`),
	regexp.MustCompile(`(?i)file\s+([a-zA-Z0-9_./]+\.[a-zA-Z0-9]+)`),
}

type keywordRule struct {
	pattern    *regexp.Regexp
	candidates []string
}

// keywordRules map domain keywords to plausible filenames. For each keyword
// matched in the query, candidates are tried in order and the first one that
// exists under the root wins; candidates that don't exist are never added.
var keywordRules = []keywordRule{
	{regexp.MustCompile(`(?i)\bcalculator\b`), []string{"calc.py", "calculator.py", "calculator.go"}},
	{regexp.MustCompile(`(?i)\bauth(?:entication)?\b`), []string{"auth.py", "authentication.py", "auth.go", "auth.ts"}},
	{regexp.MustCompile(`(?i)\bconfig(?:uration)?\b`), []string{"config.py", "settings.py", "config.go"}},
	{regexp.MustCompile(`(?i)\butils?\b`), []string{"utils.py", "helpers.py", "utils.go", "utils.ts"}},
	{regexp.MustCompile(`(?i)\btest(?:s)?\b`), []string{"test.py", "tests.py"}},
	{regexp.MustCompile(`(?i)\bmodel(?:s)?\b`), []string{"model.py", "models.py", "models.go"}},
	{regexp.MustCompile(`(?i)\bview(?:s)?\b`), []string{"view.py", "views.py"}},
	{regexp.MustCompile(`(?i)\bapi\b`), []string{"api.py", "routes.py", "api.go", "api.ts"}},
	{regexp.MustCompile(`(?i)\bdatabase\b`), []string{"database.py", "db.py", "database.go"}},
}

// TargetFiles heuristically guesses which files under root a query refers
// to. The two rule families are independent and their results are unioned
// with no declared precedence. The result is deduplicated; ordering carries
// no meaning (it is sorted only for stable output).
func TargetFiles(query, root string) []string {
	seen := make(map[string]bool)

	for _, p := range mentionPatterns {
		for _, m := range p.FindAllStringSubmatch(query, -1) {
			seen[m[1]] = true
		}
	}

	for _, rule := range keywordRules {
		if !rule.pattern.MatchString(query) {
			continue
		}
		for _, candidate := range rule.candidates {
			if _, err := os.Stat(filepath.Join(root, candidate)); err == nil {
				seen[candidate] = true
				break
			}
		}
	}

	targets := make([]string, 0, len(seen))
	for t := range seen {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}
