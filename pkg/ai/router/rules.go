package router

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxRulesFileSize = 1024 * 1024

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rules is the YAML form of the routing rules.
type Rules struct {
	DefaultFunctions []string       `yaml:"default_functions"`
	Functions        []FunctionRule `yaml:"functions"`
	Documents        DocumentRules  `yaml:"documents"`
	Regulatory       []string       `yaml:"regulatory"`
	Briefing         []string       `yaml:"briefing"`
	Stopwords        []string       `yaml:"stopwords"`
}

type FunctionRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type DocumentRules struct {
	Tenant      []string `yaml:"tenant"`
	Development []string `yaml:"development"`
}

// DefaultRules parses the embedded rules.
func DefaultRules() (*Rules, error) {
	return ParseRules(defaultRulesYAML)
}

// LoadRules reads rules from path, or the embedded defaults when path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat router rules: %w", err)
	}
	if info.Size() > maxRulesFileSize {
		return nil, fmt.Errorf("router rules %s exceeds %d bytes", path, maxRulesFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read router rules: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse router rules: %w", err)
	}
	if len(rules.DefaultFunctions) == 0 {
		return nil, errors.New("router rules: default_functions must not be empty")
	}
	return &rules, nil
}

type functionMatcher struct {
	name     string
	keywords []*regexp.Regexp
}

type compiledRules struct {
	defaultFunctions []string
	functions        []functionMatcher
	tenantDocs       []*regexp.Regexp
	developmentDocs  []*regexp.Regexp
	regulatory       []*regexp.Regexp
	briefing         []*regexp.Regexp
	stopwords        map[string]struct{}
	functionNames    map[string]struct{}
}

func (r *Rules) compile() (*compiledRules, error) {
	c := &compiledRules{
		defaultFunctions: append([]string(nil), r.DefaultFunctions...),
		stopwords:        make(map[string]struct{}, len(r.Stopwords)),
		functionNames:    make(map[string]struct{}, len(r.Functions)),
	}

	for _, fn := range r.Functions {
		if fn.Name == "" {
			return nil, errors.New("router rules: function without name")
		}
		if _, dup := c.functionNames[fn.Name]; dup {
			return nil, fmt.Errorf("router rules: duplicate function %q", fn.Name)
		}
		c.functionNames[fn.Name] = struct{}{}
		c.functions = append(c.functions, functionMatcher{name: fn.Name, keywords: compileKeywords(fn.Keywords)})
	}
	for _, name := range c.defaultFunctions {
		c.functionNames[name] = struct{}{}
	}

	c.tenantDocs = compileKeywords(r.Documents.Tenant)
	c.developmentDocs = compileKeywords(r.Documents.Development)

	var err error
	if c.regulatory, err = compilePatterns(r.Regulatory); err != nil {
		return nil, err
	}
	if c.briefing, err = compilePatterns(r.Briefing); err != nil {
		return nil, err
	}

	for _, w := range r.Stopwords {
		c.stopwords[strings.ToLower(w)] = struct{}{}
	}
	return c, nil
}

// compileKeywords anchors each keyword at a word start only, so plurals match.
func compileKeywords(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)))
	}
	return out
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("router rules: bad pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func anyMatch(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
