package config

import (
	"fmt"
	"strings"

	"github.com/conneroisu/wikicore/internal/syntax"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder
	write := func(title string, issues []ValidationError) {
		if len(issues) == 0 {
			return
		}
		builder.WriteString(title + ":\n")
		for _, issue := range issues {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", issue.Field, issue.Message))
			for _, suggestion := range issue.Suggestions {
				builder.WriteString(fmt.Sprintf("    → %s\n", suggestion))
			}
		}
	}
	write("Validation errors", vr.Errors)
	write("Validation warnings", vr.Warnings)
	return builder.String()
}

func (vr *ValidationResult) fail(field string, value interface{}, message string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

func (vr *ValidationResult) warn(field string, value interface{}, message string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

// Transformations lists the transformation names known to the pipeline.
var Transformations = []string{"macro"}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{}

	validateSyntax("parser.default_syntax", config.Parser.DefaultSyntax, result)
	switch config.Parser.BrokenLinks {
	case "abort", "render":
	default:
		result.fail("parser.broken_links", config.Parser.BrokenLinks, "unknown broken link policy",
			"Use 'abort' to fail the parse", "Use 'render' to keep broken links as text")
	}

	validateSyntax("renderer.default_syntax", config.Renderer.DefaultSyntax, result)
	validatePattern("renderer.view_url", config.Renderer.ViewURL, []string{"{page}"}, result)
	validatePattern("renderer.attachment_url", config.Renderer.AttachmentURL, []string{"{page}", "{file}"}, result)

	if config.Transformation.MaxMacroDepth < 1 {
		result.fail("transformation.max_macro_depth", config.Transformation.MaxMacroDepth,
			"maximum macro depth must be at least 1", "The default depth is 10")
	} else if config.Transformation.MaxMacroDepth > 100 {
		result.warn("transformation.max_macro_depth", config.Transformation.MaxMacroDepth,
			"deep macro recursion makes runaway includes slow")
	}
	for _, name := range config.Transformation.Enabled {
		if !contains(Transformations, name) {
			result.warn("transformation.enabled", name, fmt.Sprintf("unknown transformation '%s'", name),
				"Available transformations: "+strings.Join(Transformations, ", "))
		}
	}

	if config.Cache.MaxEntries < 1 {
		result.fail("cache.max_entries", config.Cache.MaxEntries, "cache must hold at least one entry")
	}
	if config.Cache.TTL < 0 {
		result.fail("cache.ttl", config.Cache.TTL.String(), "ttl cannot be negative", "Use 0 to keep entries until evicted")
	}

	if config.Query.DefaultPropertyType == "" {
		result.fail("query.default_property_type", "", "default property type cannot be empty",
			"StringProperty is the storage of most properties")
	}
	for i, rule := range config.Query.PropertyTypes {
		field := fmt.Sprintf("query.property_types[%d]", i)
		if rule.Property == "" || rule.Type == "" {
			result.fail(field, rule, "property type rules need a property and a type")
		}
	}

	if config.Documents.Root == "" {
		result.fail("documents.root", "", "document root cannot be empty", "Use '.' for the current directory")
	} else if strings.ContainsRune(config.Documents.Root, 0) {
		result.fail("documents.root", config.Documents.Root, "document root contains a NUL byte")
	}
	for field, name := range map[string]string{
		"documents.default_wiki":  config.Documents.DefaultWiki,
		"documents.default_space": config.Documents.DefaultSpace,
	} {
		if name == "" || strings.ContainsAny(name, ".:@") {
			result.fail(field, name, "must be a non-empty name without '.', ':' or '@'")
		}
	}
	if config.Documents.Debounce < 0 {
		result.fail("documents.debounce", config.Documents.Debounce.String(), "debounce cannot be negative")
	}

	if !contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(config.Log.Level)) {
		result.warn("log.level", config.Log.Level, "unknown log level, using info",
			"Available levels: debug, info, warn, error")
	}
	if !contains([]string{"json", "text", "pretty"}, config.Log.Format) {
		result.fail("log.format", config.Log.Format, "unknown log format",
			"Available formats: json, text, pretty")
	}

	result.Valid = !result.HasErrors()
	return result
}

func validateSyntax(field, id string, result *ValidationResult) {
	s, err := syntax.Parse(id)
	if err != nil {
		result.fail(field, id, err.Error(), "Syntax ids look like 'xwiki/2.1'")
		return
	}
	if !syntax.Known(s) {
		result.warn(field, id, "syntax has no built-in parser or renderer")
	}
}

func validatePattern(field, pattern string, required []string, result *ValidationResult) {
	if pattern == "" {
		result.fail(field, pattern, "URL pattern cannot be empty")
		return
	}
	for _, placeholder := range required {
		if !strings.Contains(pattern, placeholder) {
			result.fail(field, pattern, "URL pattern is missing "+placeholder,
				"Placeholders: {wiki}, {space}, {page}, {file}")
		}
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
