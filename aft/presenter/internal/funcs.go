package internal

import (
	"path"
	"strings"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
)

// Funcs are available to every report template, next to the sprig functions.
var Funcs = map[string]interface{}{
	"snippetLang": SnippetLang,
	"location": func(f finding.Finding) string {
		return f.Location()
	},
}

// SnippetLang picks the fenced code block language for a finding snippet.
func SnippetLang(file string) string {
	switch strings.ToLower(path.Ext(file)) {
	case ".java":
		return "java"
	case ".smali":
		return "smali"
	case ".xml":
		return "xml"
	default:
		return ""
	}
}
