package taghelper

import (
	"strings"
	"unicode"

	"quill/internal/diag"
)

// characters that cannot appear in a markup name bound by a tag helper
const invalidNameChars = "@!</?[>]=\"'*"

const dataDashPrefix = "data-"

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// firstInvalidRune returns the first character that cannot appear in a
// bindable markup name.
func firstInvalidRune(name string) (rune, bool) {
	for _, r := range name {
		if unicode.IsSpace(r) || strings.ContainsRune(invalidNameChars, r) {
			return r, true
		}
	}
	return 0, false
}

func hasDataDash(name string) bool {
	return len(name) >= len(dataDashPrefix) && strings.EqualFold(name[:len(dataDashPrefix)], dataDashPrefix)
}

func validateTagHelper(b *Builder) []diag.Diagnostic {
	var out []diag.Diagnostic
	if isBlank(b.Name) {
		out = append(out, diag.Unlocatedf(diag.THLEmptyTagHelperName,
			"Tag helper name cannot be null or whitespace (type %q).", parentTypeName(b)))
	}
	return noDiagnostics(out)
}

func validateRule(r *TagMatchingRuleBuilder) []diag.Diagnostic {
	var out []diag.Diagnostic
	switch {
	case isBlank(r.TagName):
		out = append(out, diag.Unlocatedf(diag.THLEmptyTagName,
			"Tag name cannot be null or whitespace."))
	case r.TagName != ElementCatchAll:
		if ch, bad := firstInvalidRune(r.TagName); bad {
			out = append(out, diag.Unlocatedf(diag.THLInvalidTagName,
				"Invalid tag helper bound tag name %q: %q is not allowed.", r.TagName, ch))
		}
	}
	if r.ParentTag != "" {
		if isBlank(r.ParentTag) {
			out = append(out, diag.Unlocatedf(diag.THLInvalidParentTag,
				"Parent tag name cannot be whitespace."))
		} else if ch, bad := firstInvalidRune(r.ParentTag); bad {
			out = append(out, diag.Unlocatedf(diag.THLInvalidParentTag,
				"Invalid parent tag %q: %q is not allowed.", r.ParentTag, ch))
		}
	}
	return noDiagnostics(out)
}

func validateRequiredAttribute(ra *RequiredAttributeBuilder) []diag.Diagnostic {
	if isBlank(ra.Name) {
		return []diag.Diagnostic{diag.Unlocatedf(diag.THLEmptyRequiredAttribute,
			"Required attribute name cannot be null or whitespace.")}
	}
	name := ra.Name
	if ra.IsDirectiveAttribute {
		rest, ok := strings.CutPrefix(name, "@")
		if !ok {
			return []diag.Diagnostic{diag.Unlocatedf(diag.THLDirectiveAttributeMissingSigil,
				"Required directive attribute %q must start with '@'.", ra.Name)}
		}
		name = rest
	}
	if ch, bad := firstInvalidRune(name); bad {
		return []diag.Diagnostic{diag.Unlocatedf(diag.THLInvalidRequiredAttribute,
			"Invalid required attribute %q: %q is not allowed.", ra.Name, ch)}
	}
	return nil
}

func validateChildTag(c *AllowedChildTagBuilder, parent *Builder) []diag.Diagnostic {
	if isBlank(c.Name) {
		return []diag.Diagnostic{diag.Unlocatedf(diag.THLEmptyChildTag,
			"Tag helper %q has an allowed child tag that is null or whitespace.", parent.Name)}
	}
	if ch, bad := firstInvalidRune(c.Name); bad {
		return []diag.Diagnostic{diag.Unlocatedf(diag.THLInvalidChildTag,
			"Tag helper %q allows invalid child tag %q: %q is not allowed.", parent.Name, c.Name, ch)}
	}
	return nil
}

func validateBoundAttribute(a *BoundAttributeBuilder, parent *Builder) []diag.Diagnostic {
	var out []diag.Diagnostic
	allowDataDash := parent.Kind.IsComponentFamily()

	if isBlank(a.Name) {
		// indexer-only attributes may have no name
		if a.IndexerNamePrefix == "" {
			out = append(out, diag.Unlocatedf(diag.THLEmptyAttributeName,
				"Bound attribute on tag helper %q has a null or whitespace name.", parent.Name))
		}
	} else {
		out = appendNameDiagnostics(out, a.Name, a.IsDirectiveAttribute, allowDataDash, parent.Name,
			diag.THLDataPrefixedAttribute, diag.THLInvalidAttributeName)
	}

	if a.IndexerNamePrefix != "" {
		if isBlank(a.IndexerNamePrefix) {
			out = append(out, diag.Unlocatedf(diag.THLInvalidIndexerPrefix,
				"Indexer prefix of bound attribute %q on tag helper %q is whitespace.", a.Name, parent.Name))
		} else {
			out = appendNameDiagnostics(out, a.IndexerNamePrefix, a.IsDirectiveAttribute, allowDataDash, parent.Name,
				diag.THLDataPrefixedIndexer, diag.THLInvalidIndexerPrefix)
		}
	}
	return noDiagnostics(out)
}

// appendNameDiagnostics strips the directive sigil and checks the data- and
// character rules shared by attribute names and indexer prefixes.
func appendNameDiagnostics(out []diag.Diagnostic, name string, directive, allowDataDash bool, owner string, dataCode, charCode diag.Code) []diag.Diagnostic {
	check := name
	if directive {
		rest, ok := strings.CutPrefix(name, "@")
		if !ok {
			return append(out, diag.Unlocatedf(diag.THLDirectiveAttributeMissingSigil,
				"Directive attribute %q on tag helper %q must start with '@'.", name, owner))
		}
		check = rest
	} else if !allowDataDash && hasDataDash(name) {
		out = append(out, diag.Unlocatedf(dataCode,
			"Invalid bound attribute %q on tag helper %q: names starting with %q are reserved.", name, owner, dataDashPrefix))
	}
	if ch, bad := firstInvalidRune(check); bad {
		out = append(out, diag.Unlocatedf(charCode,
			"Invalid bound attribute %q on tag helper %q: %q is not allowed.", name, owner, ch))
	}
	return out
}

func validateParameter(p *BoundAttributeParameterBuilder, parent *BoundAttribute) []diag.Diagnostic {
	if isBlank(p.Name) {
		return []diag.Diagnostic{diag.Unlocatedf(diag.THLEmptyParameterName,
			"Parameter of bound attribute %q has a null or whitespace name.", parent.name)}
	}
	if ch, bad := firstInvalidRune(p.Name); bad {
		return []diag.Diagnostic{diag.Unlocatedf(diag.THLInvalidParameterName,
			"Invalid parameter %q of bound attribute %q: %q is not allowed.", p.Name, parent.name, ch)}
	}
	return nil
}
