package directive

// Built-in directives understood by legacy tag helper discovery.
var (
	AddTagHelper = MustNew("addTagHelper", SingleLine, func(b *Builder) {
		b.AddStringToken("LookupText").SetDescription("Adds tag helpers matching the lookup text.")
	})
	RemoveTagHelper = MustNew("removeTagHelper", SingleLine, func(b *Builder) {
		b.AddStringToken("LookupText").SetDescription("Removes tag helpers matching the lookup text.")
	})
	TagHelperPrefix = MustNew("tagHelperPrefix", SingleLine, func(b *Builder) {
		b.AddStringToken("Prefix").
			SetUsage(FileScopedSinglyOccurring).
			SetDescription("Requires tag helper elements to carry the prefix.")
	})
	Using = MustNew("using", SingleLine, func(b *Builder) {
		b.AddNamespaceToken("Namespace").
			SetUsage(FileScopedMultipleOccurring).
			SetDescription("Imports a namespace into the generated document.")
	})
)

// Builtins returns the directives every engine registers.
func Builtins() []*Descriptor {
	return []*Descriptor{Using, AddTagHelper, RemoveTagHelper, TagHelperPrefix}
}
