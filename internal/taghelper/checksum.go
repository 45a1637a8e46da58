package taghelper

import "quill/internal/checksum"

// record discriminators
const (
	tagTagHelper byte = 'T'
	tagAttribute byte = 'A'
	tagParameter byte = 'P'
	tagRule      byte = 'M'
	tagRequired  byte = 'R'
	tagChild     byte = 'C'
)

func tagHelperChecksum(d *Descriptor) checksum.Digest {
	return checksum.Of(func(b *checksum.Builder) {
		b.AppendKind(tagTagHelper).
			AppendString(string(d.kind)).
			AppendString(d.name).
			AppendOptionalString(d.assemblyName).
			AppendString(d.displayName).
			AppendOptionalString(d.documentation).
			AppendOptionalString(d.tagOutputHint)
		checksum.AppendEnum(b, d.flags)
		b.AppendLen(len(d.rules))
		for _, r := range d.rules {
			b.AppendDigest(r.sum)
		}
		b.AppendLen(len(d.attributes))
		for _, a := range d.attributes {
			b.AppendDigest(a.sum)
		}
		b.AppendLen(len(d.childTags))
		for _, c := range d.childTags {
			b.AppendDigest(c.sum)
		}
		d.metadata.appendTo(b)
	})
}

func boundAttributeChecksum(a *BoundAttribute) checksum.Digest {
	return checksum.Of(func(b *checksum.Builder) {
		b.AppendKind(tagAttribute).
			AppendString(string(a.kind)).
			AppendOptionalString(a.name).
			AppendOptionalString(a.typeName).
			AppendOptionalString(a.indexerNamePrefix).
			AppendOptionalString(a.indexerTypeName).
			AppendString(a.displayName).
			AppendOptionalString(a.documentation)
		checksum.AppendEnum(b, a.flags)
		b.AppendLen(len(a.parameters))
		for _, p := range a.parameters {
			b.AppendDigest(p.sum)
		}
		a.metadata.appendTo(b)
	})
}

func parameterChecksum(p *BoundAttributeParameter) checksum.Digest {
	return checksum.Of(func(b *checksum.Builder) {
		b.AppendKind(tagParameter).
			AppendString(string(p.kind)).
			AppendString(p.name).
			AppendOptionalString(p.typeName).
			AppendString(p.displayName).
			AppendOptionalString(p.documentation)
		checksum.AppendEnum(b, p.flags)
		p.metadata.appendTo(b)
	})
}

func ruleChecksum(r *TagMatchingRule) checksum.Digest {
	return checksum.Of(func(b *checksum.Builder) {
		b.AppendKind(tagRule).
			AppendString(r.tagName).
			AppendOptionalString(r.parentTag)
		checksum.AppendEnum(b, r.tagStructure)
		b.AppendBool(r.caseSensitive)
		b.AppendLen(len(r.attributes))
		for _, ra := range r.attributes {
			b.AppendDigest(ra.sum)
		}
	})
}

func requiredAttributeChecksum(ra *RequiredAttribute) checksum.Digest {
	return checksum.Of(func(b *checksum.Builder) {
		b.AppendKind(tagRequired).AppendString(ra.name)
		checksum.AppendEnum(b, ra.nameComparison)
		b.AppendOptionalString(ra.value)
		checksum.AppendEnum(b, ra.valueComparison)
		b.AppendString(ra.displayName).
			AppendBool(ra.caseSensitive).
			AppendBool(ra.isDirectiveAttribute)
		ra.metadata.appendTo(b)
	})
}

func childTagChecksum(c *AllowedChildTag) checksum.Digest {
	return checksum.Of(func(b *checksum.Builder) {
		b.AppendKind(tagChild).AppendString(c.name).AppendString(c.displayName)
	})
}
