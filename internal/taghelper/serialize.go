package taghelper

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// ManifestVersion is bumped when the manifest layout changes.
const ManifestVersion = 1

// Manifest is the wire form of a descriptor set. Checksums are not stored:
// decoding rebuilds every descriptor through the builders.
type Manifest struct {
	Version     int             `json:"version" msgpack:"v"`
	Descriptors []DescriptorDTO `json:"tagHelpers" msgpack:"th"`
}

type DescriptorDTO struct {
	Kind                    string            `json:"kind" msgpack:"k"`
	Name                    string            `json:"name" msgpack:"n"`
	AssemblyName            string            `json:"assembly,omitempty" msgpack:"a,omitempty"`
	DisplayName             string            `json:"displayName,omitempty" msgpack:"dn,omitempty"`
	Documentation           string            `json:"documentation,omitempty" msgpack:"doc,omitempty"`
	TagOutputHint           string            `json:"tagOutputHint,omitempty" msgpack:"oh,omitempty"`
	CaseSensitive           bool              `json:"caseSensitive,omitempty" msgpack:"cs,omitempty"`
	FullyQualifiedNameMatch bool              `json:"fullyQualifiedNameMatch,omitempty" msgpack:"fq,omitempty"`
	Rules                   []RuleDTO         `json:"rules,omitempty" msgpack:"r,omitempty"`
	Attributes              []AttributeDTO    `json:"attributes,omitempty" msgpack:"at,omitempty"`
	AllowedChildTags        []ChildTagDTO     `json:"allowedChildTags,omitempty" msgpack:"ch,omitempty"`
	Metadata                map[string]string `json:"metadata,omitempty" msgpack:"m,omitempty"`
}

type AttributeDTO struct {
	Kind                 string            `json:"kind,omitempty" msgpack:"k,omitempty"`
	Name                 string            `json:"name" msgpack:"n"`
	TypeName             string            `json:"typeName,omitempty" msgpack:"t,omitempty"`
	IndexerNamePrefix    string            `json:"indexerPrefix,omitempty" msgpack:"ip,omitempty"`
	IndexerTypeName      string            `json:"indexerTypeName,omitempty" msgpack:"it,omitempty"`
	DisplayName          string            `json:"displayName,omitempty" msgpack:"dn,omitempty"`
	Documentation        string            `json:"documentation,omitempty" msgpack:"doc,omitempty"`
	IsEnum               bool              `json:"isEnum,omitempty" msgpack:"e,omitempty"`
	IsDirectiveAttribute bool              `json:"isDirectiveAttribute,omitempty" msgpack:"d,omitempty"`
	IsEditorRequired     bool              `json:"isEditorRequired,omitempty" msgpack:"er,omitempty"`
	Parameters           []ParameterDTO    `json:"parameters,omitempty" msgpack:"p,omitempty"`
	Metadata             map[string]string `json:"metadata,omitempty" msgpack:"m,omitempty"`
}

type ParameterDTO struct {
	Kind          string            `json:"kind,omitempty" msgpack:"k,omitempty"`
	Name          string            `json:"name" msgpack:"n"`
	TypeName      string            `json:"typeName,omitempty" msgpack:"t,omitempty"`
	DisplayName   string            `json:"displayName,omitempty" msgpack:"dn,omitempty"`
	Documentation string            `json:"documentation,omitempty" msgpack:"doc,omitempty"`
	IsEnum        bool              `json:"isEnum,omitempty" msgpack:"e,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty" msgpack:"m,omitempty"`
}

type RuleDTO struct {
	TagName      string                 `json:"tagName" msgpack:"t"`
	ParentTag    string                 `json:"parentTag,omitempty" msgpack:"p,omitempty"`
	TagStructure string                 `json:"tagStructure,omitempty" msgpack:"s,omitempty"`
	Attributes   []RequiredAttributeDTO `json:"attributes,omitempty" msgpack:"a,omitempty"`
}

type RequiredAttributeDTO struct {
	Name                 string            `json:"name" msgpack:"n"`
	NameComparison       string            `json:"nameComparison,omitempty" msgpack:"nc,omitempty"`
	Value                string            `json:"value,omitempty" msgpack:"v,omitempty"`
	ValueComparison      string            `json:"valueComparison,omitempty" msgpack:"vc,omitempty"`
	DisplayName          string            `json:"displayName,omitempty" msgpack:"dn,omitempty"`
	IsDirectiveAttribute bool              `json:"isDirectiveAttribute,omitempty" msgpack:"d,omitempty"`
	Metadata             map[string]string `json:"metadata,omitempty" msgpack:"m,omitempty"`
}

type ChildTagDTO struct {
	Name        string `json:"name" msgpack:"n"`
	DisplayName string `json:"displayName,omitempty" msgpack:"dn,omitempty"`
}

// ToManifest converts a set to its wire form. Display names are always
// written; an explicit name equal to the derived one rebuilds identically.
func ToManifest(s *Set) *Manifest {
	m := &Manifest{Version: ManifestVersion, Descriptors: make([]DescriptorDTO, 0, s.Len())}
	for _, d := range s.Items() {
		m.Descriptors = append(m.Descriptors, descriptorToDTO(d))
	}
	return m
}

func descriptorToDTO(d *Descriptor) DescriptorDTO {
	dto := DescriptorDTO{
		Kind:                    string(d.kind),
		Name:                    d.name,
		AssemblyName:            d.assemblyName,
		DisplayName:             d.displayName,
		Documentation:           d.documentation,
		TagOutputHint:           d.tagOutputHint,
		CaseSensitive:           d.CaseSensitive(),
		FullyQualifiedNameMatch: d.IsFullyQualifiedNameMatch(),
		Metadata:                d.metadata.Map(),
	}
	for _, r := range d.rules {
		rd := RuleDTO{TagName: r.tagName, ParentTag: r.parentTag, TagStructure: r.tagStructure.String()}
		for _, ra := range r.attributes {
			rd.Attributes = append(rd.Attributes, RequiredAttributeDTO{
				Name:                 ra.name,
				NameComparison:       ra.nameComparison.String(),
				Value:                ra.value,
				ValueComparison:      ra.valueComparison.String(),
				DisplayName:          ra.displayName,
				IsDirectiveAttribute: ra.isDirectiveAttribute,
				Metadata:             ra.metadata.Map(),
			})
		}
		dto.Rules = append(dto.Rules, rd)
	}
	for _, a := range d.attributes {
		ad := AttributeDTO{
			Kind:                 string(a.kind),
			Name:                 a.name,
			TypeName:             a.typeName,
			IndexerNamePrefix:    a.indexerNamePrefix,
			IndexerTypeName:      a.indexerTypeName,
			DisplayName:          a.displayName,
			Documentation:        a.documentation,
			IsEnum:               a.IsEnum(),
			IsDirectiveAttribute: a.IsDirectiveAttribute(),
			IsEditorRequired:     a.IsEditorRequired(),
			Metadata:             a.metadata.Map(),
		}
		for _, p := range a.parameters {
			ad.Parameters = append(ad.Parameters, ParameterDTO{
				Kind:          string(p.kind),
				Name:          p.name,
				TypeName:      p.typeName,
				DisplayName:   p.displayName,
				Documentation: p.documentation,
				IsEnum:        p.IsEnum(),
				Metadata:      p.metadata.Map(),
			})
		}
		dto.Attributes = append(dto.Attributes, ad)
	}
	for _, c := range d.childTags {
		dto.AllowedChildTags = append(dto.AllowedChildTags, ChildTagDTO{Name: c.name, DisplayName: c.displayName})
	}
	return dto
}

// Build rebuilds the set from the manifest using pool.
func (m *Manifest) Build(pool *Pool) (*Set, error) {
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("tag helper manifest: unsupported version %d", m.Version)
	}
	if pool == nil {
		pool = NewPool()
	}
	out := make([]*Descriptor, 0, len(m.Descriptors))
	for i := range m.Descriptors {
		dto := &m.Descriptors[i]
		out = append(out, pool.Build(dto.fill))
	}
	return NewSet(out...), nil
}

func (dto *DescriptorDTO) fill(b *Builder) {
	b.Kind = Kind(dto.Kind)
	b.Name = dto.Name
	b.AssemblyName = dto.AssemblyName
	b.DisplayName = dto.DisplayName
	b.Documentation = dto.Documentation
	b.TagOutputHint = dto.TagOutputHint
	b.CaseSensitive = dto.CaseSensitive
	b.FullyQualifiedNameMatch = dto.FullyQualifiedNameMatch
	for k, v := range dto.Metadata {
		b.SetMetadata(k, v)
	}
	for _, rd := range dto.Rules {
		b.TagMatchingRule(func(r *TagMatchingRuleBuilder) {
			r.TagName = rd.TagName
			r.ParentTag = rd.ParentTag
			r.TagStructure = parseTagStructure(rd.TagStructure)
			for _, ra := range rd.Attributes {
				r.RequireAttribute(func(a *RequiredAttributeBuilder) {
					a.Name = ra.Name
					a.NameComparison = parseNameComparison(ra.NameComparison)
					a.Value = ra.Value
					a.ValueComparison = parseValueComparison(ra.ValueComparison)
					a.DisplayName = ra.DisplayName
					a.IsDirectiveAttribute = ra.IsDirectiveAttribute
					a.Metadata = copyMap(ra.Metadata)
				})
			}
		})
	}
	for _, ad := range dto.Attributes {
		b.BindAttribute(func(a *BoundAttributeBuilder) {
			a.Kind = Kind(ad.Kind)
			a.Name = ad.Name
			a.TypeName = ad.TypeName
			a.IndexerNamePrefix = ad.IndexerNamePrefix
			a.IndexerTypeName = ad.IndexerTypeName
			a.DisplayName = ad.DisplayName
			a.Documentation = ad.Documentation
			a.IsEnum = ad.IsEnum
			a.IsDirectiveAttribute = ad.IsDirectiveAttribute
			a.IsEditorRequired = ad.IsEditorRequired
			a.Metadata = copyMap(ad.Metadata)
			for _, pd := range ad.Parameters {
				a.BindAttributeParameter(func(p *BoundAttributeParameterBuilder) {
					p.Kind = Kind(pd.Kind)
					p.Name = pd.Name
					p.TypeName = pd.TypeName
					p.DisplayName = pd.DisplayName
					p.Documentation = pd.Documentation
					p.IsEnum = pd.IsEnum
					p.Metadata = copyMap(pd.Metadata)
				})
			}
		})
	}
	for _, cd := range dto.AllowedChildTags {
		b.AllowChildTag(func(c *AllowedChildTagBuilder) {
			c.Name = cd.Name
			c.DisplayName = cd.DisplayName
		})
	}
}

func copyMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// WriteJSON encodes s as an indented JSON manifest.
func WriteJSON(w io.Writer, s *Set) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToManifest(s))
}

// ReadJSON decodes a JSON manifest and rebuilds its descriptors.
func ReadJSON(r io.Reader, pool *Pool) (*Set, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("tag helper manifest: %w", err)
	}
	return m.Build(pool)
}

// MarshalMsgpack encodes s in the compact binary form used by the disk cache.
func MarshalMsgpack(s *Set) ([]byte, error) {
	return msgpack.Marshal(ToManifest(s))
}

// UnmarshalMsgpack decodes the binary form and rebuilds its descriptors.
func UnmarshalMsgpack(data []byte, pool *Pool) (*Set, error) {
	var m Manifest
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("tag helper manifest: %w", err)
	}
	return m.Build(pool)
}
