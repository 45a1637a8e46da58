package lang

// Features lists the behaviors gated by language version.
type Features struct {
	AllowMinimizedBooleanTagHelperAttributes bool
	AllowHTMLCommentsInTagHelpers            bool
	AllowComponentFileKind                   bool
	AllowConditionalDataDashAttributes       bool
	AllowCSharpInMarkupAttributeArea         bool
	AllowNullableForgivenessOperator         bool
}

// FeaturesFor derives the feature set of v.
func FeaturesFor(v Version) Features {
	return Features{
		AllowMinimizedBooleanTagHelperAttributes: v.AtLeast(Version2_1),
		AllowHTMLCommentsInTagHelpers:            v.AtLeast(Version2_1),
		AllowComponentFileKind:                   v.AtLeast(Version3_0),
		AllowConditionalDataDashAttributes:       v.AtLeast(Version3_0),
		AllowCSharpInMarkupAttributeArea:         v.AtLeast(Version5_0),
		AllowNullableForgivenessOperator:         v.AtLeast(Version6_0),
	}
}
