package blocks

// TypeInfo describes a block kind in the "Add Block" menu.
type TypeInfo struct {
	Kind         Kind
	Label        string
	Icon         string
	Description  string
	DefaultTitle string
}

var registry = []TypeInfo{
	{Kind: KindLink, Label: "Link", Icon: "link", Description: "A clickable link button", DefaultTitle: "New Link"},
	{Kind: KindHeader, Label: "Header", Icon: "heading", Description: "A section heading", DefaultTitle: "New Header"},
	{Kind: KindSocialIcons, Label: "Social Icons", Icon: "share-2", Description: "A row of social network icons", DefaultTitle: "Social Icons"},
	{Kind: KindEmbed, Label: "Embed", Icon: "play-circle", Description: "YouTube, Spotify, SoundCloud or custom embed", DefaultTitle: "New Embed"},
	{Kind: KindContactForm, Label: "Contact Form", Icon: "mail", Description: "Let visitors send you a message", DefaultTitle: "Contact Form"},
}

// Registry returns the known block kinds in menu order.
func Registry() []TypeInfo {
	out := make([]TypeInfo, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the registry entry for the kind.
func Lookup(kind Kind) (TypeInfo, bool) {
	for _, info := range registry {
		if info.Kind == kind {
			return info, true
		}
	}
	return TypeInfo{}, false
}

// IsKnown reports whether the kind is present in the registry.
func IsKnown(kind Kind) bool {
	_, ok := Lookup(kind)
	return ok
}

// IconFor returns the icon for the kind, falling back to the link icon.
func IconFor(kind Kind) string {
	if info, ok := Lookup(kind); ok {
		return info.Icon
	}
	return registry[0].Icon
}

// DefaultTitle returns the title given to freshly added blocks of the kind.
func DefaultTitle(kind Kind) string {
	if info, ok := Lookup(kind); ok {
		return info.DefaultTitle
	}
	return "New Block"
}
