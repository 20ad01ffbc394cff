package catalog

import "sort"

// Icon is a renderable icon referenced by a symbolic name in section content.
type Icon struct {
	Name  string `json:"name"`
	Asset string `json:"asset"`
}

// DefaultIcon is used by renderers when content names an unknown icon.
const DefaultIcon = "Star"

var icons = map[string]Icon{
	"Award":      {Name: "Award", Asset: "icons/award.svg"},
	"CreditCard": {Name: "CreditCard", Asset: "icons/credit-card.svg"},
	"Gift":       {Name: "Gift", Asset: "icons/gift.svg"},
	"Globe":      {Name: "Globe", Asset: "icons/globe.svg"},
	"Headphones": {Name: "Headphones", Asset: "icons/headphones.svg"},
	"Heart":      {Name: "Heart", Asset: "icons/heart.svg"},
	"Leaf":       {Name: "Leaf", Asset: "icons/leaf.svg"},
	"Lock":       {Name: "Lock", Asset: "icons/lock.svg"},
	"Package":    {Name: "Package", Asset: "icons/package.svg"},
	"RefreshCw":  {Name: "RefreshCw", Asset: "icons/refresh-cw.svg"},
	"Shield":     {Name: "Shield", Asset: "icons/shield.svg"},
	"Smile":      {Name: "Smile", Asset: "icons/smile.svg"},
	"Star":       {Name: "Star", Asset: "icons/star.svg"},
	"Truck":      {Name: "Truck", Asset: "icons/truck.svg"},
	"Users":      {Name: "Users", Asset: "icons/users.svg"},
	"Zap":        {Name: "Zap", Asset: "icons/zap.svg"},
}

// LookupIcon returns the icon registered under name.
func LookupIcon(name string) (Icon, bool) {
	i, ok := icons[name]
	return i, ok
}

// IconOrDefault returns the named icon, or DefaultIcon.
func IconOrDefault(name string) Icon {
	if i, ok := icons[name]; ok {
		return i
	}
	return icons[DefaultIcon]
}

// IconNames lists the registered icon names in sorted order.
func IconNames() []string {
	names := make([]string, 0, len(icons))
	for n := range icons {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
