package entity

// Viewport is the size of the browser page in CSS pixels.
type Viewport struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// PageElement is one interactive element reported by an accessibility scan.
// Href and Role are nil when the element has no link target or role attribute.
type PageElement struct {
	Tag       string  `json:"tag"`
	Text      string  `json:"text"`
	IsVisible bool    `json:"isVisible"`
	Href      *string `json:"href"`
	Role      *string `json:"role"`
}
