package typeid

import "go.jetify.com/typeid/v2"

const (
	PrefixTemplate = "tmpl"
	PrefixShape    = "shape"
	PrefixProfile  = "prof"
	PrefixClient   = "client"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewTemplateID() string { return New(PrefixTemplate) }
func NewShapeID() string    { return New(PrefixShape) }
func NewProfileID() string  { return New(PrefixProfile) }
