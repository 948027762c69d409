package xkblayouts

import "encoding/xml"

// registryDoc is the part of evdev.xml a Registry is built from.
type registryDoc struct {
	XMLName xml.Name    `xml:"xkbConfigRegistry"`
	Layouts []layoutDoc `xml:"layoutList>layout"`
}

type configItem struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
}

type layoutDoc struct {
	Item     configItem   `xml:"configItem"`
	Variants []variantDoc `xml:"variantList>variant"`
}

type variantDoc struct {
	Item configItem `xml:"configItem"`
}
