package hashfs

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/oneconcern/datagit/pkg/hashfs/status"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Link references a child object from a link object
type Link struct {
	Hash string `json:"Hash" yaml:"Hash"`
	Size int64  `json:"Size" yaml:"Size"`
}

// Links is the content of a link object: the ordered list of the chunks of a file.
//
// Concatenating the chunks in order yields the original file.
type Links struct {
	Links []Link `json:"Links" yaml:"Links"`
}

// Size of the file described by this link object
func (l Links) Size() int64 {
	var total int64
	for _, link := range l.Links {
		total += link.Size
	}
	return total
}

// Keys of the chunks, in order
func (l Links) Keys() []string {
	keys := make([]string, 0, len(l.Links))
	for _, link := range l.Links {
		keys = append(keys, link.Hash)
	}
	return keys
}

// MarshalLinks serializes a link object
func MarshalLinks(l Links) ([]byte, error) {
	if l.Links == nil {
		l.Links = []Link{}
	}
	return json.Marshal(l)
}

// UnmarshalLinks decodes a serialized link object
func UnmarshalLinks(data []byte) (Links, error) {
	var raw struct {
		Links *[]Link `json:"Links"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Links{}, status.ErrCorruptedLink.Wrap(err)
	}
	if raw.Links == nil {
		return Links{}, status.ErrCorruptedLink.Detailf("no Links entry")
	}
	return Links{Links: *raw.Links}, nil
}
