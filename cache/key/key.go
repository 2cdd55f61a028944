package key

import (
	"fmt"
	"sort"
	"strings"
)

// Params is the key material of a request besides its URL. Values must be
// strings, numbers or booleans; nested values have no defined encoding.
type Params map[string]any

type KeyGenerator interface {
	Key(url string, params Params) string
}

type DefaultKeyGenerator struct {
	PartitionKey string
}

func NewKeyGenerator(partitionKey string) *DefaultKeyGenerator {
	return &DefaultKeyGenerator{
		PartitionKey: partitionKey,
	}
}

func (g *DefaultKeyGenerator) Key(url string, params Params) string {
	k := GenerateKey(url, params)
	if g.PartitionKey == "" {
		return k
	}
	return fmt.Sprintf("%s_%s", g.PartitionKey, k)
}

// GenerateKey encodes url and params as "url?k1=v1&k2=v2" with names sorted,
// so the insertion order of params never changes the key.
func GenerateKey(url string, params Params) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(url)
	b.WriteByte('?')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		fmt.Fprint(&b, params[name])
	}
	return b.String()
}
