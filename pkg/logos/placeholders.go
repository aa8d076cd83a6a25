// Package logos holds the local logo maintenance passes: placeholder repair and the
// missing-logo audit. Neither pass touches the network.
package logos

// DefaultPlaceholders are vendor default images that must not be shown as a chain logo.
var DefaultPlaceholders = []string{
	"https://images.ctfassets.net/gcj8jwzm6086/62KzIedYATHGgRODAP5Py9/e290f4d8598ac8d30d80975a560cca8f/AvaCloud-512x512.png",
	"https://cdn.snowpeer.io/avacloud.png",
}

// PlaceholderSet matches URLs exactly against a list of placeholders.
type PlaceholderSet map[string]struct{}

// NewPlaceholderSet builds a set from urls. An empty list falls back to DefaultPlaceholders.
func NewPlaceholderSet(urls []string) PlaceholderSet {
	if len(urls) == 0 {
		urls = DefaultPlaceholders
	}
	set := make(PlaceholderSet, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set
}

func (s PlaceholderSet) Contains(uri string) bool {
	_, ok := s[uri]
	return ok
}
