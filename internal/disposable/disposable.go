// Package disposable answers whether a domain belongs to a known
// throwaway email provider. The list ships embedded in the binary.
package disposable

import (
	_ "embed"
	"strings"
)

//go:embed list.txt
var rawList string

var domains map[string]struct{}

func init() {
	domains = make(map[string]struct{})
	for _, line := range strings.Split(rawList, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains[strings.ToLower(line)] = struct{}{}
	}
}

// IsDisposable reports whether the domain is on the embedded list.
func IsDisposable(domain string) bool {
	_, ok := domains[strings.ToLower(domain)]
	return ok
}
