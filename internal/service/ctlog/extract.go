package ctlog

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	commonNamePattern = regexp.MustCompile(`CN=([^,\n]+)`)
	dnsNamePattern    = regexp.MustCompile(`DNS:([^,\n]+)`)
)

// ExtractDomains pulls candidate hostnames out of an entry's base64-encoded
// certificate blob. The decoded bytes are scanned as plain text with invalid
// UTF-8 sequences dropped, capturing every CN= common name and DNS: subject
// alternative name run up to a comma or newline. Candidates are deduplicated
// and returned sorted. This is text scraping, not DER parsing, so candidates
// are not validated as DNS names.
func ExtractDomains(leafCertificate string) ([]string, error) {
	raw, err := base64.StdEncoding.DecodeString(leafCertificate)
	if err != nil {
		return nil, fmt.Errorf("decode leaf certificate: %w", err)
	}

	text := strings.ToValidUTF8(string(raw), "")

	set := make(map[string]struct{})
	for _, m := range commonNamePattern.FindAllStringSubmatch(text, -1) {
		set[m[1]] = struct{}{}
	}
	for _, m := range dnsNamePattern.FindAllStringSubmatch(text, -1) {
		set[m[1]] = struct{}{}
	}
	if len(set) == 0 {
		return nil, nil
	}

	domains := make([]string, 0, len(set))
	for d := range set {
		domains = append(domains, d)
	}
	slices.Sort(domains)
	return domains, nil
}
