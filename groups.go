package main

import (
	"regexp"
	"strings"
)

// EndpointRecord is one entry of the endpoint feed. The feed publishes more
// attributes than list generation needs; the full shape is kept so a feed
// snapshot round-trips, but only serviceArea, urls, ips, tcpPorts and
// category drive output. udpPorts is carried and deliberately unused.
type EndpointRecord struct {
	ID                     int      `json:"id"`
	ServiceArea            string   `json:"serviceArea"`
	ServiceAreaDisplayName string   `json:"serviceAreaDisplayName,omitempty"`
	URLs                   []string `json:"urls,omitempty"`
	IPs                    []string `json:"ips,omitempty"`
	TCPPorts               string   `json:"tcpPorts,omitempty"`
	UDPPorts               string   `json:"udpPorts,omitempty"`
	Category               string   `json:"category"`
	ExpressRoute           bool     `json:"expressRoute,omitempty"`
	Required               bool     `json:"required,omitempty"`
	Notes                  string   `json:"notes,omitempty"`
}

// Address types a value can be classified as.
const (
	addrURL  = "url"
	addrIPv4 = "ipv4"
	addrIPv6 = "ipv6"
)

// Fallback service area for records that do not name one.
const commonArea = "common"

// groupKey identifies one output list. Dim is a category tag (opt, allow,
// default) in the category group space, or a normalized port signature like
// "80-443" in the port group space. The two spaces never mix.
type groupKey struct {
	Area string // lowercased service area
	Addr string // url, ipv4 or ipv6
	Dim  string
}

// String is the composed sort key used for deterministic iteration order.
func (k groupKey) String() string {
	return k.Area + "_" + k.Addr + "_" + k.Dim
}

// groupSet accumulates values per key. Appends only; duplicates are expected
// and resolved at materialization.
type groupSet map[groupKey][]string

func (g groupSet) add(k groupKey, value string) {
	g[k] = append(g[k], value)
}

var ipv4Pattern = regexp.MustCompile(`^[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}(/[0-9]{1,3})?$`)

// categoryTag folds the feed's category enumeration to the short tag used in
// file names. Unrecognized values land in the default bucket; no record is
// ever rejected over its category.
func categoryTag(category string) string {
	switch category {
	case "Optimize":
		return "opt"
	case "Allow":
		return "allow"
	default:
		return "default"
	}
}

func serviceAreaLabel(area string) string {
	area = strings.TrimSpace(area)
	if area == "" {
		return commonArea
	}
	return strings.ToLower(area)
}

// portSignature normalizes a tcpPorts value into the signature used in port
// list file names: whitespace stripped, commas replaced with hyphens, so
// "80, 443" becomes "80-443". Empty input yields no signature.
func portSignature(ports string) string {
	ports = strings.Join(strings.Fields(ports), "")
	return strings.ReplaceAll(ports, ",", "-")
}

// addressType classifies an ips entry. Anything with a colon is IPv6, a
// dotted quad (optionally with a CIDR suffix) is IPv4, and everything else
// is reported unclassifiable so the caller can drop it.
func addressType(s string) (string, bool) {
	if strings.Contains(s, ":") {
		return addrIPv6, true
	}
	if ipv4Pattern.MatchString(s) {
		return addrIPv4, true
	}
	return "", false
}

// buildGroups is the single classification pass over the feed. Every value
// lands in exactly one category group per service area and address type;
// records carrying a TCP port signature additionally contribute to one port
// group per address type. CIDR suffixes pass through verbatim.
func buildGroups(records []EndpointRecord) (catGroups, portGroups groupSet) {
	catGroups = make(groupSet)
	portGroups = make(groupSet)

	for _, rec := range records {
		tag := categoryTag(rec.Category)
		area := serviceAreaLabel(rec.ServiceArea)
		sig := portSignature(rec.TCPPorts)

		fanOut := func(addr, value string) {
			catGroups.add(groupKey{Area: area, Addr: addr, Dim: tag}, value)
			if sig != "" {
				portGroups.add(groupKey{Area: area, Addr: addr, Dim: sig}, value)
			}
		}

		for _, u := range rec.URLs {
			u = strings.TrimSpace(u)
			if u == "" {
				continue
			}
			fanOut(addrURL, u)
		}

		for _, ip := range rec.IPs {
			ip = strings.TrimSpace(ip)
			if ip == "" {
				continue
			}
			addr, ok := addressType(ip)
			if !ok {
				// Neither IPv4 nor IPv6 shaped. Dropped, not an error.
				continue
			}
			fanOut(addr, ip)
		}
	}
	return catGroups, portGroups
}
