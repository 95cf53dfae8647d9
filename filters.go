package main

import (
	"fmt"
	"strings"
)

// portFilter selects one port group for materialization. Specs look like
// "exchange:url:443" or "sharepoint:ipv4:80-443" and match the normalized
// per-record signature exactly: "443" does not select a group whose
// signature is "80-443".
type portFilter struct {
	Area string
	Addr string
	Sig  string
}

func parsePortFilter(spec string) (portFilter, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return portFilter{}, fmt.Errorf("port list filter %q: want servicearea:addrtype:port[-port...]", spec)
	}

	f := portFilter{
		Area: strings.ToLower(strings.TrimSpace(parts[0])),
		Addr: strings.ToLower(strings.TrimSpace(parts[1])),
		Sig:  strings.TrimSpace(parts[2]),
	}
	if f.Area == "" || f.Sig == "" {
		return portFilter{}, fmt.Errorf("port list filter %q: empty field", spec)
	}
	switch f.Addr {
	case addrURL, addrIPv4, addrIPv6:
	default:
		return portFilter{}, fmt.Errorf("port list filter %q: address type must be url, ipv4 or ipv6", spec)
	}
	return f, nil
}

func parsePortFilters(specs []string) ([]portFilter, error) {
	var filters []portFilter
	for _, spec := range specs {
		f, err := parsePortFilter(spec)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// filterPortGroups keeps only the port groups a filter selects. With no
// filters no port lists are produced at all.
func filterPortGroups(groups groupSet, filters []portFilter) groupSet {
	kept := make(groupSet)
	for k, values := range groups {
		for _, f := range filters {
			if f.Area == k.Area && f.Addr == k.Addr && f.Sig == k.Dim {
				kept[k] = values
				break
			}
		}
	}
	return kept
}
