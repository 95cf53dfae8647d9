package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePortFilter(t *testing.T) {
	t.Run("valid specs", func(t *testing.T) {
		f, err := parsePortFilter("exchange:url:443")
		require.NoError(t, err)
		assert.Equal(t, portFilter{Area: "exchange", Addr: "url", Sig: "443"}, f)

		f, err = parsePortFilter("SharePoint:IPv4:80-443")
		require.NoError(t, err)
		assert.Equal(t, portFilter{Area: "sharepoint", Addr: "ipv4", Sig: "80-443"}, f)
	})

	t.Run("invalid specs", func(t *testing.T) {
		for _, spec := range []string{
			"exchange:url",          // missing signature
			"exchange:url:443:more", // too many fields
			"exchange:tcp:443",      // bad address type
			":url:443",              // empty area
			"exchange:url:",         // empty signature
		} {
			_, err := parsePortFilter(spec)
			assert.Error(t, err, "spec %q", spec)
		}
	})
}

func TestParsePortFilters(t *testing.T) {
	filters, err := parsePortFilters(nil)
	require.NoError(t, err)
	assert.Empty(t, filters)

	filters, err = parsePortFilters([]string{"exchange:url:443", "skype:ipv6:3478"})
	require.NoError(t, err)
	assert.Len(t, filters, 2)

	_, err = parsePortFilters([]string{"exchange:url:443", "broken"})
	assert.Error(t, err)
}

func TestFilterPortGroups(t *testing.T) {
	groups := groupSet{
		{Area: "exchange", Addr: addrURL, Dim: "443"}:    {"outlook.office.com"},
		{Area: "exchange", Addr: addrURL, Dim: "80-443"}: {"mail.example.com"},
		{Area: "sharepoint", Addr: addrIPv4, Dim: "443"}: {"13.107.136.0/24"},
	}

	t.Run("no filters keeps nothing", func(t *testing.T) {
		assert.Empty(t, filterPortGroups(groups, nil))
	})

	t.Run("signature match is exact", func(t *testing.T) {
		kept := filterPortGroups(groups, []portFilter{
			{Area: "exchange", Addr: addrURL, Sig: "443"},
		})
		require.Len(t, kept, 1)
		assert.Equal(t,
			[]string{"outlook.office.com"},
			kept[groupKey{Area: "exchange", Addr: addrURL, Dim: "443"}])
	})

	t.Run("multiple filters union", func(t *testing.T) {
		kept := filterPortGroups(groups, []portFilter{
			{Area: "exchange", Addr: addrURL, Sig: "80-443"},
			{Area: "sharepoint", Addr: addrIPv4, Sig: "443"},
		})
		assert.Len(t, kept, 2)
	})
}
