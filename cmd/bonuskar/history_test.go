package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItemFlags(t *testing.T) {
	items, err := parseItemFlags([]string{
		"title=AH Halfvolle melk,price=€1.09,quantity=2,category=essentials",
		"title=Brood",
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "AH Halfvolle melk", items[0].Title)
	assert.Equal(t, "€1.09", items[0].Price)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "essentials", items[0].Category)

	assert.Equal(t, "Brood", items[1].Title)
	assert.Zero(t, items[1].Quantity, "defaults are the store's job")
}

func TestParseItemFlagsErrors(t *testing.T) {
	_, err := parseItemFlags([]string{"price=€1.09"})
	assert.Error(t, err, "title is required")

	_, err = parseItemFlags([]string{"title=Melk,quantity=two"})
	assert.Error(t, err)

	_, err = parseItemFlags([]string{"title=Melk,flavor=vanilla"})
	assert.Error(t, err)

	_, err = parseItemFlags([]string{"just-a-string"})
	assert.Error(t, err)
}
