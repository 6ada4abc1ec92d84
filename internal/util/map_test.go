package util

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2, "c": 3}
	got := Keys(m)
	sort.Strings(got)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestKeys_Empty(t *testing.T) {
	assert.Empty(t, Keys(map[string]int{}))
}
