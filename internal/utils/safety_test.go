package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var denylist = []string{"malware", "phishing", "virus", "hack", "abuse"}

func TestIsContentSafe(t *testing.T) {
	assert.True(t, IsContentSafe("hello there", denylist))
	assert.True(t, IsContentSafe("", denylist), "empty preview is always safe")

	assert.False(t, IsContentSafe("click this phishing link", denylist))
	assert.False(t, IsContentSafe("PHISHING", denylist), "matching is case-insensitive")
	assert.False(t, IsContentSafe("unhackable", denylist), "substring match is intentional")
}

func TestIsContentSafe_EmptyDenylist(t *testing.T) {
	assert.True(t, IsContentSafe("phishing", nil))
	assert.True(t, IsContentSafe("phishing", []string{""}), "blank keywords are skipped")
}
