package impersonate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	tests := []struct {
		authority string
		want      string
	}{
		{"admins", "impersonate?name=admins"},
		{"authenticated", "impersonate?name=authenticated"},
		{"release managers", "impersonate?name=release+managers"},
		{"a&b=c", "impersonate?name=a%26b%3Dc"},
		{"dev/ops", "impersonate?name=dev%2Fops"},
	}
	for _, tt := range tests {
		t.Run(tt.authority, func(t *testing.T) {
			assert.Equal(t, tt.want, URL(tt.authority))
		})
	}
}
