package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value form",
			args:    []string{"-a", ":8080", "-x", "ignored"},
			allowed: []string{"-a"},
			want:    []string{"-a", ":8080"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=conf.json", "-d=dsn"},
			allowed: []string{"--config"},
			want:    []string{"--config=conf.json"},
		},
		{
			name:    "flag without value followed by another flag",
			args:    []string{"-v", "-a", ":9090"},
			allowed: []string{"-v", "-a"},
			want:    []string{"-v", "-a", ":9090"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "x", "-b", "y"},
			allowed: nil,
			want:    []string{},
		},
		{
			name:    "empty args",
			args:    nil,
			allowed: []string{"-a"},
			want:    []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterArgs(tc.args, tc.allowed)
			assert.Equal(t, tc.want, got)
		})
	}
}
