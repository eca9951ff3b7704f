package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain line", "hello\n", "hello"},
		{"trims whitespace", "  spaced  \n", "spaced"},
		{"partial line at EOF", "noeol", "noeol"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			r := bufio.NewReader(strings.NewReader(tc.input))

			got, err := GetSimpleText(r, "Enter value", &out)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Contains(t, out.String(), "Enter value")
		})
	}
}

func TestGetSimpleText_EOF(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader(""))

	_, err := GetSimpleText(r, "Enter value", &out)
	require.Error(t, err)
}

func TestGetPassword(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	readPassword = func(fd int) ([]byte, error) {
		return []byte("s3cret"), nil
	}

	var out bytes.Buffer
	pw, err := GetPassword("Enter password: ", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), pw)
	assert.Contains(t, out.String(), "Enter password")
}
