package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatIST(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2024-03-05T18:45:10Z", "06/03/2024 00:15:10"},
		{"2024-03-05T10:00:00.123Z", "05/03/2024 15:30:00"},
		{"2024-03-05T10:00:00+05:30", "05/03/2024 10:00:00"},
		{"2024-03-05 04:30:00", "05/03/2024 10:00:00"},
		{"not a time", "not a time"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatIST(c.in), c.in)
	}
}
