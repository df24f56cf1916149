package cookieutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildHeader(t *testing.T) {
	cases := []struct {
		cookies  []string
		expected string
	}{
		{
			cookies:  []string{"a=1; Path=/", "b=2; HttpOnly"},
			expected: "a=1; b=2",
		},
		{
			cookies:  []string{"_session=abc", "_session=def; Secure"},
			expected: "_session=abc; _session=def",
		},
		{
			cookies:  []string{"", "x=y;"},
			expected: "x=y",
		},
		{
			cookies:  nil,
			expected: "",
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, BuildHeader(test.cookies))
	}
}

func TestFindValue(t *testing.T) {
	value, ok := FindValue([]string{"_session=1; Path=/", "csrf-token=XYZ123; Path=/"}, "csrf-token")
	require.True(t, ok)
	require.Equal(t, "XYZ123", value)

	value, ok = FindValue([]string{"csrf-token=last"}, "csrf-token")
	require.True(t, ok)
	require.Equal(t, "last", value)

	value, ok = FindValue([]string{"csrf-token=first; Path=/", "csrf-token=second"}, "csrf-token")
	require.True(t, ok)
	require.Equal(t, "first", value)

	_, ok = FindValue([]string{"a=1; Path=/", "b=2; HttpOnly"}, "csrf-token")
	require.False(t, ok)

	_, ok = FindValue([]string{"x-csrf-token=nope"}, "csrf-token")
	require.False(t, ok)
}
