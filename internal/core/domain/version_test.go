package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/pixi/internal/core/domain"
)

func TestVersionSpec_Matches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec    string
		version string
		want    bool
	}{
		{"", "1.0", true},
		{"*", "0.0.1", true},
		{"1.2.3", "1.2.3", true},
		{"1.2.3", "1.2.4", false},
		{"==1.2", "1.2.0", true},
		{"!=1.2", "1.3", true},
		{">=1.2,<2", "1.9.9", true},
		{">=1.2,<2", "2.0", false},
		{">1.2", "1.2", false},
		{"<=1.2", "1.2", true},
		{"1.8.*", "1.8.4", true},
		{"1.8.*", "1.9.0", false},
		{"=1.8", "1.8.2", true},
		{"=1.8", "1.80", false},
		{"!=1.8.*", "1.8.2", false},
		{"!=1.8.*", "1.9", true},
		{"~=3.4", "3.9", true},
		{"~=3.4", "4.0", false},
		{"~=3.4.2", "3.4.5", true},
		{"~=3.4.2", "3.5.0", false},
		{"3.11|3.12", "3.12", true},
		{"3.11.*|3.12.*", "3.13.0", false},
		{">=3.12", "3.13.0rc1", true},
		{"<3.13", "3.13.0rc1", true},
		{"===1.0.custom", "1.0.custom", true},
		{"1.2.3_1", "1.2.3_1", true},
		{">=1.0", "1.0.post1", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec+"/"+tt.version, func(t *testing.T) {
			t.Parallel()
			spec, err := domain.ParseVersionSpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Matches(tt.version))
		})
	}
}

func TestParseVersionSpec_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{">=", "~=3", ">=abc", "==,"} {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			_, err := domain.ParseVersionSpec(input)
			require.Error(t, err)
			assert.ErrorContains(t, err, "invalid version spec")
		})
	}
}

func TestVersionSpec_IsAny(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.AnyVersion.IsAny())
	assert.True(t, domain.MustParseVersionSpec("*").IsAny())
	assert.False(t, domain.MustParseVersionSpec(">=1").IsAny())
	assert.Equal(t, ">=1", domain.MustParseVersionSpec(" >=1 ").String())
}

func TestCompareVersions(t *testing.T) {
	t.Parallel()

	assert.Negative(t, domain.CompareVersions("1.2", "1.10"))
	assert.Zero(t, domain.CompareVersions("1.2.0", "1.2"))
	assert.Positive(t, domain.CompareVersions("2.0", "2.0rc1"))
}

func TestShortVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "3.11", domain.ShortVersion("3.11.4"))
	assert.Equal(t, "3.13", domain.ShortVersion("3.13.0rc1"))
	assert.Equal(t, "3", domain.ShortVersion("3"))
}
