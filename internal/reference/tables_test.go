package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValidAndIsolated(t *testing.T) {
	a := Default()
	require.NoError(t, a.Validate())

	//mutating one copy must not leak into the next
	a.Regions[0].Areas[0] = "changed"
	a.Skills[0] = "changed"

	b := Default()
	assert.Equal(t, "North West", b.Regions[0].Areas[0])
	assert.Equal(t, "Python", b.Skills[0])
}

func TestDefault_RegionOrder(t *testing.T) {
	want := []string{
		"North West", "Yorkshire", "South East", "South West", "Midlands",
		"East of England", "London", "Scotland", "Ireland", "Wales", "Other",
	}
	assert.Equal(t, want, Default().Regions.Names())
}

func TestParse_OverridesAndDefaults(t *testing.T) {
	data := []byte(`
regions:
  - name: Capital
    areas: [London, Croydon]
skills: [Go, Rust]
`)
	tables, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Capital"}, tables.Regions.Names())
	assert.Equal(t, []string{"Go", "Rust"}, tables.Skills)
	assert.Equal(t, Default().TargetCities, tables.TargetCities)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{
			name: "region without areas",
			data: "regions:\n  - name: Empty\n",
			want: ErrEmptyRegion,
		},
		{
			name: "duplicate region",
			data: "regions:\n  - name: A\n    areas: [x]\n  - name: A\n    areas: [y]\n",
			want: ErrDuplicateRegion,
		},
		{
			name: "duplicate skill",
			data: "skills: [Go, Go]\n",
			want: ErrDuplicateSkill,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_BadYAML(t *testing.T) {
	_, err := Parse([]byte("regions: [:"))
	assert.Error(t, err)
}
