package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	svc := Default()

	text := svc.Format()
	assert.Contains(t, text, "## Graduation Requirements")
	assert.Contains(t, text, "120 credit hours")
	assert.NotEmpty(t, svc.Sections())
}

func TestLoad(t *testing.T) {
	input := `{"name":"Alpha","facts":["one","two"]}

{"name":"Beta","facts":["three"]}
`
	svc, err := Load(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "## Alpha\n- one\n- two\n\n## Beta\n- three\n", svc.Format())
	assert.Len(t, svc.Sections(), 2)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(strings.NewReader("{not json}\n"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader(`{"facts":["orphan"]}`))
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	svc := Default()

	found := svc.Search([]string{"internship", "missing"})
	require.Len(t, found, 1)
	assert.Equal(t, "Internship", found[0].Name)
}

func TestSections_ReturnsCopies(t *testing.T) {
	svc := Default()

	sections := svc.Sections()
	sections[0].Facts[0] = "changed"

	assert.NotEqual(t, "changed", svc.Sections()[0].Facts[0])
}
