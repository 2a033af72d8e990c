package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssueCode(t *testing.T) {
	code, ok := IssueCode("Potholes and Road Damage")
	require.True(t, ok)
	require.Equal(t, IssuePothole, code)

	code, ok = IssueCode("Littering")
	require.True(t, ok)
	require.Equal(t, IssueGarbage, code)

	_, ok = IssueCode("Cats")
	require.False(t, ok)
}

func TestTaxonomyEntries_RoundTrip(t *testing.T) {
	entries := TaxonomyEntries()
	require.Len(t, entries, 9)

	seen := map[IssueType]bool{}
	for _, e := range entries {
		require.False(t, seen[e.IssueType], "duplicate code %s", e.IssueType)
		seen[e.IssueType] = true

		name, ok := ClassNameFor(e.IssueType)
		require.True(t, ok)
		require.Equal(t, e.ClassName, name)
		require.True(t, e.IssueType.Valid())
	}
}

func TestTaxonomyEntries_ReturnsCopy(t *testing.T) {
	entries := TaxonomyEntries()
	entries[0].ClassName = "changed"

	code, ok := IssueCode("Potholes and Road Damage")
	require.True(t, ok)
	require.Equal(t, IssuePothole, code)
	require.Equal(t, "Potholes and Road Damage", TaxonomyEntries()[0].ClassName)
}

func TestIssueType_Label(t *testing.T) {
	require.Equal(t, "fallen tree", IssueFallenTree.Label())
	require.Equal(t, "municipal issue", IssueType("UFO").Label())
	require.False(t, IssueType("UFO").Valid())
}
