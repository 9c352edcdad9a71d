package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionAlias(t *testing.T) {
	assert.Equal(t, "EE", SectionAlias(SectionEvidenceOfEffectiveness))
	assert.Equal(t, "ID", SectionAlias(SectionInnovationDescription))
	assert.Equal(t, "ZZ", SectionAlias(SectionKey("NOT_A_SECTION")))
}

func TestSectionCatalogueCoversEveryAlias(t *testing.T) {
	catalogue := SectionCatalogue()
	assert.Len(t, catalogue, len(sectionAliases))

	seen := map[string]SectionKey{}
	for _, key := range catalogue {
		assert.True(t, ValidSectionKey(key))
		alias := SectionAlias(key)
		if prev, dup := seen[alias]; dup {
			t.Fatalf("alias %s shared by %s and %s", alias, prev, key)
		}
		seen[alias] = key
	}
}
