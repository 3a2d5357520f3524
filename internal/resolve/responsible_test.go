package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mendesarts/vox2you-import/internal/model"
)

var testUsers = []model.User{
	{ID: 1, Name: "Paula Mendes", UnitID: 7},
	{ID: 2, Name: "Rafael Lima", UnitID: 7},
}

func TestResolveResponsible_ExactName(t *testing.T) {
	assert.Equal(t, int64(1), ResolveResponsible("Paula Mendes", nil, testUsers))
	assert.Equal(t, int64(1), ResolveResponsible("paula mendes", nil, testUsers))
}

func TestResolveResponsible_PartialName(t *testing.T) {
	assert.Equal(t, int64(1), ResolveResponsible("Paula", nil, testUsers))
	assert.Equal(t, int64(2), ResolveResponsible("Rafael Lima Junior", nil, testUsers))
}

func TestResolveResponsible_OverrideWins(t *testing.T) {
	overrides := map[string]int64{"Paula": 2}
	assert.Equal(t, int64(2), ResolveResponsible("Paula", overrides, testUsers))
}

func TestResolveResponsible_Unmatched(t *testing.T) {
	assert.Zero(t, ResolveResponsible("Fulano de Tal", nil, testUsers))
	assert.Zero(t, ResolveResponsible("", nil, testUsers))
}

func TestUniqueResponsibleNames(t *testing.T) {
	rows := []map[string]string{
		{"Responsável": "Paula"},
		{"Responsável": " Paula "},
		{"Responsável": "Rafael"},
		{"Responsável": ""},
	}
	mapping := map[string]string{"Responsável": "responsible"}

	names := UniqueResponsibleNames(rows, mapping)
	assert.Equal(t, []string{"Paula", "Rafael"}, names)
}

func TestUniqueResponsibleNames_NoResponsibleColumn(t *testing.T) {
	rows := []map[string]string{{"Nome": "Ana"}}
	assert.Nil(t, UniqueResponsibleNames(rows, map[string]string{"Nome": "name"}))
}

func TestUnmatchedResponsibleNames(t *testing.T) {
	rows := []map[string]string{
		{"Responsável": "Paula"},
		{"Responsável": "Fulano de Tal"},
	}
	mapping := map[string]string{"Responsável": "responsible"}

	unmatched := UnmatchedResponsibleNames(rows, mapping, nil, testUsers)
	assert.Equal(t, []string{"Fulano de Tal"}, unmatched)
}
