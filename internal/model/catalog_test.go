package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLookup(t *testing.T) {
	catalog := DefaultCatalog()

	f := catalog.ByKey("phone")
	require.NotNil(t, f)
	assert.Equal(t, KindPhone, f.Kind)

	assert.Nil(t, catalog.ByKey("nonexistent"))
}

func TestCatalogOrderStable(t *testing.T) {
	catalog := DefaultCatalog()

	require.NotEmpty(t, catalog.Fields)
	assert.Equal(t, "external_id", catalog.Fields[0].Key)
	assert.Equal(t, "name", catalog.Fields[1].Key)
	assert.Equal(t, "phone", catalog.Fields[2].Key)
}

func TestCatalogAddCustom(t *testing.T) {
	catalog := DefaultCatalog()
	before := len(catalog.Fields)

	catalog.AddCustom("coluna_alfa")
	f := catalog.ByKey("coluna_alfa")
	require.NotNil(t, f)
	assert.Equal(t, KindText, f.Kind)
	assert.Len(t, catalog.Fields, before+1)

	// Adding twice is a no-op.
	catalog.AddCustom("coluna_alfa")
	assert.Len(t, catalog.Fields, before+1)
}

func TestRepeatable(t *testing.T) {
	assert.True(t, Repeatable("follow_up_1"))
	assert.True(t, Repeatable("negotiation_3"))
	assert.True(t, Repeatable("attempt_result_2"))
	assert.False(t, Repeatable("phone"))
	assert.False(t, Repeatable("status"))
}

func TestInteractionKey(t *testing.T) {
	assert.True(t, InteractionKey("contact_attempts"))
	assert.True(t, InteractionKey("follow_up_1"))
	assert.True(t, InteractionKey("connection_date"))
	assert.False(t, InteractionKey("name"))
}

func TestStageFunnelGroups(t *testing.T) {
	assert.True(t, StageSocialDirect.IsSocial())
	assert.False(t, StageSocialDirect.IsInternal())
	assert.True(t, StageInternalTeam.IsInternal())
	assert.False(t, StageNew.IsSocial())
	assert.False(t, StageNew.IsInternal())
}
