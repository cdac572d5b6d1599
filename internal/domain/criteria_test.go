package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriterionKeys(t *testing.T) {
	keys := CriterionKeys()
	require.Len(t, keys, 13)

	seen := make(map[string]struct{})
	for _, k := range keys {
		assert.True(t, IsValidCriterion(k))
		_, dup := seen[k]
		assert.False(t, dup, "duplicate key %q", k)
		seen[k] = struct{}{}
	}

	assert.False(t, IsValidCriterion("velocidade"))
	assert.False(t, IsValidCriterion(""))
}

func TestCriteriaScoresInvalid(t *testing.T) {
	valid := CriteriaScores{
		CriterionAtendimento: 5,
		CriterionPreco:       1,
	}
	assert.Empty(t, valid.Invalid())

	problems := CriteriaScores{
		CriterionAtendimento: 0,
		CriterionPreco:       6,
		"velocidade":         3,
	}.Invalid()

	require.Len(t, problems, 3)
	assert.Equal(t, "unknown criterion", problems["velocidade"])
	assert.Equal(t, "score must be between 1 and 5", problems[CriterionAtendimento])
	assert.Equal(t, "score must be between 1 and 5", problems[CriterionPreco])
}

func TestCriteriaScoresMean(t *testing.T) {
	mean, ok := CriteriaScores{
		CriterionQualidadePainel:   5,
		CriterionQualidadeInversor: 4,
	}.Mean()
	require.True(t, ok)
	assert.InDelta(t, 4.5, mean, 1e-9)

	_, ok = CriteriaScores{}.Mean()
	assert.False(t, ok)

	_, ok = CriteriaScores(nil).Mean()
	assert.False(t, ok)
}
