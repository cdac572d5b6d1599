package domain

// The 13 fixed quality criteria a review may score, each 1-5. Keys are a
// closed set; submissions referencing anything else are rejected.
const (
	CriterionTempoAtuacao           = "tempo_atuacao"
	CriterionConfiabilidadeJuridica = "confiabilidade_juridica"
	CriterionQualidadePainel        = "qualidade_painel"
	CriterionQualidadeInversor      = "qualidade_inversor"
	CriterionQualidadeInstalacao    = "qualidade_instalacao"
	CriterionPosVenda               = "pos_venda"
	CriterionAtendimento            = "atendimento"
	CriterionPreco                  = "preco"
	CriterionPrazoEntrega           = "prazo_entrega"
	CriterionTransparencia          = "transparencia"
	CriterionGarantia               = "garantia"
	CriterionEngenharia             = "engenharia"
	CriterionMonitoramento          = "monitoramento"
)

// Criterion score bounds.
const (
	MinCriterionScore = 1
	MaxCriterionScore = 5
)

// CriterionKeys returns the closed set of criterion keys in display order.
func CriterionKeys() []string {
	return []string{
		CriterionTempoAtuacao,
		CriterionConfiabilidadeJuridica,
		CriterionQualidadePainel,
		CriterionQualidadeInversor,
		CriterionQualidadeInstalacao,
		CriterionPosVenda,
		CriterionAtendimento,
		CriterionPreco,
		CriterionPrazoEntrega,
		CriterionTransparencia,
		CriterionGarantia,
		CriterionEngenharia,
		CriterionMonitoramento,
	}
}

var criterionSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(CriterionKeys()))
	for _, k := range CriterionKeys() {
		set[k] = struct{}{}
	}
	return set
}()

// IsValidCriterion checks whether the key belongs to the fixed criteria set.
func IsValidCriterion(key string) bool {
	_, ok := criterionSet[key]
	return ok
}

// CriteriaScores maps criterion keys to integer scores 1-5. A review may
// score any subset of the criteria; omitted keys contribute nothing to
// aggregates. The map representation makes duplicate keys unrepresentable.
type CriteriaScores map[string]int

// Invalid returns the keys or values that violate the criteria contract:
// unknown keys and scores outside [1,5]. An empty result means valid.
func (c CriteriaScores) Invalid() map[string]string {
	problems := make(map[string]string)
	for key, score := range c {
		if !IsValidCriterion(key) {
			problems[key] = "unknown criterion"
			continue
		}
		if score < MinCriterionScore || score > MaxCriterionScore {
			problems[key] = "score must be between 1 and 5"
		}
	}
	return problems
}

// Mean returns the arithmetic mean of the provided scores. ok is false when
// no criteria were scored.
func (c CriteriaScores) Mean() (float64, bool) {
	if len(c) == 0 {
		return 0, false
	}
	sum := 0
	for _, score := range c {
		sum += score
	}
	return float64(sum) / float64(len(c)), true
}
