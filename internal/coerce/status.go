package coerce

import (
	"strings"

	"github.com/mendesarts/vox2you-import/internal/model"
	"github.com/mendesarts/vox2you-import/internal/resolve"
)

// stageByPhrase is the canonical phrase table, keyed by normalized status
// text. Exact lookup here wins over the keyword chain below.
var stageByPhrase = map[string]model.Stage{
	"novo lead": model.StageNew, "novo": model.StageNew, "entrada": model.StageNew,
	"conectando": model.StageConnecting, "tentativa": model.StageConnecting,
	"conexao": model.StageConnected, "conectado": model.StageConnected,
	"contato realizado": model.StageConnected, "respondido": model.StageConnected,
	"agendamento": model.StageScheduled, "agendado": model.StageScheduled,
	"reuniao": model.StageScheduled, "visita": model.StageScheduled,
	"negociacao": model.StageNegotiation, "proposta": model.StageNegotiation,
	"em negociacao": model.StageNegotiation,
	"matriculados": model.StageWon, "matriculado": model.StageWon,
	"venda realizada": model.StageWon, "ganho": model.StageWon,
	"atendimento encerrado": model.StageClosed, "encerrado": model.StageClosed,
	"perdido": model.StageClosed, "arquivado": model.StageClosed,
	"no-show": model.StageNoShow, "bolo": model.StageNoShow, "resgate": model.StageNoShow,

	"novo comentario": model.StageSocialComment, "comentario": model.StageSocialComment,
	"novo direct": model.StageSocialDirect, "direct": model.StageSocialDirect,
	"mensagem": model.StageSocialDirect,
	"instagram": model.StageSocialComment, "facebook": model.StageSocialComment,
	"midia": model.StageSocialComment, "whatsapp": model.StageSocialComment,
	"prospects em qualificacao": model.StageSocialProspect, "prospect": model.StageSocialProspect,

	"alunos": model.StageInternalStudents, "aluno": model.StageInternalStudents,
	"outros nao leads": model.StageInternalOther, "outros": model.StageInternalOther,
	"time interno": model.StageInternalTeam, "time": model.StageInternalTeam,
}

// stageKeyword is one entry of the ordered keyword-contains fallback chain.
type stageKeyword struct {
	keyword string
	stage   model.Stage
}

var stageKeywords = []stageKeyword{
	{"novo", model.StageNew},
	// "conec" alone would also hit "conexao"; the connected variants come next.
	{"conexao", model.StageConnected},
	{"conectado", model.StageConnected},
	{"conec", model.StageConnecting},
	{"agenda", model.StageScheduled},
	{"negocia", model.StageNegotiation},
	{"matricula", model.StageWon},
	{"encerra", model.StageClosed},
	{"perdid", model.StageClosed},
	{"no-show", model.StageNoShow},
	{"bolo", model.StageNoShow},
	{"comentario", model.StageSocialComment},
	{"comment", model.StageSocialComment},
	{"direct", model.StageSocialDirect},
	{"mensagem", model.StageSocialDirect},
	{"prospect", model.StageSocialProspect},
	{"aluno", model.StageInternalStudents},
	{"outros", model.StageInternalOther},
	{"time", model.StageInternalTeam},
	{"equipe", model.StageInternalTeam},
}

// StageOf resolves raw status text to a pipeline stage: exact phrase table
// first, then the ordered keyword chain, then the safe default StageNew.
// Promotion of new leads with interaction history happens at assembly, not
// here, because it needs the whole row.
func StageOf(raw string) model.Stage {
	s := resolve.Normalize(raw)
	if s == "" {
		return model.StageNew
	}
	if stage, ok := stageByPhrase[s]; ok {
		return stage
	}
	for _, kw := range stageKeywords {
		if strings.Contains(s, kw.keyword) {
			return kw.stage
		}
	}
	return model.StageNew
}

// FunnelOf buckets raw funnel text into a funnel, or "" when the text
// carries no recognizable signal.
func FunnelOf(raw string) model.Funnel {
	f := resolve.Normalize(raw)
	switch {
	case containsAny(f, "redes", "social", "instagram", "facebook", "midias", "whats"):
		return model.FunnelSocial
	case containsAny(f, "nao lead", "not lead", "interno", "aluno", "time", "pedagogico"):
		return model.FunnelInternal
	case containsAny(f, "vendas", "sales", "comercial"):
		return model.FunnelCRM
	}
	return ""
}

// FunnelFromSource infers a social funnel from the lead's source text.
// Only social networks count; anything else gives no signal.
func FunnelFromSource(raw string) model.Funnel {
	s := resolve.Normalize(raw)
	if containsAny(s, "instagram", "facebook", "whats") {
		return model.FunnelSocial
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
