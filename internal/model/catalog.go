package model

import "strings"

// ValueKind determines which coercion is applied to a field's raw cell text.
type ValueKind string

const (
	KindText       ValueKind = "text"
	KindDate       ValueKind = "date"
	KindCurrency   ValueKind = "currency"
	KindPhone      ValueKind = "phone"
	KindStatus     ValueKind = "status"
	KindTags       ValueKind = "tags"
	KindBool       ValueKind = "boolean"
	KindIdentifier ValueKind = "identifier" // CPF/RG/CNPJ-like: digits only
)

// Field is one named, typed slot in the canonical lead schema. Aliases are
// normalized keywords matched against incoming spreadsheet headers.
type Field struct {
	Key     string
	Kind    ValueKind
	Aliases []string
}

// Catalog is the ordered canonical field catalog. Declaration order is the
// resolution order: both the exact-alias and fuzzy passes of the header
// resolver iterate Fields front to back and take the first eligible match,
// so precedence between candidate fields is deterministic.
type Catalog struct {
	Fields []Field
	byKey  map[string]*Field
}

// NewCatalog builds an indexed catalog from an ordered field list.
func NewCatalog(fields []Field) *Catalog {
	c := &Catalog{
		Fields: fields,
		byKey:  make(map[string]*Field, len(fields)),
	}
	for i := range c.Fields {
		c.byKey[c.Fields[i].Key] = &c.Fields[i]
	}
	return c
}

// ByKey returns the field for the given key, or nil.
func (c *Catalog) ByKey(key string) *Field {
	return c.byKey[key]
}

// AddCustom appends a runtime-created custom field. Custom fields are always
// plain text and match their own key as the only alias. Re-adding an existing
// key is a no-op.
func (c *Catalog) AddCustom(key string) {
	key = strings.TrimSpace(key)
	if key == "" || c.byKey[key] != nil {
		return
	}
	c.Fields = append(c.Fields, Field{
		Key:     key,
		Kind:    KindText,
		Aliases: []string{strings.ToLower(key)},
	})
	c.byKey[key] = &c.Fields[len(c.Fields)-1]
}

// Repeatable reports whether a field key may be assigned to more than one
// header in the same import session. Sequential follow-up and negotiation
// slots are exempt from the claimed-field check; everything else is claimed
// on first assignment.
func Repeatable(key string) bool {
	return strings.HasPrefix(key, "follow_up_") ||
		strings.HasPrefix(key, "negotiation_") ||
		strings.HasPrefix(key, "attempt_result_")
}

// MappingIgnore is the sentinel target for headers the operator chose to
// discard. It is a valid persisted-mapping value and never a field key.
const MappingIgnore = "ignore"

// interactionKeys are the canonical keys whose presence (non-empty cell)
// counts as evidence of prior contact with the lead.
var interactionKeys = map[string]struct{}{
	"contact_attempts": {},
	"attempt_result_1": {},
	"attempt_result_2": {},
	"follow_up_1":      {},
	"follow_up_2":      {},
	"connection_date":  {},
	"cadence_noshow":   {},
	"negotiation_1":    {},
}

// InteractionKey reports whether a canonical key implies historical
// interaction with the lead when populated.
func InteractionKey(key string) bool {
	_, ok := interactionKeys[key]
	return ok
}

// DefaultCatalog returns the built-in canonical field catalog. Alias
// keywords are stored pre-normalized (lowercase, no diacritics); the
// resolver normalizes headers the same way before comparing.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Field{
		{Key: "external_id", Kind: KindText, Aliases: []string{"id", "lead id", "externalid", "id do contato", "contact id"}},
		{Key: "name", Kind: KindText, Aliases: []string{"nome do contato", "contato", "nome", "full name", "cliente", "pessoa", "contact name", "contato principal", "titulo", "title", "lead", "nome do negocio", "name"}},
		{Key: "phone", Kind: KindPhone, Aliases: []string{"celular", "whatsapp", "telefone", "phone", "contact number", "mobile", "cel", "tel", "fone", "fones", "telefone comercial", "work phone", "telefone de trabalho", "tel."}},
		{Key: "email", Kind: KindText, Aliases: []string{"email", "e-mail", "correio eletronico", "mail"}},
		{Key: "course_interest", Kind: KindText, Aliases: []string{"curso de interesse", "produto", "interesse", "curso"}},
		{Key: "quantity", Kind: KindText, Aliases: []string{"quantidade", "quantity"}},
		{Key: "profession", Kind: KindText, Aliases: []string{"profissao", "profession", "ocupacao"}},
		{Key: "neighborhood", Kind: KindText, Aliases: []string{"bairro", "neighborhood", "distrito"}},
		{Key: "city", Kind: KindText, Aliases: []string{"cidade", "city", "municipio", "localidade"}},
		{Key: "address", Kind: KindText, Aliases: []string{"endereco", "address", "rua", "logradouro", "avenida"}},
		{Key: "state", Kind: KindText, Aliases: []string{"estado", "uf", "state", "provincia"}},
		{Key: "postal_code", Kind: KindIdentifier, Aliases: []string{"cep", "zip", "zipcode", "codigo postal"}},
		{Key: "cpf", Kind: KindIdentifier, Aliases: []string{"cpf", "cpf do aluno", "documento"}},
		{Key: "rg", Kind: KindIdentifier, Aliases: []string{"rg", "rg do aluno", "identidade"}},
		{Key: "cnpj", Kind: KindIdentifier, Aliases: []string{"cnpj"}},
		{Key: "birth_date", Kind: KindDate, Aliases: []string{"data de nascimento", "nascimento", "aniversario", "birthdate"}},
		{Key: "created_at", Kind: KindDate, Aliases: []string{"data criada", "criado em", "data de criacao", "created at", "created", "data de cadastro"}},
		{Key: "status", Kind: KindStatus, Aliases: []string{"etapa do lead", "status", "fase", "stage", "etapa", "pipeline stage", "status do lead"}},
		{Key: "observation", Kind: KindText, Aliases: []string{"observacao", "notas", "comentarios", "descricao", "observations", "notes", "notas do negocio", "resumo"}},
		{Key: "tags", Kind: KindTags, Aliases: []string{"lead tags", "tags", "etiquetas", "marcadores"}},
		{Key: "temperature", Kind: KindText, Aliases: []string{"temperatura", "temperature", "qualidade"}},
		{Key: "loss_reason", Kind: KindText, Aliases: []string{"motivo de insucesso", "motivo", "perda motivo", "loss reason", "motivo da perda"}},
		{Key: "sales_value", Kind: KindCurrency, Aliases: []string{"valor do curso", "venda", "price", "valor", "budget", "orcamento", "lead value"}},
		{Key: "enrollment_value", Kind: KindCurrency, Aliases: []string{"valor da matricula", "matricula", "taxa de matricula"}},
		{Key: "material_value", Kind: KindCurrency, Aliases: []string{"valor do material", "valor material didatico", "preco do material"}},
		{Key: "payment_method", Kind: KindText, Aliases: []string{"forma de pagamento", "metodo de pagamento"}},
		{Key: "installments", Kind: KindText, Aliases: []string{"parcelas", "numero de parcelas", "quantidade de parcelas", "qtd. de parcela (cartao de credito)"}},
		{Key: "card_brand", Kind: KindText, Aliases: []string{"bandeira do cartao", "bandeira", "bandeira (cartao de credito)"}},
		{Key: "source", Kind: KindText, Aliases: []string{"origem", "source", "fonte"}},
		{Key: "media", Kind: KindText, Aliases: []string{"midia", "medium", "campanha"}},
		{Key: "utm_source", Kind: KindText, Aliases: []string{"utm_source", "utm source"}},
		{Key: "utm_medium", Kind: KindText, Aliases: []string{"utm_medium", "utm medium"}},
		{Key: "utm_campaign", Kind: KindText, Aliases: []string{"utm_campaign", "utm campaign"}},
		{Key: "utm_term", Kind: KindText, Aliases: []string{"utm_term", "utm term"}},
		{Key: "utm_content", Kind: KindText, Aliases: []string{"utm_content", "utm content"}},
		{Key: "utm_referrer", Kind: KindText, Aliases: []string{"utm_referrer", "utm referrer"}},
		{Key: "referrer", Kind: KindText, Aliases: []string{"referrer"}},
		{Key: "responsible", Kind: KindText, Aliases: []string{"responsavel", "lead usuario responsavel", "usuario responsavel"}},
		{Key: "unit", Kind: KindText, Aliases: []string{"unidade"}},
		{Key: "funnel", Kind: KindText, Aliases: []string{"funil", "funil de vendas", "pipeline", "processo de vendas", "fluxo", "origem do lead", "processo"}},
		{Key: "company", Kind: KindText, Aliases: []string{"empresa", "company", "empresa do contato"}},
		{Key: "position", Kind: KindText, Aliases: []string{"cargo", "position", "posicao"}},
		{Key: "secondary_phone", Kind: KindPhone, Aliases: []string{"telefone secundario", "telefone 2", "celular (contato)", "telefone comercial (contato)", "telefone residencial (contato)", "outro telefone (contato)"}},
		{Key: "secondary_email", Kind: KindText, Aliases: []string{"email comercial", "email secundario", "email pessoal (contato)", "outro email (contato)"}},
		{Key: "updated_at", Kind: KindDate, Aliases: []string{"ultima modificacao"}},
		{Key: "next_action_at", Kind: KindDate, Aliases: []string{"proxima tarefa"}},
		{Key: "last_schedule_date", Kind: KindDate, Aliases: []string{"data ultimo agendamento"}},
		{Key: "consultancy_date", Kind: KindDate, Aliases: []string{"data da consultoria", "data da reuniao"}},
		{Key: "enrollment_date", Kind: KindDate, Aliases: []string{"data da matricula"}},
		{Key: "due_date", Kind: KindDate, Aliases: []string{"data de vencimento"}},
		{Key: "closed_at", Kind: KindDate, Aliases: []string{"fechada em"}},
		{Key: "created_by", Kind: KindText, Aliases: []string{"criado por"}},
		{Key: "modified_by", Kind: KindText, Aliases: []string{"modificado por"}},
		{Key: "organization_id", Kind: KindText, Aliases: []string{"id da organizacao"}},
		{Key: "bank_code", Kind: KindText, Aliases: []string{"codigo do banco", "codigo bancario"}},
		{Key: "about", Kind: KindText, Aliases: []string{"sobre o lead"}},
		{Key: "marketing", Kind: KindText, Aliases: []string{"marketing"}},
		{Key: "marketing_2", Kind: KindText, Aliases: []string{"marketing 2", "marketing 2 (legado)", "marketing_2"}},
		{Key: "contact_attempts", Kind: KindText, Aliases: []string{"tentativas de contato"}},
		{Key: "attempt_result_1", Kind: KindText, Aliases: []string{"resultado 1a tentativa", "resultado 1o tentativa"}},
		{Key: "attempt_result_2", Kind: KindText, Aliases: []string{"resultado 2a tentativa", "resultado 2o tentativa"}},
		{Key: "attempt_result_3", Kind: KindText, Aliases: []string{"resultado 3a tentativa", "resultado 3o tentativa"}},
		{Key: "attempt_result_4", Kind: KindText, Aliases: []string{"resultado 4a tentativa", "resultado 4o tentativa"}},
		{Key: "attempt_result_5", Kind: KindText, Aliases: []string{"resultado 5a tentativa", "resultado 5o tentativa"}},
		{Key: "connection_done", Kind: KindBool, Aliases: []string{"conexao realizada"}},
		{Key: "connection_date", Kind: KindDate, Aliases: []string{"data e hora da conexao", "data da conexao"}},
		{Key: "connection_channel", Kind: KindText, Aliases: []string{"canal da conexao"}},
		{Key: "cadence_noshow", Kind: KindText, Aliases: []string{"cadencia bolo"}},
		{Key: "cadence_negotiation", Kind: KindText, Aliases: []string{"cadencia negociacao"}},
		{Key: "follow_up_1", Kind: KindText, Aliases: []string{"follow up 1"}},
		{Key: "follow_up_2", Kind: KindText, Aliases: []string{"follow up 2"}},
		{Key: "follow_up_3", Kind: KindText, Aliases: []string{"follow up 3"}},
		{Key: "follow_up_4", Kind: KindText, Aliases: []string{"follow up 4"}},
		{Key: "follow_up_5", Kind: KindText, Aliases: []string{"follow up 5"}},
		{Key: "follow_up_6", Kind: KindText, Aliases: []string{"follow up 6"}},
		{Key: "follow_up_7", Kind: KindText, Aliases: []string{"follow up 7"}},
		{Key: "negotiation_1", Kind: KindText, Aliases: []string{"negociacao 1"}},
		{Key: "negotiation_2", Kind: KindText, Aliases: []string{"negociacao 2"}},
		{Key: "negotiation_3", Kind: KindText, Aliases: []string{"negociacao 3"}},
		{Key: "negotiation_4", Kind: KindText, Aliases: []string{"negociacao 4"}},
		{Key: "negotiation_5", Kind: KindText, Aliases: []string{"negociacao 5"}},
		{Key: "negotiation_log", Kind: KindText, Aliases: []string{"registros de negociacao"}},
		{Key: "negotiation_date", Kind: KindDate, Aliases: []string{"data e hora da negociacao"}},
	})
}
