package workflow

import (
	"github.com/LACSistemas/EscriturasNew-sub000/model"
)

// Field specifications handed to the structured-field extractor. The keys in
// each spec are the exact keys the extractor is expected to return; the
// apply functions below read them back. Downstream formatting treats missing
// keys as blanks, so the specs are not validated against the result.

const genderHint = "Gênero (Masculino ou Feminino, inferido pelo primeiro nome; se incerto, Masculino)"

var personFieldSpecs = map[model.DocumentKind]string{
	model.DocIdentidade: "Nome Completo, Data de Nascimento, Número do CPF, " + genderHint,
	model.DocCNH:        "Nome Completo, Data de Nascimento, Número da CNH, Órgão de Expedição da CNH, " + genderHint,
	model.DocCTPS:       "Nome Completo, Data de Nascimento, Série da Carteira, Número da Carteira, " + genderHint,
}

const companyFieldSpec = "Razão Social (Nome da Empresa), CNPJ (formato XX.XXX.XXX/XXXX-XX), Endereço da Empresa"

const marriageFieldSpec = "Regime de Bens do Casamento"

const onusUrbanFieldSpec = `Data de expedição (dd/mm/aaaa),
Cartório de Expedição (nome completo),
Nome completo de quem assinou,
Descrição breve do imóvel,
Número do Ofício (apenas o número),
Zona do Cartório (ex: 1ª Zona),
Cidade do Cartório,
Número da Matrícula do Registro,
Número do Livro`

const onusRuralFieldSpec = `Data de expedição (dd/mm/aaaa),
Cartório de Expedição (nome completo),
Nome completo de quem assinou,
Número do Ofício (apenas o número),
Cidade do Cartório,
Número da Matrícula do Registro,
Número do Livro,
Localização do imóvel rural,
Município do imóvel,
Área total em m²,
Nome do proprietário ao Norte,
Nome do proprietário ao Sul,
Nome do proprietário ao Leste,
Nome do proprietário ao Oeste,
Nome da propriedade`

var certFieldSpecs = map[model.CertificateType]string{
	model.CertNegativaFederal:     "Número da Certidão, Município, Data de emissão, Número do código de autenticidade",
	model.CertDebitosTributarios:  "Nome completo, CPF, Hora de emissão, Dia de emissão (dd/mm/aaaa), Data de validade (dd/mm/aaaa), Código de controle da certidão",
	model.CertNegativaEstadual:    "Número da Certidão, Município, Data de emissão, Número do código de autenticidade, Nome completo",
	model.CertDebitosTrabalhistas: "Número da Certidão, Nome Completo, CPF, Data de Emissão (dd/mm/aaaa), Horário de Emissão (hh:mm), Validade da Certidão (dd/mm/aaaa)",
	model.CertIndisponibilidade:   "Código HASH",
	model.CertExecucoesFiscais:    "Número da Certidão, Nome completo, Data de expedição (dd/mm/aaaa)",
	model.CertDistribuicaoAcoes:   "Número da Certidão, Nome completo, Data de expedição (dd/mm/aaaa)",
	model.CertIbama:               "Número da Certidão, Nome Completo, Data de expedição (dd/mm/aaaa)",
	model.CertITR:                 "Número do CIB, Código de controle, Data de expedição (dd/mm/aaaa), Data de Validade (dd/mm/aaaa)",
	model.CertCCIR:                "Número do Certificado",
	model.CertART:                 "Número do TRT, Nome do Técnico, Título Profissional do Técnico, Registro CFTA do Técnico",
	model.CertPlantaTerreno:       "Área do Terreno (número e por extenso), Perímetro do Terreno (número e por extenso), Nome do Proprietário do Terreno ao Norte (se nenhum, N/A), Nome do Proprietário do Terreno ao Sul (se nenhum, N/A), Nome do Proprietário do Terreno ao Leste (se nenhum, N/A), Nome do Proprietário do Terreno ao Oeste (se nenhum, N/A)",
	model.CertCondominio:          "Data do documento (dd/mm/aaaa), Nome Completo do Síndico",
}

func personFieldSpec(kind model.DocumentKind) string {
	if spec, ok := personFieldSpecs[kind]; ok {
		return spec
	}
	return personFieldSpecs[model.DocIdentidade]
}

func certFieldSpec(t model.CertificateType, rural bool) string {
	if t == model.CertOnus {
		if rural {
			return onusRuralFieldSpec
		}
		return onusUrbanFieldSpec
	}
	return certFieldSpecs[t]
}

// applyPersonFields copies an individual's extracted document fields onto
// the party.
func applyPersonFields(p *model.Party, kind model.DocumentKind, fields map[string]string) {
	p.Kind = model.PessoaFisica
	p.DocumentKind = kind
	p.FullName = fields["Nome Completo"]
	p.BirthDate = fields["Data de Nascimento"]
	p.Sex = fields["Gênero"]
	switch kind {
	case model.DocIdentidade:
		p.CPF = fields["Número do CPF"]
	case model.DocCNH:
		p.CNHNumber = fields["Número da CNH"]
		p.CNHIssuer = fields["Órgão de Expedição da CNH"]
	case model.DocCTPS:
		p.CTPSSeries = fields["Série da Carteira"]
		p.CTPSNumber = fields["Número da Carteira"]
	}
}

// applySpouseFields builds the nested spouse record from the extracted
// document fields.
func applySpouseFields(kind model.DocumentKind, fields map[string]string) *model.Spouse {
	sp := &model.Spouse{
		FullName:     fields["Nome Completo"],
		BirthDate:    fields["Data de Nascimento"],
		DocumentKind: kind,
		Sex:          fields["Gênero"],
	}
	switch kind {
	case model.DocIdentidade:
		sp.CPF = fields["Número do CPF"]
	case model.DocCNH:
		sp.CNHNumber = fields["Número da CNH"]
		sp.CNHIssuer = fields["Órgão de Expedição da CNH"]
	case model.DocCTPS:
		sp.CTPSSeries = fields["Série da Carteira"]
		sp.CTPSNumber = fields["Número da Carteira"]
	}
	return sp
}

// applyCompanyFields copies a company's extracted registration fields onto
// the party.
func applyCompanyFields(p *model.Party, fields map[string]string) {
	p.Kind = model.PessoaJuridica
	p.LegalName = fields["Razão Social (Nome da Empresa)"]
	p.CNPJ = fields["CNPJ (formato XX.XXX.XXX/XXXX-XX)"]
	p.Address = fields["Endereço da Empresa"]
}
