package model

// PersonKind distinguishes individuals from companies. The values are the
// literal answers the client sends for the party-type question.
type PersonKind string

const (
	PessoaFisica   PersonKind = "Pessoa Física"
	PessoaJuridica PersonKind = "Pessoa Jurídica"
)

// DocumentKind is the identity document presented by an individual.
type DocumentKind string

const (
	DocIdentidade DocumentKind = "Carteira de Identidade"
	DocCNH        DocumentKind = "CNH"
	DocCTPS       DocumentKind = "Carteira de Trabalho"
)

// PartyRole marks which side of the deed a pending party belongs to.
type PartyRole string

const (
	RoleComprador PartyRole = "comprador"
	RoleVendedor  PartyRole = "vendedor"
)

// Spouse holds the co-signing spouse's document data, nested under the
// married party.
type Spouse struct {
	FullName     string       `json:"nome_completo"`
	BirthDate    string       `json:"data_nascimento,omitempty"`
	DocumentKind DocumentKind `json:"documento_tipo,omitempty"`
	Sex          string       `json:"sexo,omitempty"`
	CPF          string       `json:"cpf,omitempty"`
	CNHNumber    string       `json:"cnh_numero,omitempty"`
	CNHIssuer    string       `json:"cnh_orgao_expedidor,omitempty"`
	CTPSNumber   string       `json:"ctps_numero,omitempty"`
	CTPSSeries   string       `json:"ctps_serie,omitempty"`
	Profession   string       `json:"profissao,omitempty"`
}

// Party is a buyer or seller on the deed. A Party is built up step by step
// while pending and becomes immutable once moved into the session's
// compradores/vendedores lists; later adjustments (rural defaults) must go
// through WithRuralDefaults, which copies.
type Party struct {
	Kind PersonKind `json:"tipo"`

	// Pessoa Física
	FullName       string       `json:"nome_completo,omitempty"`
	BirthDate      string       `json:"data_nascimento,omitempty"`
	DocumentKind   DocumentKind `json:"documento_tipo,omitempty"`
	Sex            string       `json:"sexo,omitempty"`
	CPF            string       `json:"cpf,omitempty"`
	CNHNumber      string       `json:"cnh_numero,omitempty"`
	CNHIssuer      string       `json:"cnh_orgao_expedidor,omitempty"`
	CTPSNumber     string       `json:"ctps_numero,omitempty"`
	CTPSSeries     string       `json:"ctps_serie,omitempty"`
	Married        bool         `json:"casado"`
	PropertyRegime string       `json:"regime_bens,omitempty"`
	MarriageDate   string       `json:"data_casamento,omitempty"`
	SpouseSigns    bool         `json:"conjuge_assina,omitempty"`
	Spouse         *Spouse      `json:"conjuge_data,omitempty"`

	// Pessoa Jurídica
	LegalName string `json:"razao_social,omitempty"`
	CNPJ      string `json:"cnpj,omitempty"`
	Address   string `json:"endereco,omitempty"`

	// Rural-only optional fields, defaulted by WithRuralDefaults when absent.
	Profession string `json:"profissao,omitempty"`
	Birthplace string `json:"naturalidade,omitempty"`
	FatherName string `json:"pai_nome,omitempty"`
	MotherName string `json:"mae_nome,omitempty"`
}

// PendingParty is the at-most-one in-flight party under construction. It is
// moved into the session's buyer/seller list exactly once, when the party's
// sub-flow ends.
type PendingParty struct {
	Role  PartyRole `json:"role"`
	Party *Party    `json:"party"`

	// Scratch selections made before the corresponding upload step.
	SpouseDocumentKind DocumentKind `json:"conjuge_doc_tipo,omitempty"`
}

// Rural deeds describe parties with fields the urban flow never collects.
// Defaults follow the cartório's published template conventions.
const (
	defaultProfessionMale   = "produtor rural"
	defaultProfessionFemale = "lavradora"
	defaultBirthplace       = "Cariacica"
	defaultFatherName       = "PAI_NOME_COMPLETO"
	defaultMaeName          = "MAE_NOME_COMPLETO"
)

func isFeminine(sex string) bool {
	switch sex {
	case "Feminino", "feminino", "F", "f", "female":
		return true
	}
	return false
}

// WithRuralDefaults returns a copy of p with the rural-only optional fields
// defaulted: profession by declared sex, placeholder birthplace and
// parentage. The receiver is never mutated, so the collected record stays
// auditable.
func WithRuralDefaults(p *Party) *Party {
	out := *p
	if out.Spouse != nil {
		spouse := *out.Spouse
		if spouse.Profession == "" {
			if isFeminine(spouse.Sex) {
				spouse.Profession = defaultProfessionFemale
			} else {
				spouse.Profession = defaultProfessionMale
			}
		}
		out.Spouse = &spouse
	}
	if out.Kind != PessoaFisica {
		return &out
	}
	if out.Profession == "" {
		if isFeminine(out.Sex) {
			out.Profession = defaultProfessionFemale
		} else {
			out.Profession = defaultProfessionMale
		}
	}
	if out.Birthplace == "" {
		out.Birthplace = defaultBirthplace
	}
	if out.FatherName == "" {
		out.FatherName = defaultFatherName
	}
	if out.MotherName == "" {
		out.MotherName = defaultMaeName
	}
	return &out
}
