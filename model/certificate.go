package model

import (
	"fmt"
	"time"
)

// CertificateType enumerates every clearance document the flow can collect.
// The string values double as the wire segment in certificate step names
// ("certidao_<type>_option" / "certidao_<type>_upload").
type CertificateType string

const (
	// Property-level, collected once per deed.
	CertOnus CertificateType = "onus"

	// Shared per-seller certificates (urban and rural), in collection order.
	CertNegativaFederal     CertificateType = "negativa_federal"
	CertDebitosTributarios  CertificateType = "debitos_tributarios"
	CertNegativaEstadual    CertificateType = "negativa_estadual"
	CertDebitosTrabalhistas CertificateType = "debitos_trabalhistas"
	CertIndisponibilidade   CertificateType = "indisponibilidade"

	// Rural-only per-seller certificates.
	CertExecucoesFiscais  CertificateType = "execucoes_fiscais"
	CertDistribuicaoAcoes CertificateType = "distribuicao_acoes"
	CertIbama             CertificateType = "ibama"

	// Rural property-level certificates.
	CertITR  CertificateType = "itr"
	CertCCIR CertificateType = "ccir"

	// Desmembramento-only documents.
	CertART           CertificateType = "art"
	CertPlantaTerreno CertificateType = "planta_terreno"

	// Apartment condominium declaration.
	CertCondominio CertificateType = "condominio"
)

var certificateNames = map[CertificateType]string{
	CertOnus:                "Certidão de Ônus",
	CertNegativaFederal:     "Certidão Negativa Federal",
	CertDebitosTributarios:  "Certidão de Débitos Tributários",
	CertNegativaEstadual:    "Certidão Negativa Estadual",
	CertDebitosTrabalhistas: "Certidão de Débitos Trabalhistas",
	CertIndisponibilidade:   "Certidão de Indisponibilidade de Bens",
	CertExecucoesFiscais:    "Certidão de Execuções Fiscais",
	CertDistribuicaoAcoes:   "Certidão de Distribuição de Ações",
	CertIbama:               "Certidão do IBAMA",
	CertITR:                 "Certidão do ITR",
	CertCCIR:                "CCIR",
	CertART:                 "ART",
	CertPlantaTerreno:       "Planta do Terreno",
	CertCondominio:          "Certidão de Condomínio",
}

// DisplayName returns the certificate's user-facing name.
func (t CertificateType) DisplayName() string {
	if name, ok := certificateNames[t]; ok {
		return name
	}
	return "Certidão"
}

// PropertyLevel marks a certificate that belongs to the property as a whole
// rather than to a specific seller.
const PropertyLevel = -1

// CertificateKey identifies a certificate within a session: the type plus
// the owning seller's index, or PropertyLevel for shared certificates.
type CertificateKey struct {
	Type        CertificateType
	SellerIndex int
}

// String renders the key in the legacy payload form used by deed templates:
// "<type>_<index>" per seller, bare "<type>" for property-level.
func (k CertificateKey) String() string {
	if k.SellerIndex == PropertyLevel {
		return string(k.Type)
	}
	return fmt.Sprintf("%s_%d", k.Type, k.SellerIndex)
}

// Certificate is one collected clearance document or its waiver. Waived and
// Fields are mutually exclusive.
type Certificate struct {
	Type        CertificateType   `json:"tipo"`
	SellerIndex int               `json:"vendedor_index"`
	Waived      bool              `json:"dispensada"`
	Fields      map[string]string `json:"data,omitempty"`
	UploadedAt  time.Time         `json:"uploaded_at,omitempty"`
}
