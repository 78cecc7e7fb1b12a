package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/LACSistemas/EscriturasNew-sub000/model"
)

// DeedService renders the final deed text from a completed session. The
// output follows the fixed notarial layout used by the cartório; data that
// was never collected is left as an uppercase placeholder for the clerk.
type DeedService struct {
	cartorio string
	now      func() time.Time
}

func NewDeedService(cartorio string) *DeedService {
	return &DeedService{
		cartorio: cartorio,
		now:      time.Now,
	}
}

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// dateInWords renders a date the way deeds spell it out, with the day and
// year as numerals and the month by name.
func dateInWords(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthNames[t.Month()-1], t.Year())
}

// Generate builds the deed text for a finished session.
func (s *DeedService) Generate(session *model.Session) string {
	var b strings.Builder

	b.WriteString("ESCRITURA PÚBLICA DE COMPRA E VENDA\n\n")
	b.WriteString(fmt.Sprintf("SAIBAM todos quantos esta virem que aos %s, neste %s, compareceram as partes entre si justas e contratadas:\n\n",
		dateInWords(s.now()), s.cartorioName()))

	b.WriteString("OUTORGANTES VENDEDORES:\n")
	s.writeParties(&b, session.Sellers, session.IsRural)

	b.WriteString("\nOUTORGADOS COMPRADORES:\n")
	s.writeParties(&b, session.Buyers, session.IsRural)

	b.WriteString("\nDO IMÓVEL:\n")
	b.WriteString(s.propertyClause(session))

	b.WriteString("\nDO PREÇO E FORMA DE PAGAMENTO:\n")
	b.WriteString(s.paymentClause(session))

	b.WriteString("\nDAS CERTIDÕES APRESENTADAS:\n")
	s.writeCertificates(&b, session)

	b.WriteString("\nE, de como assim disseram, dou fé.\n")
	return b.String()
}

func (s *DeedService) cartorioName() string {
	if s.cartorio != "" {
		return s.cartorio
	}
	return "Cartório de Notas"
}

func (s *DeedService) writeParties(b *strings.Builder, parties []*model.Party, rural bool) {
	if len(parties) == 0 {
		b.WriteString("PARTE_NAO_INFORMADA\n")
		return
	}
	for _, p := range parties {
		if rural {
			p = model.WithRuralDefaults(p)
		}
		b.WriteString(partyClause(p))
		b.WriteString("\n")
	}
}

func partyClause(p *model.Party) string {
	if p.Kind == model.PessoaJuridica {
		return fmt.Sprintf("%s, pessoa jurídica de direito privado, inscrita no CNPJ sob o nº %s, com sede em %s;",
			orPlaceholder(p.LegalName, "RAZAO_SOCIAL"),
			orPlaceholder(p.CNPJ, "CNPJ"),
			orPlaceholder(p.Address, "ENDERECO_EMPRESA"))
	}

	clause := fmt.Sprintf("%s, %s, %s, portador(a) do CPF nº %s",
		orPlaceholder(p.FullName, "NOME_COMPLETO"),
		nationalityFor(p),
		maritalStatus(p),
		orPlaceholder(p.CPF, "CPF"))
	if p.Profession != "" {
		clause += ", " + p.Profession
	}
	if p.Birthplace != "" {
		clause += ", natural de " + p.Birthplace
	}
	if p.FatherName != "" || p.MotherName != "" {
		clause += fmt.Sprintf(", filho(a) de %s e %s",
			orPlaceholder(p.FatherName, "PAI_NOME_COMPLETO"),
			orPlaceholder(p.MotherName, "MAE_NOME_COMPLETO"))
	}
	if p.Married && p.Spouse != nil {
		clause += fmt.Sprintf(", casado(a) sob o regime de %s com %s, CPF nº %s",
			orPlaceholder(p.PropertyRegime, "REGIME_DE_BENS"),
			orPlaceholder(p.Spouse.FullName, "NOME_CONJUGE"),
			orPlaceholder(p.Spouse.CPF, "CPF_CONJUGE"))
		if p.SpouseSigns {
			clause += ", que também assina"
		}
	} else if p.Married {
		clause += fmt.Sprintf(", casado(a) sob o regime de %s",
			orPlaceholder(p.PropertyRegime, "REGIME_DE_BENS"))
	}
	return clause + ";"
}

func nationalityFor(p *model.Party) string {
	if isFeminineSex(p.Sex) {
		return "brasileira"
	}
	return "brasileiro"
}

func maritalStatus(p *model.Party) string {
	if p.Married {
		return "casado(a)"
	}
	return "solteiro(a)"
}

func isFeminineSex(sex string) bool {
	switch strings.ToLower(strings.TrimSpace(sex)) {
	case "f", "feminino", "female":
		return true
	}
	return false
}

func (s *DeedService) propertyClause(session *model.Session) string {
	kind := string(session.DeedKind)
	if kind == "" {
		kind = "IMOVEL_TIPO"
	}
	clause := fmt.Sprintf("Imóvel do tipo %s, ", kind)
	if onus := session.Certificate(model.CertOnus, model.PropertyLevel); onus != nil {
		if matricula := onus.Fields["Número da Matrícula do Registro"]; matricula != "" {
			clause += fmt.Sprintf("matrícula nº %s, ", matricula)
		}
		if cartorio := onus.Fields["Cartório de Expedição (nome completo)"]; cartorio != "" {
			clause += fmt.Sprintf("registrado no %s, ", cartorio)
		}
	}
	clause += "livre e desembaraçado de quaisquer ônus, conforme certidões apresentadas.\n"
	return clause
}

func (s *DeedService) paymentClause(session *model.Session) string {
	return fmt.Sprintf("Pelo preço certo e ajustado de %s, pago %s, por meio de %s, "+
		"pelo que o(s) outorgante(s) dá(ão) ao(s) outorgado(s) plena, geral e irrevogável quitação.\n",
		orPlaceholder(session.SalePrice, "VALOR_IMOVEL"),
		strings.ToLower(orPlaceholder(session.PaymentForm, "FORMA_PAGAMENTO")),
		orPlaceholder(session.PaymentMethod, "MEIO_PAGAMENTO"))
}

func (s *DeedService) writeCertificates(b *strings.Builder, session *model.Session) {
	if len(session.Certificates) == 0 {
		b.WriteString("Nenhuma certidão registrada.\n")
		return
	}
	for key, cert := range session.Certificates {
		label := cert.Type.DisplayName()
		if key.SellerIndex != model.PropertyLevel && key.SellerIndex < len(session.Sellers) {
			seller := session.Sellers[key.SellerIndex]
			name := seller.FullName
			if name == "" {
				name = seller.LegalName
			}
			if name != "" {
				label += " de " + name
			}
		}
		if cert.Waived {
			b.WriteString(fmt.Sprintf("- %s: dispensada pelo(s) outorgado(s).\n", label))
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: apresentada.\n", label))
	}
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
