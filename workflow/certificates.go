package workflow

import (
	"github.com/LACSistemas/EscriturasNew-sub000/model"
)

// Per-seller collection orders. The urban list is repeated once per seller;
// the rural list extends it with three rural-only types.
var urbanCertOrder = []model.CertificateType{
	model.CertNegativaFederal,
	model.CertDebitosTributarios,
	model.CertNegativaEstadual,
	model.CertDebitosTrabalhistas,
	model.CertIndisponibilidade,
}

var ruralCertOrder = []model.CertificateType{
	model.CertNegativaFederal,
	model.CertDebitosTributarios,
	model.CertNegativaEstadual,
	model.CertDebitosTrabalhistas,
	model.CertIndisponibilidade,
	model.CertExecucoesFiscais,
	model.CertDistribuicaoAcoes,
	model.CertIbama,
}

// perSellerCertTypes is the union of both orders; these certificates key on
// the seller index, everything else is property-level.
var perSellerCertTypes = ruralCertOrder

// IsPerSeller reports whether a certificate type belongs to an individual
// seller rather than to the property.
func IsPerSeller(t model.CertificateType) bool {
	for _, c := range perSellerCertTypes {
		if c == t {
			return true
		}
	}
	return false
}

func certPosition(order []model.CertificateType, t model.CertificateType) int {
	for i, c := range order {
		if c == t {
			return i
		}
	}
	return -1
}

// NextCertificateStep advances the session's certificate cursor and returns
// the next certificate-related step. Each invocation resumes from the
// cursor; unrecognized cursor states fall through to the sale-price step so
// the flow can always make forward progress.
func NextCertificateStep(s *model.Session) StepID {
	if s.IsRural {
		return nextRuralCertificateStep(s)
	}
	return nextUrbanCertificateStep(s)
}

// nextUrbanCertificateStep walks the five urban types per seller, then the
// condominium phase for apartment deeds, then the sale-price step.
func nextUrbanCertificateStep(s *model.Session) StepID {
	cur := &s.Cursor

	if len(s.Sellers) == 0 {
		return StepValorImovel
	}

	pos := certPosition(urbanCertOrder, cur.CertType)
	switch {
	case pos < 0:
		// Entering the per-seller phase.
		cur.SellerIndex = 0
		cur.CertType = urbanCertOrder[0]
		return OptionStep(cur.CertType)
	case pos < len(urbanCertOrder)-1:
		cur.CertType = urbanCertOrder[pos+1]
		return OptionStep(cur.CertType)
	case cur.SellerIndex < len(s.Sellers)-1:
		cur.SellerIndex++
		cur.CertType = urbanCertOrder[0]
		return OptionStep(cur.CertType)
	}

	if s.DeedKind == model.DeedApto && !cur.CondoDone {
		cur.CondoDone = true
		return StepCondominioOption
	}
	return StepValorImovel
}

// nextRuralCertificateStep: the lien certificate exactly once, then eight
// types per seller, then the two property-level certificates, then the
// desmembramento extension when applicable.
func nextRuralCertificateStep(s *model.Session) StepID {
	cur := &s.Cursor

	if !cur.LienDone {
		cur.CertType = model.CertOnus
		return StepCertidaoOnusUpload
	}

	if len(s.Sellers) == 0 && !cur.PropertyPhase {
		// No sellers to iterate; go straight to the property phase.
		cur.PropertyPhase = true
		cur.CertType = model.CertITR
		return UploadStep(model.CertITR)
	}

	if cur.PropertyPhase {
		switch cur.CertType {
		case model.CertITR:
			cur.CertType = model.CertCCIR
			return UploadStep(model.CertCCIR)
		case model.CertCCIR, model.CertART, model.CertPlantaTerreno:
			if s.RuralVariant == model.RuralDesmembramento {
				if !cur.ARTDone {
					cur.ARTDone = true
					cur.CertType = model.CertART
					return UploadStep(model.CertART)
				}
				if !cur.PlotDone {
					cur.PlotDone = true
					cur.CertType = model.CertPlantaTerreno
					return UploadStep(model.CertPlantaTerreno)
				}
			}
			return StepValorImovel
		default:
			return StepValorImovel
		}
	}

	pos := certPosition(ruralCertOrder, cur.CertType)
	switch {
	case pos < 0:
		cur.SellerIndex = 0
		cur.CertType = ruralCertOrder[0]
		return OptionStep(cur.CertType)
	case pos < len(ruralCertOrder)-1:
		cur.CertType = ruralCertOrder[pos+1]
		return OptionStep(cur.CertType)
	case cur.SellerIndex < len(s.Sellers)-1:
		cur.SellerIndex++
		cur.CertType = ruralCertOrder[0]
		return OptionStep(cur.CertType)
	}

	cur.PropertyPhase = true
	cur.CertType = model.CertITR
	return UploadStep(model.CertITR)
}

// RequiredCertificates lists every certificate key the selected deed kind
// must have collected (with fields or waived) by the time the terminal step
// is reached.
func RequiredCertificates(s *model.Session) []model.CertificateKey {
	var keys []model.CertificateKey
	keys = append(keys, model.CertificateKey{Type: model.CertOnus, SellerIndex: model.PropertyLevel})

	order := urbanCertOrder
	if s.IsRural {
		order = ruralCertOrder
	}
	for i := range s.Sellers {
		for _, t := range order {
			keys = append(keys, model.CertificateKey{Type: t, SellerIndex: i})
		}
	}

	if s.IsRural {
		keys = append(keys,
			model.CertificateKey{Type: model.CertITR, SellerIndex: model.PropertyLevel},
			model.CertificateKey{Type: model.CertCCIR, SellerIndex: model.PropertyLevel},
		)
		if s.RuralVariant == model.RuralDesmembramento {
			keys = append(keys,
				model.CertificateKey{Type: model.CertART, SellerIndex: model.PropertyLevel},
				model.CertificateKey{Type: model.CertPlantaTerreno, SellerIndex: model.PropertyLevel},
			)
		}
	} else if s.DeedKind == model.DeedApto {
		keys = append(keys, model.CertificateKey{Type: model.CertCondominio, SellerIndex: model.PropertyLevel})
	}
	return keys
}

// MissingCertificates returns the required keys absent from the session.
func MissingCertificates(s *model.Session) []model.CertificateKey {
	var missing []model.CertificateKey
	for _, key := range RequiredCertificates(s) {
		if _, ok := s.Certificates[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
