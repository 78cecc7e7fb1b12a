package workflow

import (
	"fmt"
	"testing"

	"github.com/LACSistemas/EscriturasNew-sub000/model"
)

func sessionWithSellers(kind model.DeedKind, sellers int) *model.Session {
	s := model.NewSession("test-session", string(StepTipoEscritura))
	s.SetDeedKind(kind)
	for i := 0; i < sellers; i++ {
		s.Sellers = append(s.Sellers, &model.Party{
			Kind:     model.PessoaFisica,
			FullName: fmt.Sprintf("Vendedor %d", i+1),
		})
	}
	return s
}

// walkCertificateTrack drives the sequencer to its exit, simulating each
// certificate as answered. The lien upload marks the cursor the way its
// respond handler does.
func walkCertificateTrack(t *testing.T, s *model.Session) []StepID {
	t.Helper()
	var steps []StepID
	for i := 0; i < 100; i++ {
		next := NextCertificateStep(s)
		steps = append(steps, next)
		if next == StepValorImovel || next == StepCondominioOption {
			return steps
		}
		if next == StepCertidaoOnusUpload {
			s.Cursor.LienDone = true
		}
	}
	t.Fatal("certificate track did not terminate")
	return nil
}

func TestUrbanCertificateOrderSingleSeller(t *testing.T) {
	s := sessionWithSellers(model.DeedLote, 1)

	got := walkCertificateTrack(t, s)
	want := []StepID{
		OptionStep(model.CertNegativaFederal),
		OptionStep(model.CertDebitosTributarios),
		OptionStep(model.CertNegativaEstadual),
		OptionStep(model.CertDebitosTrabalhistas),
		OptionStep(model.CertIndisponibilidade),
		StepValorImovel,
	}

	if len(got) != len(want) {
		t.Fatalf("Expected %d steps, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Step %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestUrbanCertificateTrackTwoSellers(t *testing.T) {
	s := sessionWithSellers(model.DeedLote, 2)

	got := walkCertificateTrack(t, s)

	// 5 option steps per seller, then the sale price step.
	if len(got) != 11 {
		t.Fatalf("Expected 11 steps for two sellers, got %d: %v", len(got), got)
	}
	if got[len(got)-1] != StepValorImovel {
		t.Errorf("Expected track to end at %s, got %s", StepValorImovel, got[len(got)-1])
	}

	// The second seller restarts the order from the beginning.
	if got[5] != OptionStep(model.CertNegativaFederal) {
		t.Errorf("Expected second seller to restart at federal, got %s", got[5])
	}
	if s.Cursor.SellerIndex != 1 {
		t.Errorf("Expected cursor on seller 1, got %d", s.Cursor.SellerIndex)
	}
}

func TestAptoTrackEndsWithCondominio(t *testing.T) {
	s := sessionWithSellers(model.DeedApto, 1)

	got := walkCertificateTrack(t, s)
	if got[len(got)-1] != StepCondominioOption {
		t.Fatalf("Expected apartment track to end at %s, got %s", StepCondominioOption, got[len(got)-1])
	}
	if !s.Cursor.CondoDone {
		t.Error("Expected condominium phase to be marked done")
	}

	// The condominium phase runs once; re-entering the sequencer moves on.
	if next := NextCertificateStep(s); next != StepValorImovel {
		t.Errorf("Expected %s after condominium phase, got %s", StepValorImovel, next)
	}
}

func TestUrbanTrackNoSellers(t *testing.T) {
	s := sessionWithSellers(model.DeedLote, 0)

	if next := NextCertificateStep(s); next != StepValorImovel {
		t.Errorf("Expected empty seller list to skip to %s, got %s", StepValorImovel, next)
	}
}

func TestRuralTrackSingleSeller(t *testing.T) {
	s := sessionWithSellers(model.DeedRural, 1)

	got := walkCertificateTrack(t, s)

	// Lien upload, eight option steps, two property uploads, sale price.
	if len(got) != 12 {
		t.Fatalf("Expected 12 steps, got %d: %v", len(got), got)
	}
	if got[0] != StepCertidaoOnusUpload {
		t.Errorf("Expected track to open with %s, got %s", StepCertidaoOnusUpload, got[0])
	}
	if got[1] != OptionStep(model.CertNegativaFederal) {
		t.Errorf("Expected first per-seller step after lien, got %s", got[1])
	}
	if got[8] != OptionStep(model.CertIbama) {
		t.Errorf("Expected ibama as last per-seller step, got %s", got[8])
	}
	if got[9] != UploadStep(model.CertITR) || got[10] != UploadStep(model.CertCCIR) {
		t.Errorf("Expected itr then ccir uploads, got %s, %s", got[9], got[10])
	}
	if got[11] != StepValorImovel {
		t.Errorf("Expected track to end at %s, got %s", StepValorImovel, got[11])
	}
}

func TestRuralDesmembramentoTrack(t *testing.T) {
	s := sessionWithSellers(model.DeedRuralDesmembramento, 1)

	got := walkCertificateTrack(t, s)

	// The desmembramento variant appends ART and plot plan uploads.
	if len(got) != 14 {
		t.Fatalf("Expected 14 steps, got %d: %v", len(got), got)
	}
	if got[11] != UploadStep(model.CertART) {
		t.Errorf("Expected ART upload after ccir, got %s", got[11])
	}
	if got[12] != UploadStep(model.CertPlantaTerreno) {
		t.Errorf("Expected plot plan upload after ART, got %s", got[12])
	}
	if got[13] != StepValorImovel {
		t.Errorf("Expected track to end at %s, got %s", StepValorImovel, got[13])
	}
}

func TestRuralTrackNoSellers(t *testing.T) {
	s := sessionWithSellers(model.DeedRural, 0)

	got := walkCertificateTrack(t, s)
	want := []StepID{
		StepCertidaoOnusUpload,
		UploadStep(model.CertITR),
		UploadStep(model.CertCCIR),
		StepValorImovel,
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d steps, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Step %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestIsPerSeller(t *testing.T) {
	tests := []struct {
		certType model.CertificateType
		want     bool
	}{
		{model.CertNegativaFederal, true},
		{model.CertIbama, true},
		{model.CertOnus, false},
		{model.CertITR, false},
		{model.CertCondominio, false},
	}
	for _, tt := range tests {
		if got := IsPerSeller(tt.certType); got != tt.want {
			t.Errorf("IsPerSeller(%s) = %v, want %v", tt.certType, got, tt.want)
		}
	}
}

func TestRequiredCertificates(t *testing.T) {
	tests := []struct {
		name    string
		kind    model.DeedKind
		sellers int
		want    int
	}{
		{"lote two sellers", model.DeedLote, 2, 11},
		{"apto one seller", model.DeedApto, 1, 7},
		{"rural one seller", model.DeedRural, 1, 11},
		{"rural desmembramento one seller", model.DeedRuralDesmembramento, 1, 13},
		{"lote no sellers", model.DeedLote, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sessionWithSellers(tt.kind, tt.sellers)
			if got := len(RequiredCertificates(s)); got != tt.want {
				t.Errorf("Expected %d required certificates, got %d", tt.want, got)
			}
		})
	}
}

func TestMissingCertificatesCountsWaivers(t *testing.T) {
	s := sessionWithSellers(model.DeedLote, 1)

	if got := len(MissingCertificates(s)); got != 6 {
		t.Fatalf("Expected 6 missing certificates initially, got %d", got)
	}

	s.SetCertificate(model.CertOnus, model.PropertyLevel, map[string]string{"Número da Matrícula do Registro": "123"})
	s.WaiveCertificate(model.CertNegativaFederal, 0)

	missing := MissingCertificates(s)
	if len(missing) != 4 {
		t.Errorf("Expected 4 missing after one upload and one waiver, got %d", len(missing))
	}
	for _, key := range missing {
		if key.Type == model.CertOnus || key.Type == model.CertNegativaFederal {
			t.Errorf("Certificate %s should not be missing", key.String())
		}
	}
}
