package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/LACSistemas/EscriturasNew-sub000/model"
)

type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]*model.Session)}
}

func (f *fakeStore) Get(id string) (*model.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	return s, ok
}

func (f *fakeStore) Put(s *model.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
}

func (f *fakeStore) Delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
}

type fakeOCR struct {
	text string
	err  error
}

func (f *fakeOCR) ExtractText(_ context.Context, _ []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeFields struct {
	fields map[string]string
	err    error
}

func (f *fakeFields) ExtractFields(_ context.Context, _, _ string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.fields, nil
}

func newTestRuntime() (*Runtime, *fakeStore) {
	store := newFakeStore()
	ocr := &fakeOCR{text: "texto do documento"}
	fields := &fakeFields{fields: map[string]string{
		"Nome Completo":      "João da Silva",
		"Data de Nascimento": "01/01/1980",
		"Gênero":             "Masculino",
		"Número do CPF":      "123.456.789-00",
	}}
	return NewRuntime(store, ocr, fields), store
}

// answer advances the session and fails the test on error.
func answer(t *testing.T, rt *Runtime, sessionID, response string) *Question {
	t.Helper()
	q, err := rt.Advance(context.Background(), sessionID, Request{Response: response})
	if err != nil {
		t.Fatalf("Advance(%q) failed: %v", response, err)
	}
	return q
}

// upload advances a file-upload step with a dummy document.
func upload(t *testing.T, rt *Runtime, sessionID string) *Question {
	t.Helper()
	q, err := rt.Advance(context.Background(), sessionID, Request{
		File:     []byte("dummy"),
		Filename: "doc.jpg",
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	return q
}

func TestAdvanceCreatesSession(t *testing.T) {
	rt, store := newTestRuntime()

	q, err := rt.Advance(context.Background(), "", Request{})
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if q.SessionID == "" {
		t.Fatal("Expected a generated session id")
	}
	if q.Step != StepTipoEscritura {
		t.Errorf("Expected first step %s, got %s", StepTipoEscritura, q.Step)
	}
	if len(q.Options) != 4 {
		t.Errorf("Expected 4 deed kind options, got %d", len(q.Options))
	}
	if _, ok := store.Get(q.SessionID); !ok {
		t.Error("Expected new session to be stored")
	}
}

func TestAdvanceUnknownSession(t *testing.T) {
	rt, _ := newTestRuntime()

	_, err := rt.Advance(context.Background(), "missing", Request{Response: "x"})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestAdvanceRejectsUnknownOption(t *testing.T) {
	rt, _ := newTestRuntime()

	q := answer(t, rt, "", "")
	_, err := rt.Advance(context.Background(), q.SessionID, Request{Response: "Escritura de Chácara"})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if validationErr.Step != StepTipoEscritura {
		t.Errorf("Expected error at %s, got %s", StepTipoEscritura, validationErr.Step)
	}

	// The session must not advance on a rejected answer.
	if step, _ := rt.CurrentStep(q.SessionID); step != StepTipoEscritura {
		t.Errorf("Expected session still at %s, got %s", StepTipoEscritura, step)
	}
}

func TestAdvanceRequiresFileOnUploadStep(t *testing.T) {
	rt, _ := newTestRuntime()

	q := answer(t, rt, "", "")
	id := q.SessionID
	answer(t, rt, id, "Escritura de Lote")
	answer(t, rt, id, string(model.PessoaFisica))
	q = answer(t, rt, id, string(model.DocIdentidade))
	if q.Step != StepCompradorDocumentoUpload || !q.RequiresFile {
		t.Fatalf("Expected file-upload step, got %s (requires_file=%v)", q.Step, q.RequiresFile)
	}

	_, err := rt.Advance(context.Background(), id, Request{Response: "sem arquivo"})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError for missing file, got %v", err)
	}
}

func TestAdvanceExtractionFailureKeepsStep(t *testing.T) {
	store := newFakeStore()
	rt := NewRuntime(store, &fakeOCR{err: fmt.Errorf("ocr offline")}, &fakeFields{})

	q := answer(t, rt, "", "")
	id := q.SessionID
	answer(t, rt, id, "Escritura de Lote")
	answer(t, rt, id, string(model.PessoaFisica))
	answer(t, rt, id, string(model.DocIdentidade))

	_, err := rt.Advance(context.Background(), id, Request{File: []byte("x"), Filename: "doc.jpg"})
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("Expected ExtractionError, got %v", err)
	}
	if step, _ := rt.CurrentStep(id); step != StepCompradorDocumentoUpload {
		t.Errorf("Expected session to stay at upload step, got %s", step)
	}

	// No partial party data may leak from the failed extraction.
	s, _ := store.Get(id)
	if p := s.PendingBuyer(); p == nil || p.FullName != "" {
		t.Error("Expected pending buyer without extracted fields")
	}
}

// TestLoteScenario walks a complete Lote deed: one unmarried individual
// buyer, one unmarried individual seller, lien uploaded, all five urban
// certificates waived.
func TestLoteScenario(t *testing.T) {
	rt, store := newTestRuntime()

	q := answer(t, rt, "", "")
	id := q.SessionID

	q = answer(t, rt, id, "Escritura de Lote")
	if q.Step != StepCompradorTipo {
		t.Fatalf("Expected %s, got %s", StepCompradorTipo, q.Step)
	}

	answer(t, rt, id, string(model.PessoaFisica))
	answer(t, rt, id, string(model.DocIdentidade))
	q = upload(t, rt, id)
	if q.Step != StepCompradorCasado {
		t.Fatalf("Expected %s after document upload, got %s", StepCompradorCasado, q.Step)
	}

	q = answer(t, rt, id, "Não")
	if q.Step != StepMaisCompradores {
		t.Fatalf("Expected %s, got %s", StepMaisCompradores, q.Step)
	}

	q = answer(t, rt, id, "Não")
	if q.Step != StepVendedorTipo {
		t.Fatalf("Expected %s, got %s", StepVendedorTipo, q.Step)
	}

	s, _ := store.Get(id)
	if len(s.Buyers) != 1 {
		t.Fatalf("Expected 1 finalized buyer, got %d", len(s.Buyers))
	}
	if s.Buyers[0].FullName != "João da Silva" {
		t.Errorf("Expected extracted buyer name, got %q", s.Buyers[0].FullName)
	}

	answer(t, rt, id, string(model.PessoaFisica))
	answer(t, rt, id, string(model.DocIdentidade))
	upload(t, rt, id)
	answer(t, rt, id, "Não") // vendedor_casado
	q = answer(t, rt, id, "Não")
	if q.Step != StepCertidaoOnusUpload {
		t.Fatalf("Expected %s, got %s", StepCertidaoOnusUpload, q.Step)
	}

	q = upload(t, rt, id)
	if q.Step != OptionStep(model.CertNegativaFederal) {
		t.Fatalf("Expected first certificate option, got %s", q.Step)
	}

	// Waive all five urban certificates.
	for i := 0; i < 4; i++ {
		q = answer(t, rt, id, "Usar Dispensa")
	}
	q = answer(t, rt, id, "Usar Dispensa")
	if q.Step != StepValorImovel {
		t.Fatalf("Expected %s after last waiver, got %s", StepValorImovel, q.Step)
	}

	answer(t, rt, id, "R$ 250.000,00")
	answer(t, rt, id, "À VISTA")
	q = answer(t, rt, id, "transferência bancária/pix")
	if q.Step != StepProcessing || !q.Terminal {
		t.Fatalf("Expected terminal processing step, got %s (terminal=%v)", q.Step, q.Terminal)
	}

	s, _ = store.Get(id)
	if s.SalePrice != "R$ 250.000,00" {
		t.Errorf("Expected sale price recorded, got %q", s.SalePrice)
	}
	if len(MissingCertificates(s)) != 0 {
		t.Errorf("Expected no missing certificates, got %v", MissingCertificates(s))
	}
}

func TestSpouseFlowForMarriedBuyer(t *testing.T) {
	rt, store := newTestRuntime()

	q := answer(t, rt, "", "")
	id := q.SessionID
	answer(t, rt, id, "Escritura de Apto")
	answer(t, rt, id, string(model.PessoaFisica))
	answer(t, rt, id, string(model.DocCNH))
	upload(t, rt, id)

	q = answer(t, rt, id, "Sim") // comprador_casado
	if q.Step != StepCertidaoCasamentoUpload {
		t.Fatalf("Expected %s, got %s", StepCertidaoCasamentoUpload, q.Step)
	}
	q = upload(t, rt, id)
	if q.Step != StepConjugeAssina {
		t.Fatalf("Expected %s, got %s", StepConjugeAssina, q.Step)
	}

	q = answer(t, rt, id, "Sim")
	if q.Step != StepConjugeDocumentoTipo {
		t.Fatalf("Expected %s, got %s", StepConjugeDocumentoTipo, q.Step)
	}
	answer(t, rt, id, string(model.DocIdentidade))
	q = upload(t, rt, id)
	if q.Step != StepMaisCompradores {
		t.Fatalf("Expected %s after spouse document, got %s", StepMaisCompradores, q.Step)
	}

	answer(t, rt, id, "Não")

	s, _ := store.Get(id)
	buyer := s.Buyers[0]
	if !buyer.Married || !buyer.SpouseSigns {
		t.Error("Expected married buyer with signing spouse")
	}
	if buyer.Spouse == nil || buyer.Spouse.FullName != "João da Silva" {
		t.Error("Expected spouse document data to be captured")
	}
}

func TestCompanyBuyerSkipsMaritalFlow(t *testing.T) {
	store := newFakeStore()
	rt := NewRuntime(store, &fakeOCR{text: "cartão cnpj"}, &fakeFields{fields: map[string]string{
		"Razão Social (Nome da Empresa)":    "Imóveis Capixaba Ltda",
		"CNPJ (formato XX.XXX.XXX/XXXX-XX)": "12.345.678/0001-90",
		"Endereço da Empresa":               "Av. Central, 100, Cariacica-ES",
	}})

	q := answer(t, rt, "", "")
	id := q.SessionID
	answer(t, rt, id, "Escritura de Lote")
	q = answer(t, rt, id, string(model.PessoaJuridica))
	if q.Step != StepCompradorEmpresaUpload {
		t.Fatalf("Expected %s, got %s", StepCompradorEmpresaUpload, q.Step)
	}

	q = upload(t, rt, id)
	if q.Step != StepMaisCompradores {
		t.Fatalf("Expected company upload to lead to %s, got %s", StepMaisCompradores, q.Step)
	}

	answer(t, rt, id, "Não")
	s, _ := store.Get(id)
	if s.Buyers[0].LegalName != "Imóveis Capixaba Ltda" {
		t.Errorf("Expected extracted legal name, got %q", s.Buyers[0].LegalName)
	}
}

func TestCompleteRemovesSession(t *testing.T) {
	rt, store := newTestRuntime()

	q := answer(t, rt, "", "")
	id := q.SessionID
	answer(t, rt, id, "Escritura de Lote")

	s, err := rt.Complete(context.Background(), id)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if s.ID != id {
		t.Errorf("Expected completed session %s, got %s", id, s.ID)
	}
	if _, ok := store.Get(id); ok {
		t.Error("Expected session to be removed after completion")
	}

	if _, err := rt.Complete(context.Background(), id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second completion, got %v", err)
	}
}

func TestCompleteFinalizesPendingParty(t *testing.T) {
	rt, _ := newTestRuntime()

	q := answer(t, rt, "", "")
	id := q.SessionID
	answer(t, rt, id, "Escritura de Lote")
	answer(t, rt, id, string(model.PessoaFisica))
	answer(t, rt, id, string(model.DocIdentidade))
	upload(t, rt, id)

	// Complete with the buyer still pending; it must be folded in.
	s, err := rt.Complete(context.Background(), id)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if len(s.Buyers) != 1 {
		t.Errorf("Expected pending buyer finalized on completion, got %d buyers", len(s.Buyers))
	}
	if s.Pending != nil {
		t.Error("Expected no pending party after completion")
	}
}

func TestCancel(t *testing.T) {
	rt, store := newTestRuntime()

	q := answer(t, rt, "", "")
	if err := rt.Cancel(context.Background(), q.SessionID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if _, ok := store.Get(q.SessionID); ok {
		t.Error("Expected cancelled session to be removed")
	}

	if err := rt.Cancel(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestConcurrentSessionsAreIndependent(t *testing.T) {
	rt, store := newTestRuntime()

	ids := make([]string, 8)
	for i := range ids {
		q := answer(t, rt, "", "")
		ids[i] = q.SessionID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := rt.Advance(context.Background(), id, Request{Response: "Escritura de Lote"}); err != nil {
				t.Errorf("Advance failed for %s: %v", id, err)
				return
			}
			if _, err := rt.Advance(context.Background(), id, Request{Response: string(model.PessoaFisica)}); err != nil {
				t.Errorf("Advance failed for %s: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		s, ok := store.Get(id)
		if !ok {
			t.Fatalf("Session %s disappeared", id)
		}
		if s.CurrentStep != string(StepCompradorDocumentoTipo) {
			t.Errorf("Session %s at %s, expected %s", id, s.CurrentStep, StepCompradorDocumentoTipo)
		}
	}
}
