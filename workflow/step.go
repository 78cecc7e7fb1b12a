package workflow

import (
	"context"
	"fmt"

	"github.com/LACSistemas/EscriturasNew-sub000/model"
)

// StepID names a workflow step. The set of ids is closed: every id is
// declared below and registered at startup, so transitions can be checked
// exhaustively instead of routed through an open string space.
type StepID string

const (
	StepTipoEscritura StepID = "tipo_escritura"

	// Buyer sub-flow.
	StepCompradorTipo            StepID = "comprador_tipo"
	StepCompradorDocumentoTipo   StepID = "comprador_documento_tipo"
	StepCompradorDocumentoUpload StepID = "comprador_documento_upload"
	StepCompradorEmpresaUpload   StepID = "comprador_empresa_upload"
	StepCompradorCasado          StepID = "comprador_casado"
	StepCertidaoCasamentoUpload  StepID = "certidao_casamento_upload"
	StepConjugeAssina            StepID = "conjuge_assina"
	StepConjugeDocumentoTipo     StepID = "conjuge_documento_tipo"
	StepConjugeDocumentoUpload   StepID = "conjuge_documento_upload"
	StepMaisCompradores          StepID = "mais_compradores"

	// Seller sub-flow. Sellers have no spouse-document sub-flow; the
	// marriage certificate alone is collected.
	StepVendedorTipo                    StepID = "vendedor_tipo"
	StepVendedorDocumentoTipo           StepID = "vendedor_documento_tipo"
	StepVendedorDocumentoUpload         StepID = "vendedor_documento_upload"
	StepVendedorEmpresaUpload           StepID = "vendedor_empresa_upload"
	StepVendedorCasado                  StepID = "vendedor_casado"
	StepVendedorCertidaoCasamentoUpload StepID = "vendedor_certidao_casamento_upload"
	StepMaisVendedores                  StepID = "mais_vendedores"

	// Certificate phase entry and condominium phase.
	StepCertidaoOnusUpload StepID = "certidao_onus_upload"
	StepCondominioOption   StepID = "condominio_option"
	StepCondominioUpload   StepID = "condominio_upload"

	// Terminal phase.
	StepValorImovel    StepID = "valor_imovel"
	StepFormaPagamento StepID = "forma_pagamento"
	StepMeioPagamento  StepID = "meio_pagamento"
	StepProcessing     StepID = "processing"
)

// NextCertificate is a sentinel transition target meaning "delegate to the
// certificate track sequencer": the destination depends on the session's
// cursor, not on the immediate response.
const NextCertificate StepID = "__next_certificate__"

// OptionStep returns the "apresentar ou dispensar" step id for a
// certificate type.
func OptionStep(t model.CertificateType) StepID {
	return StepID(fmt.Sprintf("certidao_%s_option", t))
}

// UploadStep returns the file-upload step id for a certificate type.
func UploadStep(t model.CertificateType) StepID {
	return StepID(fmt.Sprintf("certidao_%s_upload", t))
}

// StepKind classifies how a step's response is validated.
type StepKind int

const (
	KindQuestion StepKind = iota
	KindTextInput
	KindFileUpload
	KindTerminal
)

// Request carries one inbound answer: a selected option or free text, and
// the uploaded file when the step requires one.
type Request struct {
	Response string
	File     []byte
	Filename string
}

// Prompt is the user-facing rendering of a step's question.
type Prompt struct {
	Text            string
	FileDescription string
}

// Question is what the caller receives after each advance: the next step's
// prompt, or the terminal signal when the deed is ready for assembly.
type Question struct {
	SessionID       string   `json:"session_id"`
	Step            StepID   `json:"current_step"`
	Prompt          string   `json:"question"`
	Options         []string `json:"options,omitempty"`
	RequiresFile    bool     `json:"requires_file"`
	FileDescription string   `json:"file_description,omitempty"`
	Progress        string   `json:"progress"`
	Terminal        bool     `json:"auto_process,omitempty"`
}

// Transition is a step's closed transition rule: a fixed next step, a branch
// keyed by the response value, or the NextCertificate delegate. Branch
// entries may themselves point at NextCertificate.
type Transition struct {
	Fixed  StepID
	Branch map[string]StepID
}

// resolve computes the destination for the given post-respond session state.
func (t Transition) resolve(s *model.Session, response string) StepID {
	next := t.Fixed
	if t.Branch != nil {
		if to, ok := t.Branch[response]; ok {
			next = to
		}
	}
	if next == NextCertificate {
		return NextCertificateStep(s)
	}
	return next
}

// targets lists every statically declared destination, for the startup
// exhaustiveness check. The sequencer sentinel is validated separately.
func (t Transition) targets() []StepID {
	var out []StepID
	if t.Fixed != "" && t.Fixed != NextCertificate {
		out = append(out, t.Fixed)
	}
	for _, to := range t.Branch {
		if to != NextCertificate {
			out = append(out, to)
		}
	}
	return out
}

// RespondFunc applies a validated response to the session. File-upload steps
// use the runtime's extractors and may fail with an ExtractionError, in
// which case the session must be left unmodified.
type RespondFunc func(ctx context.Context, rt *Runtime, s *model.Session, req Request) error

// Step is one registered step definition.
type Step struct {
	ID      StepID
	Kind    StepKind
	Options []string
	Prompt  func(s *model.Session) Prompt
	Respond RespondFunc
	Next    Transition
}
