package workflow

import (
	"context"
	"fmt"

	"github.com/LACSistemas/EscriturasNew-sub000/model"
)

var (
	yesNoOptions       = []string{"Sim", "Não"}
	personKindOptions  = []string{string(model.PessoaFisica), string(model.PessoaJuridica)}
	documentOptions    = []string{string(model.DocIdentidade), string(model.DocCNH), string(model.DocCTPS)}
	certificateOptions = []string{"Apresentar Certidão", "Usar Dispensa"}
)

// Registry holds the complete static step graph. Built once at startup and
// read-only afterward, so concurrent lookups need no synchronization.
type Registry struct {
	steps   map[StepID]*Step
	initial StepID
}

// InitialStep returns the graph's declared entry step.
func (r *Registry) InitialStep() StepID { return r.initial }

// Lookup returns the registered step definition, or nil.
func (r *Registry) Lookup(id StepID) *Step { return r.steps[id] }

func (r *Registry) register(step *Step) {
	if _, dup := r.steps[step.ID]; dup {
		panic(fmt.Sprintf("workflow: step %s registered twice", step.ID))
	}
	r.steps[step.ID] = step
}

// Validate checks the graph for construction bugs: every statically declared
// transition target and every step the certificate sequencer can emit must
// be registered.
func (r *Registry) Validate() error {
	if _, ok := r.steps[r.initial]; !ok {
		return fmt.Errorf("initial step %s not registered", r.initial)
	}
	for id, step := range r.steps {
		for _, to := range step.Next.targets() {
			if _, ok := r.steps[to]; !ok {
				return &InvalidTransitionError{From: id, To: to}
			}
		}
	}
	for _, to := range sequencerTargets() {
		if _, ok := r.steps[to]; !ok {
			return &InvalidTransitionError{From: "certificate sequencer", To: to}
		}
	}
	return nil
}

// sequencerTargets enumerates every step NextCertificateStep can return.
func sequencerTargets() []StepID {
	targets := []StepID{
		StepCertidaoOnusUpload,
		StepCondominioOption,
		StepValorImovel,
		UploadStep(model.CertITR),
		UploadStep(model.CertCCIR),
		UploadStep(model.CertART),
		UploadStep(model.CertPlantaTerreno),
	}
	for _, t := range perSellerCertTypes {
		targets = append(targets, OptionStep(t), UploadStep(t))
	}
	return targets
}

// NewRegistry builds the complete step graph. A graph that fails validation
// is a programming error and panics at startup.
func NewRegistry() *Registry {
	r := &Registry{steps: make(map[StepID]*Step), initial: StepTipoEscritura}

	r.registerDeedKindStep()
	r.registerBuyerSteps()
	r.registerSellerSteps()
	r.registerCertificateSteps()
	r.registerClosingSteps()

	if err := r.Validate(); err != nil {
		panic("workflow: " + err.Error())
	}
	return r
}

func staticPrompt(text string) func(*model.Session) Prompt {
	return func(*model.Session) Prompt { return Prompt{Text: text} }
}

func uploadPrompt(text, description string) func(*model.Session) Prompt {
	return func(*model.Session) Prompt {
		return Prompt{Text: text, FileDescription: description}
	}
}

func (r *Registry) registerDeedKindStep() {
	r.register(&Step{
		ID:   StepTipoEscritura,
		Kind: KindQuestion,
		Options: []string{
			string(model.DeedLote),
			string(model.DeedApto),
			string(model.DeedRural),
			string(model.DeedRuralDesmembramento),
		},
		Prompt: staticPrompt("Selecione o tipo de escritura:"),
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			s.SetDeedKind(model.DeedKind(req.Response))
			return nil
		},
		Next: Transition{Fixed: StepCompradorTipo},
	})
}

func (r *Registry) registerBuyerSteps() {
	r.register(&Step{
		ID:      StepCompradorTipo,
		Kind:    KindQuestion,
		Options: personKindOptions,
		Prompt: func(s *model.Session) Prompt {
			return Prompt{Text: fmt.Sprintf("Tipo do %dº comprador:", len(s.Buyers)+1)}
		},
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			s.StartPendingBuyer(model.PersonKind(req.Response))
			return nil
		},
		Next: Transition{Branch: map[string]StepID{
			string(model.PessoaFisica):   StepCompradorDocumentoTipo,
			string(model.PessoaJuridica): StepCompradorEmpresaUpload,
		}},
	})

	r.register(&Step{
		ID:      StepCompradorDocumentoTipo,
		Kind:    KindQuestion,
		Options: documentOptions,
		Prompt:  staticPrompt("Qual documento será apresentado?"),
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			if p := s.PendingBuyer(); p != nil {
				p.DocumentKind = model.DocumentKind(req.Response)
			}
			return nil
		},
		Next: Transition{Fixed: StepCompradorDocumentoUpload},
	})

	r.register(&Step{
		ID:   StepCompradorDocumentoUpload,
		Kind: KindFileUpload,
		Prompt: func(s *model.Session) Prompt {
			kind := pendingDocumentKind(s.PendingBuyer())
			return Prompt{
				Text:            fmt.Sprintf("Faça upload do(a) %s:", kind),
				FileDescription: fmt.Sprintf("Imagem do(a) %s", kind),
			}
		},
		Respond: func(ctx context.Context, rt *Runtime, s *model.Session, req Request) error {
			p := s.PendingBuyer()
			if p == nil {
				p = s.StartPendingBuyer(model.PessoaFisica)
			}
			fields, err := rt.extract(ctx, StepCompradorDocumentoUpload, req, personFieldSpec(p.DocumentKind))
			if err != nil {
				return err
			}
			applyPersonFields(p, p.DocumentKind, fields)
			return nil
		},
		Next: Transition{Fixed: StepCompradorCasado},
	})

	r.register(&Step{
		ID:     StepCompradorEmpresaUpload,
		Kind:   KindFileUpload,
		Prompt: uploadPrompt("Faça upload do Cartão CNPJ ou Contrato Social:", "Documento da empresa"),
		Respond: func(ctx context.Context, rt *Runtime, s *model.Session, req Request) error {
			fields, err := rt.extract(ctx, StepCompradorEmpresaUpload, req, companyFieldSpec)
			if err != nil {
				return err
			}
			p := s.PendingBuyer()
			if p == nil {
				p = s.StartPendingBuyer(model.PessoaJuridica)
			}
			applyCompanyFields(p, fields)
			return nil
		},
		// Companies have no marital sub-flow.
		Next: Transition{Fixed: StepMaisCompradores},
	})

	r.register(&Step{
		ID:      StepCompradorCasado,
		Kind:    KindQuestion,
		Options: yesNoOptions,
		Prompt:  staticPrompt("O comprador é casado?"),
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			if p := s.PendingBuyer(); p != nil {
				p.Married = req.Response == "Sim"
			}
			return nil
		},
		Next: Transition{Branch: map[string]StepID{
			"Sim": StepCertidaoCasamentoUpload,
			"Não": StepMaisCompradores,
		}},
	})

	r.register(&Step{
		ID:     StepCertidaoCasamentoUpload,
		Kind:   KindFileUpload,
		Prompt: uploadPrompt("Faça upload da Certidão de Casamento:", "Certidão de Casamento"),
		Respond: func(ctx context.Context, rt *Runtime, s *model.Session, req Request) error {
			fields, err := rt.extract(ctx, StepCertidaoCasamentoUpload, req, marriageFieldSpec)
			if err != nil {
				return err
			}
			if p := s.PendingBuyer(); p != nil {
				p.PropertyRegime = fields["Regime de Bens do Casamento"]
			}
			return nil
		},
		Next: Transition{Fixed: StepConjugeAssina},
	})

	r.register(&Step{
		ID:      StepConjugeAssina,
		Kind:    KindQuestion,
		Options: yesNoOptions,
		Prompt:  staticPrompt("O cônjuge assina o documento?"),
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			if p := s.PendingBuyer(); p != nil {
				p.SpouseSigns = req.Response == "Sim"
			}
			return nil
		},
		Next: Transition{Branch: map[string]StepID{
			"Sim": StepConjugeDocumentoTipo,
			"Não": StepMaisCompradores,
		}},
	})

	r.register(&Step{
		ID:      StepConjugeDocumentoTipo,
		Kind:    KindQuestion,
		Options: documentOptions,
		Prompt:  staticPrompt("Qual documento do cônjuge será apresentado?"),
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			if s.Pending != nil {
				s.Pending.SpouseDocumentKind = model.DocumentKind(req.Response)
			}
			return nil
		},
		Next: Transition{Fixed: StepConjugeDocumentoUpload},
	})

	r.register(&Step{
		ID:   StepConjugeDocumentoUpload,
		Kind: KindFileUpload,
		Prompt: func(s *model.Session) Prompt {
			kind := model.DocumentKind("documento")
			if s.Pending != nil && s.Pending.SpouseDocumentKind != "" {
				kind = s.Pending.SpouseDocumentKind
			}
			return Prompt{
				Text:            fmt.Sprintf("Faça upload do(a) %s do cônjuge:", kind),
				FileDescription: fmt.Sprintf("Imagem do(a) %s do cônjuge", kind),
			}
		},
		Respond: func(ctx context.Context, rt *Runtime, s *model.Session, req Request) error {
			kind := model.DocIdentidade
			if s.Pending != nil && s.Pending.SpouseDocumentKind != "" {
				kind = s.Pending.SpouseDocumentKind
			}
			fields, err := rt.extract(ctx, StepConjugeDocumentoUpload, req, personFieldSpec(kind))
			if err != nil {
				return err
			}
			if p := s.PendingBuyer(); p != nil {
				p.Spouse = applySpouseFields(kind, fields)
			}
			return nil
		},
		Next: Transition{Fixed: StepMaisCompradores},
	})

	r.register(&Step{
		ID:      StepMaisCompradores,
		Kind:    KindQuestion,
		Options: yesNoOptions,
		Prompt: func(s *model.Session) Prompt {
			count := len(s.Buyers)
			if s.PendingBuyer() != nil {
				count++
			}
			return Prompt{Text: fmt.Sprintf("Tem mais compradores? (Atualmente: %d)", count)}
		},
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, _ Request) error {
			s.FinalizePendingBuyer()
			return nil
		},
		Next: Transition{Branch: map[string]StepID{
			"Sim": StepCompradorTipo,
			"Não": StepVendedorTipo,
		}},
	})
}

func (r *Registry) registerSellerSteps() {
	r.register(&Step{
		ID:      StepVendedorTipo,
		Kind:    KindQuestion,
		Options: personKindOptions,
		Prompt: func(s *model.Session) Prompt {
			return Prompt{Text: fmt.Sprintf("Tipo do %dº vendedor:", len(s.Sellers)+1)}
		},
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			s.StartPendingSeller(model.PersonKind(req.Response))
			return nil
		},
		Next: Transition{Branch: map[string]StepID{
			string(model.PessoaFisica):   StepVendedorDocumentoTipo,
			string(model.PessoaJuridica): StepVendedorEmpresaUpload,
		}},
	})

	r.register(&Step{
		ID:      StepVendedorDocumentoTipo,
		Kind:    KindQuestion,
		Options: documentOptions,
		Prompt:  staticPrompt("Qual documento será apresentado?"),
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			if p := s.PendingSeller(); p != nil {
				p.DocumentKind = model.DocumentKind(req.Response)
			}
			return nil
		},
		Next: Transition{Fixed: StepVendedorDocumentoUpload},
	})

	r.register(&Step{
		ID:   StepVendedorDocumentoUpload,
		Kind: KindFileUpload,
		Prompt: func(s *model.Session) Prompt {
			kind := pendingDocumentKind(s.PendingSeller())
			return Prompt{
				Text:            fmt.Sprintf("Faça upload do(a) %s:", kind),
				FileDescription: fmt.Sprintf("Imagem do(a) %s", kind),
			}
		},
		Respond: func(ctx context.Context, rt *Runtime, s *model.Session, req Request) error {
			p := s.PendingSeller()
			if p == nil {
				p = s.StartPendingSeller(model.PessoaFisica)
			}
			fields, err := rt.extract(ctx, StepVendedorDocumentoUpload, req, personFieldSpec(p.DocumentKind))
			if err != nil {
				return err
			}
			applyPersonFields(p, p.DocumentKind, fields)
			return nil
		},
		Next: Transition{Fixed: StepVendedorCasado},
	})

	r.register(&Step{
		ID:     StepVendedorEmpresaUpload,
		Kind:   KindFileUpload,
		Prompt: uploadPrompt("Faça upload do Cartão CNPJ ou Contrato Social:", "Documento da empresa"),
		Respond: func(ctx context.Context, rt *Runtime, s *model.Session, req Request) error {
			fields, err := rt.extract(ctx, StepVendedorEmpresaUpload, req, companyFieldSpec)
			if err != nil {
				return err
			}
			p := s.PendingSeller()
			if p == nil {
				p = s.StartPendingSeller(model.PessoaJuridica)
			}
			applyCompanyFields(p, fields)
			return nil
		},
		Next: Transition{Fixed: StepMaisVendedores},
	})

	r.register(&Step{
		ID:      StepVendedorCasado,
		Kind:    KindQuestion,
		Options: yesNoOptions,
		Prompt:  staticPrompt("O vendedor é casado?"),
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			if p := s.PendingSeller(); p != nil {
				p.Married = req.Response == "Sim"
			}
			return nil
		},
		Next: Transition{Branch: map[string]StepID{
			"Sim": StepVendedorCertidaoCasamentoUpload,
			"Não": StepMaisVendedores,
		}},
	})

	r.register(&Step{
		ID:     StepVendedorCertidaoCasamentoUpload,
		Kind:   KindFileUpload,
		Prompt: uploadPrompt("Faça upload da Certidão de Casamento do vendedor:", "Certidão de Casamento do Vendedor"),
		Respond: func(ctx context.Context, rt *Runtime, s *model.Session, req Request) error {
			fields, err := rt.extract(ctx, StepVendedorCertidaoCasamentoUpload, req, marriageFieldSpec)
			if err != nil {
				return err
			}
			if p := s.PendingSeller(); p != nil {
				p.PropertyRegime = fields["Regime de Bens do Casamento"]
			}
			return nil
		},
		Next: Transition{Fixed: StepMaisVendedores},
	})

	r.register(&Step{
		ID:      StepMaisVendedores,
		Kind:    KindQuestion,
		Options: yesNoOptions,
		Prompt: func(s *model.Session) Prompt {
			count := len(s.Sellers)
			if s.PendingSeller() != nil {
				count++
			}
			return Prompt{Text: fmt.Sprintf("Tem mais vendedores? (Atualmente: %d)", count)}
		},
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, _ Request) error {
			s.FinalizePendingSeller()
			return nil
		},
		Next: Transition{Branch: map[string]StepID{
			"Sim": StepVendedorTipo,
			"Não": StepCertidaoOnusUpload,
		}},
	})
}

func (r *Registry) registerCertificateSteps() {
	r.register(&Step{
		ID:     StepCertidaoOnusUpload,
		Kind:   KindFileUpload,
		Prompt: uploadPrompt("Faça upload da Certidão de Ônus:", "Certidão de Ônus e Ações Reais"),
		Respond: func(ctx context.Context, rt *Runtime, s *model.Session, req Request) error {
			fields, err := rt.extract(ctx, StepCertidaoOnusUpload, req, certFieldSpec(model.CertOnus, s.IsRural))
			if err != nil {
				return err
			}
			s.SetCertificate(model.CertOnus, model.PropertyLevel, fields)
			s.Cursor.LienDone = true
			return nil
		},
		Next: Transition{Fixed: NextCertificate},
	})

	for _, certType := range perSellerCertTypes {
		r.registerCertificateOption(certType)
		r.registerCertificateUpload(certType)
	}

	for _, certType := range []model.CertificateType{
		model.CertITR, model.CertCCIR, model.CertART, model.CertPlantaTerreno,
	} {
		r.registerCertificateUpload(certType)
	}

	r.register(&Step{
		ID:      StepCondominioOption,
		Kind:    KindQuestion,
		Options: certificateOptions,
		Prompt:  staticPrompt("Certidão de Condomínio:"),
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			if req.Response == "Usar Dispensa" {
				s.WaiveCertificate(model.CertCondominio, model.PropertyLevel)
			}
			return nil
		},
		Next: Transition{Branch: map[string]StepID{
			"Usar Dispensa":       StepValorImovel,
			"Apresentar Certidão": StepCondominioUpload,
		}},
	})

	r.register(&Step{
		ID:     StepCondominioUpload,
		Kind:   KindFileUpload,
		Prompt: uploadPrompt("Faça upload da Certidão de Condomínio:", "Certidão de Condomínio"),
		Respond: func(ctx context.Context, rt *Runtime, s *model.Session, req Request) error {
			fields, err := rt.extract(ctx, StepCondominioUpload, req, certFieldSpec(model.CertCondominio, false))
			if err != nil {
				return err
			}
			s.SetCertificate(model.CertCondominio, model.PropertyLevel, fields)
			return nil
		},
		Next: Transition{Fixed: StepValorImovel},
	})
}

func (r *Registry) registerCertificateOption(certType model.CertificateType) {
	id := OptionStep(certType)
	r.register(&Step{
		ID:      id,
		Kind:    KindQuestion,
		Options: certificateOptions,
		Prompt: func(s *model.Session) Prompt {
			return Prompt{Text: fmt.Sprintf("%s para %s:", certType.DisplayName(), currentSellerName(s))}
		},
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			if req.Response == "Usar Dispensa" {
				s.WaiveCertificate(certType, s.Cursor.SellerIndex)
			}
			return nil
		},
		Next: Transition{Branch: map[string]StepID{
			"Usar Dispensa":       NextCertificate,
			"Apresentar Certidão": UploadStep(certType),
		}},
	})
}

func (r *Registry) registerCertificateUpload(certType model.CertificateType) {
	id := UploadStep(certType)
	name := certType.DisplayName()
	r.register(&Step{
		ID:     id,
		Kind:   KindFileUpload,
		Prompt: uploadPrompt(fmt.Sprintf("Faça upload da %s:", name), name),
		Respond: func(ctx context.Context, rt *Runtime, s *model.Session, req Request) error {
			fields, err := rt.extract(ctx, id, req, certFieldSpec(certType, s.IsRural))
			if err != nil {
				return err
			}
			index := model.PropertyLevel
			if IsPerSeller(certType) {
				index = s.Cursor.SellerIndex
			}
			s.SetCertificate(certType, index, fields)
			return nil
		},
		Next: Transition{Fixed: NextCertificate},
	})
}

func (r *Registry) registerClosingSteps() {
	r.register(&Step{
		ID:     StepValorImovel,
		Kind:   KindTextInput,
		Prompt: staticPrompt("Informe o valor do imóvel (ex: R$ 250.000,00):"),
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			s.SalePrice = req.Response
			return nil
		},
		Next: Transition{Fixed: StepFormaPagamento},
	})

	r.register(&Step{
		ID:      StepFormaPagamento,
		Kind:    KindQuestion,
		Options: []string{"À VISTA", "ANTERIORMENTE"},
		Prompt:  staticPrompt("Forma de pagamento:"),
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			s.PaymentForm = req.Response
			return nil
		},
		Next: Transition{Fixed: StepMeioPagamento},
	})

	r.register(&Step{
		ID:      StepMeioPagamento,
		Kind:    KindQuestion,
		Options: []string{"transferência bancária/pix", "dinheiro", "cheque"},
		Prompt:  staticPrompt("Meio de pagamento:"),
		Respond: func(_ context.Context, _ *Runtime, s *model.Session, req Request) error {
			s.PaymentMethod = req.Response
			return nil
		},
		Next: Transition{Fixed: StepProcessing},
	})

	r.register(&Step{
		ID:     StepProcessing,
		Kind:   KindTerminal,
		Prompt: staticPrompt("Processando documentos e gerando escritura..."),
	})
}

func pendingDocumentKind(p *model.Party) model.DocumentKind {
	if p == nil || p.DocumentKind == "" {
		return "documento"
	}
	return p.DocumentKind
}

// currentSellerName resolves the cursor's seller for certificate prompts.
func currentSellerName(s *model.Session) string {
	idx := s.Cursor.SellerIndex
	if idx >= 0 && idx < len(s.Sellers) {
		seller := s.Sellers[idx]
		if seller.FullName != "" {
			return seller.FullName
		}
		if seller.LegalName != "" {
			return seller.LegalName
		}
	}
	return fmt.Sprintf("Vendedor %d", idx+1)
}
