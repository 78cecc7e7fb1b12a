package model

import (
	"time"
)

// DeedKind is the escritura variant chosen on the first step. The values are
// the literal options shown to the user.
type DeedKind string

const (
	DeedLote                DeedKind = "Escritura de Lote"
	DeedApto                DeedKind = "Escritura de Apto"
	DeedRural               DeedKind = "Escritura Rural"
	DeedRuralDesmembramento DeedKind = "Escritura Rural com Desmembramento de Área"
)

// RuralVariant refines rural deeds: plain or with subdivision of a larger
// property (desmembramento).
type RuralVariant string

const (
	RuralNone           RuralVariant = ""
	RuralPlain          RuralVariant = "rural"
	RuralDesmembramento RuralVariant = "rural_desmembramento"
)

// Cursor is the certificate sequencer's scratch position, kept explicit so
// the sequencer can resume exactly where it left off across requests.
type Cursor struct {
	SellerIndex   int             `json:"vendedor_idx"`
	CertType      CertificateType `json:"cert_type,omitempty"`
	LienDone      bool            `json:"onus_processed"`
	PropertyPhase bool            `json:"property_certs_started"`
	CondoDone     bool            `json:"condominio_processed"`
	ARTDone       bool            `json:"art_processed"`
	PlotDone      bool            `json:"planta_processed"`
}

// Session is one in-progress deed. All mutation of parties and certificates
// goes through the methods below; the workflow layer never reaches into the
// slices directly.
type Session struct {
	ID          string    `json:"id"`
	CurrentStep string    `json:"current_step"`
	StepNumber  int       `json:"step_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	DeedKind     DeedKind     `json:"tipo_escritura,omitempty"`
	IsRural      bool         `json:"is_rural"`
	RuralVariant RuralVariant `json:"tipo_escritura_rural,omitempty"`

	Buyers  []*Party `json:"compradores"`
	Sellers []*Party `json:"vendedores"`

	Certificates map[CertificateKey]*Certificate `json:"-"`
	Pending      *PendingParty                   `json:"-"`
	Cursor       Cursor                          `json:"-"`

	SalePrice     string `json:"valor,omitempty"`
	PaymentForm   string `json:"forma_pagamento,omitempty"`
	PaymentMethod string `json:"meio_pagamento,omitempty"`
}

// NewSession creates an empty session positioned at the workflow's initial
// step.
func NewSession(id, initialStep string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		CurrentStep:  initialStep,
		StepNumber:   1,
		CreatedAt:    now,
		UpdatedAt:    now,
		Buyers:       []*Party{},
		Sellers:      []*Party{},
		Certificates: make(map[CertificateKey]*Certificate),
	}
}

// SetDeedKind records the chosen deed kind and the derived rural flags. The
// kind is set once; later calls are ignored.
func (s *Session) SetDeedKind(kind DeedKind) {
	if s.DeedKind != "" {
		return
	}
	s.DeedKind = kind
	switch kind {
	case DeedRural:
		s.IsRural = true
		s.RuralVariant = RuralPlain
	case DeedRuralDesmembramento:
		s.IsRural = true
		s.RuralVariant = RuralDesmembramento
	}
}

// StartPendingBuyer begins a new buyer sub-flow, replacing any pending party.
func (s *Session) StartPendingBuyer(kind PersonKind) *Party {
	p := &Party{Kind: kind}
	s.Pending = &PendingParty{Role: RoleComprador, Party: p}
	return p
}

// StartPendingSeller begins a new seller sub-flow, replacing any pending party.
func (s *Session) StartPendingSeller(kind PersonKind) *Party {
	p := &Party{Kind: kind}
	s.Pending = &PendingParty{Role: RoleVendedor, Party: p}
	return p
}

// PendingBuyer returns the in-flight buyer, or nil when none is pending.
func (s *Session) PendingBuyer() *Party {
	if s.Pending == nil || s.Pending.Role != RoleComprador {
		return nil
	}
	return s.Pending.Party
}

// PendingSeller returns the in-flight seller, or nil when none is pending.
func (s *Session) PendingSeller() *Party {
	if s.Pending == nil || s.Pending.Role != RoleVendedor {
		return nil
	}
	return s.Pending.Party
}

// FinalizePendingBuyer moves the pending buyer into the buyers list. Calling
// it with no pending buyer is a no-op; several steps may trigger
// finalization and only the first takes effect.
func (s *Session) FinalizePendingBuyer() {
	if p := s.PendingBuyer(); p != nil {
		s.Buyers = append(s.Buyers, p)
		s.Pending = nil
	}
}

// FinalizePendingSeller moves the pending seller into the sellers list.
// Idempotent like FinalizePendingBuyer.
func (s *Session) FinalizePendingSeller() {
	if p := s.PendingSeller(); p != nil {
		s.Sellers = append(s.Sellers, p)
		s.Pending = nil
	}
}

// FinalizePending sweeps any remaining pending party into its list. Called
// when the terminal phase is reached so the completed session never carries
// an unfinalized party.
func (s *Session) FinalizePending() {
	s.FinalizePendingBuyer()
	s.FinalizePendingSeller()
}

// SetCertificate upserts an extracted certificate under its composite key.
// Re-uploading the same key overwrites the previous value, clearing any
// earlier waiver.
func (s *Session) SetCertificate(t CertificateType, sellerIndex int, fields map[string]string) {
	key := CertificateKey{Type: t, SellerIndex: sellerIndex}
	s.Certificates[key] = &Certificate{
		Type:        t,
		SellerIndex: sellerIndex,
		Fields:      fields,
		UploadedAt:  time.Now(),
	}
}

// WaiveCertificate records a dispensa for the composite key instead of an
// upload. A waived certificate carries no fields.
func (s *Session) WaiveCertificate(t CertificateType, sellerIndex int) {
	key := CertificateKey{Type: t, SellerIndex: sellerIndex}
	s.Certificates[key] = &Certificate{
		Type:        t,
		SellerIndex: sellerIndex,
		Waived:      true,
		UploadedAt:  time.Now(),
	}
}

// Certificate returns the certificate stored under the composite key, or nil.
func (s *Session) Certificate(t CertificateType, sellerIndex int) *Certificate {
	return s.Certificates[CertificateKey{Type: t, SellerIndex: sellerIndex}]
}

// CertificatePayload renders the certificate map with legacy string keys
// ("onus", "negativa_federal_0", ...) for the completed-session payload and
// the deed templates.
func (s *Session) CertificatePayload() map[string]*Certificate {
	out := make(map[string]*Certificate, len(s.Certificates))
	for key, cert := range s.Certificates {
		out[key.String()] = cert
	}
	return out
}

// Touch bumps the activity timestamp used for idle eviction.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}
