package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/LACSistemas/EscriturasNew-sub000/model"
	"github.com/LACSistemas/EscriturasNew-sub000/pkg/logger"
)

// Store is the session persistence boundary. The runtime takes sessions out,
// mutates them under a per-session lock and writes them back.
type Store interface {
	Get(id string) (*model.Session, bool)
	Put(s *model.Session)
	Delete(id string)
}

// TextExtractor turns an uploaded document into raw text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, filename string) (string, error)
}

// FieldExtractor pulls named fields out of raw document text following a
// prompt that describes the expected fields.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, text, spec string) (map[string]string, error)
}

// Runtime drives sessions through the step graph.
type Runtime struct {
	registry *Registry
	store    Store
	ocr      TextExtractor
	fields   FieldExtractor

	// locks serializes concurrent requests against the same session.
	locks sync.Map // session id -> *sync.Mutex
}

func NewRuntime(store Store, ocr TextExtractor, fields FieldExtractor) *Runtime {
	return &Runtime{
		registry: NewRegistry(),
		store:    store,
		ocr:      ocr,
		fields:   fields,
	}
}

// Registry exposes the step graph, mainly for startup validation and tests.
func (rt *Runtime) Registry() *Registry { return rt.registry }

func (rt *Runtime) sessionLock(id string) *sync.Mutex {
	mu, _ := rt.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// extract runs upload content through OCR and field extraction. Failures are
// wrapped so callers can distinguish extraction problems from bad input.
func (rt *Runtime) extract(ctx context.Context, step StepID, req Request, spec string) (map[string]string, error) {
	text, err := rt.ocr.ExtractText(ctx, req.File, req.Filename)
	if err != nil {
		return nil, &ExtractionError{Step: step, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ExtractionError{Step: step, Err: fmt.Errorf("document produced no text")}
	}
	fields, err := rt.fields.ExtractFields(ctx, text, spec)
	if err != nil {
		return nil, &ExtractionError{Step: step, Err: err}
	}
	return fields, nil
}

// CurrentStep reports the step a session is waiting on.
func (rt *Runtime) CurrentStep(sessionID string) (StepID, bool) {
	s, ok := rt.store.Get(sessionID)
	if !ok {
		return "", false
	}
	return StepID(s.CurrentStep), true
}

// Advance applies one response to a session and returns the next question.
// An empty session id creates a new session and returns the first question
// without consuming the request body.
func (rt *Runtime) Advance(ctx context.Context, sessionID string, req Request) (*Question, error) {
	if sessionID == "" {
		return rt.begin(ctx)
	}

	mu := rt.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	s, ok := rt.store.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	step := rt.registry.Lookup(StepID(s.CurrentStep))
	if step == nil {
		return nil, &InvalidTransitionError{From: StepID(s.CurrentStep), To: ""}
	}
	if step.Kind == KindTerminal {
		// Re-answering a finished session just re-renders the terminal
		// question; completion is a separate call.
		return rt.renderQuestion(s, step), nil
	}

	if err := validateRequest(step, req); err != nil {
		return nil, err
	}
	if step.Respond != nil {
		if err := step.Respond(ctx, rt, s, req); err != nil {
			return nil, err
		}
	}

	nextID := step.Next.resolve(s, req.Response)
	next := rt.registry.Lookup(nextID)
	if next == nil {
		return nil, &InvalidTransitionError{From: step.ID, To: nextID}
	}

	s.CurrentStep = string(nextID)
	s.StepNumber++
	s.Touch()
	rt.store.Put(s)

	logger.Info(ctx, "session advanced",
		slog.String("session_id", s.ID),
		slog.String("from", string(step.ID)),
		slog.String("to", string(nextID)),
	)
	return rt.renderQuestion(s, next), nil
}

func (rt *Runtime) begin(ctx context.Context) (*Question, error) {
	s := model.NewSession(uuid.NewString(), string(rt.registry.InitialStep()))
	rt.store.Put(s)
	logger.Info(ctx, "session created", slog.String("session_id", s.ID))
	first := rt.registry.Lookup(rt.registry.InitialStep())
	return rt.renderQuestion(s, first), nil
}

// validateRequest enforces the input contract of a step kind before any
// session state changes.
func validateRequest(step *Step, req Request) error {
	switch step.Kind {
	case KindQuestion:
		for _, opt := range step.Options {
			if req.Response == opt {
				return nil
			}
		}
		return &ValidationError{
			Step:    step.ID,
			Message: fmt.Sprintf("resposta inválida %q, opções: %s", req.Response, strings.Join(step.Options, ", ")),
		}
	case KindTextInput:
		if strings.TrimSpace(req.Response) == "" {
			return &ValidationError{Step: step.ID, Message: "resposta não pode ser vazia"}
		}
	case KindFileUpload:
		if len(req.File) == 0 {
			return &ValidationError{Step: step.ID, Message: "arquivo é obrigatório nesta etapa"}
		}
	}
	return nil
}

func (rt *Runtime) renderQuestion(s *model.Session, step *Step) *Question {
	prompt := Prompt{}
	if step.Prompt != nil {
		prompt = step.Prompt(s)
	}
	q := &Question{
		SessionID:       s.ID,
		Step:            step.ID,
		Prompt:          prompt.Text,
		Options:         step.Options,
		RequiresFile:    step.Kind == KindFileUpload,
		FileDescription: prompt.FileDescription,
		Progress:        fmt.Sprintf("Step %d of approximately 15-20", s.StepNumber),
		Terminal:        step.Kind == KindTerminal,
	}
	if step.Kind == KindTerminal {
		q.Progress = "Finalizando..."
	}
	return q
}

// Complete finalizes a terminal session: outstanding pending parties are
// folded in, missing certificates are logged and the session is removed from
// the store. The returned session is the caller's to render.
func (rt *Runtime) Complete(ctx context.Context, sessionID string) (*model.Session, error) {
	mu := rt.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	s, ok := rt.store.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.FinalizePending()
	if missing := MissingCertificates(s); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, k := range missing {
			names[i] = k.String()
		}
		logger.Warn(ctx, "session completed with missing certificates",
			slog.String("session_id", s.ID),
			slog.String("missing", strings.Join(names, ", ")),
		)
	}
	rt.store.Delete(sessionID)
	rt.locks.Delete(sessionID)
	return s, nil
}

// Cancel discards a session. Unknown ids report ErrSessionNotFound so the
// handler can 404.
func (rt *Runtime) Cancel(ctx context.Context, sessionID string) error {
	mu := rt.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if _, ok := rt.store.Get(sessionID); !ok {
		return ErrSessionNotFound
	}
	rt.store.Delete(sessionID)
	rt.locks.Delete(sessionID)
	logger.Info(ctx, "session cancelled", slog.String("session_id", sessionID))
	return nil
}
