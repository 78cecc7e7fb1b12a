package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LACSistemas/EscriturasNew-sub000/middleware"
	"github.com/LACSistemas/EscriturasNew-sub000/pkg/logger"
	"github.com/LACSistemas/EscriturasNew-sub000/service"
	"github.com/LACSistemas/EscriturasNew-sub000/workflow"
)

// maxUploadSize caps uploaded document size at 16MB.
const maxUploadSize = 16 << 20

type ProcessHandler struct {
	runtime *workflow.Runtime
	archive *service.ArchiveService // nil when archival is disabled
}

func NewProcessHandler(runtime *workflow.Runtime, archive *service.ArchiveService) *ProcessHandler {
	return &ProcessHandler{
		runtime: runtime,
		archive: archive,
	}
}

// Process advances a session one step. An empty or absent session_id starts
// a new session; a terminal step finalizes it and returns the generated deed.
func (h *ProcessHandler) Process(c *gin.Context) {
	sessionID := c.PostForm("session_id")
	response := c.PostForm("response")

	req := workflow.Request{Response: response}
	file, header, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		if header.Size > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Arquivo excede o tamanho máximo de 16MB"})
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Falha ao ler o arquivo enviado"})
			return
		}
		req.File = data
		req.Filename = header.Filename
	}

	answeredStep, _ := h.runtime.CurrentStep(sessionID)

	question, err := h.runtime.Advance(c.Request.Context(), sessionID, req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	if len(req.File) > 0 && h.archive != nil {
		h.archiveDocument(c, question.SessionID, string(answeredStep), header.Filename, req.File)
	}

	if question.Terminal {
		h.complete(c, question.SessionID)
		return
	}

	c.JSON(http.StatusOK, question)
}

// complete finalizes a terminal session and renders the deed.
func (h *ProcessHandler) complete(c *gin.Context, sessionID string) {
	session, err := h.runtime.Complete(c.Request.Context(), sessionID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	deeds := service.NewDeedService(middleware.GetCartorio(c))
	escritura := deeds.Generate(session)

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"status":     "completed",
		"message":    "Escritura gerada com sucesso!",
		"extracted_data": gin.H{
			"tipo_escritura":  session.DeedKind,
			"compradores":     session.Buyers,
			"vendedores":      session.Sellers,
			"certidoes":       session.CertificatePayload(),
			"valor_imovel":    session.SalePrice,
			"forma_pagamento": session.PaymentForm,
			"meio_pagamento":  session.PaymentMethod,
		},
		"escritura": escritura,
	})
}

// archiveDocument stores an uploaded document in MinIO. Archival is best
// effort and never fails the request.
func (h *ProcessHandler) archiveDocument(c *gin.Context, sessionID, step, filename string, data []byte) {
	contentType := http.DetectContentType(data)
	if _, err := h.archive.StoreDocument(c.Request.Context(), sessionID, step, filename, data, contentType); err != nil {
		logger.Warn(c.Request.Context(), "document archive failed",
			"session_id", sessionID,
			"step", step,
			"error", err,
		)
	}
}

// Cancel discards an in-progress session.
func (h *ProcessHandler) Cancel(c *gin.Context) {
	sessionID := c.Param("id")

	if err := h.runtime.Cancel(c.Request.Context(), sessionID); err != nil {
		h.renderError(c, err)
		return
	}

	if h.archive != nil {
		if err := h.archive.RemoveSessionDocuments(c.Request.Context(), sessionID); err != nil {
			logger.Warn(c.Request.Context(), "session document cleanup failed",
				"session_id", sessionID,
				"error", err,
			)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sessão cancelada"})
}

// renderError maps workflow errors to HTTP statuses.
func (h *ProcessHandler) renderError(c *gin.Context, err error) {
	var validationErr *workflow.ValidationError
	var extractionErr *workflow.ExtractionError

	switch {
	case errors.Is(err, workflow.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Sessão não encontrada"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &extractionErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Falha ao processar o documento: " + extractionErr.Err.Error()})
	default:
		logger.Error(c.Request.Context(), "workflow error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno"})
	}
}
