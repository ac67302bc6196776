package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"voicedoc/internal/apperr"
	"voicedoc/internal/document"
	"voicedoc/internal/model"
	"voicedoc/internal/utils"
)

// Handler exposes the document lifecycle over HTTP.
type Handler struct {
	docs *document.Service
	log  zerolog.Logger
}

func NewHandler(docs *document.Service, log zerolog.Logger) *Handler {
	return &Handler{docs: docs, log: log.With().Str("component", "api").Logger()}
}

// RegisterRoutes wires the REST surface.
func RegisterRoutes(r *gin.Engine, h *Handler, jwtSecret string) {
	r.GET("/health", h.healthCheck)

	audio := r.Group("/audio")
	{
		audio.GET("/metadata", h.listMetadata)
		audio.GET("/u/metadata", RequireIdentity(jwtSecret), h.listUserMetadata)
		audio.GET("/:id", h.getDocument)
		audio.POST("", h.createDocument)
		audio.PUT("/:id", h.updateDocument)
		audio.DELETE("/:id", h.deleteDocument)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "voicedoc-backend",
	})
}

func (h *Handler) listMetadata(c *gin.Context) {
	summaries, err := h.docs.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list metadata failed")
		utils.Fail(c, err)
		return
	}
	utils.Success(c, summaries)
}

func (h *Handler) listUserMetadata(c *gin.Context) {
	userID := c.GetString(userIDKey)
	summaries, err := h.docs.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("ownerId", userID).Msg("list user metadata failed")
		utils.Fail(c, err)
		return
	}
	utils.Success(c, summaries)
}

func (h *Handler) getDocument(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		utils.Error(c, http.StatusBadRequest, "audio id is required")
		return
	}

	doc, err := h.docs.Read(c.Request.Context(), id)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, doc)
}

func (h *Handler) createDocument(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "audio file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("opening uploaded file failed")
		utils.Error(c, http.StatusInternalServerError, "failed to read audio file")
		return
	}
	defer src.Close()

	in := document.CreateInput{
		DocumentName:  c.PostForm("documentName"),
		Transcription: c.PostForm("transcription"),
		Translation:   c.PostForm("translation"),
		Language:      c.PostForm("language"),
		OwnerID:       c.PostForm("ownerId"),
		Payload:       src,
		ContentType:   file.Header.Get("Content-Type"),
	}

	doc, err := h.docs.Create(c.Request.Context(), in)
	if err != nil {
		h.log.Error().Err(err).Str("documentName", in.DocumentName).Msg("create failed")
		utils.Fail(c, err)
		return
	}
	utils.Success(c, doc)
}

// immutableFields are rejected on update; the blob reference and owner are
// fixed at creation.
var immutableFields = map[string]bool{
	"blobKey": true, "blobUrl": true, "blobURL": true,
	"ownerId": true, "id": true, "_id": true,
	"createdAt": true, "updatedAt": true,
}

func (h *Handler) updateDocument(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		utils.Error(c, http.StatusBadRequest, "audio id is required")
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	for field := range raw {
		if immutableFields[field] {
			utils.Fail(c, apperr.Validation(field+" cannot be modified").WithDetail("field", field))
			return
		}
	}

	var upd model.DocumentUpdate
	if err := bindUpdate(raw, &upd); err != nil {
		utils.Fail(c, err)
		return
	}

	doc, err := h.docs.Update(c.Request.Context(), id, upd)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, doc)
}

func bindUpdate(raw map[string]json.RawMessage, upd *model.DocumentUpdate) error {
	for field, target := range map[string]**string{
		"documentName":  &upd.DocumentName,
		"transcription": &upd.Transcription,
		"translation":   &upd.Translation,
		"language":      &upd.Language,
	} {
		msg, ok := raw[field]
		if !ok || string(bytes.TrimSpace(msg)) == "null" {
			// null clears nothing; the field is left out of the update set.
			continue
		}
		var v string
		if err := json.Unmarshal(msg, &v); err != nil {
			return apperr.Validation(field + " must be a string")
		}
		*target = &v
	}
	return nil
}

func (h *Handler) deleteDocument(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		utils.Error(c, http.StatusBadRequest, "audio id is required")
		return
	}

	if err := h.docs.Delete(c.Request.Context(), id); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, gin.H{"message": "audio document " + id + " has been deleted"})
}
