package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/dharsanguruparan/designexport/internal/model"
	"github.com/dharsanguruparan/designexport/internal/signing"
)

const maxBodyBytes = 1 << 20

// batchBody is a BatchRequest plus the async switch.
type batchBody struct {
	model.BatchRequest
	Async bool `json:"async"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req model.ExportRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	asset, err := s.exporter.ExportAsset(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, asset)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var body batchBody
	if err := decodeBody(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Async {
		if s.batches == nil {
			respondError(w, http.StatusServiceUnavailable, "background batches are not configured")
			return
		}
		job, err := s.batches.Enqueue(r.Context(), body.BatchRequest)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusAccepted, job)
		return
	}
	result, err := s.exporter.BatchExport(r.Context(), body.BatchRequest)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	if s.batches == nil {
		respondError(w, http.StatusNotFound, "batch not found")
		return
	}
	job, err := s.batches.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleDesignFileAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.exporter.GetExportedAssets(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assets)
}

func (s *Server) handleProjectAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.exporter.GetProjectAssets(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, assets)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := s.exporter.GetExportedAsset(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := s.exporter.DeleteExportedAsset(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSignedURL prefers the object store's own presigned URL and falls back
// to an HMAC link served by /download.
func (s *Server) handleSignedURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	asset, err := s.exporter.GetExportedAsset(ctx, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if p, ok := s.objects.(Presigner); ok {
		path, err := s.objects.PathFromURL(asset.FileURL)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		signed, err := p.PresignURL(ctx, path, s.cfg.SignedURLTTL)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"url": signed})
		return
	}

	q, expiresAt := s.signer.Query(asset.ID, s.cfg.SignedURLTTL)
	link := fmt.Sprintf("%s/download?%s", s.cfg.PublicBaseURL, q.Encode())
	respondJSON(w, http.StatusOK, map[string]string{
		"url":       link,
		"expiresAt": expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	assetID := q.Get("asset")
	if err := s.signer.Verify(assetID, q.Get("expires"), q.Get("signature")); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, signing.ErrExpired) {
			status = http.StatusGone
		}
		respondError(w, status, err.Error())
		return
	}
	asset, err := s.exporter.GetExportedAsset(r.Context(), assetID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	path, err := s.objects.PathFromURL(asset.FileURL)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	filename := fmt.Sprintf("%s@%dx.%s", asset.Name, asset.Scale, asset.Format)
	s.writeObject(w, r, path, filename)
}

func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	s.writeObject(w, r, r.PathValue("path"), "")
}

func (s *Server) writeObject(w http.ResponseWriter, r *http.Request, path, filename string) {
	data, contentType, err := s.objects.Get(r.Context(), path)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if filename != "" {
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Write object response")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}
