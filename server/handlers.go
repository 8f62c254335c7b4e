package server

import (
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/internal/imageutil"
)

// User-facing messages.
const (
	msgNoInput          = "No input provided."
	msgInvalidImage     = "Invalid image uploaded."
	msgUnknownAnalysis  = "Unknown analysis type."
	msgAnalysisNotFound = "Analysis not found."
	msgUploadTooLarge   = "Upload exceeds %d bytes."
)

const (
	formFieldNote  = "note"
	formFieldImage = "image"

	defaultListLimit = 50
	maxListLimit     = 500
)

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, core.ErrorResponse(msg))
}

func (s *Server) analyze(c *gin.Context) {
	if c.Request.ContentLength > s.opts.MaxUploadBytes {
		errorJSON(c, http.StatusRequestEntityTooLarge, fmt.Sprintf(msgUploadTooLarge, s.opts.MaxUploadBytes))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	// FormFile parses the whole body, including url-encoded forms.
	fh, err := c.FormFile(formFieldImage)
	switch {
	case err == nil:
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorJSON(c, http.StatusRequestEntityTooLarge, fmt.Sprintf(msgUploadTooLarge, tooLarge.Limit))
			return
		}
		errorJSON(c, http.StatusBadRequest, msgInvalidImage)
		return
	}

	in := core.Input{Note: c.PostForm(formFieldNote)}

	if fh != nil && fh.Filename != "" {
		img, err := readImage(fh, s.opts.MaxImagePixels)
		if err != nil {
			s.logger.Warn("server.analyze.invalid_image", "filename", fh.Filename, "error", err.Error())
			errorJSON(c, http.StatusBadRequest, msgInvalidImage)
			return
		}
		in.Image = img
	}

	if err := in.Validate(); err != nil {
		errorJSON(c, http.StatusBadRequest, msgNoInput)
		return
	}

	resp := s.analyzer.Analyze(c.Request.Context(), in)
	if resp.Error == core.ErrUnknownAnalysisType.Error() {
		resp = core.ErrorResponse(msgUnknownAnalysis)
	}

	c.JSON(http.StatusOK, resp)
}

func readImage(fh *multipart.FileHeader, maxPixels int64) (image.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return imageutil.DecodeRGB(data, imageutil.WithMaxPixels(maxPixels))
}

func (s *Server) getAnalysis(c *gin.Context) {
	rec, err := s.opts.Store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, core.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, msgAnalysisNotFound)
		return
	}
	if err != nil {
		s.logger.Error("server.history.get_error", "error", err.Error())
		errorJSON(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (s *Server) listAnalyses(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			errorJSON(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	recs, err := s.opts.Store.List(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("server.history.list_error", "error", err.Error())
		errorJSON(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": recs})
}
