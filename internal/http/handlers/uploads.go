package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-company-site/internal/services"
)

// AdminUpload godoc
// @Summary     Upload a product image, category image or catalog (admin)
// @Description Images up to 5 MB (png, jpeg, webp, gif); catalogs up to 10 MB (pdf). The type is sniffed from the content.
// @Tags        Uploads
// @Accept      multipart/form-data
// @Produce     json
// @Param       kind  path      string  true  "product-image | category-image | catalog"
// @Param       file  formData  file    true  "File to upload"
// @Success     200   {object}  handlers.URLResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Rejected (type, size or kind)"
// @Failure     401   {object}  handlers.ErrorResponse
// @Failure     500   {object}  handlers.ErrorResponse
// @Router      /api/admin/uploads/{kind} [post]
func (h *Handlers) AdminUpload(c *gin.Context) {
	kind := c.Param("kind")
	if kind == services.KindResume {
		fail(c, http.StatusBadRequest, ErrCodeUploadRejected, "resumes are uploaded through /api/uploads/resume")
		return
	}
	h.upload(c, kind)
}

// ResumeUpload godoc
// @Summary     Upload a resume
// @Description Public, rate limited. PDF, DOC or DOCX up to 10 MB. The returned URL is time-limited when the backend supports signing.
// @Tags        Uploads
// @Accept      multipart/form-data
// @Produce     json
// @Param       file  formData  file  true  "Resume"
// @Success     200   {object}  handlers.URLResponse
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     429   {object}  handlers.ErrorResponse
// @Failure     500   {object}  handlers.ErrorResponse
// @Router      /api/uploads/resume [post]
func (h *Handlers) ResumeUpload(c *gin.Context) {
	h.upload(c, services.KindResume)
}

func (h *Handlers) upload(c *gin.Context, kind string) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			failService(c, "upload."+kind, "", fmt.Errorf("%w: request exceeds %d MB", services.ErrUploadTooLarge, tooBig.Limit>>20))
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeUploadRejected, "multipart field \"file\" is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		failService(c, "upload.open", kind, err)
		return
	}
	defer f.Close()

	url, err := h.d.Uploads.Upload(c.Request.Context(), kind, services.UploadFile{
		Name:         fh.Filename,
		DeclaredType: fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Body:         f,
	})
	if err != nil {
		failService(c, "upload."+kind, fh.Filename, err)
		return
	}
	ok(c, http.StatusOK, URLResponse{URL: url})
}
