package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "dompet/internal/errors"
	"dompet/internal/logger"
	"dompet/internal/models"
	"dompet/internal/services"
)

// multipartOverhead covers the form boundaries, part headers and the type field.
const multipartOverhead = 64 << 10

var errUploadTooLarge = apperrors.WithMessage(apperrors.ErrInvalidFile, "file exceeds the upload limit")

// ReceiptHandler accepts receipt uploads.
type ReceiptHandler struct {
	receiptService services.ReceiptServicer
	auditService   services.AuditServicer
	maxUploadBytes int64
}

// NewReceiptHandler creates a new ReceiptHandler. Request bodies larger than
// maxUploadBytes plus multipart overhead are rejected before they are parsed;
// a non-positive limit disables the cap.
func NewReceiptHandler(receiptService services.ReceiptServicer, auditService services.AuditServicer, maxUploadBytes int64) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService, auditService: auditService, maxUploadBytes: maxUploadBytes}
}

// UploadReceiptResponse is the pending transaction created for the upload.
type UploadReceiptResponse struct {
	Success     bool               `json:"success"`
	Transaction models.Transaction `json:"transaction"`
	FileURL     string             `json:"fileUrl"`
}

// UploadReceipt stores a receipt image or PDF
// @Summary     Upload a receipt
// @Description Store an image or PDF (max 5MB) and record a zero-amount transaction referencing it
// @Tags        transactions
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file   true "Receipt file"
// @Param       type formData string true "income or expense"
// @Success     201 {object} UploadReceiptResponse "Receipt stored"
// @Failure     400 {object} ErrorResponse "Invalid file or type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Storage failure"
// @Router      /transaction/file [post]
func (h *ReceiptHandler) UploadReceipt(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if h.maxUploadBytes > 0 {
		limit := h.maxUploadBytes + multipartOverhead
		if c.Request.ContentLength > limit {
			respondWithError(c, errUploadTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		if _, err := c.MultipartForm(); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondWithError(c, errUploadTooLarge)
				return
			}
		}
	}

	txType, ok := models.ParseTransactionType(c.PostForm("type"))
	if !ok {
		respondWithError(c, apperrors.ErrInvalidTransactionType)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidFile, "file is required"))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidFile, err))
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logger.FromContext(c.Request.Context()).Warnw("failed to close upload", "error", cerr)
		}
	}()

	result, err := h.receiptService.UploadReceipt(c.Request.Context(), userID, services.ReceiptInput{
		Type:        txType,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, "upload", "transaction", result.Transaction.ID, c.ClientIP(),
		map[string]interface{}{"file": *result.Transaction.File, "size": header.Size})

	c.JSON(http.StatusCreated, UploadReceiptResponse{
		Success:     true,
		Transaction: *result.Transaction,
		FileURL:     result.FileURL,
	})
}
