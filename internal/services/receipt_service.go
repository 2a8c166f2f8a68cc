package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "dompet/internal/errors"
	"dompet/internal/logger"
	"dompet/internal/models"
	"dompet/internal/storage"
	"dompet/internal/uuid"
)

// sniffLen is how many leading bytes are read to detect the file type.
const sniffLen = 3072

// receiptService stores uploaded receipts and records them as pending transactions.
type receiptService struct {
	db       *gorm.DB
	store    storage.ObjectStore
	maxBytes int64
	now      func() time.Time
}

// NewReceiptService creates a new ReceiptServicer.
func NewReceiptService(db *gorm.DB, store storage.ObjectStore, maxBytes int64) ReceiptServicer {
	return &receiptService{db: db, store: store, maxBytes: maxBytes, now: time.Now}
}

// UploadReceipt checks the file, uploads it and inserts a zero-amount
// transaction referencing it. The object is removed again if the insert fails.
func (s *receiptService) UploadReceipt(ctx context.Context, userID string, input ReceiptInput) (*ReceiptResult, error) {
	if input.Type != models.TransactionTypeIncome && input.Type != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if input.Body == nil || input.Size <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidFile, "file is required")
	}
	if input.Size > s.maxBytes {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidFile, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(input.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, apperrors.Wrap(apperrors.ErrInvalidFile, err)
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	if !isReceiptType(mtype) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidFile, "only image and PDF files are allowed")
	}

	db := s.db.WithContext(ctx)
	account, err := findAccount(db, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	objectPath := receiptPath(userID, now, mtype.Extension())
	body := io.LimitReader(io.MultiReader(bytes.NewReader(head), input.Body), s.maxBytes)

	fileURL, err := s.store.Upload(ctx, objectPath, body, mtype.String())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, err)
	}

	txn := &models.Transaction{
		UserID:    userID,
		AccountID: account.ID,
		Type:      input.Type,
		Amount:    decimal.Zero,
		Date:      now.UTC(),
		File:      &objectPath,
		FileURL:   &fileURL,
	}
	if err := db.Create(txn).Error; err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), objectPath); delErr != nil {
			logger.FromContext(ctx).Errorw("failed to remove orphaned receipt",
				"error", delErr,
				"path", objectPath,
			)
		}
		return nil, apperrors.Wrap(apperrors.ErrTransactionInsert, err)
	}

	return &ReceiptResult{Transaction: txn, FileURL: fileURL}, nil
}

func isReceiptType(m *mimetype.MIME) bool {
	return strings.HasPrefix(m.String(), "image/") || m.Is("application/pdf")
}

// receiptPath builds "<userID>/<unixMillis>-<random><ext>".
func receiptPath(userID string, now time.Time, ext string) string {
	random := strings.ReplaceAll(uuid.New(), "-", "")
	return fmt.Sprintf("%s/%d-%s%s", userID, now.UnixMilli(), random[len(random)-8:], ext)
}
