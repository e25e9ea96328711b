package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()

	// ErrInvalidVariant indicates the caller supplied an incomplete or
	// out-of-range variant payload; no store access was attempted.
	ErrInvalidVariant = errors.New("catalog: invalid variant input")
	// ErrVariantNotFound indicates the referenced variant id has no row.
	ErrVariantNotFound = errors.New("catalog: variant not found")
)

// ServiceError wraps a failure with an operation-scoped code.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew    = "catalog.service.new"
	opCreateVariant = "catalog.create_variant"
	opListVariants  = "catalog.list_variants"
	opUpdateVariant = "catalog.update_variant"
	opDeleteVariant = "catalog.delete_variant"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig carries the collaborators for the variant directory service.
// Broadcaster may be nil, in which case mutation events are not emitted.
type ServiceConfig struct {
	Database    *gorm.DB
	Broadcaster Broadcaster
	Logger      *zap.Logger
}

// Service implements variant CRUD over the relational store and publishes a
// change event after every successful mutation.
type Service struct {
	db          *gorm.DB
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewService validates the configuration and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:          cfg.Database,
		broadcaster: cfg.Broadcaster,
		logger:      logger,
	}, nil
}

// CreateVariant inserts a new variant row with zeroed counters and emits
// variant:created with the stored state. ProductID and Name are required;
// Price and Stock default to zero.
func (s *Service) CreateVariant(ctx context.Context, input CreateVariantInput) (Variant, error) {
	if s.db == nil {
		s.logError(opCreateVariant, "missing_database", errMissingDatabase)
		return Variant{}, newServiceError(opCreateVariant, "missing_database", errMissingDatabase)
	}
	if input.ProductID <= 0 {
		return Variant{}, newServiceError(opCreateVariant, "missing_product",
			fmt.Errorf("%w: product reference is required", ErrInvalidVariant))
	}
	if input.Name == "" {
		return Variant{}, newServiceError(opCreateVariant, "missing_name",
			fmt.Errorf("%w: variant name is required", ErrInvalidVariant))
	}
	if input.Price < 0 {
		return Variant{}, newServiceError(opCreateVariant, "negative_price",
			fmt.Errorf("%w: price must not be negative", ErrInvalidVariant))
	}
	if input.Stock < 0 {
		return Variant{}, newServiceError(opCreateVariant, "negative_stock",
			fmt.Errorf("%w: stock must not be negative", ErrInvalidVariant))
	}

	variant := Variant{
		ProductID:       input.ProductID,
		Name:            input.Name,
		Price:           input.Price,
		Stock:           input.Stock,
		VariantImageURL: input.VariantImageURL,
		ProductImageURL: input.ProductImageURL,
		Pending:         0,
		Confirmed:       0,
	}
	if err := s.db.WithContext(ctx).Create(&variant).Error; err != nil {
		s.logError(opCreateVariant, "insert_failed", err,
			zap.Int64("product_id", input.ProductID),
			zap.String("name", input.Name))
		return Variant{}, newServiceError(opCreateVariant, "insert_failed", err)
	}

	s.emit(EventVariantCreated, variant)
	return variant, nil
}

// ListVariants returns every variant joined with its parent product's name,
// ordered by product name then variant name. Variants whose product row no
// longer exists are excluded by the inner join.
func (s *Service) ListVariants(ctx context.Context) ([]VariantView, error) {
	if s.db == nil {
		s.logError(opListVariants, "missing_database", errMissingDatabase)
		return nil, newServiceError(opListVariants, "missing_database", errMissingDatabase)
	}

	views := make([]VariantView, 0)
	err := s.db.WithContext(ctx).
		Table("variants").
		Select("variants.id, variants.product_id, products.name AS product_name, " +
			"variants.name, variants.price, variants.stock, " +
			"variants.variant_image_url, variants.product_image_url, " +
			"variants.pending, variants.confirmed").
		Joins("INNER JOIN products ON products.id = variants.product_id").
		Order("products.name, variants.name").
		Scan(&views).Error
	if err != nil {
		s.logError(opListVariants, "query_failed", err)
		return nil, newServiceError(opListVariants, "query_failed", err)
	}
	return views, nil
}

// UpdateVariant applies a partial update. Absent name/price/stock fields
// coalesce to the stored values; image slots are written only when supplied.
// The write is attempted optimistically and a missing row is inferred from
// the affected-row count. The canonical post-update row is re-read, emitted
// as variant:updated, and returned.
func (s *Service) UpdateVariant(ctx context.Context, variantID int64, patch VariantPatch) (Variant, error) {
	if s.db == nil {
		s.logError(opUpdateVariant, "missing_database", errMissingDatabase)
		return Variant{}, newServiceError(opUpdateVariant, "missing_database", errMissingDatabase)
	}
	if patch.Price != nil && *patch.Price < 0 {
		return Variant{}, newServiceError(opUpdateVariant, "negative_price",
			fmt.Errorf("%w: price must not be negative", ErrInvalidVariant))
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return Variant{}, newServiceError(opUpdateVariant, "negative_stock",
			fmt.Errorf("%w: stock must not be negative", ErrInvalidVariant))
	}

	// A nil pointer binds as SQL NULL, so COALESCE keeps the stored value.
	updates := map[string]any{
		"name":  gorm.Expr("COALESCE(?, name)", patch.Name),
		"price": gorm.Expr("COALESCE(?, price)", patch.Price),
		"stock": gorm.Expr("COALESCE(?, stock)", patch.Stock),
	}
	if patch.VariantImageURL != nil {
		updates["variant_image_url"] = *patch.VariantImageURL
	}
	if patch.ProductImageURL != nil {
		updates["product_image_url"] = *patch.ProductImageURL
	}

	result := s.db.WithContext(ctx).
		Model(&Variant{}).
		Where("id = ?", variantID).
		Updates(updates)
	if result.Error != nil {
		s.logError(opUpdateVariant, "update_failed", result.Error, zap.Int64("variant_id", variantID))
		return Variant{}, newServiceError(opUpdateVariant, "update_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return Variant{}, newServiceError(opUpdateVariant, "variant_not_found", ErrVariantNotFound)
	}

	var updated Variant
	if err := s.db.WithContext(ctx).Where("id = ?", variantID).Take(&updated).Error; err != nil {
		s.logError(opUpdateVariant, "reload_failed", err, zap.Int64("variant_id", variantID))
		return Variant{}, newServiceError(opUpdateVariant, "reload_failed", err)
	}

	s.emit(EventVariantUpdated, updated)
	return updated, nil
}

// DeleteVariant removes a variant. The identity pair is read before the
// delete because the row cannot be re-read afterwards; variant:deleted is
// emitted only once the delete has succeeded.
func (s *Service) DeleteVariant(ctx context.Context, variantID int64) (DeletedVariant, error) {
	if s.db == nil {
		s.logError(opDeleteVariant, "missing_database", errMissingDatabase)
		return DeletedVariant{}, newServiceError(opDeleteVariant, "missing_database", errMissingDatabase)
	}

	var existing Variant
	err := s.db.WithContext(ctx).
		Select("id", "product_id").
		Where("id = ?", variantID).
		Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DeletedVariant{}, newServiceError(opDeleteVariant, "variant_not_found", ErrVariantNotFound)
	}
	if err != nil {
		s.logError(opDeleteVariant, "select_failed", err, zap.Int64("variant_id", variantID))
		return DeletedVariant{}, newServiceError(opDeleteVariant, "select_failed", err)
	}

	if err := s.db.WithContext(ctx).Where("id = ?", variantID).Delete(&Variant{}).Error; err != nil {
		s.logError(opDeleteVariant, "delete_failed", err, zap.Int64("variant_id", variantID))
		return DeletedVariant{}, newServiceError(opDeleteVariant, "delete_failed", err)
	}

	deleted := DeletedVariant{VariantID: existing.ID, ProductID: existing.ProductID}
	s.emit(EventVariantDeleted, deleted)
	return deleted, nil
}

func (s *Service) emit(event string, payload any) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Emit(event, payload)
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil {
		return noOpLogger
	}
	if s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("catalog service error", attrs...)
}
