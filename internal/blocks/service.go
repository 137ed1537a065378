package blocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

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
	opServiceNew  = "blocks.service.new"
	opList        = "blocks.list"
	opHasDraft    = "blocks.has_draft"
	opCreate      = "blocks.create"
	opUpdate      = "blocks.update"
	opDelete      = "blocks.delete"
	opToggle      = "blocks.toggle_enabled"
	opReorder     = "blocks.reorder"
	opPublishAll  = "blocks.publish_all"
	queryProfile  = "profile_id = ?"
	queryProfileB = "profile_id = ? AND id = ?"
	orderPosition = "position ASC, created_at ASC, id ASC"

	reasonMissingDatabase = "missing_database"
	reasonInvalidInput    = "invalid_input"
	reasonNotFound        = "not_found"
	reasonDuplicate       = "duplicate_id"
	reasonQueryFailed     = "query_failed"
	reasonWriteFailed     = "write_failed"
	reasonSnapshotFailed  = "snapshot_failed"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service persists blocks for a profile and enforces position contiguity.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, reasonMissingDatabase, errMissingDatabase)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{
		db:     cfg.Database,
		clock:  clock,
		logger: logger,
	}, nil
}

// List returns every block of the profile ordered by position.
func (s *Service) List(ctx context.Context, profileID ProfileID) ([]Block, error) {
	if s.db == nil {
		s.logError(opList, reasonMissingDatabase, errMissingDatabase)
		return nil, newServiceError(opList, reasonMissingDatabase, errMissingDatabase)
	}
	var list []Block
	if err := s.db.WithContext(ctx).
		Where(queryProfile, profileID.String()).
		Order(orderPosition).
		Find(&list).Error; err != nil {
		s.logError(opList, reasonQueryFailed, err, zap.String("profile_id", profileID.String()))
		return nil, newServiceError(opList, reasonQueryFailed, err)
	}
	return list, nil
}

// HasDraft reports whether any block of the profile has unpublished changes.
func (s *Service) HasDraft(ctx context.Context, profileID ProfileID) (bool, error) {
	if s.db == nil {
		s.logError(opHasDraft, reasonMissingDatabase, errMissingDatabase)
		return false, newServiceError(opHasDraft, reasonMissingDatabase, errMissingDatabase)
	}
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&Block{}).
		Where(queryProfile+" AND status = ?", profileID.String(), StatusDraft).
		Count(&count).Error; err != nil {
		s.logError(opHasDraft, reasonQueryFailed, err, zap.String("profile_id", profileID.String()))
		return false, newServiceError(opHasDraft, reasonQueryFailed, err)
	}
	return count > 0, nil
}

// Create inserts a draft block at the requested position, shifting later
// blocks down. Out-of-range positions append.
func (s *Service) Create(ctx context.Context, profileID ProfileID, request CreateRequest) (Block, error) {
	if s.db == nil {
		s.logError(opCreate, reasonMissingDatabase, errMissingDatabase)
		return Block{}, newServiceError(opCreate, reasonMissingDatabase, errMissingDatabase)
	}
	blockID, err := NewBlockID(request.ID)
	if err != nil {
		return Block{}, newServiceError(opCreate, reasonInvalidInput, err)
	}
	kind := strings.TrimSpace(request.Type)
	if kind == "" {
		return Block{}, newServiceError(opCreate, reasonInvalidInput, ErrInvalidKind)
	}

	now := s.clock().UTC()
	created := Block{
		ID:        blockID.String(),
		ProfileID: profileID.String(),
		Type:      kind,
		Title:     normalizeOptional(request.Title),
		Config:    "{}",
		IsEnabled: request.IsEnabled,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&Block{}).Where("id = ?", blockID.String()).Count(&existing).Error; err != nil {
			return newServiceError(opCreate, reasonQueryFailed, err)
		}
		if existing > 0 {
			return newServiceError(opCreate, reasonDuplicate, ErrDuplicateBlockID)
		}

		var count int64
		if err := tx.Model(&Block{}).Where(queryProfile, profileID.String()).Count(&count).Error; err != nil {
			return newServiceError(opCreate, reasonQueryFailed, err)
		}
		position := request.Position
		if position < 0 || position > int(count) {
			position = int(count)
		}
		created.Position = position

		if position < int(count) {
			if err := tx.Model(&Block{}).
				Where(queryProfile+" AND position >= ?", profileID.String(), position).
				UpdateColumn("position", gorm.Expr("position + 1")).Error; err != nil {
				return newServiceError(opCreate, reasonWriteFailed, err)
			}
		}
		if err := tx.Create(&created).Error; err != nil {
			return newServiceError(opCreate, reasonWriteFailed, err)
		}
		return nil
	})
	if txErr != nil {
		s.logFailure(opCreate, txErr,
			zap.String("profile_id", profileID.String()),
			zap.String("block_id", blockID.String()))
		return Block{}, txErr
	}
	return created, nil
}

// Update applies the set fields and marks the block as draft.
func (s *Service) Update(ctx context.Context, profileID ProfileID, blockID BlockID, fields UpdateFields) (Block, error) {
	if s.db == nil {
		s.logError(opUpdate, reasonMissingDatabase, errMissingDatabase)
		return Block{}, newServiceError(opUpdate, reasonMissingDatabase, errMissingDatabase)
	}
	updates := fields.columns()
	if len(updates) == 0 {
		return s.find(ctx, opUpdate, profileID, blockID)
	}
	updates["status"] = StatusDraft
	updates["updated_at"] = s.clock().UTC()
	return s.applyUpdates(ctx, opUpdate, profileID, blockID, updates)
}

// ToggleEnabled sets the enabled flag and marks the block as draft.
func (s *Service) ToggleEnabled(ctx context.Context, profileID ProfileID, blockID BlockID, enabled bool) (Block, error) {
	if s.db == nil {
		s.logError(opToggle, reasonMissingDatabase, errMissingDatabase)
		return Block{}, newServiceError(opToggle, reasonMissingDatabase, errMissingDatabase)
	}
	return s.applyUpdates(ctx, opToggle, profileID, blockID, map[string]any{
		"is_enabled": enabled,
		"status":     StatusDraft,
		"updated_at": s.clock().UTC(),
	})
}

// Delete removes the block and closes the gap in positions.
func (s *Service) Delete(ctx context.Context, profileID ProfileID, blockID BlockID) error {
	if s.db == nil {
		s.logError(opDelete, reasonMissingDatabase, errMissingDatabase)
		return newServiceError(opDelete, reasonMissingDatabase, errMissingDatabase)
	}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where(queryProfileB, profileID.String(), blockID.String()).Delete(&Block{})
		if result.Error != nil {
			return newServiceError(opDelete, reasonWriteFailed, result.Error)
		}
		if result.RowsAffected == 0 {
			return newServiceError(opDelete, reasonNotFound, ErrBlockNotFound)
		}
		if err := CompactPositions(tx, profileID.String()); err != nil {
			return newServiceError(opDelete, reasonWriteFailed, err)
		}
		return nil
	})
	if txErr != nil {
		s.logFailure(opDelete, txErr, zap.String("block_id", blockID.String()))
		return txErr
	}
	return nil
}

// Reorder rewrites positions from a batch covering every block of the profile.
func (s *Service) Reorder(ctx context.Context, profileID ProfileID, updates []PositionUpdate) error {
	if s.db == nil {
		s.logError(opReorder, reasonMissingDatabase, errMissingDatabase)
		return newServiceError(opReorder, reasonMissingDatabase, errMissingDatabase)
	}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []Block
		if err := tx.Select("id", "position").
			Where(queryProfile, profileID.String()).
			Find(&current).Error; err != nil {
			return newServiceError(opReorder, reasonQueryFailed, err)
		}
		existing := make([]string, 0, len(current))
		positions := make(map[string]int, len(current))
		for _, block := range current {
			existing = append(existing, block.ID)
			positions[block.ID] = block.Position
		}
		if err := validatePermutation(existing, updates); err != nil {
			return newServiceError(opReorder, reasonInvalidInput, err)
		}
		for _, update := range updates {
			if positions[update.ID] == update.Position {
				continue
			}
			if err := tx.Model(&Block{}).
				Where(queryProfileB, profileID.String(), update.ID).
				UpdateColumn("position", update.Position).Error; err != nil {
				return newServiceError(opReorder, reasonWriteFailed, err)
			}
		}
		return nil
	})
	if txErr != nil {
		s.logFailure(opReorder, txErr, zap.String("profile_id", profileID.String()))
		return txErr
	}
	return nil
}

// PublishAll moves every draft block of the profile to published and returns
// how many changed. With no drafts it is a no-op.
func (s *Service) PublishAll(ctx context.Context, profileID ProfileID) (int, error) {
	if s.db == nil {
		s.logError(opPublishAll, reasonMissingDatabase, errMissingDatabase)
		return 0, newServiceError(opPublishAll, reasonMissingDatabase, errMissingDatabase)
	}
	published := 0
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var drafts []Block
		if err := tx.Where(queryProfile+" AND status = ?", profileID.String(), StatusDraft).
			Find(&drafts).Error; err != nil {
			return newServiceError(opPublishAll, reasonQueryFailed, err)
		}
		for _, draft := range drafts {
			encoded, err := takeSnapshot(draft)
			if err != nil {
				return newServiceError(opPublishAll, reasonSnapshotFailed, err)
			}
			if err := tx.Model(&Block{}).
				Where(queryProfileB, profileID.String(), draft.ID).
				Updates(map[string]any{
					"status":             StatusPublished,
					"published_snapshot": encoded,
				}).Error; err != nil {
				return newServiceError(opPublishAll, reasonWriteFailed, err)
			}
			published++
		}
		return nil
	})
	if txErr != nil {
		s.logFailure(opPublishAll, txErr, zap.String("profile_id", profileID.String()))
		return 0, txErr
	}
	if published > 0 {
		s.loggerOrDefault().Info("blocks published",
			zap.String("profile_id", profileID.String()),
			zap.Int("count", published))
	}
	return published, nil
}

// CompactPositions rewrites the profile's positions to 0..N-1 in current order.
func CompactPositions(tx *gorm.DB, profileID string) error {
	var ordered []Block
	if err := tx.Select("id", "position", "created_at").
		Where(queryProfile, profileID).
		Order(orderPosition).
		Find(&ordered).Error; err != nil {
		return err
	}
	for index, block := range ordered {
		if block.Position == index {
			continue
		}
		if err := tx.Model(&Block{}).
			Where(queryProfileB, profileID, block.ID).
			UpdateColumn("position", index).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) applyUpdates(ctx context.Context, operation string, profileID ProfileID, blockID BlockID, updates map[string]any) (Block, error) {
	result := s.db.WithContext(ctx).
		Model(&Block{}).
		Where(queryProfileB, profileID.String(), blockID.String()).
		Updates(updates)
	if result.Error != nil {
		s.logError(operation, reasonWriteFailed, result.Error, zap.String("block_id", blockID.String()))
		return Block{}, newServiceError(operation, reasonWriteFailed, result.Error)
	}
	if result.RowsAffected == 0 {
		return Block{}, newServiceError(operation, reasonNotFound, ErrBlockNotFound)
	}
	return s.find(ctx, operation, profileID, blockID)
}

func (s *Service) find(ctx context.Context, operation string, profileID ProfileID, blockID BlockID) (Block, error) {
	var block Block
	err := s.db.WithContext(ctx).
		Where(queryProfileB, profileID.String(), blockID.String()).
		Take(&block).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Block{}, newServiceError(operation, reasonNotFound, ErrBlockNotFound)
	}
	if err != nil {
		s.logError(operation, reasonQueryFailed, err, zap.String("block_id", blockID.String()))
		return Block{}, newServiceError(operation, reasonQueryFailed, err)
	}
	return block, nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
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

// logFailure logs transaction errors; not-found and invalid input are expected
// client mistakes and stay at debug.
func (s *Service) logFailure(operation string, err error, fields ...zap.Field) {
	if errors.Is(err, ErrBlockNotFound) || errors.Is(err, ErrInvalidReorder) || errors.Is(err, ErrDuplicateBlockID) {
		s.loggerOrDefault().Debug("blocks request rejected",
			append([]zap.Field{zap.String("operation", operation), zap.Error(err)}, fields...)...)
		return
	}
	s.logError(operation, "transaction_failed", err, fields...)
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
	s.loggerOrDefault().Error("blocks service error", attrs...)
}
