package builder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MarcoPoloResearchLab/linkden/internal/blocks"
	"github.com/MarcoPoloResearchLab/linkden/internal/settings"
	"github.com/MarcoPoloResearchLab/linkden/internal/theme"
	"go.uber.org/zap"
)

// API is the server surface the builder drives.
type API interface {
	ListBlocks(ctx context.Context) ([]blocks.Block, error)
	HasDraft(ctx context.Context) (bool, error)
	CreateBlock(ctx context.Context, request blocks.CreateRequest) (blocks.Block, error)
	UpdateBlock(ctx context.Context, blockID string, fields blocks.UpdateFields) (blocks.Block, error)
	ToggleBlock(ctx context.Context, blockID string, enabled bool) (blocks.Block, error)
	DeleteBlock(ctx context.Context, blockID string) error
	ReorderBlocks(ctx context.Context, updates []blocks.PositionUpdate) error
	PublishAll(ctx context.Context) (int, error)
	GetSettings(ctx context.Context) (map[string]string, error)
	UpdateSettings(ctx context.Context, entries []settings.Entry) error
}

// Notifier shows transient success and error messages.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Action names a mutation for pending-state tracking.
type Action string

const (
	ActionAdd      Action = "add"
	ActionToggle   Action = "toggle"
	ActionDelete   Action = "delete"
	ActionSaveEdit Action = "save_edit"
	ActionReorder  Action = "reorder"
	ActionPublish  Action = "publish"
	ActionDelivery Action = "delivery"
)

// Toast copy.
const (
	MessageAdded          = "Block added"
	MessageAddFailed      = "Failed to add block"
	MessageUpdated        = "Block updated"
	MessageUpdateFailed   = "Failed to update block"
	MessageDeleted        = "Block deleted"
	MessageDeleteFailed   = "Failed to delete block"
	MessageSaved          = "Block saved"
	MessageSaveFailed     = "Failed to save block"
	MessageReorderFailed  = "Failed to reorder"
	MessagePublished      = "Changes published"
	MessagePublishFailed  = "Failed to publish"
	MessageDeliverySaved  = "Delivery setting saved"
	MessageDeliveryFailed = "Failed to update delivery setting"
	MessageLoadFailed     = "Failed to load blocks"
)

var (
	// ErrUnknownBlock indicates the id is not in the current list.
	ErrUnknownBlock = errors.New("builder: unknown block")
	// ErrNoEditor indicates SaveEdit was called without an open panel.
	ErrNoEditor = errors.New("builder: no block is being edited")
)

type Config struct {
	API         API
	Notifier    Notifier
	IDGenerator blocks.IDGenerator
	Logger      *zap.Logger
}

// Builder owns the admin view of the block list. Every mutation goes to the
// server and is followed by a refetch; local state is never changed
// optimistically. Concurrent mutations are not sequenced and the last refetch
// wins.
type Builder struct {
	api      API
	notifier Notifier
	ids      blocks.IDGenerator
	logger   *zap.Logger

	mu          sync.Mutex
	blocks      []blocks.Block
	hasDrafts   bool
	delivery    settings.DeliveryMode
	editor      *EditPanel
	showAddMenu bool
	draggedID   string
	previewMode theme.ColorMode
	pending     map[Action]int
}

func New(cfg Config) (*Builder, error) {
	if cfg.API == nil {
		return nil, errors.New("builder: api is required")
	}
	if cfg.IDGenerator == nil {
		return nil, errors.New("builder: id generator is required")
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = discardNotifier{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		api:         cfg.API,
		notifier:    notifier,
		ids:         cfg.IDGenerator,
		logger:      logger,
		delivery:    settings.DeliveryDatabase,
		previewMode: theme.ModeLight,
		pending:     make(map[Action]int),
	}, nil
}

// Load fetches the block list, the draft flag and the delivery setting.
func (b *Builder) Load(ctx context.Context) error {
	if err := b.refetch(ctx); err != nil {
		b.notifier.Error(MessageLoadFailed)
		return err
	}
	values, err := b.api.GetSettings(ctx)
	if err != nil {
		b.logger.Warn("settings load failed", zap.Error(err))
		return nil
	}
	b.mu.Lock()
	b.delivery = settings.ParseDeliveryMode(values[settings.KeyContactDelivery])
	b.mu.Unlock()
	return nil
}

func (b *Builder) refetch(ctx context.Context) error {
	list, err := b.api.ListBlocks(ctx)
	if err != nil {
		return fmt.Errorf("builder: list blocks: %w", err)
	}
	hasDrafts, err := b.api.HasDraft(ctx)
	if err != nil {
		return fmt.Errorf("builder: has draft: %w", err)
	}
	ordered := append([]blocks.Block(nil), list...)
	blocks.SortByPosition(ordered)

	b.mu.Lock()
	b.blocks = ordered
	b.hasDrafts = hasDrafts
	b.mu.Unlock()
	return nil
}

// invalidate refetches after a successful mutation. A failed refetch keeps
// the previous state.
func (b *Builder) invalidate(ctx context.Context) {
	if err := b.refetch(ctx); err != nil {
		b.logger.Warn("refetch after mutation failed", zap.Error(err))
		b.notifier.Error(MessageLoadFailed)
	}
}

// mutate runs one server mutation with pending tracking, toasts and
// invalidation.
func (b *Builder) mutate(ctx context.Context, action Action, success, failure string, call func() error) error {
	b.mu.Lock()
	b.pending[action]++
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.pending[action]--
		if b.pending[action] <= 0 {
			delete(b.pending, action)
		}
		b.mu.Unlock()
	}()

	if err := call(); err != nil {
		b.logger.Warn("builder mutation failed", zap.String("action", string(action)), zap.Error(err))
		b.notifier.Error(failure)
		return err
	}
	b.invalidate(ctx)
	if success != "" {
		b.notifier.Success(success)
	}
	return nil
}

// AddBlock appends a new enabled block of the kind with its default title.
func (b *Builder) AddBlock(ctx context.Context, kind blocks.Kind) error {
	id, err := b.ids.NewBlockID()
	if err != nil {
		b.logger.Warn("block id generation failed", zap.Error(err))
		b.notifier.Error(MessageAddFailed)
		return err
	}
	b.mu.Lock()
	position := len(b.blocks)
	b.showAddMenu = false
	b.mu.Unlock()

	title := blocks.DefaultTitle(kind)
	request := blocks.CreateRequest{
		ID:        id,
		Type:      string(kind),
		Title:     &title,
		Position:  position,
		IsEnabled: true,
	}
	return b.mutate(ctx, ActionAdd, MessageAdded, MessageAddFailed, func() error {
		_, err := b.api.CreateBlock(ctx, request)
		return err
	})
}

// ToggleEnabled flips the block's visibility.
func (b *Builder) ToggleEnabled(ctx context.Context, blockID string) error {
	block, ok := b.lookup(blockID)
	if !ok {
		b.notifier.Error(MessageUpdateFailed)
		return ErrUnknownBlock
	}
	return b.mutate(ctx, ActionToggle, MessageUpdated, MessageUpdateFailed, func() error {
		_, err := b.api.ToggleBlock(ctx, blockID, !block.IsEnabled)
		return err
	})
}

// DeleteBlock removes the block permanently.
func (b *Builder) DeleteBlock(ctx context.Context, blockID string) error {
	err := b.mutate(ctx, ActionDelete, MessageDeleted, MessageDeleteFailed, func() error {
		return b.api.DeleteBlock(ctx, blockID)
	})
	if err == nil {
		b.mu.Lock()
		if b.editor != nil && b.editor.BlockID() == blockID {
			b.editor = nil
		}
		b.mu.Unlock()
	}
	return err
}

// OpenEditor opens the edit panel for the block.
func (b *Builder) OpenEditor(blockID string) (*EditPanel, error) {
	block, ok := b.lookup(blockID)
	if !ok {
		return nil, ErrUnknownBlock
	}
	panel := NewEditPanel(block, nil)
	b.mu.Lock()
	b.editor = panel
	b.mu.Unlock()
	return panel, nil
}

// CloseEditor discards the open panel.
func (b *Builder) CloseEditor() {
	b.mu.Lock()
	b.editor = nil
	b.mu.Unlock()
}

// EditingBlock returns the open panel, if any.
func (b *Builder) EditingBlock() (*EditPanel, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editor, b.editor != nil
}

// SaveEdit sends the open panel's full field set. Success closes the panel.
func (b *Builder) SaveEdit(ctx context.Context) error {
	b.mu.Lock()
	panel := b.editor
	b.mu.Unlock()
	if panel == nil {
		return ErrNoEditor
	}
	fields := panel.Fields()
	err := b.mutate(ctx, ActionSaveEdit, MessageSaved, MessageSaveFailed, func() error {
		_, err := b.api.UpdateBlock(ctx, panel.BlockID(), fields)
		return err
	})
	if err == nil {
		b.mu.Lock()
		if b.editor == panel {
			b.editor = nil
		}
		b.mu.Unlock()
	}
	return err
}

// BeginDrag records the block being dragged.
func (b *Builder) BeginDrag(blockID string) {
	b.mu.Lock()
	b.draggedID = blockID
	b.mu.Unlock()
}

// Drop moves the dragged block onto the target.
func (b *Builder) Drop(ctx context.Context, targetID string) error {
	b.mu.Lock()
	draggedID := b.draggedID
	b.draggedID = ""
	b.mu.Unlock()
	return b.Reorder(ctx, draggedID, targetID)
}

// Reorder moves dragged to target's index and sends the full position
// rewrite as one batch. Dropping a block on itself or on an unknown id does
// nothing.
func (b *Builder) Reorder(ctx context.Context, draggedID, targetID string) error {
	b.mu.Lock()
	moved, changed := blocks.Move(b.blocks, draggedID, targetID)
	b.mu.Unlock()
	if !changed {
		return nil
	}
	updates := blocks.Positions(moved)
	return b.mutate(ctx, ActionReorder, "", MessageReorderFailed, func() error {
		return b.api.ReorderBlocks(ctx, updates)
	})
}

// PublishAll publishes every draft. It does nothing when there are no drafts.
func (b *Builder) PublishAll(ctx context.Context) error {
	if !b.HasDrafts() {
		return nil
	}
	return b.mutate(ctx, ActionPublish, MessagePublished, MessagePublishFailed, func() error {
		_, err := b.api.PublishAll(ctx)
		return err
	})
}

// SetContactDelivery writes the global contact_delivery setting.
func (b *Builder) SetContactDelivery(ctx context.Context, mode settings.DeliveryMode) error {
	b.mu.Lock()
	b.pending[ActionDelivery]++
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.pending[ActionDelivery]--
		if b.pending[ActionDelivery] <= 0 {
			delete(b.pending, ActionDelivery)
		}
		b.mu.Unlock()
	}()

	normalized := settings.ParseDeliveryMode(string(mode))
	err := b.api.UpdateSettings(ctx, []settings.Entry{{Key: settings.KeyContactDelivery, Value: string(normalized)}})
	if err != nil {
		b.logger.Warn("delivery update failed", zap.Error(err))
		b.notifier.Error(MessageDeliveryFailed)
		return err
	}
	b.mu.Lock()
	b.delivery = normalized
	b.mu.Unlock()
	b.notifier.Success(MessageDeliverySaved)
	return nil
}

// ToggleAddMenu opens or closes the add-block menu.
func (b *Builder) ToggleAddMenu() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.showAddMenu = !b.showAddMenu
	return b.showAddMenu
}

// SetPreviewMode switches the preview palette.
func (b *Builder) SetPreviewMode(mode theme.ColorMode) {
	b.mu.Lock()
	b.previewMode = theme.ParseColorMode(string(mode))
	b.mu.Unlock()
}

// Blocks returns a copy of the ordered list.
func (b *Builder) Blocks() []blocks.Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]blocks.Block(nil), b.blocks...)
}

// PreviewBlocks returns the enabled blocks in order.
func (b *Builder) PreviewBlocks() []blocks.Block {
	return blocks.PreviewBlocks(b.Blocks())
}

func (b *Builder) HasDrafts() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasDrafts
}

func (b *Builder) ShowAddMenu() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.showAddMenu
}

func (b *Builder) DraggedID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draggedID
}

func (b *Builder) PreviewMode() theme.ColorMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.previewMode
}

func (b *Builder) ContactDelivery() settings.DeliveryMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.delivery
}

// IsPending reports whether a mutation of the action is in flight.
func (b *Builder) IsPending(action Action) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending[action] > 0
}

func (b *Builder) lookup(blockID string) (blocks.Block, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, block := range b.blocks {
		if block.ID == blockID {
			return block, true
		}
	}
	return blocks.Block{}, false
}

type discardNotifier struct{}

func (discardNotifier) Success(string) {}
func (discardNotifier) Error(string)   {}
