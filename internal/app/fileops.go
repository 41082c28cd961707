package app

import (
	"context"
	"fmt"
	"path"
	"strings"

	"drivego/internal/domain"
)

// ConflictChoice is the user's resolution for a single naming collision.
type ConflictChoice string

const (
	ConflictRename  ConflictChoice = "rename"
	ConflictReplace ConflictChoice = "replace"
	ConflictSkip    ConflictChoice = "skip"
)

// ConflictItem is one colliding entry awaiting a decision.
type ConflictItem struct {
	Name     string
	IsFolder bool
}

// ConflictResolution pairs an item with the chosen outcome. NewName is set
// only for rename choices.
type ConflictResolution struct {
	Item    ConflictItem
	Choice  ConflictChoice
	NewName string
}

// ConflictResolver walks a batch of naming collisions sequentially. Choices
// are collected per item; "apply to all" stamps the current choice onto every
// remaining item and finishes the walk.
type ConflictResolver struct {
	items    []ConflictItem
	index    int
	taken    map[string]bool
	resolved []ConflictResolution
}

func NewConflictResolver(items []ConflictItem, existingNames []string) *ConflictResolver {
	taken := make(map[string]bool, len(existingNames))
	for _, name := range existingNames {
		taken[strings.ToLower(name)] = true
	}

	return &ConflictResolver{
		items: items,
		taken: taken,
	}
}

// Current returns the item awaiting a decision, or false when the walk is done.
func (r *ConflictResolver) Current() (ConflictItem, bool) {
	if r.index >= len(r.items) {
		return ConflictItem{}, false
	}

	return r.items[r.index], true
}

// Remaining reports how many items still need a decision, including the
// current one.
func (r *ConflictResolver) Remaining() int {
	return len(r.items) - r.index
}

// Resolve records the choice for the current item and advances. With applyToAll
// the same choice covers every remaining item.
func (r *ConflictResolver) Resolve(choice ConflictChoice, applyToAll bool) {
	for r.index < len(r.items) {
		item := r.items[r.index]
		resolution := ConflictResolution{Item: item, Choice: choice}
		if choice == ConflictRename {
			resolution.NewName = r.suggestName(item.Name)
			r.taken[strings.ToLower(resolution.NewName)] = true
		}
		r.resolved = append(r.resolved, resolution)
		r.index++

		if !applyToAll {
			break
		}
	}
}

// Done reports whether every collision has a decision.
func (r *ConflictResolver) Done() bool {
	return r.index >= len(r.items)
}

// Resolutions returns the decisions collected so far, in item order.
func (r *ConflictResolver) Resolutions() []ConflictResolution {
	return r.resolved
}

// suggestName finds the first free "name (n)" variant, keeping the extension
// in place for files.
func (r *ConflictResolver) suggestName(name string) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if !r.taken[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

// DeleteItem is one entry queued for permanent deletion.
type DeleteItem struct {
	ID       string
	Name     string
	IsFolder bool
	Size     int64
}

// PermanentDeleter executes permanent deletion of a fixed item batch after a
// typed confirmation. Reclaimed bytes are reported to the caller once the
// server acknowledges.
type PermanentDeleter interface {
	DeletePermanently(ctx context.Context, ids []string) error
}

type PermanentDelete struct {
	deleter     PermanentDeleter
	items       []DeleteItem
	onReclaimed func(bytes int64)
}

func NewPermanentDelete(deleter PermanentDeleter, items []DeleteItem, onReclaimed func(bytes int64)) *PermanentDelete {
	return &PermanentDelete{
		deleter:     deleter,
		items:       items,
		onReclaimed: onReclaimed,
	}
}

func (p *PermanentDelete) Items() []DeleteItem {
	return p.items
}

// TotalBytes is the storage reclaimed if the whole batch is deleted.
func (p *PermanentDelete) TotalBytes() int64 {
	var total int64
	for _, item := range p.items {
		total += item.Size
	}

	return total
}

// SummaryLabel describes the batch for the confirmation prompt.
func (p *PermanentDelete) SummaryLabel() string {
	if len(p.items) == 1 {
		return fmt.Sprintf("Permanently delete %q (%s)?", p.items[0].Name, domain.FormatStorageSize(p.items[0].Size))
	}

	return fmt.Sprintf("Permanently delete %d items (%s)?", len(p.items), domain.FormatStorageSize(p.TotalBytes()))
}

// Validate arms the destructive action only on the exact confirmation phrase.
func (p *PermanentDelete) Validate(confirmation string) error {
	if confirmation != DeleteConfirmationPhrase {
		return validationErr("Type DELETE to confirm")
	}

	return nil
}

// Execute deletes the batch and reports reclaimed bytes on success.
func (p *PermanentDelete) Execute(ctx context.Context, confirmation string) error {
	if err := p.Validate(confirmation); err != nil {
		return err
	}

	ids := make([]string, 0, len(p.items))
	for _, item := range p.items {
		ids = append(ids, item.ID)
	}
	if err := p.deleter.DeletePermanently(ctx, ids); err != nil {
		return err
	}

	if p.onReclaimed != nil {
		p.onReclaimed(p.TotalBytes())
	}

	return nil
}
