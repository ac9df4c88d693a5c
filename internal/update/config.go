package update

import (
	"time"

	"github.com/sandeepkv93/stickynotes/internal/model"
)

type RuntimeConfig struct {
	// RetentionDays is used by the cleanup command when no day count is given.
	RetentionDays int
	Sort          model.NoteSort
	PaneWidth     int
	Now           func() time.Time
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		RetentionDays: 30,
		Sort:          model.DefaultNoteSort,
		PaneWidth:     58,
		Now:           time.Now,
	}
}

func (c RuntimeConfig) withDefaults() RuntimeConfig {
	def := DefaultRuntimeConfig()
	if c.RetentionDays < 0 {
		c.RetentionDays = def.RetentionDays
	}
	if !c.Sort.IsValid() {
		c.Sort = def.Sort
	}
	if c.PaneWidth <= 0 {
		c.PaneWidth = def.PaneWidth
	}
	if c.Now == nil {
		c.Now = def.Now
	}
	return c
}
