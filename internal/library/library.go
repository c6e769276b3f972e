// Package library persists finished scripts and brainstormed ideas. The
// default backend is a pair of JSON files in the data directory; server
// deployments can use the DynamoDB backend instead.
package library

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/thuanndbxvp/Thai-news/internal/script"
)

// CachedData carries the side-channel artifacts generated for a script so a
// reloaded item does not pay for them again.
type CachedData struct {
	VisualPrompts     map[string]script.VisualPrompt `json:"visualPrompts,omitempty"`
	AllVisualPrompts  []script.SectionVisual         `json:"allVisualPrompts,omitempty"`
	SummarizedScript  []script.PartSummary           `json:"summarizedScript,omitempty"`
	ExtractedDialogue map[string]string              `json:"extractedDialogue,omitempty"`
}

// Item is one saved script with everything needed to resume work on it.
type Item struct {
	ID             string                  `json:"id"`
	Title          string                  `json:"title"`
	OutlineContent string                  `json:"outlineContent"`
	Script         string                  `json:"script"`
	Params         script.GenerationParams `json:"params"`
	Cached         *CachedData             `json:"cachedData,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
}

// Idea is one saved topic suggestion. ThaiTitle keeps the legacy
// "vietnameseTitle" wire name for data carried over from earlier releases.
type Idea struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ThaiTitle string `json:"vietnameseTitle,omitempty"`
	Outline   string `json:"outline"`
}

// Store is the persistence contract shared by the file and DynamoDB
// backends.
type Store interface {
	SaveItem(ctx context.Context, item Item) error
	GetItem(ctx context.Context, id string) (*Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	DeleteItem(ctx context.Context, id string) error

	// SaveIdea reports false when an identical idea (same title and
	// outline) is already stored; nothing is written in that case.
	SaveIdea(ctx context.Context, idea Idea) (bool, error)
	ListIdeas(ctx context.Context) ([]Idea, error)
	DeleteIdea(ctx context.Context, id string) error
}

// NewID generates a ULID for a new item or idea.
func NewID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate ulid: %w", err)
	}
	return id.String(), nil
}
