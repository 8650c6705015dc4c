// Package domain defines the data model shared by all agent components.
package domain

import (
	"crypto/md5" //nolint:gosec // dedup key, not a security boundary
	"encoding/hex"
	"time"
)

// Source identifies the platform a listing was scraped from.
type Source string

const (
	SourceKleinanzeigen Source = "kleinanzeigen"
	SourceMyHammer      Source = "myhammer"
	SourceGoogle        Source = "google"
	SourceFacebook      Source = "facebook"
	SourceNebenan       Source = "nebenan"
	SourceMarkt         Source = "markt"
	SourceDynamic       Source = "dynamic"
)

// Category is the line of business a listing most likely pertains to.
type Category string

const (
	// CategoryFlooring covers laminate/vinyl laying, skirting boards,
	// underlay and floor removal. Core business.
	CategoryFlooring Category = "flooring"
	// CategoryAssembly covers furniture, kitchen and home-gym assembly.
	CategoryAssembly Category = "assembly"
	// CategoryHandover covers move-out renovation work.
	CategoryHandover Category = "handover"
	// CategoryOther is the fallback when no keyword list matches.
	CategoryOther Category = "other"
)

// Priority is the coarse attention bucket derived from the total score.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Status tracks the operator-facing lifecycle of a stored listing.
type Status string

const (
	StatusNew      Status = "new"
	StatusSeen     Status = "seen"
	StatusAnswered Status = "answered"
	StatusSkipped  Status = "skipped"
)

// DecisionStatus tracks suggestions awaiting operator approval.
type DecisionStatus string

const (
	DecisionPending  DecisionStatus = "pending"
	DecisionApproved DecisionStatus = "approved"
	DecisionRejected DecisionStatus = "rejected"
	DecisionExpired  DecisionStatus = "expired"
)

// Listing is a single scraped advertisement/request from a source platform.
// Immutable once created.
type Listing struct {
	URL         string
	Title       string
	Description string
	Location    string // free text, possibly empty
	Source      Source
	FoundAt     time.Time
	PostedAt    string // raw posting-age string from the platform, e.g. "Heute, 14:30"
	Price       string
	Contact     string
}

// URLHash returns the stable dedup key for the listing.
func (l Listing) URLHash() string {
	sum := md5.Sum([]byte(l.URL)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// Text returns the combined title and description used for keyword matching.
func (l Listing) Text() string {
	return l.Title + " " + l.Description
}

// ScoredResult is the outcome of evaluating one listing.
// Created fresh per evaluation; never mutated afterwards.
type ScoredResult struct {
	Listing Listing

	TotalScore   int // 0-100
	RegionScore  int // 0-30 by default weights
	ServiceScore int // 0-40
	QualityScore int // 0-30

	Category Category
	Priority Priority

	Excluded        bool
	ExclusionReason string

	// Rationale is free-text reasoning, populated only by the LLM scorer.
	Rationale string

	// ResponseDraft is the suggested outreach message for relevant leads.
	ResponseDraft string
}

// Relevant reports whether the result should be surfaced to the operator.
func (r ScoredResult) Relevant() bool {
	return !r.Excluded && r.Priority != PriorityLow
}

// SearchTermSuggestion is a proposed new or retired search term, produced by
// the strategy layer for human review.
type SearchTermSuggestion struct {
	Term      string `json:"term"`
	Action    string `json:"action"` // "add" or "disable"
	Rationale string `json:"rationale"`
}

// PlatformSuggestion is a proposed new source platform discovered by the
// platform scout, pending operator approval.
type PlatformSuggestion struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Relevance   string `json:"relevance"` // "high", "medium", "low"
	SearchHint  string `json:"search_hint"`
}

// PendingDecision is a human-reviewable record persisted for approval.
type PendingDecision struct {
	ID        string
	Kind      string // "search_term", "platform", "strategy"
	Payload   string // JSON-encoded suggestion
	Status    DecisionStatus
	CreatedAt time.Time
}
