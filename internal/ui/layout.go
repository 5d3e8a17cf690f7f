package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth is the threshold for extra-wide layouts.
	LayoutExtraWideWidth = 160

	// HelpWidth is the width of the help overlay.
	HelpWidth = 48

	// InquiryWidth is the width of the inquiry modal.
	InquiryWidth = 60
)

// Content limits.
const (
	// LogTailLines is the number of log lines the diagnostics view keeps.
	LogTailLines = 2000

	// SimilarLimit is the number of similar listings shown in detail.
	SimilarLimit = 3

	// FeaturedLimit is the number of featured listings in the catalog preview.
	FeaturedLimit = 3

	// MaxRoomFilter is the highest bedroom/bathroom minimum ("5+").
	MaxRoomFilter = 5
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// LogRefreshInterval is the minimum time between log file reads.
	LogRefreshInterval = 2 * time.Second

	// RemoteTimeout bounds a manual catalog reload.
	RemoteTimeout = 15 * time.Second

	// RequestTimeout bounds contact fetches and inquiry submissions.
	RequestTimeout = 10 * time.Second

	// FlashDuration is how long a transient header message stays visible.
	FlashDuration = 4 * time.Second
)
