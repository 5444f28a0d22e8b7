package handler

import (
	"github.com/elliotrap/Widgeme/internal/service"
	"github.com/elliotrap/Widgeme/internal/widget"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	tracker *service.HabitTracker
	widgets *widget.Provider
}

// NewAPI constructs a handler set over the habit tracker core.
func NewAPI(tracker *service.HabitTracker) *API {
	return &API{
		tracker: tracker,
		widgets: widget.NewProvider(tracker),
	}
}

// Tracker exposes the underlying engine for scripts and tests.
func (a *API) Tracker() *service.HabitTracker {
	return a.tracker
}
