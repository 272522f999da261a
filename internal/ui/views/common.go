package views

import (
	"context"
	"errors"

	"github.com/tgienger/orgtrack/internal/models"
	"github.com/tgienger/orgtrack/internal/mutation"
	"github.com/tgienger/orgtrack/internal/ui/styles"
	viewcache "github.com/tgienger/orgtrack/internal/views"
)

// Env is what every view reads and writes through
type Env struct {
	Ctx         context.Context
	Reader      *viewcache.Reader
	Coordinator *mutation.Coordinator

	// Author signs new comments
	Author string
}

// Navigation messages handled by the app
type (
	SelectedProject      struct{ Project models.Project }
	SelectedOrganization struct{ Organization models.Organization }
	BackToProjects       struct{}
	OpenSwitcher         struct{}
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// flash is the one-line outcome shown under a view until the next action
type flash struct {
	text   string
	failed bool
}

func (f flash) render(s *styles.Styles) string {
	if f.text == "" {
		return ""
	}
	if f.failed {
		return s.StatusErr.Render(f.text)
	}
	return s.StatusOK.Render(f.text)
}

// outcomeFlash turns a coordinated mutation result into a flash
func outcomeFlash(success bool, message string, err error) flash {
	if err != nil && message == "" {
		message = err.Error()
	}
	return flash{text: message, failed: !success}
}

// loadFlash reports a failed read. Superseded reads are silent.
func loadFlash(err error) (flash, bool) {
	if err == nil || errors.Is(err, viewcache.ErrSuperseded) {
		return flash{}, false
	}
	return flash{text: err.Error(), failed: true}, true
}
