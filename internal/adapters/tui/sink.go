package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	service "github.com/okian/bassboard/internal/app"
	"github.com/okian/bassboard/internal/domain/model"
	"github.com/okian/bassboard/internal/domain/viewstate"
)

// Sink forwards service output into a running program.
type Sink struct {
	send func(tea.Msg)
}

// NewSink creates a sink delivering to p.
func NewSink(p *tea.Program) *Sink {
	return &Sink{send: p.Send}
}

// Events implements service.Sink.
func (s *Sink) Events(events []model.Event) { s.send(eventsMsg{events: events}) }

// View implements service.Sink.
func (s *Sink) View(snap viewstate.Snapshot) { s.send(viewMsg{snap: snap}) }

// Status implements service.Sink.
func (s *Sink) Status(st service.Status) { s.send(statusMsg{status: st}) }

// Service is what Run needs: a controller that accepts sinks.
type Service interface {
	Controller
	AddSink(sink service.Sink)
}

// Run shows the TUI until the user quits or ctx is done.
func Run(ctx context.Context, svc Service, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, svc), opts...)
	svc.AddSink(NewSink(p))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
