package traverse

import (
	"context"
	"errors"
	"testing"

	"github.com/pharmaseek/pharmaseek/internal/browser"
)

func TestRunner_RunAll_MergesInInputOrder(t *testing.T) {
	factory := func() (browser.Session, error) {
		return navigateSession(1), nil
	}

	runner := NewRunner(factory, navigateProfile(), fakePDF{}, testConfig(t), 2)
	set, summary := runner.RunAll(context.Background(), []string{"ibuprofen", "paracetamol", "aspirin"})

	rows := set.Rows()
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	wantOrder := []string{"ibuprofen", "paracetamol", "aspirin"}
	for i, row := range rows {
		if row.SearchSubstance != wantOrder[i] {
			t.Errorf("row %d substance = %q, want %q", i, row.SearchSubstance, wantOrder[i])
		}
	}
	if summary.Rows != 3 {
		t.Errorf("summary rows = %d, want 3", summary.Rows)
	}
	if len(summary.FailedRuns) != 0 || len(summary.ZeroResults) != 0 {
		t.Errorf("unexpected failures: %+v", summary)
	}
}

func TestRunner_RunAll_ZeroResultsIsNotAFailure(t *testing.T) {
	calls := 0
	factory := func() (browser.Session, error) {
		calls++
		s := navigateSession(1)
		if calls == 2 {
			// Second substance finds no listing at all.
			s.hidden["table.results"] = true
		}
		return s, nil
	}

	runner := NewRunner(factory, navigateProfile(), fakePDF{}, testConfig(t), 1)
	set, summary := runner.RunAll(context.Background(), []string{"ibuprofen", "obscurium"})

	if set.Len() != 1 {
		t.Errorf("rows = %d, want 1", set.Len())
	}
	if len(summary.ZeroResults) != 1 || summary.ZeroResults[0] != "obscurium" {
		t.Errorf("zero results = %v, want [obscurium]", summary.ZeroResults)
	}
	if len(summary.FailedRuns) != 0 {
		t.Errorf("failed runs = %v, want none", summary.FailedRuns)
	}
}

func TestRunner_RunAll_FailedRunDoesNotBlockOthers(t *testing.T) {
	calls := 0
	factory := func() (browser.Session, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("chrome not found")
		}
		return navigateSession(1), nil
	}

	runner := NewRunner(factory, navigateProfile(), fakePDF{}, testConfig(t), 1)
	set, summary := runner.RunAll(context.Background(), []string{"ibuprofen", "paracetamol"})

	if set.Len() != 1 {
		t.Errorf("rows = %d, want 1", set.Len())
	}
	if len(summary.FailedRuns) != 1 || summary.FailedRuns[0] != "ibuprofen" {
		t.Errorf("failed runs = %v, want [ibuprofen]", summary.FailedRuns)
	}
}

func TestRunner_RunAll_ClosesSessions(t *testing.T) {
	var opened []*fakeSession
	factory := func() (browser.Session, error) {
		s := navigateSession(1)
		opened = append(opened, s)
		return s, nil
	}

	runner := NewRunner(factory, navigateProfile(), fakePDF{}, testConfig(t), 1)
	runner.RunAll(context.Background(), []string{"ibuprofen", "paracetamol"})

	if len(opened) != 2 {
		t.Fatalf("sessions opened = %d, want 2", len(opened))
	}
	for i, s := range opened {
		if !s.closed {
			t.Errorf("session %d not closed", i)
		}
	}
}

func TestRunner_RunAll_CountsSkips(t *testing.T) {
	factory := func() (browser.Session, error) {
		s := navigateSession(2)
		s.failClicks[1] = true
		return s, nil
	}

	runner := NewRunner(factory, navigateProfile(), fakePDF{}, testConfig(t), 1)
	_, summary := runner.RunAll(context.Background(), []string{"ibuprofen", "paracetamol"})

	if summary.ItemsSkipped != 2 {
		t.Errorf("items skipped = %d, want 2", summary.ItemsSkipped)
	}
}
