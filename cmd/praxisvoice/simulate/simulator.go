package simulatecmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/papercomputeco/praxisvoice/pkg/callflow"
	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/cliui"
	"github.com/papercomputeco/praxisvoice/pkg/dotdir"
)

// Transcript speakers.
const (
	speakerPractice = "praxis"
	speakerCaller   = "anrufer"
)

// simulator plays one call against the engine, reading caller turns from in.
type simulator struct {
	engine    *callflow.Engine
	store     calllog.Store
	sessions  *dotdir.Manager
	configDir string
	caller    string

	in          io.Reader
	out         io.Writer
	interactive bool

	now   func() time.Time
	newID func() string

	session *dotdir.Session
}

func (s *simulator) run(ctx context.Context, reset bool) error {
	if reset {
		if err := s.sessions.ClearSession(s.configDir); err != nil {
			return fmt.Errorf("resetting simulation: %w", err)
		}
	}

	session, err := s.sessions.LoadSession(s.configDir)
	if err != nil {
		return fmt.Errorf("loading simulation: %w", err)
	}

	if session != nil {
		s.session = session
		s.replay()
	} else if err := s.answer(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(s.in)
	for {
		if s.interactive {
			fmt.Fprintf(s.out, "%s ", cliui.CallerStyle.Render("Sie ›"))
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading caller input: %w", err)
			}
			return s.suspend()
		}

		ended, err := s.turn(ctx, scanner.Text())
		if err != nil {
			return err
		}
		if ended {
			return s.hangup(ctx)
		}
	}
}

// answer starts a new call with the greeting.
func (s *simulator) answer(ctx context.Context) error {
	s.session = &dotdir.Session{
		CallID:    s.newID(),
		StartedAt: s.now(),
	}

	fmt.Fprintf(s.out, "\n  %s\n\n", cliui.KeyValue("Anruf", s.session.CallID))

	out := s.engine.Greeting(callflow.Turn{
		CallID:       s.session.CallID,
		CallerNumber: s.caller,
		StartedAt:    s.session.StartedAt,
	})
	if err := s.record(ctx, out.Log); err != nil {
		return err
	}

	s.session.State = string(out.NextState)
	s.say(out.Action)
	return nil
}

// replay prints the transcript of a resumed call.
func (s *simulator) replay() {
	fmt.Fprintf(s.out, "\n  %s %s\n\n",
		cliui.KeyValue("Anruf", s.session.CallID),
		cliui.DimStyle.Render("(fortgesetzt)"),
	)

	for _, line := range s.session.Transcript {
		if line.Speaker == speakerCaller {
			fmt.Fprintf(s.out, "%s %s\n", cliui.CallerStyle.Render("Sie ›"), line.Text)
			continue
		}
		fmt.Fprintf(s.out, "%s %s\n", cliui.AgentStyle.Render("Praxis ›"), line.Text)
	}
}

// turn processes one caller line and reports whether the call ended.
func (s *simulator) turn(ctx context.Context, utterance string) (bool, error) {
	s.transcribe(speakerCaller, utterance)
	if !s.interactive {
		fmt.Fprintf(s.out, "%s %s\n", cliui.CallerStyle.Render("Sie ›"), utterance)
	}

	out := s.engine.Turn(callflow.Turn{
		CallID:       s.session.CallID,
		CallerNumber: s.caller,
		State:        s.session.State,
		Utterance:    utterance,
		StartedAt:    s.session.StartedAt,
	})
	if err := s.record(ctx, out.Log); err != nil {
		return false, err
	}
	s.say(out.Action)

	switch out.Action.Kind {
	case callflow.ActionTransfer:
		fmt.Fprintf(s.out, "  %s\n", cliui.DimStyle.Render("[Weiterleitung an "+out.Action.Target+"]"))

		after := s.engine.AfterTransfer(0)
		if err := s.record(ctx, after.Log); err != nil {
			return false, err
		}
		s.session.State = string(after.NextState)
		s.say(after.Action)
		return false, nil

	case callflow.ActionComplete:
		done := s.engine.Complete(s.session.StartedAt, s.now())
		if err := s.record(ctx, done.Log); err != nil {
			return false, err
		}
		s.say(done.Action)
		return true, nil

	case callflow.ActionHangup:
		return true, nil

	default:
		s.session.State = string(out.NextState)
		return false, nil
	}
}

func (s *simulator) say(action callflow.Action) {
	lines := action.Speech
	if action.Kind == callflow.ActionAsk && action.Prompt != "" {
		lines = append(lines[:len(lines):len(lines)], action.Prompt)
	}

	for _, line := range lines {
		if line == "" {
			continue
		}
		s.transcribe(speakerPractice, line)
		fmt.Fprintf(s.out, "%s %s\n", cliui.AgentStyle.Render("Praxis ›"), line)
	}
}

func (s *simulator) transcribe(speaker, text string) {
	s.session.Transcript = append(s.session.Transcript, dotdir.SessionLine{Speaker: speaker, Text: text})
}

func (s *simulator) record(ctx context.Context, patch calllog.Patch) error {
	if patch.IsEmpty() {
		return nil
	}
	if err := s.store.Upsert(ctx, s.session.CallID, patch); err != nil {
		return fmt.Errorf("writing call log: %w", err)
	}
	return nil
}

// suspend saves an unfinished call for the next run.
func (s *simulator) suspend() error {
	if err := s.sessions.SaveSession(s.session, s.configDir); err != nil {
		return fmt.Errorf("saving simulation: %w", err)
	}

	fmt.Fprintf(s.out, "\n  %s\n", cliui.DimStyle.Render("Simulation angehalten. Der nächste Aufruf setzt das Gespräch fort."))
	return nil
}

func (s *simulator) hangup(ctx context.Context) error {
	if err := s.sessions.ClearSession(s.configDir); err != nil {
		return fmt.Errorf("clearing simulation: %w", err)
	}

	fmt.Fprintf(s.out, "\n  %s Aufgelegt\n\n", cliui.SuccessMark)

	rec, err := s.store.Get(ctx, s.session.CallID)
	if err != nil {
		var nf calllog.NotFoundError
		if errors.As(err, &nf) {
			return nil
		}
		return fmt.Errorf("reading call log: %w", err)
	}

	s.printRecord(rec)
	return nil
}

func (s *simulator) printRecord(rec *calllog.Record) {
	rows := [][2]string{
		{"Anrufer", rec.CallerNumber},
		{"Grund", rec.ReasonShort},
		{"Anliegen", rec.ReasonLong},
		{"Name", rec.CandidateName},
	}
	if rec.StartedAt != nil {
		rows = append(rows, [2]string{"Beginn", rec.StartedAt.Format(time.RFC3339)})
	}
	if rec.EndedAt != nil {
		rows = append(rows, [2]string{"Ende", rec.EndedAt.Format(time.RFC3339)})
	}
	if rec.DurationSeconds != nil {
		rows = append(rows, [2]string{"Dauer", cliui.FormatDuration(time.Duration(*rec.DurationSeconds) * time.Second)})
	}

	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(s.out, "  %s\n", cliui.KeyValue(row[0], row[1]))
	}
	fmt.Fprintln(s.out)
}
