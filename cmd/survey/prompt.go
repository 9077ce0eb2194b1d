package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/typeform-survey/survey-client/internal/models"
	"github.com/typeform-survey/survey-client/internal/services"
	apperrors "github.com/typeform-survey/survey-client/pkg/errors"
)

var (
	// errQuit ends the prompt loop at the user's request
	errQuit = errors.New("quit")
	// errSessionExpired ends the prompt loop once the sign-in is no longer valid
	errSessionExpired = errors.New("session expired")
)

const sessionExpiredMessage = "Your session expired, please sign in again."

const promptHelp = "Commands: <number> pick an option, empty line to continue, :b back, :a <file> attach a video, :q quit"

type professionSaver interface {
	SaveProfession(ctx context.Context, profession models.Profession)
}

// terminal drives the survey engine from line-based input
type terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

func newTerminal(in io.Reader, out io.Writer) *terminal {
	return &terminal{in: bufio.NewScanner(in), out: out}
}

func (t *terminal) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

func (t *terminal) showDeviceCode(verificationURL, userCode string) {
	t.printf("To sign in, open %s and enter the code %s\n", verificationURL, userCode)
}

func (t *terminal) readLine() (string, error) {
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(t.in.Text()), nil
}

// run walks the respondent through the survey until it is submitted, input ends or they quit
func (t *terminal) run(ctx context.Context, saver professionSaver, engine *services.SurveyEngine, status *models.SessionStatus) error {
	if status.Profile.Name != "" {
		t.printf("Signed in as %s <%s>\n", status.Profile.Name, status.Profile.Email)
	} else {
		t.printf("Signed in as %s\n", status.Profile.Email)
	}
	if status.HasSubmitted {
		t.printf("Thank you! You have already completed the survey.\n")
		return nil
	}

	if err := engine.Start(status.Profession); err != nil {
		return err
	}
	t.printf("%s\n", promptHelp)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		snap := engine.Snapshot()
		var err error
		switch snap.State {
		case services.StateSelectingProfession:
			err = t.chooseProfession(ctx, saver, engine)
		case services.StateAnswering:
			err = t.answer(ctx, engine, snap)
		case services.StateCompleted:
			t.printf("Thank you! Your answers were submitted.\n")
			return nil
		case services.StateIdle:
			// an expired session resets the engine
			err = errSessionExpired
		default:
			return fmt.Errorf("unexpected survey state %s", snap.State)
		}

		switch {
		case errors.Is(err, errSessionExpired):
			t.printf("%s\n", sessionExpiredMessage)
			return nil
		case errors.Is(err, errQuit), errors.Is(err, io.EOF):
			t.printf("Your answers were not submitted.\n")
			return nil
		case err != nil:
			return err
		}
	}
}

func (t *terminal) chooseProfession(ctx context.Context, saver professionSaver, engine *services.SurveyEngine) error {
	t.printf("\nWhat is your profession?\n")
	for i, p := range models.Professions {
		t.printf("  %d) %s\n", i+1, p.Label())
	}

	line, err := t.readLine()
	if err != nil {
		return err
	}
	if line == ":q" {
		return errQuit
	}

	profession, ok := pickProfession(line)
	if !ok {
		t.printf("Please pick a number between 1 and %d.\n", len(models.Professions))
		return nil
	}
	if err := engine.ChooseProfession(profession); err != nil {
		return err
	}
	saver.SaveProfession(ctx, profession)
	return nil
}

func pickProfession(line string) (models.Profession, bool) {
	if n, err := strconv.Atoi(line); err == nil {
		if n < 1 || n > len(models.Professions) {
			return "", false
		}
		return models.Professions[n-1], true
	}
	p, err := models.ParseProfession(line)
	return p, err == nil
}

func (t *terminal) render(snap services.Snapshot) {
	q := snap.Question
	t.printf("\nQuestion %d of %d (%.0f%%)\n%s\n", snap.Index+1, snap.Total, snap.Progress(), q.Text)

	switch q.Kind {
	case models.KindText:
		if text := snap.Staged.Text(); text != "" {
			t.printf("  current answer: %s\n", text)
		}
	default:
		for i, opt := range q.Options {
			mark := " "
			if snap.Staged.Contains(opt) {
				mark = "x"
			}
			t.printf("  [%s] %d) %s\n", mark, i+1, opt)
		}
		if q.Kind == models.KindMultiChoice {
			t.printf("  (select all that apply, empty line to continue)\n")
		}
	}
	if snap.Attachment != nil {
		t.printf("  attached: %s\n", snap.Attachment.FileName)
	}
	if snap.LastError != nil {
		t.printf("  submission failed: %v (empty line to retry)\n", snap.LastError)
	}
}

func (t *terminal) answer(ctx context.Context, engine *services.SurveyEngine, snap services.Snapshot) error {
	t.render(snap)

	line, err := t.readLine()
	if err != nil {
		return err
	}

	switch {
	case line == ":q":
		return errQuit
	case line == ":b":
		if err := engine.Back(); err != nil {
			t.printf("Already at the first question.\n")
		}
		return nil
	case strings.HasPrefix(line, ":a"):
		t.attach(engine, strings.TrimSpace(strings.TrimPrefix(line, ":a")))
		return nil
	case line == "" || line == ":n":
		return t.advance(ctx, engine)
	}

	q := snap.Question
	if q.Kind == models.KindText {
		if err := engine.SetText(line); err != nil {
			return err
		}
		return t.advance(ctx, engine)
	}

	for _, field := range strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' }) {
		n, convErr := strconv.Atoi(field)
		if convErr != nil || n < 1 || n > len(q.Options) {
			t.printf("Please pick a number between 1 and %d.\n", len(q.Options))
			return nil
		}
		if err := engine.SelectOption(q.Options[n-1]); err != nil {
			return err
		}
	}
	if q.Kind == models.KindSingleChoice {
		return t.advance(ctx, engine)
	}
	return nil
}

func (t *terminal) advance(ctx context.Context, engine *services.SurveyEngine) error {
	if snap := engine.Snapshot(); snap.Index == snap.Total-1 {
		t.printf("Submitting your answers...\n")
	}

	err := engine.Advance(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrIncompleteAnswer):
		t.printf("Please answer the question before continuing.\n")
		return nil
	case errors.Is(err, apperrors.ErrInvalidToken):
		return errSessionExpired
	case errors.Is(err, apperrors.ErrSubmissionRejected),
		errors.Is(err, apperrors.ErrInvalidInput):
		// rendered from the snapshot's LastError on the next pass
		return nil
	default:
		return err
	}
}

func (t *terminal) attach(engine *services.SurveyEngine, path string) {
	if path == "" {
		t.printf("Usage: :a <path to video>\n")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.printf("Could not read %s: %v\n", path, err)
		return
	}
	if err := engine.AttachMedia(models.Attachment{FileName: filepath.Base(path), Data: data}); err != nil {
		t.printf("Could not attach: %v\n", err)
	}
}
