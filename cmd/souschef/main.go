//go:build cgo

// Command souschef runs a voice-guided cooking session in the terminal.
//
// Usage:
//
//	GEMINI_API_KEY=... go run ./cmd/souschef [-recipe recipe.json] [-voice Zephyr]
//
// The recipe file is a JSON object with a "title" and an "instructions"
// array. Without -recipe a small built-in demo recipe is used.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	session "github.com/souschef/voice-core/core"
	"github.com/souschef/voice-core/core/audio/miniaudio"
	"github.com/souschef/voice-core/core/events"
)

func main() {
	recipePath := flag.String("recipe", "", "path to a recipe JSON file")
	voice := flag.String("voice", "", "override the spoken voice persona")
	flag.Parse()

	recipe, err := loadRecipe(*recipePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load recipe: %v\n", err)
		os.Exit(1)
	}

	backend, err := miniaudio.NewClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize audio: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	notifier := &programNotifier{}
	opts := []session.Option{
		session.WithCaptureDevice(backend.Capture()),
		session.WithPlaybackSink(backend.Playback()),
		session.WithNotifier(notifier),
	}
	if *voice != "" {
		opts = append(opts, session.WithVoice(*voice))
	}

	s := session.New(recipe, opts...)
	defer s.Close()

	p := tea.NewProgram(newModel(s), tea.WithAltScreen())
	notifier.attach(p)

	go func() {
		err := s.Connect(context.Background(),
			session.OnStateChanged(func(state session.State) { p.Send(stateMsg(state)) }),
			session.OnUserTranscript(func(transcript string) { p.Send(userTranscriptMsg(transcript)) }),
			session.OnModelTranscript(func(transcript string) { p.Send(modelTranscriptMsg(transcript)) }),
			session.OnTurnCompleted(func(turn events.Turn) { p.Send(turnMsg(turn)) }),
			session.OnTimerStarted(func(session.Timer) { p.Send(timersMsg(s.Timers())) }),
			session.OnTimerUpdated(func(session.Timer) { p.Send(timersMsg(s.Timers())) }),
			session.OnTimerFinished(func(session.Timer) { p.Send(timersMsg(s.Timers())) }),
			session.OnStepChanged(func(stepIndex int) { p.Send(stepMsg(stepIndex)) }),
			session.OnConnectionLost(func(reason string) { p.Send(connectionLostMsg(reason)) }),
		)
		if err != nil {
			p.Send(connectFailedMsg{err})
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run UI: %v\n", err)
		os.Exit(1)
	}
}

func loadRecipe(path string) (session.Recipe, error) {
	if path == "" {
		return demoRecipe(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return session.Recipe{}, err
	}

	var recipe struct {
		Title        string   `json:"title"`
		Instructions []string `json:"instructions"`
	}
	if err := json.Unmarshal(data, &recipe); err != nil {
		return session.Recipe{}, err
	}
	if recipe.Title == "" || len(recipe.Instructions) == 0 {
		return session.Recipe{}, fmt.Errorf("recipe needs a title and at least one instruction")
	}
	return session.Recipe{Title: recipe.Title, Instructions: recipe.Instructions}, nil
}

func demoRecipe() session.Recipe {
	return session.Recipe{
		Title: "Shakshuka",
		Instructions: []string{
			"Soften diced onion and red pepper in olive oil over medium heat, about 5 minutes.",
			"Stir in garlic, cumin and paprika and cook for 1 minute.",
			"Add crushed tomatoes, season, and simmer for 10 minutes until slightly thickened.",
			"Make wells in the sauce, crack in the eggs, cover and cook 6 to 8 minutes.",
			"Scatter with parsley and serve straight from the pan with bread.",
		},
	}
}

// programNotifier forwards timer and connection notices into the running UI.
// It is attached after the program exists; notices before that are dropped.
type programNotifier struct {
	program *tea.Program
}

func (n *programNotifier) attach(p *tea.Program) { n.program = p }

func (n *programNotifier) Notify(message string) {
	if n.program != nil {
		n.program.Send(noticeMsg(message))
	}
}
