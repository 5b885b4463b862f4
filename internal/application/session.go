package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"gpt-buddy/internal/domain"
)

const (
	// Appended to every forwarded utterance. The assistant prompt already asks
	// for brevity, but long answers still slip through without the reminder.
	brevityReminder = "Remember to keep responses brief."

	apologyText = "Sorry, it looks like something went wrong. Try again in a moment or two."
)

// Deps are the collaborators the session drives. All of them are narrow
// interfaces; the session owns the control flow, nothing else.
type Deps struct {
	WakeWord    WakeWordEngine
	Microphone  Microphone
	STT         SpeechToText
	Assistant   Conversation
	Images      ImageGenerator
	Illustrator Illustrator
	TTS         SpeechSynthesizer
	Notifier    Notifier
	Display     Display
	Player      AudioPlayer
	Gallery     Gallery
	Logger      *slog.Logger
}

// Paths names the fixed files and images the session works with.
type Paths struct {
	ListeningImage string
	ThinkingImage  string
	LastResult     string
	FullImage      string
	ThreadFile     string
}

// Sounds are the canned clips played during a session pass.
type Sounds struct {
	Wake     []string
	Ack      []string
	Sending  string
	Thinking string
}

type Options struct {
	Table           []domain.TableEntry
	PhraseTimeLimit time.Duration
	PollInterval    time.Duration
	PollDeadline    time.Duration
	JoinTimeout     time.Duration
	TTSEnabled      bool
	Styles          []string
	AltStyles       []string
	Paths           Paths
	Sounds          Sounds
}

// Session is the orchestration state machine. It alternates between wake-word
// listening and one active pass of capture, routing and dispatch. Exactly one
// session runs per process; all mutable state below is touched only from the
// Run goroutine.
type Session struct {
	deps   Deps
	opts   Options
	logger *slog.Logger

	poller Poller
	bg     *TaskHandle

	wakeHandle WakeWordHandle

	conversationID string
	currentImage   string
	currentPrompt  string
}

func NewSession(deps Deps, opts Options) *Session {
	if len(opts.Table) == 0 {
		opts.Table = domain.DefaultTable()
	}
	return &Session{
		deps:   deps,
		opts:   opts,
		logger: deps.Logger,
		poller: Poller{Interval: opts.PollInterval, Deadline: opts.PollDeadline},
		bg:     NewTaskHandle(deps.Logger),
	}
}

// CurrentImage returns the path of the image currently on the panel.
func (s *Session) CurrentImage() string {
	return s.currentImage
}

// CurrentPrompt returns the last stored image generation prompt.
func (s *Session) CurrentPrompt() string {
	return s.currentPrompt
}

// Run drives the session until ctx is cancelled or a resource error makes
// listening impossible. Teardown always runs before Run returns.
func (s *Session) Run(ctx context.Context) error {
	if err := s.startup(ctx); err != nil {
		return err
	}
	defer s.teardown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.listenForWakeWord(ctx); err != nil {
			return err
		}

		s.runActiveSession(ctx)
	}
}

func (s *Session) startup(ctx context.Context) error {
	id, err := s.deps.Assistant.CreateConversation(ctx)
	if err != nil {
		return fmt.Errorf("creating conversation: %w", err)
	}
	s.conversationID = id

	// The scheduled companion job picks the conversation id up from here.
	if err := os.WriteFile(s.opts.Paths.ThreadFile, []byte(id), 0o644); err != nil {
		return fmt.Errorf("writing thread file: %w", err)
	}
	s.logger.Info("conversation created", "conversation", id)

	if path, err := s.deps.Gallery.Random(""); err == nil && path != "" {
		s.show(path)
		s.currentImage = path
	} else {
		if err != nil {
			s.logger.Warn("listing saved images", "error", err)
		}
		s.show(s.opts.Paths.ListeningImage)
	}

	return nil
}

// listenForWakeWord owns the wake-word handle for the duration of the
// listening state. The handle is released before the active session starts so
// the microphone is free for capture; on cancellation or frame errors the
// still-held handle is released by teardown.
func (s *Session) listenForWakeWord(ctx context.Context) error {
	handle, err := s.deps.WakeWord.Create(ctx)
	if err != nil {
		return fmt.Errorf("creating wake word handle: %w", err)
	}
	s.wakeHandle = handle
	s.logger.Info("waiting for wake word")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		detected, err := handle.ProcessNext()
		if err != nil {
			return fmt.Errorf("processing audio frame: %w", err)
		}
		if detected {
			s.logger.Info("wake word detected")
			s.releaseWakeHandle()
			return nil
		}
	}
}

// runActiveSession performs one capture-route-dispatch pass. Nothing in here
// is allowed to escape: every failure is logged and mapped to a fallback so
// the loop always returns to wake-word listening.
func (s *Session) runActiveSession(ctx context.Context) {
	s.playRandom(s.opts.Sounds.Wake)
	s.show(s.opts.Paths.ListeningImage)

	audio, err := s.deps.Microphone.Capture(ctx, s.opts.PhraseTimeLimit)
	if err != nil {
		if errors.Is(err, domain.ErrUnintelligible) {
			s.logger.Info("no usable speech captured")
		} else {
			s.logger.Error("capturing utterance", "error", err)
		}
		s.show(s.opts.Paths.LastResult)
		return
	}

	text, err := s.deps.STT.Transcribe(ctx, audio)
	switch {
	case errors.Is(err, domain.ErrUnintelligible):
		s.logger.Info("could not understand audio")
		s.show(s.opts.Paths.LastResult)
		return
	case err != nil:
		// Service errors also reset to wake-word listening; re-capturing
		// against a dead backend would just fail again.
		s.logger.Error("transcribing utterance", "error", err)
		return
	}

	text = domain.Sanitize(text)
	if text == "" {
		s.logger.Info("empty transcript after sanitizing")
		s.show(s.opts.Paths.LastResult)
		return
	}
	s.logger.Info("recognised speech", "text", text)

	match := domain.Route(text, s.opts.Table)
	s.logger.Info("routed intent", "intent", match.Intent, "phrase", match.Phrase)

	switch match.Intent {
	case domain.IntentCancel:
		s.handleCancel()
	case domain.IntentSendImage:
		s.handleSendImage(ctx)
	case domain.IntentMakeAnother:
		s.handleMakeAnother(ctx)
	case domain.IntentRandomImage:
		s.handleRandomImage()
	case domain.IntentMakeImage:
		s.handleMakeImage(ctx, match.Remainder)
	default:
		s.handleForward(ctx, text)
	}
}

func (s *Session) handleCancel() {
	s.playRandom(s.opts.Sounds.Ack)
	s.show(s.opts.Paths.LastResult)
}

func (s *Session) handleSendImage(ctx context.Context) {
	s.show(s.opts.Paths.LastResult)
	s.play(s.opts.Sounds.Sending)

	if err := s.deps.Notifier.Send(ctx, "", "", s.opts.Paths.FullImage); err != nil {
		s.logger.Error("sending image notification", "error", err)
	}

	archived, err := s.deps.Gallery.Archive(s.opts.Paths.LastResult)
	if err != nil {
		s.logger.Error("archiving image", "error", err)
		return
	}
	s.logger.Info("image archived", "path", archived)
}

func (s *Session) handleMakeAnother(ctx context.Context) {
	s.playRandom(s.opts.Sounds.Ack)

	if s.currentPrompt == "" {
		s.logger.Warn("regeneration requested", "error", domain.ErrNoPrompt)
		return
	}

	s.logger.Info("regenerating image", "prompt", s.currentPrompt)
	path, err := s.deps.Images.Generate(ctx, s.currentPrompt, s.opts.AltStyles)
	if err != nil {
		s.logger.Error("generating image", "error", err)
		return
	}
	s.show(path)
	s.currentImage = path
}

func (s *Session) handleRandomImage() {
	path, err := s.deps.Gallery.Random(s.currentImage)
	if err != nil {
		s.logger.Error("listing saved images", "error", err)
		return
	}
	if path == "" {
		s.logger.Info("no other saved images to show")
		s.playRandom(s.opts.Sounds.Ack)
		return
	}
	s.show(path)
	s.currentImage = path
}

func (s *Session) handleMakeImage(ctx context.Context, prompt string) {
	s.playRandom(s.opts.Sounds.Ack)

	if prompt == "" {
		s.logger.Warn("image requested without a prompt")
		return
	}

	s.currentPrompt = prompt
	s.logger.Info("generating image", "prompt", prompt)

	path, err := s.deps.Images.Generate(ctx, prompt, s.opts.Styles)
	if err != nil {
		s.logger.Error("generating image", "error", err)
		return
	}
	s.show(path)
	s.currentImage = path
}

// handleForward sends the transcript to the assistant, waits on the run with
// the bounded poller, then hands illustration to the background task and
// speaks the reply. The background task outlives this pass by design.
func (s *Session) handleForward(ctx context.Context, text string) {
	s.show(s.opts.Paths.ThinkingImage)
	s.play(s.opts.Sounds.Thinking)

	op := &conversationRun{
		conv:           s.deps.Assistant,
		conversationID: s.conversationID,
		text:           text + "\n" + brevityReminder,
	}

	reply := apologyText
	res, err := s.poller.Run(ctx, op)
	switch {
	case err != nil:
		s.logger.Error("assistant run failed", "error", err)
	case !res.Completed:
		s.logger.Warn("assistant run timed out")
	default:
		reply = res.Text
	}
	s.logger.Info("assistant replied", "chars", len(reply))

	userText := text
	s.bg.Start("illustration", func() {
		// Detached from the session context: the task keeps going after the
		// loop moves on and is only joined, with a bound, at shutdown.
		path, err := s.deps.Illustrator.Illustrate(context.Background(), userText, reply)
		if err != nil {
			s.logger.Error("illustrating exchange", "error", err)
			return
		}
		if err := s.deps.Display.Show(path); err != nil {
			s.logger.Error("displaying illustration", "error", err)
		}
	})

	if s.opts.TTSEnabled {
		clip, err := s.deps.TTS.Synthesize(ctx, reply)
		if err != nil {
			s.logger.Error("synthesizing speech", "error", err)
			return
		}
		s.play(clip)
	}
}

// teardown is the shutdown sequence. Every step is independently
// fault-tolerant: failures are logged and the next step still runs.
func (s *Session) teardown() {
	s.logger.Info("cleaning up resources")

	s.releaseWakeHandle()

	if s.bg.Running() {
		s.logger.Info("waiting for background image task")
		if !s.bg.Join(s.opts.JoinTimeout) {
			s.logger.Warn("background task still running, continuing with shutdown")
		}
	}

	if err := s.deps.Display.Close(); err != nil {
		s.logger.Error("closing display", "error", err)
	}

	s.logger.Info("shutdown complete")
}

func (s *Session) releaseWakeHandle() {
	if s.wakeHandle == nil {
		return
	}
	if err := s.wakeHandle.Release(); err != nil {
		s.logger.Error("releasing wake word resources", "error", err)
	}
	s.wakeHandle = nil
}

func (s *Session) show(path string) {
	if err := s.deps.Display.Show(path); err != nil {
		s.logger.Error("displaying image", "path", path, "error", err)
	}
}

func (s *Session) play(path string) {
	if err := s.deps.Player.PlayAndWait(path); err != nil {
		s.logger.Error("playing audio", "path", path, "error", err)
	}
}

func (s *Session) playRandom(paths []string) {
	if len(paths) == 0 {
		return
	}
	s.play(paths[rand.IntN(len(paths))])
}

// conversationRun adapts one assistant exchange to the RemoteOperation
// contract: post the message and start a run on submit, poll the run, fetch
// the newest reply once it completes.
type conversationRun struct {
	conv           Conversation
	conversationID string
	text           string
}

func (r *conversationRun) Submit(ctx context.Context) (string, error) {
	if err := r.conv.PostMessage(ctx, r.conversationID, r.text); err != nil {
		return "", fmt.Errorf("posting message: %w", err)
	}
	return r.conv.StartRun(ctx, r.conversationID)
}

func (r *conversationRun) Poll(ctx context.Context, runID string) (bool, error) {
	return r.conv.RunCompleted(ctx, r.conversationID, runID)
}

func (r *conversationRun) Result(ctx context.Context) (string, error) {
	return r.conv.LatestReply(ctx, r.conversationID)
}
