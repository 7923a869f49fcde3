package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hypebeast/go-osc/osc"
	"github.com/spf13/cobra"

	"github.com/schollz/tapeline/internal/backend"
	"github.com/schollz/tapeline/internal/input"
	"github.com/schollz/tapeline/internal/library"
	"github.com/schollz/tapeline/internal/midiconnector"
	"github.com/schollz/tapeline/internal/model"
	"github.com/schollz/tapeline/internal/playback"
	"github.com/schollz/tapeline/internal/storage"
	"github.com/schollz/tapeline/internal/types"
	"github.com/schollz/tapeline/internal/views"
)

var (
	Version = "dev"

	// Command-line configuration
	config struct {
		port    int
		host    string
		project string
		debug   string
		midi    string
	}
)

var rootCmd = &cobra.Command{
	Use:   "tapeline",
	Short: "A terminal multi-track audio timeline arranger",
	Long: `Tapeline arranges audio clips end-to-end into one continuous playable
sequence and drives an external OSC audio player to keep the cursor, the
viewport and your edits in sync with a single global timeline position.

Features:
• Sequential multi-track timeline with trim, volume and variant per track
• Live drag reorder and nearest-gap clip insertion
• Anchor-preserving smooth zoom
• Auto-advance and loop-all playback against an OSC player backend
• MIDI transport control`,
	Version: Version,
	Run:     runTapeline,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&config.port, "port", 57140,
		"OSC port of the audio player backend")
	rootCmd.PersistentFlags().StringVar(&config.host, "host", "localhost",
		"Host of the audio player backend")
	rootCmd.PersistentFlags().StringVarP(&config.project, "project", "p", "save",
		"Project directory for the timeline and audio clips")
	rootCmd.PersistentFlags().StringVarP(&config.debug, "log", "l", "",
		"Write debug logs to specified file (empty disables)")
	rootCmd.PersistentFlags().StringVarP(&config.midi, "midi", "m", "",
		"MIDI input device for transport control (empty picks the first)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// backendEventMsg repaints the UI after an out-of-loop backend completion
// (the standing auto-advance subscription already applied its effects).
type backendEventMsg struct{}

// transportMsg carries a MIDI transport action into the event loop.
type transportMsg int

const (
	transportToggle transportMsg = iota
	transportNext
	transportPrev
)

// midiTransport forwards controller presses into the program.
type midiTransport struct{ p *tea.Program }

func (t midiTransport) Toggle() { t.p.Send(transportToggle) }
func (t midiTransport) Next()   { t.p.Send(transportNext) }
func (t midiTransport) Prev()   { t.p.Send(transportPrev) }

func runTapeline(cmd *cobra.Command, args []string) {
	// Set up debug logging early
	if config.debug != "" {
		f, err := tea.LogToFile(config.debug, "debug")
		if err != nil {
			log.Printf("Fatal: %v", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetOutput(io.Discard)
	}

	log.Println("Debug logging enabled")
	log.Printf("OSC backend configured: %s:%d", config.host, config.port)

	m := model.NewModel(config.port, config.project)
	if err := storage.LoadState(m, config.project); err == nil {
		log.Printf("Loaded saved timeline from %s", config.project)
	} else {
		log.Printf("No saved timeline in %s: %v", config.project, err)
	}

	clipDir := filepath.Join(config.project, "clips")
	os.MkdirAll(clipDir, 0o755)
	lib, err := library.Load(clipDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read clip library: %v\n", err)
		os.Exit(1)
	}

	// OSC backend: control client plus report handlers on our dispatcher
	d := osc.NewStandardDispatcher()
	back := backend.NewOSCBackend(config.host, config.port)
	back.Register(d)

	cursor := views.NewCursorHandle()
	sync := playback.NewSynchronizer(m, back, lib, cursor)
	coord := playback.NewCoordinator(m, sync)

	// Standing subscription: natural-end auto-advance stays alive no matter
	// what the UI is doing. Registered once, torn down only on exit.
	advance := playback.StartAutoAdvance(sync, back)
	defer advance.Stop()

	tm := &timelineProgram{
		m:      m,
		lib:    lib,
		cursor: cursor,
		deps: input.Deps{
			Sync:    sync,
			Coord:   coord,
			Library: lib,
			Keys:    input.DefaultKeyMap(),
		},
	}
	p := tea.NewProgram(tm, tea.WithAltScreen(), tea.WithMouseAllMotion())

	// Repaint on backend completions that arrive outside the event loop
	back.Subscribe(func(ev backend.Event) {
		if _, ok := ev.(backend.TimeUpdateEvent); ok {
			return
		}
		p.Send(backendEventMsg{})
	})

	// Start OSC server for the player's reports after p is created but
	// before p.Run()
	server := &osc.Server{Addr: fmt.Sprintf(":%d", config.port+1), Dispatcher: d}
	go func() {
		log.Printf("Starting OSC server on port %d", config.port+1)
		if err := server.ListenAndServe(); err != nil {
			log.Printf("Error starting OSC server: %v", err)
		}
	}()

	// MIDI transport, first device unless one was named
	devices := midiconnector.Devices()
	for _, device := range devices {
		log.Printf("MIDI device found: %s", device)
	}
	midiDevice := config.midi
	if midiDevice == "" && len(devices) > 0 {
		midiDevice = devices[0]
	}
	if midiDevice != "" {
		if stop, err := midiconnector.Listen(midiDevice, midiTransport{p}); err == nil {
			defer stop()
		} else {
			log.Printf("MIDI transport unavailable: %v", err)
		}
	}

	setupCleanupOnExit(m, sync)

	if _, err := p.Run(); err != nil {
		log.Printf("Error: %v", err)
	}

	// Flush and persist on normal exit
	sync.Flush()
	storage.DoSave(m.SaveFolder, storage.Snapshot(m))
}

// timelineProgram wraps the model and implements the tea.Model interface
type timelineProgram struct {
	m      *model.Model
	lib    *library.Library
	cursor *views.CursorHandle
	deps   input.Deps
}

func (tm *timelineProgram) Init() tea.Cmd {
	return nil
}

func (tm *timelineProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		tm.m.TermWidth = msg.Width
		tm.m.TermHeight = msg.Height
		tm.m.Resize(msg.Width)
		return tm, nil

	case input.FrameTickMsg:
		if !tm.m.Playback.IsPlaying {
			tm.cursor.Invalidate()
		}
		return tm, input.StepFrame(tm.m, tm.deps)

	case input.ZoomTickMsg:
		return tm, input.StepZoom(tm.m)

	case input.GapTickMsg:
		return tm, input.StepGap(tm.m)

	case backendEventMsg:
		if !tm.m.Playback.IsPlaying {
			tm.cursor.Invalidate()
		}
		return tm, nil

	case transportMsg:
		switch msg {
		case transportToggle:
			wasPlaying := tm.m.Playback.IsPlaying
			tm.deps.Sync.Toggle()
			if !wasPlaying && tm.m.Playback.IsPlaying {
				return tm, input.FrameTick()
			}
		case transportNext:
			input.NextTrack(tm.m, tm.deps.Sync)
		case transportPrev:
			input.PrevTrack(tm.m, tm.deps.Sync)
		}
		return tm, nil

	case tea.MouseMsg:
		return tm, input.HandleMouseInput(tm.m, tm.deps, msg)

	case tea.KeyMsg:
		return tm, input.HandleKeyInput(tm.m, tm.deps, msg)
	}

	return tm, nil
}

func (tm *timelineProgram) View() string {
	switch tm.m.ViewMode {
	case types.InspectorView:
		return views.RenderInspectorView(tm.m, tm.lib)
	default:
		return views.RenderTimelineView(tm.m, tm.lib, tm.cursor)
	}
}

func setupCleanupOnExit(m *model.Model, sync *playback.Synchronizer) {
	// Handle cleanup on various exit signals
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-c
		sync.Flush()
		storage.DoSave(m.SaveFolder, storage.Snapshot(m))
		os.Exit(0)
	}()
}
