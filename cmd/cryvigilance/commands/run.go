package commands

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/mizly/CryVigilance/internal/host"
	"github.com/mizly/CryVigilance/internal/panel"
	"github.com/mizly/CryVigilance/internal/props"
	"github.com/mizly/CryVigilance/internal/script"
	"github.com/mizly/CryVigilance/internal/signal"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

func newRunCommand() *cobra.Command {
	var (
		scriptsDir  string
		instance    string
		metricsAddr string
		tick        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the interactive property panel host",
		Long: `Host the property panel in the terminal.

The panel opens with Insert and closes with Esc. Arrow keys move and
adjust, space toggles, q quits while the panel is closed. Lua scripts
in the scripts directory get a toggle each under the Scripts category;
the directory is watched while the host runs. Another instance can
force the panel open via the open command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(cmd.Context(), scriptsDir, instance, metricsAddr, tick)
		},
	}

	cmd.Flags().StringVar(&scriptsDir, "scripts", defaultScriptsDir(), "lua script directory")
	cmd.Flags().StringVar(&instance, "name", "cryvigilance", "instance name on the signal bus")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	cmd.Flags().DurationVar(&tick, "tick", host.DefaultInterval, "autosave tick interval")

	return cmd
}

func defaultScriptsDir() string {
	return filepath.Join(filepath.Dir(props.DefaultStorePath()), "scripts")
}

func runHost(ctx context.Context, scriptsDir, instance, metricsAddr string, tick time.Duration) error {
	log, closeLog, err := hostLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	metrics := telemetry.NewMetrics("cryvigilance")

	bus, err := signal.New(signalDir, log, metrics)
	if err != nil {
		return err
	}

	eng, err := buildEngine(log,
		props.WithMetrics(metrics),
		props.WithSignalBus(bus),
		props.WithEnvOverrides("CRYV"),
		props.WithInstanceName(instance),
	)
	if err != nil {
		return err
	}
	defer eng.Destroy()

	scripts := script.NewHost(scriptsDir, eng, log, metrics)
	defer scripts.Close()
	if err := scripts.Scan(); err != nil {
		log.WithError(err).Warn("script scan failed")
	}

	if err := eng.Initialize(); err != nil {
		return err
	}

	if err := os.MkdirAll(scriptsDir, 0o755); err == nil {
		watcher, werr := script.NewWatcher(scripts, log)
		if werr != nil {
			log.WithError(werr).Warn("script watcher unavailable")
		} else {
			defer watcher.Close()
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	pan := panel.New(screen, eng, panel.WithLogger(log))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := host.New(tick)
	sched.OnTick(func() {
		eng.Tick()
		pan.Frame()
	})
	sched.OnKey(func(k props.Key) {
		if k.Name == "open-request" {
			pan.Open()
			pan.Frame()
			return
		}
		if !pan.Handle(k) && k.Rune == 'q' {
			cancel()
			return
		}
		pan.Frame()
	})
	eng.OnOpenRequest(func(props.OpenRequest) {
		sched.PostKey(props.Key{Name: "open-request"})
	})
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	if metricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(metricsAddr, metrics.Handler()); err != nil {
				log.WithError(err).Warn("metrics server stopped")
			}
		}()
	}

	go func() {
		<-ctx.Done()
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	// First draw.
	sched.PostKey(props.Key{Name: "draw"})

	for {
		ev := screen.PollEvent()
		if ev == nil {
			return nil
		}
		switch e := ev.(type) {
		case *tcell.EventInterrupt:
			return nil
		case *tcell.EventResize:
			screen.Sync()
			sched.PostKey(props.Key{Name: "draw"})
		case *tcell.EventKey:
			if e.Key() == tcell.KeyCtrlC {
				return nil
			}
			sched.PostKey(keyOf(e))
		}
	}
}

// keyOf converts a tcell key event into the engine's host key form.
func keyOf(ev *tcell.EventKey) props.Key {
	switch ev.Key() {
	case tcell.KeyUp:
		return props.Key{Name: "up"}
	case tcell.KeyDown:
		return props.Key{Name: "down"}
	case tcell.KeyLeft:
		return props.Key{Name: "left"}
	case tcell.KeyRight:
		return props.Key{Name: "right"}
	case tcell.KeyEnter:
		return props.Key{Name: "enter"}
	case tcell.KeyEscape:
		return props.Key{Name: "esc"}
	case tcell.KeyTab:
		return props.Key{Name: "tab"}
	case tcell.KeyInsert:
		return props.Key{Name: "insert"}
	case tcell.KeyDelete:
		return props.Key{Name: "delete"}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return props.Key{Name: "backspace"}
	case tcell.KeyRune:
		return props.Key{Rune: ev.Rune()}
	default:
		return props.Key{Name: ev.Name()}
	}
}
