package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"gioui.org/app"
	"github.com/spf13/pflag"

	"github.com/esimov/winloop"
	"github.com/esimov/winloop/config"
	"github.com/esimov/winloop/platform/gio"
	"github.com/esimov/winloop/platform/headless"
	"github.com/esimov/winloop/record"
	"github.com/esimov/winloop/utils"
)

const HelpBanner = `
┬ ┬┬┌┐┌┬  ┌─┐┌─┐┌─┐
│││││││││  │ ││ │├─┘
└┴┘┴┘└┘┴─┘└─┘└─┘┴

Native windows driven from any goroutine.
    Version: %s

`

// confirmDelay is how long a dismissed close request stays armed: a second
// close attempt within this delay is confirmed.
const confirmDelay = 3 * time.Second

// Version indicates the current build version.
var Version string

var (
	// Flags
	configPath = pflag.StringP("config", "c", "", "Session file (YAML)")
	backend    = pflag.StringP("backend", "b", "", "Platform backend: headless, gio or win32")
	recordPath = pflag.StringP("record", "r", "", "Record the decoded events to this file")
	replayPath = pflag.String("replay", "", "Replay a recording into the headless backend")
	realtime   = pflag.Bool("realtime", false, "Keep the recorded timing while replaying")
	logLevel   = pflag.String("log-level", "", "Log level: debug, info, warn or error")
	quiet      = pflag.BoolP("quiet", "q", false, "Do not print window events")
	noColor    = pflag.Bool("no-color", false, "Disable colored output")
	version    = pflag.BoolP("version", "v", false, "Print the version and exit")
)

func main() {
	log.SetFlags(0)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *version {
		fmt.Println(Version)
		return
	}

	deco := utils.Decorator{Color: !*noColor && utils.ColorEnabled(os.Stderr)}

	session, err := loadSession()
	if err != nil {
		log.Fatal(deco.Text(err.Error(), utils.ErrorMessage))
	}

	// Gio needs the main goroutine for its own event loop.
	if session.Backend == config.BackendGio {
		go func() {
			os.Exit(run(session, deco))
		}()
		app.Main()
		return
	}
	os.Exit(run(session, deco))
}

// loadSession reads the session file and applies the command line overrides.
func loadSession() (*config.File, error) {
	session := config.Default()
	if *configPath != "" {
		f, err := config.LoadFile(*configPath)
		if err != nil {
			return nil, err
		}
		session = f
	}
	if *backend != "" {
		session.Backend = *backend
	}
	if *logLevel != "" {
		session.LogLevel = *logLevel
	}
	if *recordPath != "" {
		session.Record = *recordPath
	}
	if *replayPath != "" && session.Backend != config.BackendHeadless {
		return nil, fmt.Errorf("--replay needs the %s backend", config.BackendHeadless)
	}
	return session, session.Validate()
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func newPlatform(name string, logger *slog.Logger) (winloop.Platform, error) {
	switch name {
	case config.BackendHeadless:
		return headless.New(), nil
	case config.BackendGio:
		return gio.New(gio.WithLogger(logger)), nil
	}
	return nativePlatform(name, logger)
}

// run opens the windows of the session and waits for the dispatcher to end.
// It returns the process exit code.
func run(session *config.File, deco utils.Decorator) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(session.LogLevel),
	}))
	now := time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	platform, err := newPlatform(session.Backend, logger)
	if err != nil {
		logger.Error("unable to create the platform", "backend", session.Backend, "error", err)
		return 1
	}

	opts := []winloop.Option{winloop.WithLogger(logger)}
	var rec *recording
	if session.Record != "" {
		rec, err = startRecording(session.Record, platform, logger)
		if err != nil {
			logger.Error("unable to start the recording", "error", err)
			return 1
		}
		opts = append(opts, winloop.WithDecoder(rec.tap))
	}
	d := winloop.New(platform, opts...)

	out := &printer{w: os.Stdout, deco: deco, quiet: *quiet}
	var wg sync.WaitGroup
	var windows []*winloop.Window
	for _, wc := range session.Windows {
		cfg, err := wc.Config(ctx)
		if err != nil {
			logger.Error("invalid window", "error", err)
			return 1
		}
		w, err := winloop.Create(ctx, d, cfg)
		if err != nil {
			logger.Error("unable to create the window", "title", cfg.Title, "error", err)
			return 1
		}
		if err := watchWindow(ctx, &wg, out, w, cfg.Title, wc.ConfirmClose); err != nil {
			logger.Error("unable to watch the window", "title", cfg.Title, "error", err)
			return 1
		}
		windows = append(windows, w)
	}

	if hp, ok := platform.(*headless.Platform); ok {
		if err := replay(ctx, hp, windows, deco); err != nil {
			logger.Error("replay failed", "error", err)
		}
		// Headless windows have no user to close them.
		for _, w := range windows {
			w.Close()
		}
	}

	clean, err := d.Finished(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("interrupted, closing the windows")
		for _, w := range windows {
			w.Close()
		}
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		clean, err = d.Finished(shutdown)
	}
	if err != nil {
		logger.Error("dispatcher did not finish", "error", err)
		return 1
	}
	wg.Wait()

	if rec != nil {
		if err := rec.close(); err != nil {
			logger.Error("unable to close the recording", "error", err)
		}
		fmt.Fprintf(os.Stderr, "\nRecorded %s events to %s\n",
			deco.Text(fmt.Sprint(rec.w.Frames()), utils.SuccessMessage),
			deco.Text(session.Record, utils.StatusMessage))
	}
	fmt.Fprintf(os.Stderr, "\nSession time: %s\n", deco.Text(utils.FormatTime(time.Since(now)), utils.SuccessMessage))

	if !clean {
		// Resuming the fault crashes with the original panic value.
		d.ResumeFault(context.Background())
		return 2
	}
	return 0
}

// replay injects the recording given by --replay into the headless windows,
// mapping the recorded windows onto them in order.
func replay(ctx context.Context, hp *headless.Platform, windows []*winloop.Window, deco utils.Decorator) error {
	if *replayPath == "" {
		return nil
	}
	f, err := os.Open(*replayPath)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := record.NewReader(f)
	if err != nil {
		return err
	}
	handles := make([]winloop.Handle, len(windows))
	for i, w := range windows {
		handles[i] = w.Handle()
	}

	if *realtime && utils.ColorEnabled(os.Stderr) {
		spinner := utils.NewSpinner(os.Stderr, fmt.Sprintf("%s %s",
			deco.Text("⚡ WINLOOP", utils.StatusMessage),
			deco.Text("is replaying the recording...", utils.DefaultMessage)),
			100*time.Millisecond, true)
		spinner.StopMsg = fmt.Sprintf("%s %s\n",
			deco.Text("⚡ WINLOOP", utils.StatusMessage),
			deco.Text("replayed the recording ✔", utils.DefaultMessage))
		spinner.Start(ctx)
		defer spinner.Stop()
	}

	n, err := record.Replay(ctx, r, hp, record.ReplayOptions{
		Realtime: *realtime,
		Map:      record.Sequential(handles),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Replayed %s events recorded on %s\n",
		deco.Text(fmt.Sprint(n), utils.SuccessMessage),
		r.Started().Format(time.RFC3339))
	return nil
}

type recording struct {
	f   *os.File
	w   *record.Writer
	tap *record.Tap
}

func startRecording(path string, platform winloop.Platform, logger *slog.Logger) (*recording, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := record.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &recording{f: f, w: w, tap: record.NewTap(platform, w, logger)}, nil
}

func (r *recording) close() error {
	if r.tap.Failed() {
		r.f.Close()
		return errors.New("the recording is incomplete")
	}
	return r.f.Close()
}

// printer writes window events to the standard output.
type printer struct {
	mu    sync.Mutex
	w     *os.File
	deco  utils.Decorator
	quiet bool
}

func (p *printer) event(title, kind string, v any) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s %v\n",
		p.deco.Text("["+title+"]", utils.StatusMessage),
		p.deco.Text(kind, utils.SuccessMessage),
		formatValue(v))
}

func (p *printer) notice(title, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", p.deco.Text("["+title+"]", utils.StatusMessage), p.deco.Text(msg, utils.NoticeMessage))
}

func formatValue(v any) string {
	switch v := v.(type) {
	case struct{}:
		return ""
	case rune:
		return fmt.Sprintf("%q", v)
	case winloop.KeyInput:
		name := v.KeyCode.Name
		if name == "" {
			name = fmt.Sprintf("vk=%#x scan=%#x", v.KeyCode.VKey, v.KeyCode.ScanCode)
		}
		return fmt.Sprintf("%s %s", name, v.State)
	case winloop.MouseInput:
		return fmt.Sprintf("%s %s at %v", v.Button, v.ButtonState, v.MouseState.Position)
	case winloop.DropFiles:
		return strings.Join(v.Files, ", ")
	}
	return fmt.Sprintf("%v", v)
}

// watch prints every value of one event kind until the window is destroyed.
func watch[T any](ctx context.Context, wg *sync.WaitGroup, out *printer, title, kind string, subscribe func(context.Context) (*winloop.Receiver[T], error)) error {
	r, err := subscribe(ctx)
	if err != nil {
		return err
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			v, err := r.Recv(ctx)
			if err != nil {
				return
			}
			out.event(title, kind, v)
		}
	}()
	return nil
}

func watchWindow(ctx context.Context, wg *sync.WaitGroup, out *printer, w *winloop.Window, title string, confirm bool) error {
	err := errors.Join(
		watch(ctx, wg, out, title, "key", w.KeyInput),
		watch(ctx, wg, out, title, "char", w.CharInput),
		watch(ctx, wg, out, title, "mouse", w.MouseInput),
		watch(ctx, wg, out, title, "wheel", w.MouseWheel),
		watch(ctx, wg, out, title, "enter", w.CursorEntered),
		watch(ctx, wg, out, title, "leave", w.CursorLeft),
		watch(ctx, wg, out, title, "moved", w.Moved),
		watch(ctx, wg, out, title, "resized", w.Resized),
		watch(ctx, wg, out, title, "dpi", w.DPIChanged),
		watch(ctx, wg, out, title, "activated", w.Activated),
		watch(ctx, wg, out, title, "deactivated", w.Deactivated),
		watch(ctx, wg, out, title, "ime", w.IMEUpdate),
		watch(ctx, wg, out, title, "ime-end", w.IMEEnd),
		watch(ctx, wg, out, title, "drop", w.FilesDropped),
		watch(ctx, wg, out, title, "closed", w.Closed),
	)
	if err != nil || !confirm {
		return err
	}

	reqs, err := w.CloseRequests(ctx)
	if err != nil {
		return err
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		var armed time.Time
		for {
			req, err := reqs.Recv(ctx)
			if err != nil {
				return
			}
			if !armed.IsZero() && time.Since(armed) < confirmDelay {
				req.Confirm()
				continue
			}
			armed = time.Now()
			req.Dismiss()
			out.notice(title, fmt.Sprintf("close again within %s to confirm", confirmDelay))
		}
	}()
	return nil
}
