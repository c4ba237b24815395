package media

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"path"
	"runtime"
	"strings"

	"github.com/pders01/newsdesk/internal/config"
	"github.com/pders01/newsdesk/internal/debuglog"
	"github.com/pders01/newsdesk/internal/validation"
)

// Kind is what a URL points at, which decides the program used.
type Kind int

const (
	KindPage Kind = iota
	KindImage
)

func (k Kind) String() string {
	if k == KindImage {
		return "image"
	}
	return "page"
}

var ErrNoOpener = errors.New("no application found to open URL")

type Launcher struct {
	browser       string
	imageViewer   string
	defaultOpener string
	goos          string
	registry      *Registry
	validator     *validation.URLValidator

	lookPath func(string) (string, error)
	start    func(*exec.Cmd) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	registry, err := NewRegistry()
	if err != nil {
		debuglog.Warnf("media: %v", err)
		registry = &Registry{openers: map[string]OpenerDefinition{}, imageExtensions: map[string]bool{}}
	}
	return newLauncher(cfg.Media, runtime.GOOS, registry, exec.LookPath, startDetached)
}

func newLauncher(cfg config.MediaConfig, goos string, registry *Registry, lookPath func(string) (string, error), start func(*exec.Cmd) error) *Launcher {
	l := &Launcher{
		defaultOpener: cfg.DefaultOpener,
		goos:          goos,
		registry:      registry,
		validator:     validation.NewArticleURLValidator(),
		lookPath:      lookPath,
		start:         start,
	}

	var openers config.Openers
	switch goos {
	case "darwin":
		openers = cfg.Darwin
	case "windows":
		openers = cfg.Windows
	default:
		openers = cfg.Linux
	}

	l.browser = l.findCommand(openers.Browser...)
	l.imageViewer = l.findCommand(openers.Image...)

	if l.defaultOpener == "" {
		l.defaultOpener = platformOpener(goos)
	}
	if l.browser == "" {
		l.browser = l.defaultOpener
	}
	if l.imageViewer == "" {
		l.imageViewer = l.defaultOpener
	}

	return l
}

// Open picks the browser or image viewer from the URL's extension.
func (l *Launcher) Open(rawURL string) error {
	return l.open(rawURL, l.DetectKind(rawURL))
}

// OpenPage opens an article link in the browser.
func (l *Launcher) OpenPage(rawURL string) error {
	return l.open(rawURL, KindPage)
}

// OpenImage opens an article image in the image viewer.
func (l *Launcher) OpenImage(rawURL string) error {
	return l.open(rawURL, KindImage)
}

func (l *Launcher) open(rawURL string, kind Kind) error {
	target, err := l.validator.ValidateAndNormalize(rawURL)
	if err != nil {
		return fmt.Errorf("refusing to open %q: %w", rawURL, err)
	}

	name := l.browser
	if kind == KindImage {
		name = l.imageViewer
	}
	if name == "" {
		return ErrNoOpener
	}

	program, args, err := l.registry.Command(name, kind, l.goos, target)
	if err != nil {
		debuglog.Debugf("media: %v, falling back to %s", err, l.defaultOpener)
		program, args, err = l.registry.Command(l.defaultOpener, kind, l.goos, target)
		if err != nil {
			return err
		}
	}

	debuglog.Infof("media: opening %s with %s", kind, program)
	cmd := exec.Command(program, args...)
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", program, err)
	}
	return nil
}

// DetectKind reports KindImage for URLs whose path ends in a known image
// extension.
func (l *Launcher) DetectKind(rawURL string) Kind {
	u, err := url.Parse(rawURL)
	if err != nil {
		return KindPage
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	if ext != "" && l.registry.imageExtensions[ext] {
		return KindImage
	}
	return KindPage
}

func (l *Launcher) findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := l.lookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}

func platformOpener(goos string) string {
	switch goos {
	case "darwin":
		return "open"
	case "windows":
		return "start"
	default:
		return "xdg-open"
	}
}

// startDetached starts GUI applications without waiting on them.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
