package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ServiceScript is the MediaPipe helper the detector runs as a subprocess.
const ServiceScript = "hand_service.py"

// IdleShutdown is how long the subprocess may sit unused before it is stopped.
const IdleShutdown = 30 * time.Second

// Environment overrides for locating the helper and its interpreter.
const (
	EnvServiceScript = "AIRSKETCH_HAND_SERVICE"
	EnvPython        = "AIRSKETCH_PYTHON"
)

// ErrServiceNotFound is returned when the MediaPipe helper script cannot be located.
var ErrServiceNotFound = errors.New(ServiceScript + " not found")

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
//
// Frames are written to the subprocess as a 4-byte big-endian length followed
// by JPEG bytes; each frame is answered with one JSON line. The subprocess is
// started on first use, stopped after IdleShutdown without frames, and
// restarted on the next frame after any I/O failure.
type MediaPipeDetector struct {
	config    Config
	script    string
	mu        sync.Mutex
	proc      *helperProcess
	idleTimer *time.Timer
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config) (*MediaPipeDetector, error) {
	script := findMediaPipeScript()
	if script == "" {
		return nil, ErrServiceNotFound
	}
	return &MediaPipeDetector{config: config.withDefaults(), script: script}, nil
}

// Detect sends the frame to the helper and returns the hands it reports,
// best score first, limited to MaxHands.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.proc == nil {
		proc, err := startHelper(findVenvPython(), d.script, d.config)
		if err != nil {
			return nil, err
		}
		d.proc = proc
	}

	line, err := d.proc.exchange(buf.GetBytes())
	if err != nil {
		d.stopLocked()
		return nil, err
	}
	d.resetIdleTimer()

	return parseResponse(line, d.config)
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *MediaPipeDetector) stopLocked() error {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	if d.proc == nil {
		return nil
	}
	err := d.proc.stop()
	d.proc = nil
	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(IdleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stopLocked()
	})
}

// helperProcess is one running hand_service.py.
type helperProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

func startHelper(python, script string, config Config) (*helperProcess, error) {
	cmd := exec.Command(python, script,
		"--max-hands", strconv.Itoa(config.MaxHands),
		"--min-detection", strconv.FormatFloat(config.MinConfidence, 'f', 2, 64),
		"--min-tracking", strconv.FormatFloat(config.MinTrackingConf, 'f', 2, 64),
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start hand service: %w", err)
	}

	return &helperProcess{cmd: cmd, stdin: stdin, stdout: bufio.NewReader(stdout)}, nil
}

// exchange writes one frame and reads the JSON line answering it.
func (p *helperProcess) exchange(jpeg []byte) ([]byte, error) {
	if err := writeFrame(p.stdin, jpeg); err != nil {
		return nil, err
	}
	line, err := p.stdout.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return line, nil
}

// stop closes stdin, which ends the helper's read loop, and waits for it.
func (p *helperProcess) stop() error {
	p.stdin.Close()
	return p.cmd.Wait()
}

// writeFrame writes the length-prefixed frame in a single write.
func writeFrame(w io.Writer, jpeg []byte) error {
	msg := make([]byte, 4+len(jpeg))
	binary.BigEndian.PutUint32(msg, uint32(len(jpeg)))
	copy(msg[4:], jpeg)
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// parseResponse decodes a helper reply. Hands with fewer than NumLandmarks
// points or a score below MinConfidence are dropped.
func parseResponse(line []byte, config Config) ([]HandLandmarks, error) {
	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var hands []HandLandmarks
	for _, h := range response.Hands {
		lm, ok := h.landmarks()
		if !ok || lm.Score < config.MinConfidence {
			continue
		}
		hands = append(hands, lm)
	}

	// Stable insertion sort; there are rarely more than two hands.
	for i := 1; i < len(hands); i++ {
		for j := i; j > 0 && hands[j].Score > hands[j-1].Score; j-- {
			hands[j], hands[j-1] = hands[j-1], hands[j]
		}
	}
	if config.MaxHands > 0 && len(hands) > config.MaxHands {
		hands = hands[:config.MaxHands]
	}
	return hands, nil
}

// jsonHand is one hand as reported by the helper.
// Points are normalized to the frame, origin top-left.
type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

func (h jsonHand) landmarks() (HandLandmarks, bool) {
	if len(h.Points) < NumLandmarks {
		return HandLandmarks{}, false
	}
	lm := HandLandmarks{Handedness: h.Handedness, Score: h.Score}
	copy(lm.Points[:], h.Points)
	return lm, true
}

// firstExisting returns the absolute form of the first path that exists.
func firstExisting(paths ...string) string {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}

func executableDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(execPath)
}

func findMediaPipeScript() string {
	home, _ := os.UserHomeDir()
	return firstExisting(
		os.Getenv(EnvServiceScript),
		filepath.Join("scripts", ServiceScript),
		filepath.Join("..", "scripts", ServiceScript),
		filepath.Join(executableDir(), "scripts", ServiceScript),
		filepath.Join(home, ".airsketch", "scripts", ServiceScript),
	)
}

// findVenvPython prefers a virtualenv interpreter and falls back to python3.
func findVenvPython() string {
	home, _ := os.UserHomeDir()
	if p := firstExisting(
		os.Getenv(EnvPython),
		filepath.Join("venv", "bin", "python"),
		filepath.Join("..", "venv", "bin", "python"),
		filepath.Join(executableDir(), "venv", "bin", "python"),
		filepath.Join(home, ".airsketch", "venv", "bin", "python"),
	); p != "" {
		return p
	}
	return "python3"
}
