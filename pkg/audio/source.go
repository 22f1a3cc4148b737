package audio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
)

// Source produces an endless sequence of Frames or a terminal error, per
// spec.md §4.1.
type Source interface {
	// Start begins capture and returns the frame channel, an event channel
	// for Overflow/Gap/DeviceLost notifications, and an amplitude sidecar
	// channel for UI waveform rendering. All three channels close when the
	// Source stops.
	Start(ctx context.Context) (frames <-chan Frame, events <-chan Event, amplitude <-chan int, err error)
	Stop()
}

// Config configures a MalgoSource.
type Config struct {
	DeviceID    string // empty selects the system default input
	SampleRate  int
	Channels    int
	FrameMillis int
}

// DefaultConfig returns the spec.md §4.1 capture defaults: 16kHz mono, 30ms
// frames.
func DefaultConfig() Config {
	return Config{SampleRate: DefaultSampleRate, Channels: 1, FrameMillis: DefaultFrameMillis}
}

// MalgoSource captures audio with github.com/gen2brain/malgo. It exclusively
// owns the device handle per spec.md §3's ownership summary.
type MalgoSource struct {
	cfg Config

	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	running bool

	seq       atomic.Uint64
	lastFrame atomic.Int64 // unix nanos of last delivered frame, for watchdog
}

// NewMalgoSource builds a Source bound to cfg. The malgo context is
// allocated lazily in Start so construction never touches the OS audio
// subsystem.
func NewMalgoSource(cfg Config) *MalgoSource {
	if cfg.SampleRate == 0 {
		cfg = DefaultConfig()
	}
	return &MalgoSource{cfg: cfg}
}

func (s *MalgoSource) Start(ctx context.Context) (<-chan Frame, <-chan Event, <-chan int, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, nil, nil, fmt.Errorf("audio: source already running")
	}
	s.mu.Unlock()

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, nil, nil, classifyInitError(err)
	}

	frames := make(chan Frame, 64)
	events := make(chan Event, 16)
	amplitude := make(chan int, 1) // lossy: size 1, drop rather than block

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(s.cfg.Channels)
	deviceConfig.SampleRate = uint32(s.cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	frameBytes := FrameSize(s.cfg.SampleRate, s.cfg.FrameMillis) * 2
	pending := make([]byte, 0, frameBytes*2)
	var pendingMu sync.Mutex

	onSamples := func(_, input []byte, _ uint32) {
		if input == nil {
			return
		}
		pendingMu.Lock()
		pending = append(pending, input...)
		for len(pending) >= frameBytes {
			chunk := pending[:frameBytes]
			pending = pending[frameBytes:]
			f := NewFrame(s.seq.Add(1)-1, chunk)
			s.lastFrame.Store(time.Now().UnixNano())
			select {
			case frames <- f:
			default:
				// Capture-to-pipeline bounded queue overflowed: drop oldest.
				select {
				case <-frames:
				default:
				}
				select {
				case frames <- f:
				default:
				}
				nonBlockingSend(events, Event{Type: EventOverflow})
			}
			nonBlockingSendInt(amplitude, f.Amplitude())
		}
		pendingMu.Unlock()
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onSamples})
	if err != nil {
		mctx.Uninit()
		return nil, nil, nil, classifyInitError(err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		mctx.Uninit()
		return nil, nil, nil, classifyInitError(err)
	}

	s.mu.Lock()
	s.ctx = mctx
	s.device = device
	s.running = true
	s.mu.Unlock()

	go s.watchdog(ctx, events, frames, amplitude)

	return frames, events, amplitude, nil
}

// watchdog checks every 2 seconds and emits DeviceLost once no frame has
// arrived for more than 5 seconds; it closes the channels on shutdown.
func (s *MalgoSource) watchdog(ctx context.Context, events chan Event, frames chan Frame, amplitude chan int) {
	defer close(frames)
	defer close(events)
	defer close(amplitude)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	s.lastFrame.Store(time.Now().UnixNano())

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-ticker.C:
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()
			if !running {
				return
			}
			if time.Since(time.Unix(0, s.lastFrame.Load())) > 5*time.Second {
				nonBlockingSend(events, Event{Type: EventDeviceLost})
				return
			}
		}
	}
}

func (s *MalgoSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}
	if s.ctx != nil {
		s.ctx.Uninit()
		s.ctx = nil
	}
}

func classifyInitError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission"):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case strings.Contains(msg, "no device") || strings.Contains(msg, "not found") || strings.Contains(msg, "unavailable"):
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
}

func nonBlockingSend(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}

func nonBlockingSendInt(ch chan int, v int) {
	select {
	case ch <- v:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}
